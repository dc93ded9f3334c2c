package model

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid"
)

type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

type Project struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Owner     string     `json:"owner"`
	CreatedAt string     `json:"created_at"`
	Form      []Question `json:"form"`
	Data      []Record   `json:"data"`
}

type Question struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Choices  []string `json:"choices"`
	Required bool     `json:"required"`
}

const (
	TypeText           = "text"
	TypeInteger        = "integer"
	TypeDecimal        = "decimal"
	TypeDate           = "date"
	TypeSelectOne      = "select_one"
	TypeSelectMultiple = "select_multiple"
	TypeNote           = "note"
)

var questionTypes = map[string]bool{
	TypeText:           true,
	TypeInteger:        true,
	TypeDecimal:        true,
	TypeDate:           true,
	TypeSelectOne:      true,
	TypeSelectMultiple: true,
	TypeNote:           true,
}

func ValidType(t string) bool {
	return questionTypes[t]
}

// HasChoices reports whether a question type carries a choice list.
func HasChoices(t string) bool {
	return t == TypeSelectOne || t == TypeSelectMultiple
}

func NewProject(owner, title string) *Project {
	return &Project{
		ID:        NewProjectID(),
		Title:     title,
		Owner:     owner,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Form:      []Question{},
		Data:      []Record{},
	}
}

var (
	idMu       sync.Mutex
	lastIDTime int64
)

// NewProjectID returns a time-based id. Millisecond collisions bump past
// the last issued id, so ids stay unique even for back-to-back creates.
func NewProjectID() string {
	idMu.Lock()
	defer idMu.Unlock()

	ms := time.Now().UnixMilli()
	if ms <= lastIDTime {
		ms = lastIDTime + 1
	}
	lastIDTime = ms
	return fmt.Sprintf("proj_%d", ms)
}

func NewQuestionID() string {
	return "q_" + uuid.Must(uuid.NewV4()).String()
}

// DeriveName returns a variable name for a question, unique within the form.
// A non-blank requested name wins unless taken; otherwise the label is
// lowered with every non-alphanumeric rune turned into an underscore.
// Collisions get a numeric suffix.
func DeriveName(form []Question, label, requested string) string {
	existing := make(map[string]bool, len(form))
	for _, q := range form {
		existing[q.Name] = true
	}

	base := strings.TrimSpace(requested)
	if base == "" {
		base = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
				return r
			case r >= 'A' && r <= 'Z':
				return r + ('a' - 'A')
			default:
				return '_'
			}
		}, strings.TrimSpace(label))
		if base == "" {
			base = fmt.Sprintf("q%d", len(form)+1)
		}
	}

	candidate := base
	for n := 1; existing[candidate]; n++ {
		candidate = fmt.Sprintf("%s_%d", base, n)
	}
	return candidate
}
