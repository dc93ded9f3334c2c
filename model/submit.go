package model

import (
	"fmt"
	"strings"
	"time"
)

// MissingRequiredError lists the labels of required questions left
// unanswered by a submission.
type MissingRequiredError struct {
	Labels []string
}

func (e MissingRequiredError) Error() string {
	return fmt.Sprintf("please fill required questions: %s", strings.Join(e.Labels, ", "))
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// Submit validates entry against the form and appends a record to the
// project's data. Required questions whose value is null, an empty string,
// an empty list or numeric zero fail the whole submission, leaving data
// untouched. Date answers are normalized to YYYY-MM-DD; the record leads
// with the reserved submission timestamp.
func (p *Project) Submit(entry map[string]Value, now time.Time) (Record, error) {
	var missing []string
	for _, q := range p.Form {
		if q.Required && entry[q.Name].IsEmpty() {
			missing = append(missing, q.Label)
		}
	}
	if len(missing) > 0 {
		return Record{}, MissingRequiredError{Labels: missing}
	}

	rec := Record{}
	rec.Set(SubmissionTimeKey, String(now.UTC().Format(time.RFC3339)))
	for _, q := range p.Form {
		v := entry[q.Name]
		if q.Type == TypeDate && v.Kind() == KindString {
			v = String(normalizeDate(v.Str()))
		}
		rec.Set(q.Name, v)
	}

	p.Data = append(p.Data, rec)
	return rec, nil
}

func normalizeDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
