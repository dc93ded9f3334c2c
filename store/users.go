package store

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

var userFileHeader = []string{"username", "password_hash"}

// Users is the credential table: a two-column CSV of username and password
// hash, one row per user, appended on signup and never rewritten.
type Users struct {
	mu   sync.Mutex
	path string
}

func NewUsers(path string) *Users {
	return &Users{path: path}
}

// HashPassword returns the lowercase hex sha256 digest of the plaintext.
// The hash is deterministic and unsalted: identical passwords hash
// identically across users. Known weakness, kept for compatibility with
// existing credential files.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Register appends a new user row. It returns false, without touching the
// table, when the username is already taken.
func (u *Users) Register(username, password string) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.ensure(); err != nil {
		return false, err
	}

	users, err := u.read()
	if err != nil {
		return false, err
	}
	if _, taken := users[username]; taken {
		return false, nil
	}

	f, err := os.OpenFile(u.path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return false, errors.Wrap(err, "users: open for append")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{username, HashPassword(password)}); err != nil {
		return false, errors.Wrap(err, "users: append row")
	}
	w.Flush()
	return true, errors.Wrap(w.Error(), "users: flush")
}

// Authenticate reports whether the username exists and the password hashes
// to the stored digest.
func (u *Users) Authenticate(username, password string) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.ensure(); err != nil {
		return false, err
	}

	users, err := u.read()
	if err != nil {
		return false, err
	}
	hash, ok := users[username]
	return ok && hash == HashPassword(password), nil
}

// ensure lazily creates the credential file with its header row.
func (u *Users) ensure() error {
	if _, err := os.Stat(u.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrap(err, "users: stat")
	}

	if dir := filepath.Dir(u.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "users: create data dir")
		}
	}

	f, err := os.Create(u.path)
	if err != nil {
		return errors.Wrap(err, "users: create")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(userFileHeader); err != nil {
		return errors.Wrap(err, "users: write header")
	}
	w.Flush()
	return errors.Wrap(w.Error(), "users: flush header")
}

func (u *Users) read() (map[string]string, error) {
	f, err := os.Open(u.path)
	if err != nil {
		return nil, errors.Wrap(err, "users: open")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	users := map[string]string{}
	header := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			return users, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "users: read row")
		}
		if header {
			header = false
			continue
		}
		if len(row) >= 2 {
			users[row[0]] = row[1]
		}
	}
}
