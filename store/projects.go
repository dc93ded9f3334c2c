package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/mbolis/survey-nest/log"
	"github.com/mbolis/survey-nest/model"
)

// ErrNotFound is returned when an owner has no project with the given id.
var ErrNotFound = errors.New("project not found")

// Projects persists every user's projects as a single JSON document:
// {username: {projectID: project}}. The document is read once at startup
// and rewritten wholesale after every mutation. A mutex serializes the
// whole read-modify-write-save cycle so concurrent sessions cannot
// interleave partial states.
type Projects struct {
	mu    sync.Mutex
	path  string
	state map[string]map[string]*model.Project
}

// OpenProjects loads the project document at path. A missing or
// unparseable file yields an empty store, never an error.
func OpenProjects(path string) *Projects {
	s := &Projects{
		path:  path,
		state: map[string]map[string]*model.Project{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("projects.load: %s", err)
		}
		return s
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		log.Warnf("projects.load.parse: starting empty: %s", err)
		s.state = map[string]map[string]*model.Project{}
	}
	return s
}

// ForOwner returns the owner's projects sorted by title.
func (s *Projects) ForOwner(owner string) []*model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := make([]*model.Project, 0, len(s.state[owner]))
	for _, p := range s.state[owner] {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].Title != projects[j].Title {
			return projects[i].Title < projects[j].Title
		}
		return projects[i].ID < projects[j].ID
	})
	return projects
}

func (s *Projects) Get(owner, id string) (*model.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.state[owner][id]
	return p, ok
}

func (s *Projects) Create(owner, title string) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := model.NewProject(owner, title)
	if s.state[owner] == nil {
		s.state[owner] = map[string]*model.Project{}
	}
	s.state[owner][p.ID] = p

	if err := s.save(); err != nil {
		delete(s.state[owner], p.ID)
		return nil, err
	}
	return p, nil
}

func (s *Projects) Delete(owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.state[owner][id]
	if !ok {
		return ErrNotFound
	}
	delete(s.state[owner], id)

	if err := s.save(); err != nil {
		s.state[owner][id] = p
		return err
	}
	return nil
}

// Update runs fn against the owner's project and persists the result.
// An error from fn aborts the update with nothing saved, which is what
// makes form imports atomic.
func (s *Projects) Update(owner, id string, fn func(*model.Project) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.state[owner][id]
	if !ok {
		return ErrNotFound
	}
	if err := fn(p); err != nil {
		return err
	}
	return s.save()
}

// save rewrites the document through a temp file and rename, so a crash
// mid-write leaves the previous document intact.
func (s *Projects) save() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "projects: marshal")
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "projects: create data dir")
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(err, "projects: write temp")
	}
	return errors.Wrap(os.Rename(tmp, s.path), "projects: rename")
}
