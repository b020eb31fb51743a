// Package projects is the typed repository for projects and their sections.
// The whole collection is persisted as one JSON document after every change.
package projects

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"looplog/internal/core/model"
	"looplog/internal/storage"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrSectionSelected = errors.New("section is selected")
	ErrLastSection     = errors.New("project needs at least one section")
	ErrEmptyName       = errors.New("name is empty")
	ErrUnknownField    = errors.New("unknown counter field")
)

// Repository holds the in-memory project collection. Every mutation builds a
// new map and swaps it in, then writes the full snapshot to the store.
type Repository struct {
	mu        sync.RWMutex
	store     storage.Store
	logger    *slog.Logger
	newID     func() string
	projects  map[string]model.Project
	selected  string
	listeners map[int]func()
	nextID    int
}

// New creates a repository and loads the persisted snapshot. A failed first
// load is logged and leaves the repository empty.
func New(store storage.Store, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	repo := &Repository{
		store:     store,
		logger:    logger,
		newID:     uuid.NewString,
		projects:  map[string]model.Project{},
		listeners: map[int]func(){},
	}
	projects, selected, err := repo.load()
	if err != nil {
		logger.Warn("load projects failed, starting empty", slog.Any("err", err))
	}
	repo.projects = projects
	repo.selected = selected
	return repo
}

// Reload replaces the in-memory state with the persisted snapshot. When the
// snapshot cannot be read the current state is kept.
func (repo *Repository) Reload() error {
	projects, selected, err := repo.load()
	if err != nil {
		repo.logger.Warn("reload projects failed, keeping current state", slog.Any("err", err))
		return err
	}
	repo.mu.Lock()
	repo.projects = projects
	repo.selected = selected
	repo.mu.Unlock()
	repo.notify()
	return nil
}

func (repo *Repository) load() (map[string]model.Project, string, error) {
	projects := map[string]model.Project{}

	raw, ok, err := repo.store.Get(storage.KeyProjects)
	if err != nil {
		return projects, "", fmt.Errorf("read projects: %w", err)
	}
	if ok && strings.TrimSpace(raw) != "" {
		var decoded map[string]model.Project
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			return projects, "", fmt.Errorf("parse projects: %w", err)
		}
		for key, project := range decoded {
			if project.ID == "" {
				project.ID = key
			}
			if project.Sections == nil {
				project.Sections = map[string]model.Section{}
			}
			projects[key] = project
		}
	}

	selected, _, err := repo.store.Get(storage.KeySelectedProject)
	if err != nil {
		return projects, "", fmt.Errorf("read selected project: %w", err)
	}
	return projects, selected, nil
}

// OnChange registers fn to run after every change. The returned func removes it.
func (repo *Repository) OnChange(fn func()) func() {
	repo.mu.Lock()
	id := repo.nextID
	repo.nextID++
	repo.listeners[id] = fn
	repo.mu.Unlock()

	return func() {
		repo.mu.Lock()
		delete(repo.listeners, id)
		repo.mu.Unlock()
	}
}

// List returns copies of all projects ordered by name.
func (repo *Repository) List() []model.Project {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	list := make([]model.Project, 0, len(repo.projects))
	for _, project := range repo.projects {
		list = append(list, project.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// Snapshot returns a deep copy of every project keyed by id.
func (repo *Repository) Snapshot() map[string]model.Project {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	return cloneProjects(repo.projects)
}

// Project returns a copy of one project.
func (repo *Repository) Project(id string) (model.Project, bool) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	project, ok := repo.projects[id]
	if !ok {
		return model.Project{}, false
	}
	return project.Clone(), true
}

// SelectedID returns the selected project id, or "" when nothing valid is
// selected.
func (repo *Repository) SelectedID() string {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	if _, ok := repo.projects[repo.selected]; !ok {
		return ""
	}
	return repo.selected
}

// Selected returns the selected project.
func (repo *Repository) Selected() (model.Project, bool) {
	id := repo.SelectedID()
	if id == "" {
		return model.Project{}, false
	}
	return repo.Project(id)
}

// CreateProject adds a project with one empty default section, selects it
// and returns its id.
func (repo *Repository) CreateProject(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("create project: %w", ErrEmptyName)
	}
	id := repo.newID()
	err := repo.mutate(func(projects map[string]model.Project) (bool, error) {
		projects[id] = model.Project{
			ID:              id,
			Name:            name,
			SelectedSection: model.DefaultSectionName,
			Sections: map[string]model.Section{
				model.DefaultSectionName: {},
			},
		}
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return id, repo.SelectProject(id)
}

// DeleteProject removes a project. Deleting the selected project clears the
// selection.
func (repo *Repository) DeleteProject(id string) error {
	err := repo.mutate(func(projects map[string]model.Project) (bool, error) {
		if _, ok := projects[id]; !ok {
			return false, fmt.Errorf("delete project %s: %w", id, ErrProjectNotFound)
		}
		delete(projects, id)
		return true, nil
	})
	if err != nil {
		return err
	}

	repo.mu.RLock()
	wasSelected := repo.selected == id
	repo.mu.RUnlock()
	if wasSelected {
		return repo.setSelected("")
	}
	return nil
}

// SelectProject marks a project as the active one.
func (repo *Repository) SelectProject(id string) error {
	repo.mu.RLock()
	_, ok := repo.projects[id]
	repo.mu.RUnlock()
	if !ok {
		return fmt.Errorf("select project %s: %w", id, ErrProjectNotFound)
	}
	return repo.setSelected(id)
}

func (repo *Repository) setSelected(id string) error {
	repo.mu.Lock()
	repo.selected = id
	err := repo.store.Set(storage.KeySelectedProject, id)
	repo.mu.Unlock()

	repo.notify()
	if err != nil {
		repo.logger.Error("save selected project failed", slog.Any("err", err))
		return fmt.Errorf("save selected project: %w", err)
	}
	return nil
}

// CreateSection adds an empty section named "Unnamed", or "Unnamed-N" with the
// smallest free N, selects it and returns the name.
func (repo *Repository) CreateSection(projectID string) (string, error) {
	var name string
	err := repo.mutate(func(projects map[string]model.Project) (bool, error) {
		project, ok := projects[projectID]
		if !ok {
			return false, fmt.Errorf("create section: %w", ErrProjectNotFound)
		}
		name = nextSectionName(project.Sections)
		project.Sections[name] = model.Section{}
		project.SelectedSection = name
		projects[projectID] = project
		return true, nil
	})
	return name, err
}

func nextSectionName(sections map[string]model.Section) string {
	if _, taken := sections[model.DefaultSectionName]; !taken {
		return model.DefaultSectionName
	}
	for index := 1; ; index++ {
		candidate := model.DefaultSectionName + "-" + strconv.Itoa(index)
		if _, taken := sections[candidate]; !taken {
			return candidate
		}
	}
}

// SelectSection marks a section as the project's active one.
func (repo *Repository) SelectSection(projectID, name string) error {
	return repo.mutate(func(projects map[string]model.Project) (bool, error) {
		project, ok := projects[projectID]
		if !ok {
			return false, fmt.Errorf("select section: %w", ErrProjectNotFound)
		}
		if _, ok := project.Sections[name]; !ok {
			return false, fmt.Errorf("select section %q: %w", name, ErrSectionNotFound)
		}
		if project.SelectedSection == name {
			return false, nil
		}
		project.SelectedSection = name
		projects[projectID] = project
		return true, nil
	})
}

// RenameSection moves a section's data to a new name. Renaming to the same
// name, to a blank name, or onto another existing section leaves the store
// unchanged and reports no error.
func (repo *Repository) RenameSection(projectID, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	return repo.mutate(func(projects map[string]model.Project) (bool, error) {
		project, ok := projects[projectID]
		if !ok {
			return false, fmt.Errorf("rename section: %w", ErrProjectNotFound)
		}
		section, ok := project.Sections[oldName]
		if !ok {
			return false, fmt.Errorf("rename section %q: %w", oldName, ErrSectionNotFound)
		}
		if newName == oldName || newName == "" {
			return false, nil
		}
		if _, exists := project.Sections[newName]; exists {
			return false, nil
		}

		project.Sections[newName] = section
		delete(project.Sections, oldName)
		if project.SelectedSection == oldName {
			project.SelectedSection = newName
		}
		projects[projectID] = project
		return true, nil
	})
}

// DeleteSection removes a section other than the selected one.
func (repo *Repository) DeleteSection(projectID, name string) error {
	return repo.mutate(func(projects map[string]model.Project) (bool, error) {
		project, ok := projects[projectID]
		if !ok {
			return false, fmt.Errorf("delete section: %w", ErrProjectNotFound)
		}
		if _, ok := project.Sections[name]; !ok {
			return false, fmt.Errorf("delete section %q: %w", name, ErrSectionNotFound)
		}
		if project.SelectedSection == name {
			return false, fmt.Errorf("delete section %q: %w", name, ErrSectionSelected)
		}
		if len(project.Sections) == 1 {
			return false, fmt.Errorf("delete section %q: %w", name, ErrLastSection)
		}
		delete(project.Sections, name)
		projects[projectID] = project
		return true, nil
	})
}

// UpdateCounter overwrites one counter. Negative values are stored as 0.
func (repo *Repository) UpdateCounter(projectID, sectionName string, field model.Field, value int64) error {
	if !field.Valid() {
		return fmt.Errorf("update %q: %w", field, ErrUnknownField)
	}
	if value < 0 {
		value = 0
	}
	return repo.mutate(func(projects map[string]model.Project) (bool, error) {
		project, ok := projects[projectID]
		if !ok {
			return false, fmt.Errorf("update %s: %w", field, ErrProjectNotFound)
		}
		section, ok := project.Sections[sectionName]
		if !ok {
			return false, fmt.Errorf("update %s on %q: %w", field, sectionName, ErrSectionNotFound)
		}
		if section.Get(field) == value {
			return false, nil
		}
		project.Sections[sectionName] = section.With(field, value)
		projects[projectID] = project
		return true, nil
	})
}

// mutate applies change to a copy of the collection. When change reports a
// modification the copy replaces the current state and is persisted.
func (repo *Repository) mutate(change func(map[string]model.Project) (bool, error)) error {
	repo.mu.Lock()
	next := cloneProjects(repo.projects)
	changed, err := change(next)
	if err != nil || !changed {
		repo.mu.Unlock()
		return err
	}
	repo.projects = next
	persistErr := repo.persistLocked()
	repo.mu.Unlock()

	repo.notify()
	return persistErr
}

func (repo *Repository) persistLocked() error {
	encoded, err := json.Marshal(repo.projects)
	if err != nil {
		return fmt.Errorf("encode projects: %w", err)
	}
	if err := repo.store.Set(storage.KeyProjects, string(encoded)); err != nil {
		repo.logger.Error("save projects failed", slog.Any("err", err))
		return fmt.Errorf("save projects: %w", err)
	}
	return nil
}

func (repo *Repository) notify() {
	repo.mu.RLock()
	listeners := make([]func(), 0, len(repo.listeners))
	for _, fn := range repo.listeners {
		listeners = append(listeners, fn)
	}
	repo.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}

func cloneProjects(projects map[string]model.Project) map[string]model.Project {
	clone := make(map[string]model.Project, len(projects))
	for id, project := range projects {
		clone[id] = project.Clone()
	}
	return clone
}
