// internal/repository/memory.go
package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/taskhub/taskhub/internal/models"
)

// MemoryStore backs the in-memory repository implementations. All entity maps
// share one lock so cross-entity operations (user deletion nulling task
// assignees) stay consistent. Used by tests and as a dependency-free fallback.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	tasks    map[string]*models.Task
	comments map[string]*models.Comment
	events   []*models.SecurityEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*models.User),
		tasks:    make(map[string]*models.Task),
		comments: make(map[string]*models.Comment),
	}
}

func (s *MemoryStore) Users() UserRepository           { return &memoryUserRepo{s} }
func (s *MemoryStore) Tasks() TaskRepository           { return &memoryTaskRepo{s} }
func (s *MemoryStore) Comments() CommentRepository     { return &memoryCommentRepo{s} }
func (s *MemoryStore) Events() SecurityEventRepository { return &memoryEventRepo{s} }

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func copyTask(t *models.Task) *models.Task {
	c := *t
	c.Tags = append([]string(nil), t.Tags...)
	return &c
}

func copyComment(c *models.Comment) *models.Comment {
	out := *c
	out.Mentions = append([]string(nil), c.Mentions...)
	return &out
}

// --- users ---

type memoryUserRepo struct {
	s *MemoryStore
}

func (r *memoryUserRepo) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) || strings.EqualFold(existing.Username, u.Username) {
			return ErrDuplicate
		}
	}
	r.s.users[u.ID] = copyUser(u)
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

func (r *memoryUserRepo) GetByLogin(_ context.Context, login string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, login) || strings.EqualFold(u.Username, login) {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUserRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) || strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryUserRepo) List(_ context.Context, filter UserFilter) ([]*models.User, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*models.User
	for _, u := range r.s.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(u.Email), needle) &&
				!strings.Contains(strings.ToLower(u.Username), needle) {
				continue
			}
		}
		matched = append(matched, copyUser(u))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	matched = paginate(matched, filter.Offset, filter.Limit)
	return matched, total, nil
}

func (r *memoryUserRepo) Update(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[u.ID]; !ok {
		return ErrNotFound
	}
	r.s.users[u.ID] = copyUser(u)
	return nil
}

// Delete mirrors the schema's foreign key actions: tasks created by the user
// go away with their threads, assignee references on other tasks go null, the
// user's comments are removed, and surviving replies lose their parent link.
func (r *memoryUserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.users, id)

	removed := make(map[string]struct{})
	for tid, t := range r.s.tasks {
		if t.CreatorID == id {
			delete(r.s.tasks, tid)
			for cid, c := range r.s.comments {
				if c.TaskID == tid {
					removed[cid] = struct{}{}
					delete(r.s.comments, cid)
				}
			}
			continue
		}
		if t.AssigneeID != nil && *t.AssigneeID == id {
			t.AssigneeID = nil
		}
	}
	for cid, c := range r.s.comments {
		if c.UserID == id {
			removed[cid] = struct{}{}
			delete(r.s.comments, cid)
		}
	}
	for _, c := range r.s.comments {
		if c.ParentID != nil {
			if _, gone := removed[*c.ParentID]; gone {
				c.ParentID = nil
			}
		}
	}
	return nil
}

// --- tasks ---

type memoryTaskRepo struct {
	s *MemoryStore
}

func (r *memoryTaskRepo) Create(_ context.Context, t *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.tasks[t.ID] = copyTask(t)
	return nil
}

func (r *memoryTaskRepo) GetByID(_ context.Context, id string) (*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyTask(t), nil
}

func (r *memoryTaskRepo) List(_ context.Context, filter TaskFilter) ([]*models.Task, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*models.Task
	for _, t := range r.s.tasks {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if filter.CreatorID != nil && t.CreatorID != *filter.CreatorID {
			continue
		}
		if filter.AssigneeID != nil && !t.AssignedTo(*filter.AssigneeID) {
			continue
		}
		if filter.UserID != nil && t.CreatorID != *filter.UserID && !t.AssignedTo(*filter.UserID) {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(t.Title), needle) &&
				!strings.Contains(strings.ToLower(t.Description), needle) {
				continue
			}
		}
		matched = append(matched, copyTask(t))
	}

	sortTasks(matched, filter.SortBy, filter.SortOrder)

	total := len(matched)
	matched = paginate(matched, filter.Offset, filter.Limit)
	return matched, total, nil
}

func (r *memoryTaskRepo) Update(_ context.Context, t *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.tasks[t.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Version != t.Version {
		return ErrVersionConflict
	}
	t.Version++
	r.s.tasks[t.ID] = copyTask(t)
	return nil
}

func (r *memoryTaskRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.tasks, id)

	for cid, c := range r.s.comments {
		if c.TaskID == id {
			delete(r.s.comments, cid)
		}
	}
	return nil
}

// --- comments ---

type memoryCommentRepo struct {
	s *MemoryStore
}

func (r *memoryCommentRepo) Create(_ context.Context, c *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.comments[c.ID] = copyComment(c)
	return nil
}

func (r *memoryCommentRepo) GetByID(_ context.Context, id string) (*models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyComment(c), nil
}

func (r *memoryCommentRepo) ListByTask(_ context.Context, taskID string) ([]*models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*models.Comment
	for _, c := range r.s.comments {
		if c.TaskID == taskID {
			matched = append(matched, copyComment(c))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}

func (r *memoryCommentRepo) Update(_ context.Context, c *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[c.ID]; !ok {
		return ErrNotFound
	}
	r.s.comments[c.ID] = copyComment(c)
	return nil
}

// --- security events ---

type memoryEventRepo struct {
	s *MemoryStore
}

func (r *memoryEventRepo) Create(_ context.Context, e *models.SecurityEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *e
	r.s.events = append(r.s.events, &c)
	return nil
}

func (r *memoryEventRepo) List(_ context.Context, filter EventFilter) ([]*models.SecurityEvent, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*models.SecurityEvent
	for _, e := range r.s.events {
		if filter.UserID != nil && (e.UserID == nil || *e.UserID != *filter.UserID) {
			continue
		}
		if filter.EventType != "" && e.EventType != filter.EventType {
			continue
		}
		c := *e
		matched = append(matched, &c)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	matched = paginate(matched, filter.Offset, filter.Limit)
	return matched, total, nil
}

// --- helpers ---

func paginate[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func sortTasks(tasks []*models.Task, sortBy, sortOrder string) {
	asc := sortOrder == "asc"
	less := func(a, b *models.Task) bool { return a.CreatedAt.Before(b.CreatedAt) }

	switch sortBy {
	case "updated_at":
		less = func(a, b *models.Task) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case "due_date":
		less = func(a, b *models.Task) bool {
			switch {
			case a.DueDate == nil:
				return false
			case b.DueDate == nil:
				return true
			default:
				return a.DueDate.Before(*b.DueDate)
			}
		}
	case "priority":
		rank := map[models.Priority]int{
			models.PriorityLow:      0,
			models.PriorityMedium:   1,
			models.PriorityHigh:     2,
			models.PriorityCritical: 3,
		}
		less = func(a, b *models.Task) bool { return rank[a.Priority] < rank[b.Priority] }
	case "created_at", "":
		// default ordering below
	}

	if asc {
		sort.SliceStable(tasks, func(i, j int) bool { return less(tasks[i], tasks[j]) })
	} else {
		sort.SliceStable(tasks, func(i, j int) bool { return less(tasks[j], tasks[i]) })
	}
}
