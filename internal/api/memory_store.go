package api

import (
	"sort"
	"strings"
	"sync"

	"github.com/askwell/askwell/internal/models"
	"github.com/askwell/askwell/internal/services"
)

// MemoryStore is the default store: maps behind one RWMutex. It also backs
// the handler and service tests.
type MemoryStore struct {
	mu                   sync.RWMutex
	users                map[string]*models.User
	questions            map[string]*models.Question
	assignments          map[string]*models.Assignment
	assignmentsByUser    map[string][]string
	responseByAssignment map[string]*models.Response
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:                map[string]*models.User{},
		questions:            map[string]*models.Question{},
		assignments:          map[string]*models.Assignment{},
		assignmentsByUser:    map[string][]string{},
		responseByAssignment: map[string]*models.Response{},
	}
}

// AddUser enforces case-insensitive email uniqueness under the write lock
// so overlapping registrations cannot both land.
func (s *MemoryStore) AddUser(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return services.NewConflictError("email already registered")
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) GetUser(id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.users[id]
	if u == nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) FindUserByEmail(email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListUsers() ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sortByCreation(out, func(u *models.User) (string, int64) { return u.ID, u.CreatedAt.UnixNano() })
	return out, nil
}

func (s *MemoryStore) AddQuestion(q *models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *q
	cp.Options = append([]string(nil), q.Options...)
	s.questions[q.ID] = &cp
	return nil
}

func (s *MemoryStore) GetQuestion(id string) (*models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := s.questions[id]
	if q == nil {
		return nil, nil
	}
	cp := *q
	cp.Options = append([]string(nil), q.Options...)
	return &cp, nil
}

func (s *MemoryStore) UpdateQuestion(q *models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.questions[q.ID] == nil {
		return nil
	}
	cp := *q
	cp.Options = append([]string(nil), q.Options...)
	s.questions[q.ID] = &cp
	return nil
}

// DeleteQuestion removes the question and cascades to its assignments and
// their responses.
func (s *MemoryStore) DeleteQuestion(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.questions[id] == nil {
		return false, nil
	}
	delete(s.questions, id)
	for aid, a := range s.assignments {
		if a.QuestionID != id {
			continue
		}
		delete(s.assignments, aid)
		delete(s.responseByAssignment, aid)
		ids := s.assignmentsByUser[a.UserID]
		kept := ids[:0]
		for _, v := range ids {
			if v != aid {
				kept = append(kept, v)
			}
		}
		s.assignmentsByUser[a.UserID] = kept
	}
	return true, nil
}

func (s *MemoryStore) ListQuestions() ([]*models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Question, 0, len(s.questions))
	for _, q := range s.questions {
		cp := *q
		cp.Options = append([]string(nil), q.Options...)
		out = append(out, &cp)
	}
	sortByCreation(out, func(q *models.Question) (string, int64) { return q.ID, q.CreatedAt.UnixNano() })
	return out, nil
}

func (s *MemoryStore) ListCategories() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]struct{}{}
	for _, q := range s.questions {
		seen[q.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) AddAssignment(a *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.assignments[a.ID] = &cp
	s.assignmentsByUser[a.UserID] = append(s.assignmentsByUser[a.UserID], a.ID)
	return nil
}

func (s *MemoryStore) GetAssignment(id string) (*models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a := s.assignments[id]
	if a == nil {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) FindAssignment(questionID, userID string) (*models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.assignmentsByUser[userID] {
		a := s.assignments[id]
		if a != nil && a.QuestionID == questionID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListAssignmentsByUser(userID string) ([]*models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.assignmentsByUser[userID]
	out := make([]*models.Assignment, 0, len(ids))
	for _, id := range ids {
		if a := s.assignments[id]; a != nil {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// CompleteAssignment lands the response and the status change under one
// lock acquisition, so readers never see one without the other.
func (s *MemoryStore) CompleteAssignment(a *models.Assignment, r *models.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assignments[a.ID] == nil {
		return services.NewNotFoundError("assignment not found")
	}
	if s.responseByAssignment[a.ID] != nil {
		return services.NewConflictError("assignment already completed")
	}
	ac := *a
	rc := *r
	s.assignments[a.ID] = &ac
	s.responseByAssignment[a.ID] = &rc
	return nil
}

func (s *MemoryStore) GetResponseByAssignment(assignmentID string) (*models.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.responseByAssignment[assignmentID]
	if r == nil {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

// sortByCreation keeps listings stable: creation time first, id as the
// tie break.
func sortByCreation[T any](items []T, key func(T) (id string, created int64)) {
	sort.SliceStable(items, func(i, j int) bool {
		idI, tI := key(items[i])
		idJ, tJ := key(items[j])
		if tI != tJ {
			return tI < tJ
		}
		return idI < idJ
	})
}
