package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/askwell/askwell/internal/models"
)

// assignmentStubStore backs the assignment and response service tests.
type assignmentStubStore struct {
	users       map[string]*models.User
	questions   map[string]*models.Question
	assignments map[string]*models.Assignment
	responses   map[string]*models.Response // keyed by assignment id
}

func newAssignmentStubStore() *assignmentStubStore {
	return &assignmentStubStore{
		users:       map[string]*models.User{},
		questions:   map[string]*models.Question{},
		assignments: map[string]*models.Assignment{},
		responses:   map[string]*models.Response{},
	}
}

func (s *assignmentStubStore) GetUser(id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *assignmentStubStore) GetQuestion(id string) (*models.Question, error) {
	if q, ok := s.questions[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, nil
}

func (s *assignmentStubStore) AddAssignment(a *models.Assignment) error {
	cp := *a
	s.assignments[a.ID] = &cp
	return nil
}

func (s *assignmentStubStore) GetAssignment(id string) (*models.Assignment, error) {
	if a, ok := s.assignments[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (s *assignmentStubStore) FindAssignment(questionID, userID string) (*models.Assignment, error) {
	for _, a := range s.assignments {
		if a.QuestionID == questionID && a.UserID == userID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *assignmentStubStore) ListAssignmentsByUser(userID string) ([]*models.Assignment, error) {
	out := []*models.Assignment{}
	for _, a := range s.assignments {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *assignmentStubStore) CompleteAssignment(a *models.Assignment, r *models.Response) error {
	ac := *a
	rc := *r
	s.assignments[a.ID] = &ac
	s.responses[r.AssignmentID] = &rc
	return nil
}

func (s *assignmentStubStore) GetResponseByAssignment(assignmentID string) (*models.Response, error) {
	if r, ok := s.responses[assignmentID]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (s *assignmentStubStore) seedUserAndQuestion() (*models.User, *models.Question) {
	u := &models.User{ID: "u1", Name: "Alex", Email: "alex@example.com", Role: models.RoleUser}
	q := &models.Question{ID: "q1", Text: "Pick one", Type: models.QuestionMultipleChoice, Options: []string{"A", "B"}, Category: "General"}
	s.users[u.ID] = u
	s.questions[q.ID] = q
	return u, q
}

func newTestAssignmentService(store AssignmentStore) *AssignmentService {
	svc := NewAssignmentService(store)
	svc.now = func() time.Time { return time.Unix(1700000000, 0).UTC() }
	n := 0
	svc.idGen = func(int) string { n++; return fmt.Sprintf("a%d", n) }
	return svc
}

func TestAssign(t *testing.T) {
	store := newAssignmentStubStore()
	u, q := store.seedUserAndQuestion()
	svc := newTestAssignmentService(store)

	a, err := svc.Assign(q.ID, u.ID)
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if a.Status != models.StatusAssigned {
		t.Fatalf("new assignment must start assigned, got %q", a.Status)
	}
	if a.CompletedAt != nil {
		t.Fatalf("new assignment must not carry a completion time")
	}

	if _, err := svc.Assign(q.ID, u.ID); err == nil {
		t.Fatalf("expected conflict on duplicate assignment")
	} else if se, ok := AsServiceError(err); !ok || se.Code != ErrorConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
}

func TestAssignUnknownTargets(t *testing.T) {
	store := newAssignmentStubStore()
	u, q := store.seedUserAndQuestion()
	svc := newTestAssignmentService(store)

	if _, err := svc.Assign("missing", u.ID); err == nil {
		t.Fatalf("expected not found for unknown question")
	}
	if _, err := svc.Assign(q.ID, "missing"); err == nil {
		t.Fatalf("expected not found for unknown user")
	}
	if _, err := svc.Assign("", ""); err == nil {
		t.Fatalf("expected validation error for empty ids")
	}
}

func TestListByUserEmbedsQuestionAndResponse(t *testing.T) {
	store := newAssignmentStubStore()
	u, q := store.seedUserAndQuestion()
	svc := newTestAssignmentService(store)

	a, err := svc.Assign(q.ID, u.ID)
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}

	details, err := svc.ListByUser(u.ID)
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("expected one detail, got %d", len(details))
	}
	d := details[0]
	if d.Question == nil || d.Question.ID != q.ID {
		t.Fatalf("expected embedded question, got %+v", d)
	}
	if len(d.Responses) != 0 {
		t.Fatalf("expected no responses before submission, got %d", len(d.Responses))
	}

	store.responses[a.ID] = &models.Response{ID: "r1", AssignmentID: a.ID, Answer: "A"}
	details, err = svc.ListByUser(u.ID)
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if len(details[0].Responses) != 1 || details[0].Responses[0].Answer != "A" {
		t.Fatalf("expected embedded response, got %+v", details[0].Responses)
	}
}

func TestListByUserSkipsVanishedQuestions(t *testing.T) {
	store := newAssignmentStubStore()
	u, q := store.seedUserAndQuestion()
	svc := newTestAssignmentService(store)

	if _, err := svc.Assign(q.ID, u.ID); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	delete(store.questions, q.ID)

	details, err := svc.ListByUser(u.ID)
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if len(details) != 0 {
		t.Fatalf("assignments without a question must be skipped, got %d", len(details))
	}
}

func TestListByUserUnknownUser(t *testing.T) {
	svc := newTestAssignmentService(newAssignmentStubStore())
	if _, err := svc.ListByUser("missing"); err == nil {
		t.Fatalf("expected not found for unknown user")
	} else if se, ok := AsServiceError(err); !ok || se.Code != ErrorNotFound {
		t.Fatalf("expected not_found code, got %v", err)
	}
}
