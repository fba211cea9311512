package services

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/askwell/askwell/internal/models"
)

func newTestResponseService(store ResponseStore) *ResponseService {
	svc := NewResponseService(store)
	svc.now = func() time.Time { return time.Unix(1700000000, 0).UTC() }
	svc.idGen = func(int) string { return "r-fixed" }
	return svc
}

func seedAssignment(store *assignmentStubStore, qtype models.QuestionType, options []string) *models.Assignment {
	u := &models.User{ID: "u1", Name: "Alex", Email: "alex@example.com", Role: models.RoleUser}
	q := &models.Question{ID: "q1", Text: "Q", Type: qtype, Options: options, Category: "General"}
	a := &models.Assignment{ID: "a1", QuestionID: q.ID, UserID: u.ID, Status: models.StatusAssigned}
	store.users[u.ID] = u
	store.questions[q.ID] = q
	store.assignments[a.ID] = a
	return a
}

func TestSubmitTextAnswer(t *testing.T) {
	store := newAssignmentStubStore()
	a := seedAssignment(store, models.QuestionText, nil)
	svc := newTestResponseService(store)

	r, err := svc.Submit("u1", SubmitRequest{AssignmentID: a.ID, Answer: "  my thoughts  "})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if r.Answer != "my thoughts" {
		t.Fatalf("expected trimmed answer, got %q", r.Answer)
	}

	got := store.assignments[a.ID]
	if got.Status != models.StatusCompleted {
		t.Fatalf("submission must complete the assignment, got %q", got.Status)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(r.SubmittedAt) {
		t.Fatalf("completion time must match submission time, got %v vs %v", got.CompletedAt, r.SubmittedAt)
	}
}

func TestSubmitChoiceAnswerMustMatchOption(t *testing.T) {
	store := newAssignmentStubStore()
	a := seedAssignment(store, models.QuestionMultipleChoice, []string{"Yes", "No"})
	svc := newTestResponseService(store)

	if _, err := svc.Submit("u1", SubmitRequest{AssignmentID: a.ID, Answer: "Maybe"}); err == nil {
		t.Fatalf("expected rejection of off-list answer")
	} else if se, ok := AsServiceError(err); !ok || se.Code != ErrorInvalid {
		t.Fatalf("expected invalid code, got %v", err)
	}

	if _, err := svc.Submit("u1", SubmitRequest{AssignmentID: a.ID, Answer: "Yes"}); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
}

func TestSubmitCheckboxAnswer(t *testing.T) {
	store := newAssignmentStubStore()
	a := seedAssignment(store, models.QuestionCheckbox, []string{"Sales", "Billing", "Support"})
	svc := newTestResponseService(store)

	r, err := svc.Submit("u1", SubmitRequest{AssignmentID: a.ID, Answer: " Sales , Support "})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if r.Answer != "Sales,Support" {
		t.Fatalf("expected normalized comma join, got %q", r.Answer)
	}
}

func TestSubmitCheckboxRejectsUnknownSelection(t *testing.T) {
	store := newAssignmentStubStore()
	a := seedAssignment(store, models.QuestionCheckbox, []string{"Sales", "Billing"})
	svc := newTestResponseService(store)

	if _, err := svc.Submit("u1", SubmitRequest{AssignmentID: a.ID, Answer: "Sales,Surprise"}); err == nil {
		t.Fatalf("expected rejection of unknown selection")
	}
	if _, err := svc.Submit("u1", SubmitRequest{AssignmentID: a.ID, Answer: " , "}); err == nil {
		t.Fatalf("expected rejection of empty selection set")
	}
}

func TestSubmitOwnershipAndLifecycle(t *testing.T) {
	store := newAssignmentStubStore()
	a := seedAssignment(store, models.QuestionText, nil)
	svc := newTestResponseService(store)

	if _, err := svc.Submit("intruder", SubmitRequest{AssignmentID: a.ID, Answer: "hi"}); err == nil {
		t.Fatalf("expected forbidden for non-owner")
	} else if se, ok := AsServiceError(err); !ok || se.Code != ErrorForbidden {
		t.Fatalf("expected forbidden code, got %v", err)
	}

	if _, err := svc.Submit("u1", SubmitRequest{AssignmentID: "missing", Answer: "hi"}); err == nil {
		t.Fatalf("expected not found for unknown assignment")
	} else if se, ok := AsServiceError(err); !ok || se.Code != ErrorNotFound {
		t.Fatalf("expected not_found code, got %v", err)
	}

	if _, err := svc.Submit("u1", SubmitRequest{AssignmentID: a.ID, Answer: "first"}); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if _, err := svc.Submit("u1", SubmitRequest{AssignmentID: a.ID, Answer: "second"}); err == nil {
		t.Fatalf("expected conflict on resubmission")
	} else if se, ok := AsServiceError(err); !ok || se.Code != ErrorConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
}

// flakyCompleteStore fails the first completion attempt, standing in for a
// transient storage error at submit time.
type flakyCompleteStore struct {
	*assignmentStubStore
	failures int
}

func (s *flakyCompleteStore) CompleteAssignment(a *models.Assignment, r *models.Response) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("database is locked")
	}
	return s.assignmentStubStore.CompleteAssignment(a, r)
}

func TestSubmitFailureLeavesAssignmentRetryable(t *testing.T) {
	inner := newAssignmentStubStore()
	a := seedAssignment(inner, models.QuestionText, nil)
	store := &flakyCompleteStore{assignmentStubStore: inner, failures: 1}
	svc := newTestResponseService(store)

	if _, err := svc.Submit("u1", SubmitRequest{AssignmentID: a.ID, Answer: "first try"}); err == nil {
		t.Fatalf("expected storage error to surface")
	}
	if got := inner.assignments[a.ID]; got.Status != models.StatusAssigned {
		t.Fatalf("failed submission must not change status, got %q", got.Status)
	}
	if inner.responses[a.ID] != nil {
		t.Fatalf("failed submission must not leave a response behind")
	}

	r, err := svc.Submit("u1", SubmitRequest{AssignmentID: a.ID, Answer: "second try"})
	if err != nil {
		t.Fatalf("retry must succeed: %v", err)
	}
	if r.Answer != "second try" {
		t.Fatalf("unexpected retried answer %q", r.Answer)
	}
	if got := inner.assignments[a.ID]; got.Status != models.StatusCompleted {
		t.Fatalf("retry must complete the assignment, got %q", got.Status)
	}
}

func TestSplitAnswer(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ", []string{"a", "b"}},
		{"solo", []string{"solo"}},
		{" , ,", []string{}},
		{"", []string{}},
	}
	for _, c := range cases {
		if got := SplitAnswer(c.in); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("SplitAnswer(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
