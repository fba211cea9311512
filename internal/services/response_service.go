package services

import (
	"strings"
	"time"

	"github.com/askwell/askwell/internal/models"
)

type ResponseStore interface {
	GetAssignment(id string) (*models.Assignment, error)
	GetQuestion(id string) (*models.Question, error)
	CompleteAssignment(a *models.Assignment, r *models.Response) error
}

// SubmitRequest carries one answer against one assignment. Checkbox
// answers arrive as a single comma-joined string.
type SubmitRequest struct {
	AssignmentID string `json:"assignmentId"`
	Answer       string `json:"answer"`
}

type ResponseService struct {
	store ResponseStore
	now   func() time.Time
	idGen func(n int) string
}

func NewResponseService(store ResponseStore) *ResponseService {
	return &ResponseService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: shortID,
	}
}

// Submit records the answer and moves the assignment to completed.
// actorUID must own the assignment; completed assignments reject further
// submissions.
func (s *ResponseService) Submit(actorUID string, req SubmitRequest) (*models.Response, error) {
	if strings.TrimSpace(req.AssignmentID) == "" {
		return nil, NewInvalidError("assignmentId is required")
	}
	a, err := s.store.GetAssignment(req.AssignmentID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, NewNotFoundError("assignment not found")
	}
	if a.UserID != actorUID {
		return nil, NewForbiddenError("assignment belongs to another user")
	}
	if a.Status == models.StatusCompleted {
		return nil, NewConflictError("assignment already completed")
	}
	q, err := s.store.GetQuestion(a.QuestionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, NewNotFoundError("question not found")
	}
	answer, err := validateAnswer(q, req.Answer)
	if err != nil {
		return nil, err
	}

	now := s.now()
	r := &models.Response{
		ID:           s.idGen(12),
		AssignmentID: a.ID,
		Answer:       answer,
		SubmittedAt:  now,
	}
	updated := *a
	updated.Status = models.StatusCompleted
	updated.CompletedAt = &now
	// One store call: the response and the status change land together or
	// not at all, so a failed submission stays retryable.
	if err := s.store.CompleteAssignment(&updated, r); err != nil {
		return nil, err
	}
	return r, nil
}

func validateAnswer(q *models.Question, raw string) (string, error) {
	switch q.Type {
	case models.QuestionText:
		answer := strings.TrimSpace(raw)
		if answer == "" {
			return "", NewInvalidError("answer must not be empty")
		}
		return answer, nil
	case models.QuestionMultipleChoice:
		answer := strings.TrimSpace(raw)
		if answer == "" {
			return "", NewInvalidError("answer must not be empty")
		}
		if !containsOption(q.Options, answer) {
			return "", NewInvalidError("answer is not one of the question's options")
		}
		return answer, nil
	case models.QuestionCheckbox:
		selections := SplitAnswer(raw)
		if len(selections) == 0 {
			return "", NewInvalidError("select at least one option")
		}
		for _, sel := range selections {
			if !containsOption(q.Options, sel) {
				return "", NewInvalidError("answer is not one of the question's options")
			}
		}
		return strings.Join(selections, ","), nil
	default:
		return "", NewInvalidError("unknown question type")
	}
}

// SplitAnswer breaks a comma-joined checkbox answer into its trimmed
// selections, dropping empties.
func SplitAnswer(answer string) []string {
	parts := strings.Split(answer, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsOption(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
