package services

import (
	"strings"
	"time"

	"github.com/askwell/askwell/internal/models"
)

type AssignmentStore interface {
	GetUser(id string) (*models.User, error)
	GetQuestion(id string) (*models.Question, error)
	AddAssignment(a *models.Assignment) error
	FindAssignment(questionID, userID string) (*models.Assignment, error)
	ListAssignmentsByUser(userID string) ([]*models.Assignment, error)
	GetResponseByAssignment(assignmentID string) (*models.Response, error)
}

// AssignmentDetail is an assignment with its user, question and the
// zero-or-one submitted response embedded, as the listing endpoint
// returns it.
type AssignmentDetail struct {
	ID          string                  `json:"id"`
	Status      models.AssignmentStatus `json:"status"`
	CreatedAt   time.Time               `json:"createdAt"`
	CompletedAt *time.Time              `json:"completedAt"`
	User        *models.User            `json:"user"`
	Question    *models.Question        `json:"question"`
	Responses   []*models.Response      `json:"responses"`
}

type AssignmentService struct {
	store AssignmentStore
	now   func() time.Time
	idGen func(n int) string
}

func NewAssignmentService(store AssignmentStore) *AssignmentService {
	return &AssignmentService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: shortID,
	}
}

// Assign links a question to a user. A question cannot be assigned twice
// to the same user.
func (s *AssignmentService) Assign(questionID, userID string) (*models.Assignment, error) {
	if strings.TrimSpace(questionID) == "" || strings.TrimSpace(userID) == "" {
		return nil, NewInvalidError("questionId and userId are required")
	}
	q, err := s.store.GetQuestion(questionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, NewNotFoundError("question not found")
	}
	u, err := s.store.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NewNotFoundError("user not found")
	}
	existing, err := s.store.FindAssignment(questionID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("question already assigned to this user")
	}
	a := &models.Assignment{
		ID:         s.idGen(12),
		QuestionID: questionID,
		UserID:     userID,
		Status:     models.StatusAssigned,
		CreatedAt:  s.now(),
	}
	if err := s.store.AddAssignment(a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListByUser returns the user's assignments with question and response
// embedded. Assignments whose question has vanished are skipped.
func (s *AssignmentService) ListByUser(userID string) ([]*AssignmentDetail, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, NewInvalidError("userId is required")
	}
	u, err := s.store.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NewNotFoundError("user not found")
	}
	as, err := s.store.ListAssignmentsByUser(userID)
	if err != nil {
		return nil, err
	}
	out := make([]*AssignmentDetail, 0, len(as))
	for _, a := range as {
		q, err := s.store.GetQuestion(a.QuestionID)
		if err != nil {
			return nil, err
		}
		if q == nil {
			continue
		}
		responses := []*models.Response{}
		r, err := s.store.GetResponseByAssignment(a.ID)
		if err != nil {
			return nil, err
		}
		if r != nil {
			responses = append(responses, r)
		}
		out = append(out, &AssignmentDetail{
			ID:          a.ID,
			Status:      a.Status,
			CreatedAt:   a.CreatedAt,
			CompletedAt: a.CompletedAt,
			User:        u,
			Question:    q,
			Responses:   responses,
		})
	}
	return out, nil
}
