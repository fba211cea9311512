package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/askwell/askwell/internal/models"
)

type QuestionStore interface {
	AddQuestion(q *models.Question) error
	GetQuestion(id string) (*models.Question, error)
	UpdateQuestion(q *models.Question) error
	DeleteQuestion(id string) (bool, error)
	ListQuestions() ([]*models.Question, error)
	ListCategories() ([]string, error)
}

// QuestionInput is the create/update payload before validation.
type QuestionInput struct {
	Text     string              `json:"text"`
	Type     models.QuestionType `json:"type"`
	Options  []string            `json:"options"`
	Category string              `json:"category"`
}

type QuestionService struct {
	store QuestionStore
	now   func() time.Time
	idGen func(n int) string
}

func NewQuestionService(store QuestionStore) *QuestionService {
	return &QuestionService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: shortID,
	}
}

func (s *QuestionService) Create(createdBy string, in QuestionInput) (*models.Question, error) {
	q := &models.Question{
		ID:        s.idGen(8),
		CreatedAt: s.now(),
		CreatedBy: createdBy,
	}
	if err := applyQuestionInput(q, in); err != nil {
		return nil, err
	}
	if err := s.store.AddQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Update(id string, in QuestionInput) (*models.Question, error) {
	q, err := s.store.GetQuestion(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, NewNotFoundError("question not found")
	}
	updated := *q
	if err := applyQuestionInput(&updated, in); err != nil {
		return nil, err
	}
	if err := s.store.UpdateQuestion(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the question together with its assignments and their
// responses. Orphaned assignments would otherwise surface on user
// dashboards with no prompt to render.
func (s *QuestionService) Delete(id string) error {
	ok, err := s.store.DeleteQuestion(id)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError("question not found")
	}
	return nil
}

func (s *QuestionService) Get(id string) (*models.Question, error) {
	q, err := s.store.GetQuestion(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, NewNotFoundError("question not found")
	}
	return q, nil
}

func (s *QuestionService) List() ([]*models.Question, error) {
	return s.store.ListQuestions()
}

// Categories returns the distinct category labels in sorted order.
func (s *QuestionService) Categories() ([]string, error) {
	return s.store.ListCategories()
}

func applyQuestionInput(q *models.Question, in QuestionInput) error {
	text := strings.TrimSpace(in.Text)
	category := strings.TrimSpace(in.Category)
	if text == "" || category == "" {
		return NewInvalidError("question text and category are required")
	}
	switch in.Type {
	case models.QuestionText, models.QuestionMultipleChoice, models.QuestionCheckbox:
	default:
		return NewInvalidError("unknown question type")
	}
	options := trimOptions(in.Options)
	if in.Type == models.QuestionText {
		options = nil
	} else if len(options) < 2 {
		return NewInvalidError("choice questions need at least two options")
	}
	q.Text = text
	q.Type = in.Type
	q.Options = options
	q.Category = category
	return nil
}

func trimOptions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, o := range in {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
