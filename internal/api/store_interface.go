package api

import "github.com/askwell/askwell/internal/models"

// Store is the full persistence surface. The per-service interfaces in
// internal/services are subsets of it, so both implementations satisfy
// every service directly.
type Store interface {
	AddUser(u *models.User) error
	GetUser(id string) (*models.User, error)
	FindUserByEmail(email string) (*models.User, error)
	ListUsers() ([]*models.User, error)

	AddQuestion(q *models.Question) error
	GetQuestion(id string) (*models.Question, error)
	UpdateQuestion(q *models.Question) error
	DeleteQuestion(id string) (bool, error)
	ListQuestions() ([]*models.Question, error)
	ListCategories() ([]string, error)

	AddAssignment(a *models.Assignment) error
	GetAssignment(id string) (*models.Assignment, error)
	FindAssignment(questionID, userID string) (*models.Assignment, error)
	ListAssignmentsByUser(userID string) ([]*models.Assignment, error)

	// CompleteAssignment stores the response and the completed assignment
	// as one atomic write; on error neither is visible.
	CompleteAssignment(a *models.Assignment, r *models.Response) error
	GetResponseByAssignment(assignmentID string) (*models.Response, error)
}

var _ Store = (*MemoryStore)(nil)
