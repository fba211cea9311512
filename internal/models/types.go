package models

import "time"

// Role gates route access. It is fixed at account creation.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// QuestionType selects how an answer is captured and validated.
type QuestionType string

const (
	QuestionText           QuestionType = "text"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionCheckbox       QuestionType = "checkbox"
)

// AssignmentStatus tracks one user's progress on one assigned question.
// There is no transition out of completed.
type AssignmentStatus string

const (
	StatusAssigned   AssignmentStatus = "assigned"
	StatusInProgress AssignmentStatus = "in_progress"
	StatusCompleted  AssignmentStatus = "completed"
)

// User is an account. PassHash never leaves the server.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	PassHash  []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Question is an admin-authored prompt. Options are present only for the
// two choice types and must hold at least two entries. Category is a free
// text label; the category list is derived by distinct-value extraction.
type Question struct {
	ID        string       `json:"id"`
	Text      string       `json:"text"`
	Type      QuestionType `json:"type"`
	Options   []string     `json:"options,omitempty"`
	Category  string       `json:"category"`
	CreatedAt time.Time    `json:"createdAt"`
	CreatedBy string       `json:"createdBy"`
}

// Assignment links one question to one user.
type Assignment struct {
	ID          string           `json:"id"`
	QuestionID  string           `json:"questionId"`
	UserID      string           `json:"userId"`
	Status      AssignmentStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	CompletedAt *time.Time       `json:"completedAt"`
}

// Response is the answer submitted against one assignment. Checkbox
// answers travel as a single comma-joined string; consumers split and
// trim. A response is immutable once created.
type Response struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignmentId"`
	Answer       string    `json:"answer"`
	SubmittedAt  time.Time `json:"submittedAt"`
}
