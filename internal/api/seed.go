package api

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/askwell/askwell/internal/models"
)

// SeedDemoData provisions the demo admin and user accounts plus a handful
// of sample questions. It is a no-op on a store that already has users, so
// restarts with seeding enabled stay idempotent.
func SeedDemoData(store Store) error {
	existing, err := store.ListUsers()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	admin := &models.User{ID: "u-admin", Name: "admin", Email: "admin@admin.com", Role: models.RoleAdmin, PassHash: hash, CreatedAt: now}
	user := &models.User{ID: "u-demo", Name: "user", Email: "user@user.com", Role: models.RoleUser, PassHash: hash, CreatedAt: now.Add(time.Second)}
	if err := store.AddUser(admin); err != nil {
		return err
	}
	if err := store.AddUser(user); err != nil {
		return err
	}

	questions := []*models.Question{
		{
			ID:   "q-satisfaction",
			Text: "How satisfied are you with our service?",
			Type: models.QuestionMultipleChoice,
			Options: []string{
				"Very Satisfied", "Satisfied", "Neutral", "Dissatisfied", "Very Dissatisfied",
			},
			Category: "Feedback",
		},
		{
			ID:       "q-improvements",
			Text:     "What features would you like to see improved?",
			Type:     models.QuestionText,
			Category: "Feedback",
		},
		{
			ID:       "q-services",
			Text:     "Which of the following services have you used?",
			Type:     models.QuestionCheckbox,
			Options:  []string{"Customer Support", "Technical Support", "Sales", "Billing"},
			Category: "Usage",
		},
		{
			ID:       "q-recommend",
			Text:     "How likely are you to recommend our product to others?",
			Type:     models.QuestionMultipleChoice,
			Options:  []string{"Very Likely", "Likely", "Neutral", "Unlikely", "Very Unlikely"},
			Category: "Feedback",
		},
		{
			ID:       "q-comments",
			Text:     "Please provide any additional comments or suggestions.",
			Type:     models.QuestionText,
			Category: "Additional",
		},
	}
	for i, q := range questions {
		q.CreatedAt = now.Add(time.Duration(i) * time.Second)
		q.CreatedBy = admin.ID
		if err := store.AddQuestion(q); err != nil {
			return err
		}
	}
	return nil
}
