package services

import (
	"math"
	"sort"
	"time"

	"github.com/askwell/askwell/internal/models"
)

type ReportStore interface {
	ListUsers() ([]*models.User, error)
	ListQuestions() ([]*models.Question, error)
	ListCategories() ([]string, error)
	ListAssignmentsByUser(userID string) ([]*models.Assignment, error)
	GetResponseByAssignment(assignmentID string) (*models.Response, error)
}

// AssignmentSummary is one user's standing on one question, as shown in
// the admin report.
type AssignmentSummary struct {
	QuestionID  string                  `json:"questionId"`
	UserID      string                  `json:"userId"`
	UserName    string                  `json:"userName"`
	UserEmail   string                  `json:"userEmail"`
	Status      models.AssignmentStatus `json:"status"`
	Answer      string                  `json:"answer,omitempty"`
	SubmittedAt *time.Time              `json:"submittedAt,omitempty"`
}

type CategoryProgress struct {
	Category       string `json:"category"`
	TotalAssigned  int    `json:"totalAssigned"`
	TotalCompleted int    `json:"totalCompleted"`
	Percentage     int    `json:"percentage"`
}

type UserProgress struct {
	UserID         string `json:"userId"`
	UserName       string `json:"userName"`
	UserEmail      string `json:"userEmail"`
	TotalAssigned  int    `json:"totalAssigned"`
	TotalCompleted int    `json:"totalCompleted"`
	Percentage     int    `json:"percentage"`
}

type GlobalProgress struct {
	TotalAssigned  int `json:"totalAssigned"`
	TotalCompleted int `json:"totalCompleted"`
	Percentage     int `json:"percentage"`
}

// ProgressReport joins every user's assignment list into the three admin
// report views: per-question summaries, per-category progress and per-user
// progress, plus the global counters.
type ProgressReport struct {
	QuestionAssignments map[string][]AssignmentSummary `json:"questionAssignments"`
	Categories          []CategoryProgress             `json:"categories"`
	Users               []UserProgress                 `json:"users"`
	Global              GlobalProgress                 `json:"global"`
}

// DashboardStats mirrors the admin dashboard's headline numbers.
type DashboardStats struct {
	Questions struct {
		Total      int `json:"total"`
		ByCategory []struct {
			Category  string             `json:"category"`
			Questions []*models.Question `json:"questions"`
		} `json:"byCategory"`
	} `json:"questions"`
	Assignments struct {
		Pending   int `json:"pending"`
		Completed int `json:"completed"`
	} `json:"assignments"`
	Responses struct {
		Pending   int `json:"pending"`
		Completed int `json:"completed"`
	} `json:"responses"`
}

// ExportRow is one flattened line of the assignment report.
type ExportRow struct {
	UserName         string
	UserEmail        string
	QuestionText     string
	QuestionCategory string
	QuestionType     models.QuestionType
	Status           models.AssignmentStatus
	Answer           string // the submitted answer, or "Not answered"
	SubmittedAt      string // formatted date, or "N/A"
}

const notAnswered = "Not answered"

type ReportService struct {
	store ReportStore
}

func NewReportService(store ReportStore) *ReportService {
	return &ReportService{store: store}
}

// Percentage treats an empty denominator as fully complete so that a
// category or user with nothing assigned never renders as 0% done.
func Percentage(completed, total int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// Progress walks every user's assignments once and accumulates the
// per-question, per-category, per-user and global views. The per-user
// fetches are independent and unordered.
func (s *ReportService) Progress() (*ProgressReport, error) {
	users, err := s.store.ListUsers()
	if err != nil {
		return nil, err
	}
	questions, err := s.store.ListQuestions()
	if err != nil {
		return nil, err
	}
	categories, err := s.store.ListCategories()
	if err != nil {
		return nil, err
	}
	questionByID := make(map[string]*models.Question, len(questions))
	for _, q := range questions {
		questionByID[q.ID] = q
	}

	report := &ProgressReport{QuestionAssignments: map[string][]AssignmentSummary{}}
	catTotals := map[string]*CategoryProgress{}
	for _, c := range categories {
		catTotals[c] = &CategoryProgress{Category: c}
	}

	for _, u := range users {
		as, err := s.store.ListAssignmentsByUser(u.ID)
		if err != nil {
			return nil, err
		}
		up := UserProgress{UserID: u.ID, UserName: u.Name, UserEmail: u.Email}
		for _, a := range as {
			q := questionByID[a.QuestionID]
			if q == nil {
				continue
			}
			summary := AssignmentSummary{
				QuestionID: q.ID,
				UserID:     u.ID,
				UserName:   u.Name,
				UserEmail:  u.Email,
				Status:     a.Status,
			}
			if a.Status == models.StatusCompleted {
				r, err := s.store.GetResponseByAssignment(a.ID)
				if err != nil {
					return nil, err
				}
				if r != nil {
					summary.Answer = r.Answer
					summary.SubmittedAt = a.CompletedAt
				}
			}
			report.QuestionAssignments[q.ID] = append(report.QuestionAssignments[q.ID], summary)

			cp := catTotals[q.Category]
			if cp == nil {
				cp = &CategoryProgress{Category: q.Category}
				catTotals[q.Category] = cp
			}
			cp.TotalAssigned++
			up.TotalAssigned++
			report.Global.TotalAssigned++
			if a.Status == models.StatusCompleted {
				cp.TotalCompleted++
				up.TotalCompleted++
				report.Global.TotalCompleted++
			}
		}
		up.Percentage = Percentage(up.TotalCompleted, up.TotalAssigned)
		report.Users = append(report.Users, up)
	}

	names := make([]string, 0, len(catTotals))
	for c := range catTotals {
		names = append(names, c)
	}
	sort.Strings(names)
	for _, c := range names {
		cp := catTotals[c]
		cp.Percentage = Percentage(cp.TotalCompleted, cp.TotalAssigned)
		report.Categories = append(report.Categories, *cp)
	}
	report.Global.Percentage = Percentage(report.Global.TotalCompleted, report.Global.TotalAssigned)
	return report, nil
}

// Stats feeds the admin dashboard headline cards.
func (s *ReportService) Stats() (*DashboardStats, error) {
	questions, err := s.store.ListQuestions()
	if err != nil {
		return nil, err
	}
	categories, err := s.store.ListCategories()
	if err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers()
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{}
	stats.Questions.Total = len(questions)
	for _, c := range categories {
		group := struct {
			Category  string             `json:"category"`
			Questions []*models.Question `json:"questions"`
		}{Category: c, Questions: []*models.Question{}}
		for _, q := range questions {
			if q.Category == c {
				group.Questions = append(group.Questions, q)
			}
		}
		stats.Questions.ByCategory = append(stats.Questions.ByCategory, group)
	}
	for _, u := range users {
		as, err := s.store.ListAssignmentsByUser(u.ID)
		if err != nil {
			return nil, err
		}
		for _, a := range as {
			if a.Status == models.StatusCompleted {
				stats.Assignments.Completed++
			} else {
				stats.Assignments.Pending++
			}
		}
	}
	stats.Responses.Completed = stats.Assignments.Completed
	stats.Responses.Pending = stats.Assignments.Pending
	return stats, nil
}

// ExportRows flattens the report for CSV/Excel/PDF serialization. Users
// with no assignments contribute no rows.
func (s *ReportService) ExportRows() ([]ExportRow, error) {
	users, err := s.store.ListUsers()
	if err != nil {
		return nil, err
	}
	questions, err := s.store.ListQuestions()
	if err != nil {
		return nil, err
	}
	questionByID := make(map[string]*models.Question, len(questions))
	for _, q := range questions {
		questionByID[q.ID] = q
	}

	rows := []ExportRow{}
	for _, u := range users {
		as, err := s.store.ListAssignmentsByUser(u.ID)
		if err != nil {
			return nil, err
		}
		for _, a := range as {
			q := questionByID[a.QuestionID]
			if q == nil {
				continue
			}
			row := ExportRow{
				UserName:         u.Name,
				UserEmail:        u.Email,
				QuestionText:     q.Text,
				QuestionCategory: q.Category,
				QuestionType:     q.Type,
				Status:           a.Status,
				Answer:           notAnswered,
				SubmittedAt:      "N/A",
			}
			if a.Status == models.StatusCompleted {
				r, err := s.store.GetResponseByAssignment(a.ID)
				if err != nil {
					return nil, err
				}
				if r != nil {
					row.Answer = r.Answer
					row.SubmittedAt = r.SubmittedAt.Format("2006-01-02")
				}
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}
