package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/askwell/askwell/internal/api"
	"github.com/askwell/askwell/internal/models"
	"github.com/askwell/askwell/internal/services"
)

// SQLiteStore persists the full api.Store surface in one SQLite file.
// Question options are stored as a JSON array in a nullable text column.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Open opens (or creates) the SQLite database at path and runs the schema
// migration.
func Open(path string) (*SQLiteStore, error) {
	// _foreign_keys in the DSN turns the pragma on for every pooled
	// connection; the cascade deletes depend on it.
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000&_foreign_keys=on", filepath.ToSlash(path))
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := RunMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	store, err := NewSQLiteStore(sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func encodeOptions(options []string) (sql.NullString, error) {
	if len(options) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(options)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeOptions(ns sql.NullString) []string {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		log.Printf("sqlite store: decode options: %v", err)
		return nil
	}
	return out
}

func (s *SQLiteStore) AddUser(u *models.User) error {
	_, err := s.db.Exec(
		`INSERT INTO users (id, name, email, role, pass_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, string(u.Role), u.PassHash, u.CreatedAt,
	)
	if isUniqueViolation(err) {
		return services.NewConflictError("email already registered")
	}
	return err
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func (s *SQLiteStore) GetUser(id string) (*models.User, error) {
	return s.scanUser(s.db.QueryRow(
		`SELECT id, name, email, role, pass_hash, created_at FROM users WHERE id = ?`, id))
}

func (s *SQLiteStore) FindUserByEmail(email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRow(
		`SELECT id, name, email, role, pass_hash, created_at FROM users WHERE email = ? COLLATE NOCASE`, email))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var role string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.PassHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}

func (s *SQLiteStore) ListUsers() ([]*models.User, error) {
	rows, err := s.db.Query(
		`SELECT id, name, email, role, pass_hash, created_at FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*models.User{}
	for rows.Next() {
		var u models.User
		var role string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &role, &u.PassHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = models.Role(role)
		out = append(out, &u)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddQuestion(q *models.Question) error {
	opts, err := encodeOptions(q.Options)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO questions (id, text, type, options, category, created_at, created_by) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.Text, string(q.Type), opts, q.Category, q.CreatedAt, q.CreatedBy,
	)
	return err
}

func (s *SQLiteStore) GetQuestion(id string) (*models.Question, error) {
	row := s.db.QueryRow(
		`SELECT id, text, type, options, category, created_at, created_by FROM questions WHERE id = ?`, id)
	q, err := scanQuestion(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return q, err
}

func scanQuestion(scan func(dest ...any) error) (*models.Question, error) {
	var q models.Question
	var qtype string
	var opts sql.NullString
	if err := scan(&q.ID, &q.Text, &qtype, &opts, &q.Category, &q.CreatedAt, &q.CreatedBy); err != nil {
		return nil, err
	}
	q.Type = models.QuestionType(qtype)
	q.Options = decodeOptions(opts)
	return &q, nil
}

func (s *SQLiteStore) UpdateQuestion(q *models.Question) error {
	opts, err := encodeOptions(q.Options)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`UPDATE questions SET text = ?, type = ?, options = ?, category = ? WHERE id = ?`,
		q.Text, string(q.Type), opts, q.Category, q.ID,
	)
	return err
}

// DeleteQuestion relies on the ON DELETE CASCADE references to remove the
// question's assignments and their responses with it.
func (s *SQLiteStore) DeleteQuestion(id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) ListQuestions() ([]*models.Question, error) {
	rows, err := s.db.Query(
		`SELECT id, text, type, options, category, created_at, created_by FROM questions ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*models.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListCategories() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT category FROM questions ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddAssignment(a *models.Assignment) error {
	_, err := s.db.Exec(
		`INSERT INTO assignments (id, question_id, user_id, status, created_at, completed_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.QuestionID, a.UserID, string(a.Status), a.CreatedAt, nullTime(a.CompletedAt),
	)
	return err
}

func (s *SQLiteStore) GetAssignment(id string) (*models.Assignment, error) {
	row := s.db.QueryRow(
		`SELECT id, question_id, user_id, status, created_at, completed_at FROM assignments WHERE id = ?`, id)
	a, err := scanAssignment(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (s *SQLiteStore) FindAssignment(questionID, userID string) (*models.Assignment, error) {
	row := s.db.QueryRow(
		`SELECT id, question_id, user_id, status, created_at, completed_at FROM assignments WHERE question_id = ? AND user_id = ?`,
		questionID, userID)
	a, err := scanAssignment(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func scanAssignment(scan func(dest ...any) error) (*models.Assignment, error) {
	var a models.Assignment
	var status string
	var completed sql.NullTime
	if err := scan(&a.ID, &a.QuestionID, &a.UserID, &status, &a.CreatedAt, &completed); err != nil {
		return nil, err
	}
	a.Status = models.AssignmentStatus(status)
	if completed.Valid {
		t := completed.Time
		a.CompletedAt = &t
	}
	return &a, nil
}

func (s *SQLiteStore) ListAssignmentsByUser(userID string) ([]*models.Assignment, error) {
	rows, err := s.db.Query(
		`SELECT id, question_id, user_id, status, created_at, completed_at FROM assignments WHERE user_id = ? ORDER BY created_at, id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*models.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CompleteAssignment inserts the response and flips the assignment in one
// transaction; a failure on either statement rolls both back, so a retry
// never runs into a half-written submission.
func (s *SQLiteStore) CompleteAssignment(a *models.Assignment, r *models.Response) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		`INSERT INTO responses (id, assignment_id, answer, submitted_at) VALUES (?, ?, ?, ?)`,
		r.ID, r.AssignmentID, r.Answer, r.SubmittedAt,
	); err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return services.NewConflictError("assignment already completed")
		}
		return err
	}
	if _, err := tx.Exec(
		`UPDATE assignments SET status = ?, completed_at = ? WHERE id = ?`,
		string(a.Status), nullTime(a.CompletedAt), a.ID,
	); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetResponseByAssignment(assignmentID string) (*models.Response, error) {
	var r models.Response
	err := s.db.QueryRow(
		`SELECT id, assignment_id, answer, submitted_at FROM responses WHERE assignment_id = ?`, assignmentID).
		Scan(&r.ID, &r.AssignmentID, &r.Answer, &r.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

var _ api.Store = (*SQLiteStore)(nil)
