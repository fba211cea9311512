package services

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/askwell/askwell/internal/models"
)

type AuthStore interface {
	FindUserByEmail(email string) (*models.User, error)
	GetUser(id string) (*models.User, error)
	ListUsers() ([]*models.User, error)
	AddUser(u *models.User) error
}

// TokenSigner produces a bearer token for the given identity claims.
type TokenSigner func(uid string, role models.Role, name, email string, ttl time.Duration) (string, error)

type AuthService struct {
	store     AuthStore
	now       func() time.Time
	idGen     func(prefix string, n int) string
	signToken TokenSigner
	tokenTTL  time.Duration
}

// AuthResult is what login/register hand back: the account plus a signed
// bearer token the client persists.
type AuthResult struct {
	User  *models.User
	Token string
}

func NewAuthService(store AuthStore, signer TokenSigner) *AuthService {
	return &AuthService{
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
		idGen:     func(prefix string, n int) string { return prefix + shortID(n) },
		signToken: signer,
		tokenTTL:  30 * 24 * time.Hour,
	}
}

// Register creates a user-role account. Role is fixed here; admins are
// provisioned through seeding, never through this endpoint.
func (s *AuthService) Register(name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("name, email and password are required")
	}
	if len(password) < 6 {
		return nil, NewInvalidError("password must be at least 6 characters")
	}
	existing, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("email already registered")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:        s.idGen("u", 7),
		Name:      name,
		Email:     email,
		Role:      models.RoleUser,
		PassHash:  hash,
		CreatedAt: s.now(),
	}
	if err := s.store.AddUser(u); err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("email and password are required")
	}
	u, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NewUnauthorizedError("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword(u.PassHash, []byte(password)); err != nil {
		return nil, NewUnauthorizedError("invalid email or password")
	}
	return s.issue(u)
}

// Me restores the account behind a validated token's uid claim.
func (s *AuthService) Me(uid string) (*models.User, error) {
	u, err := s.store.GetUser(uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NewUnauthorizedError("account no longer exists")
	}
	return u, nil
}

func (s *AuthService) ListUsers() ([]*models.User, error) {
	return s.store.ListUsers()
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(u.ID, u.Role, u.Name, u.Email, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token}, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}
