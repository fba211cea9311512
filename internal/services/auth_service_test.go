package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/askwell/askwell/internal/models"
)

type authStubStore struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
}

func newAuthStubStore() *authStubStore {
	return &authStubStore{byEmail: map[string]*models.User{}, byID: map[string]*models.User{}}
}

func (s *authStubStore) FindUserByEmail(email string) (*models.User, error) {
	if u, ok := s.byEmail[strings.ToLower(email)]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *authStubStore) GetUser(id string) (*models.User, error) {
	if u, ok := s.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *authStubStore) ListUsers() ([]*models.User, error) {
	out := []*models.User{}
	for _, u := range s.byID {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (s *authStubStore) AddUser(u *models.User) error {
	if _, ok := s.byEmail[strings.ToLower(u.Email)]; ok {
		return errors.New("duplicate user")
	}
	cp := *u
	s.byEmail[strings.ToLower(u.Email)] = &cp
	s.byID[u.ID] = &cp
	return nil
}

func stubSigner(uid string, role models.Role, name, email string, ttl time.Duration) (string, error) {
	return "token:" + uid + ":" + string(role), nil
}

func TestAuthRegisterAndLogin(t *testing.T) {
	store := newAuthStubStore()
	svc := NewAuthService(store, stubSigner)
	svc.now = func() time.Time { return time.Unix(0, 0) }
	svc.idGen = func(prefix string, n int) string { return prefix + "1234567" }

	res, err := svc.Register("Jordan", "jordan@example.com", "secret1")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.User.ID != "u1234567" {
		t.Fatalf("unexpected user id %q", res.User.ID)
	}
	if res.User.Role != models.RoleUser {
		t.Fatalf("registration must create user-role accounts, got %q", res.User.Role)
	}
	if res.Token != "token:u1234567:user" {
		t.Fatalf("unexpected token %q", res.Token)
	}

	if _, err := svc.Register("Jordan", "jordan@example.com", "secret1"); err == nil {
		t.Fatalf("expected conflict on duplicate email")
	} else if se, ok := AsServiceError(err); !ok || se.Code != ErrorConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}

	login, err := svc.Login("jordan@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if login.Token == "" {
		t.Fatalf("expected token in login result")
	}

	if _, err := svc.Login("jordan@example.com", "wrong-pass"); err == nil {
		t.Fatalf("expected error for wrong password")
	} else if se, ok := AsServiceError(err); !ok || se.Message != "invalid email or password" {
		t.Fatalf("wrong password must not reveal which part failed, got %v", err)
	}
	if _, err := svc.Login("missing@example.com", "secret1"); err == nil {
		t.Fatalf("expected error for unknown email")
	} else if se, ok := AsServiceError(err); !ok || se.Message != "invalid email or password" {
		t.Fatalf("unknown email must not reveal which part failed, got %v", err)
	}
}

func TestAuthRegisterValidation(t *testing.T) {
	svc := NewAuthService(newAuthStubStore(), stubSigner)

	cases := []struct {
		name, email, password string
	}{
		{"", "a@b.com", "secret1"},
		{"Jordan", "", "secret1"},
		{"Jordan", "a@b.com", ""},
		{"Jordan", "a@b.com", "short"},
	}
	for _, c := range cases {
		if _, err := svc.Register(c.name, c.email, c.password); err == nil {
			t.Fatalf("expected validation error for %+v", c)
		} else if se, ok := AsServiceError(err); !ok || se.Code != ErrorInvalid {
			t.Fatalf("expected invalid code for %+v, got %v", c, err)
		}
	}

	if _, err := svc.Login("", ""); err == nil {
		t.Fatalf("expected validation error on empty login")
	}
}

func TestAuthMe(t *testing.T) {
	store := newAuthStubStore()
	svc := NewAuthService(store, stubSigner)

	res, err := svc.Register("Sam", "sam@example.com", "secret1")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	u, err := svc.Me(res.User.ID)
	if err != nil {
		t.Fatalf("Me returned error: %v", err)
	}
	if u.Email != "sam@example.com" {
		t.Fatalf("unexpected account %+v", u)
	}

	if _, err := svc.Me("gone"); err == nil {
		t.Fatalf("expected error for deleted account")
	} else if se, ok := AsServiceError(err); !ok || se.Code != ErrorUnauthorized {
		t.Fatalf("expected unauthorized code, got %v", err)
	}
}
