package identity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/casetrack/casetrack/internal/platform/auth"
)

// -- Mock repository --

type mockUserRepo struct {
	users map[uuid.UUID]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return fmt.Errorf("duplicate username")
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return u, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockUserRepo) Update(_ context.Context, user *User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) RecordLoginSuccess(_ context.Context, id uuid.UUID) error {
	if u, ok := m.users[id]; ok {
		u.FailedLoginCount = 0
		now := time.Now()
		u.LastLogin = &now
	}
	return nil
}

func (m *mockUserRepo) RecordLoginFailure(_ context.Context, id uuid.UUID) error {
	if u, ok := m.users[id]; ok {
		u.FailedLoginCount++
	}
	return nil
}

func (m *mockUserRepo) List(_ context.Context, limit, offset int) ([]*User, int, error) {
	var result []*User
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, len(result), nil
}

// -- Tests --

func newTestService() (*Service, *mockUserRepo) {
	repo := newMockUserRepo()
	issuer := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	return NewService(repo, issuer, nil), repo
}

func TestCreateUser(t *testing.T) {
	svc, _ := newTestService()

	user, err := svc.CreateUser(context.Background(), "alice", "password123", "Alice Tan", auth.RoleMRStaff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	if !user.Active {
		t.Error("expected new users to be active")
	}
	if user.PasswordHash == "password123" {
		t.Error("expected password to be hashed")
	}
}

func TestCreateUser_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "", "password123", "", auth.RoleCA); err == nil {
		t.Error("expected error for empty username")
	}
	if _, err := svc.CreateUser(ctx, "bob", "short", "", auth.RoleCA); err == nil {
		t.Error("expected error for short password")
	}
	if _, err := svc.CreateUser(ctx, "bob", "password123", "", "superuser"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestLogin_Success(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	svc.CreateUser(ctx, "alice", "password123", "Alice Tan", auth.RoleMRStaff)

	token, user, err := svc.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Error("expected a token")
	}
	if user.Username != "alice" {
		t.Errorf("expected alice, got %s", user.Username)
	}
	if user.FailedLoginCount != 0 {
		t.Errorf("expected reset failure count, got %d", user.FailedLoginCount)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	created, _ := svc.CreateUser(ctx, "alice", "password123", "", auth.RoleCA)

	_, _, err := svc.Login(ctx, "alice", "wrong-password")
	if err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if repo.users[created.ID].FailedLoginCount != 1 {
		t.Errorf("expected failure count 1, got %d", repo.users[created.ID].FailedLoginCount)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _ := newTestService()

	_, _, err := svc.Login(context.Background(), "ghost", "password123")
	if err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_InactiveUser(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	created, _ := svc.CreateUser(ctx, "alice", "password123", "", auth.RoleCA)
	repo.users[created.ID].Active = false

	_, _, err := svc.Login(ctx, "alice", "password123")
	if err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for inactive user, got %v", err)
	}
}

func TestLogin_EmptyInput(t *testing.T) {
	svc, _ := newTestService()

	if _, _, err := svc.Login(context.Background(), "", ""); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestListUsers(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	svc.CreateUser(ctx, "alice", "password123", "", auth.RoleMRStaff)
	svc.CreateUser(ctx, "bob", "password123", "", auth.RoleCA)

	users, total, err := svc.ListUsers(ctx, 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(users) != 2 {
		t.Errorf("expected 2 users, got %d", total)
	}
}

func TestGetUserByID(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, _ := svc.CreateUser(ctx, "alice", "password123", "", auth.RoleMRStaff)

	user, err := svc.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("expected alice, got %s", user.Username)
	}

	if _, err := svc.GetUserByID(ctx, uuid.New()); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestSetUserActive_BlocksLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, _ := svc.CreateUser(ctx, "alice", "password123", "", auth.RoleMRStaff)

	user, err := svc.SetUserActive(ctx, created.ID, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Active {
		t.Error("expected user to be deactivated")
	}

	if _, _, err := svc.Login(ctx, "alice", "password123"); err != ErrInvalidCredentials {
		t.Errorf("expected deactivated user to be refused, got %v", err)
	}

	if _, err := svc.SetUserActive(ctx, uuid.New(), false); err == nil {
		t.Error("expected error for unknown id")
	}
}
