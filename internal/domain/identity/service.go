package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/casetrack/casetrack/internal/platform/auth"
	"github.com/casetrack/casetrack/internal/platform/session"
)

// ErrInvalidCredentials is returned for any authentication failure; callers
// must not learn whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ValidRoles lists the roles an account may hold.
var ValidRoles = map[string]bool{
	auth.RoleAdmin:   true,
	auth.RoleMRStaff: true,
	auth.RoleCA:      true,
}

type Service struct {
	users  UserRepository
	issuer *auth.TokenIssuer
	errs   *session.ErrorStore
}

// NewService creates the identity service. errs may be nil when no Redis is
// configured; login error persistence is then disabled.
func NewService(users UserRepository, issuer *auth.TokenIssuer, errs *session.ErrorStore) *Service {
	return &Service{users: users, issuer: issuer, errs: errs}
}

// Login authenticates the user and returns a signed token. Failures are
// recorded in the session error store (with TTL) so the client can recover
// the message after a redirect; a later success clears it.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		s.recordFailure(ctx, username)
		return "", nil, ErrInvalidCredentials
	}
	if !user.Active {
		s.recordFailure(ctx, username)
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		_ = s.users.RecordLoginFailure(ctx, user.ID)
		s.recordFailure(ctx, username)
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID.String(), user.DisplayName, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	_ = s.users.RecordLoginSuccess(ctx, user.ID)
	if s.errs != nil {
		_ = s.errs.Clear(ctx, username)
	}
	user.FailedLoginCount = 0

	return token, user, nil
}

func (s *Service) recordFailure(ctx context.Context, username string) {
	if s.errs != nil {
		_ = s.errs.Record(ctx, username, ErrInvalidCredentials.Error())
	}
}

// LastLoginError returns the stored failure for a username, if any.
func (s *Service) LastLoginError(ctx context.Context, username string) (*session.LoginError, error) {
	if s.errs == nil {
		return nil, session.ErrNotFound
	}
	return s.errs.Get(ctx, username)
}

// CreateUser registers a staff account with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, username, password, displayName, role string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if !ValidRoles[role] {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Role:         role,
		Active:       true,
	}
	if user.DisplayName == "" {
		user.DisplayName = username
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

// SetUserActive enables or disables an account. Disabled accounts cannot log
// in; their tokens expire on their own.
func (s *Service) SetUserActive(ctx context.Context, id uuid.UUID, active bool) (*User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}
	user.Active = active
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
