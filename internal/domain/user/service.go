package user

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service encapsulates account registration, authentication and profile
// management.
type Service struct {
	users Repository
	cost  int
	now   func() time.Time
}

// NewService creates a user Service. cost is the bcrypt work factor; pass 0
// for the library default.
func NewService(users Repository, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{users: users, cost: cost, now: time.Now}
}

// Register creates a new account with a bcrypt-hashed password. The email is
// normalised to lower case and must be unused.
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return u, nil
}

// Authenticate verifies the credentials and returns the matching account.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, errors.Wrap(err, "get user")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidLogin
	}
	return u, nil
}

// Get returns the account with the given ID.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile changes the account's name, email, and optionally password.
// Empty fields keep their current value.
func (s *Service) UpdateProfile(ctx context.Context, id, name, email, password string) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		u.Name = name
	}
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" && email != u.Email {
		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, ErrNotFound) {
			return nil, errors.Wrap(err, "check email")
		}
		u.Email = email
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
		if err != nil {
			return nil, errors.Wrap(err, "hash password")
		}
		u.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, errors.Wrap(err, "update user")
	}
	return u, nil
}

// SetAdmin grants or revokes the admin role. Admin only; the handler
// enforces the caller's role.
func (s *Service) SetAdmin(ctx context.Context, id string, isAdmin bool) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.IsAdmin = isAdmin
	if err := s.users.Update(ctx, u); err != nil {
		return nil, errors.Wrap(err, "update user")
	}
	return u, nil
}

// Delete removes the account with the given ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

// List returns every account. Admin only.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.users.List(ctx)
}
