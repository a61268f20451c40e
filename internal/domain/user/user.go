package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for user lookup and registration.
var (
	ErrNotFound      = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrInvalidLogin  = errors.New("invalid email or password")
	ErrMissingFields = errors.New("name, email and password are required")
)

// User is a registered account. PasswordHash is a bcrypt digest and never
// leaves the domain layer.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Repository defines persistence operations for user accounts.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]User, error)
}
