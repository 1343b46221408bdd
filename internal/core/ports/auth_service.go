package ports

import (
	"context"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
)

// SignupInput carries the public registration fields.
type SignupInput struct {
	Name        string
	Surname     string
	PhoneNumber string
	Email       string
	Username    string
	Password    string
}

// AuthService implements account registration and token issuance.
type AuthService interface {
	// Signup registers a USER_ROLE account.
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	// Login authenticates and returns a signed bearer token. Soft-deleted
	// accounts are rejected.
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	// DashboardLogin is Login restricted to staff roles.
	DashboardLogin(ctx context.Context, username, password string) (string, *domain.User, error)
}

// ProfileInput carries the self-service profile fields.
type ProfileInput struct {
	Name     string
	Surname  string
	Email    string
	Username string
}

// UserService covers account administration and self-service profile updates.
type UserService interface {
	// CreateUser registers an ADMIN_ROLE account. Super-admin only.
	CreateUser(ctx context.Context, actor domain.Identity, in SignupInput) (*domain.User, error)
	GetUser(ctx context.Context, actor domain.Identity, id string) (*domain.User, error)
	ListUsers(ctx context.Context, actor domain.Identity) ([]*domain.User, error)
	UpdateUser(ctx context.Context, actor domain.Identity, id string, in SignupInput) error
	DeleteUser(ctx context.Context, actor domain.Identity, id string) error

	UpdateProfile(ctx context.Context, subject domain.Identity, in ProfileInput) error
	ChangePassword(ctx context.Context, subject domain.Identity, currentPassword, newPassword string) error
	// ChangeProfileImage stores the new image and returns its reference.
	ChangeProfileImage(ctx context.Context, subject domain.Identity, data []byte, name string) (string, error)
}
