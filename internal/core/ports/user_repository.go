package ports

import (
	"context"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
// Username and phone number carry unique indexes; violations surface as
// domain.ErrUserExists.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindAll(ctx context.Context) ([]*domain.User, error)
	// FindRoles returns the role names of the subject (role-gate lookup).
	FindRoles(ctx context.Context, id string) ([]string, error)
	// Summaries resolves ids to reduced projections for dashboard expansion.
	Summaries(ctx context.Context, ids []string) (map[string]domain.UserSummary, error)
	Update(ctx context.Context, id string, u *domain.User) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// RoleCache is a read-through cache in front of UserRepository.FindRoles.
// A miss returns (nil, false, nil).
type RoleCache interface {
	Get(ctx context.Context, subjectID string) ([]string, bool, error)
	Set(ctx context.Context, subjectID string, roles []string) error
	Invalidate(ctx context.Context, subjectID string) error
}

// EmployeeRepository defines persistence operations for back-office staff.
type EmployeeRepository interface {
	Create(ctx context.Context, e *domain.Employee) error
	FindByID(ctx context.Context, id string) (*domain.Employee, error)
	// FindByUser returns the employee record of a user, or domain.ErrEmployeeNotFound.
	FindByUser(ctx context.Context, userID string) (*domain.Employee, error)
	FindAll(ctx context.Context) ([]*domain.Employee, error)
	Update(ctx context.Context, id string, e *domain.Employee) error
	Delete(ctx context.Context, id string) error
}

// LocalRepository defines persistence operations for branch offices.
// Phone number carries a unique index; violations surface as domain.ErrLocalExists.
type LocalRepository interface {
	Create(ctx context.Context, l *domain.Local) error
	FindByID(ctx context.Context, id string) (*domain.Local, error)
	FindAll(ctx context.Context) ([]*domain.Local, error)
	Update(ctx context.Context, id string, l *domain.Local) error
	Delete(ctx context.Context, id string) error
}

// PermissionRepository manages the permission tag registry.
type PermissionRepository interface {
	Create(ctx context.Context, p *domain.Permission) error
	FindByID(ctx context.Context, id string) (*domain.Permission, error)
	FindByName(ctx context.Context, name string) (*domain.Permission, error)
	FindAll(ctx context.Context) ([]*domain.Permission, error)
	Delete(ctx context.Context, id string) error
}
