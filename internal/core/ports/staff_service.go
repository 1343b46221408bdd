package ports

import (
	"context"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
)

// EmployeeInput joins a user to a local with a permission set.
type EmployeeInput struct {
	UserID      string
	LocalID     string
	Permissions []string
}

// EmployeeService manages back-office staff records. All operations are
// super-admin only.
type EmployeeService interface {
	CreateEmployee(ctx context.Context, actor domain.Identity, in EmployeeInput) (*domain.Employee, error)
	GetEmployee(ctx context.Context, actor domain.Identity, id string) (*domain.Employee, error)
	ListEmployees(ctx context.Context, actor domain.Identity) ([]*domain.Employee, error)
	UpdateEmployee(ctx context.Context, actor domain.Identity, id string, in EmployeeInput) error
	DeleteEmployee(ctx context.Context, actor domain.Identity, id string) error
}

// LocalInput carries the branch office fields.
type LocalInput struct {
	Country     string
	City        string
	Direction   string
	PhoneNumber string
}

// LocalService manages branch offices. All operations are super-admin only.
type LocalService interface {
	CreateLocal(ctx context.Context, actor domain.Identity, in LocalInput) (*domain.Local, error)
	GetLocal(ctx context.Context, actor domain.Identity, id string) (*domain.Local, error)
	ListLocals(ctx context.Context, actor domain.Identity) ([]*domain.Local, error)
	UpdateLocal(ctx context.Context, actor domain.Identity, id string, in LocalInput) error
	DeleteLocal(ctx context.Context, actor domain.Identity, id string) error
}

// PermissionService manages the permission tag registry. Super-admin only.
type PermissionService interface {
	CreatePermission(ctx context.Context, actor domain.Identity, name string) (*domain.Permission, error)
	ListPermissions(ctx context.Context, actor domain.Identity) ([]*domain.Permission, error)
	DeletePermission(ctx context.Context, actor domain.Identity, id string) error
}
