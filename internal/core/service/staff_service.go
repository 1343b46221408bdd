package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
	"github.com/entregas/delivery-marketplace/internal/core/ports"
)

// EmployeeService manages back-office staff records. The permission set on an
// employee gates which shipping-stage transitions that staff member may invoke.
type EmployeeService struct {
	employees   ports.EmployeeRepository
	users       ports.UserRepository
	locals      ports.LocalRepository
	permissions ports.PermissionRepository
	clock       ports.Clock
	logger      zerolog.Logger
}

func NewEmployeeService(
	employees ports.EmployeeRepository,
	users ports.UserRepository,
	locals ports.LocalRepository,
	permissions ports.PermissionRepository,
	clock ports.Clock,
	logger zerolog.Logger,
) *EmployeeService {
	return &EmployeeService{
		employees:   employees,
		users:       users,
		locals:      locals,
		permissions: permissions,
		clock:       clock,
		logger:      logger,
	}
}

// validateEmployeeInput checks the referenced user, local, and permission tags exist.
func (s *EmployeeService) validateEmployeeInput(ctx context.Context, in ports.EmployeeInput) error {
	if in.UserID == "" || in.LocalID == "" {
		return fmt.Errorf("%w: complete all fields", domain.ErrValidation)
	}
	if _, err := s.users.FindByID(ctx, in.UserID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("%w: unknown user", domain.ErrValidation)
		}
		return err
	}
	if _, err := s.locals.FindByID(ctx, in.LocalID); err != nil {
		if errors.Is(err, domain.ErrLocalNotFound) {
			return fmt.Errorf("%w: unknown local", domain.ErrValidation)
		}
		return err
	}
	for _, p := range in.Permissions {
		if _, err := s.permissions.FindByName(ctx, p); err != nil {
			if errors.Is(err, domain.ErrPermissionNotFound) {
				return fmt.Errorf("%w: unknown permission %q", domain.ErrValidation, p)
			}
			return err
		}
	}
	return nil
}

func (s *EmployeeService) CreateEmployee(ctx context.Context, actor domain.Identity, in ports.EmployeeInput) (*domain.Employee, error) {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return nil, domain.ErrForbidden
	}
	if err := s.validateEmployeeInput(ctx, in); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	emp := &domain.Employee{
		User:        in.UserID,
		Local:       in.LocalID,
		Permissions: in.Permissions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.employees.Create(ctx, emp); err != nil {
		return nil, err
	}
	s.logger.Info().Str("employee_id", emp.ID).Str("user", in.UserID).Str("local", in.LocalID).Msg("employee created")
	return emp, nil
}

func (s *EmployeeService) GetEmployee(ctx context.Context, actor domain.Identity, id string) (*domain.Employee, error) {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return nil, domain.ErrForbidden
	}
	return s.employees.FindByID(ctx, id)
}

func (s *EmployeeService) ListEmployees(ctx context.Context, actor domain.Identity) ([]*domain.Employee, error) {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return nil, domain.ErrForbidden
	}
	return s.employees.FindAll(ctx)
}

func (s *EmployeeService) UpdateEmployee(ctx context.Context, actor domain.Identity, id string, in ports.EmployeeInput) error {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return domain.ErrForbidden
	}
	if err := s.validateEmployeeInput(ctx, in); err != nil {
		return err
	}

	emp, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return err
	}
	emp.User = in.UserID
	emp.Local = in.LocalID
	emp.Permissions = in.Permissions
	emp.UpdatedAt = s.clock.Now()

	return s.employees.Update(ctx, id, emp)
}

func (s *EmployeeService) DeleteEmployee(ctx context.Context, actor domain.Identity, id string) error {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return domain.ErrForbidden
	}
	return s.employees.Delete(ctx, id)
}

// LocalService manages branch offices.
type LocalService struct {
	locals ports.LocalRepository
	clock  ports.Clock
	logger zerolog.Logger
}

func NewLocalService(locals ports.LocalRepository, clock ports.Clock, logger zerolog.Logger) *LocalService {
	return &LocalService{locals: locals, clock: clock, logger: logger}
}

func (s *LocalService) CreateLocal(ctx context.Context, actor domain.Identity, in ports.LocalInput) (*domain.Local, error) {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return nil, domain.ErrForbidden
	}
	if in.Country == "" || in.City == "" || in.Direction == "" || in.PhoneNumber == "" {
		return nil, fmt.Errorf("%w: complete all fields", domain.ErrValidation)
	}

	now := s.clock.Now()
	local := &domain.Local{
		Country:     in.Country,
		City:        in.City,
		Direction:   in.Direction,
		PhoneNumber: in.PhoneNumber,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.locals.Create(ctx, local); err != nil {
		return nil, err
	}
	return local, nil
}

func (s *LocalService) GetLocal(ctx context.Context, actor domain.Identity, id string) (*domain.Local, error) {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return nil, domain.ErrForbidden
	}
	return s.locals.FindByID(ctx, id)
}

func (s *LocalService) ListLocals(ctx context.Context, actor domain.Identity) ([]*domain.Local, error) {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return nil, domain.ErrForbidden
	}
	return s.locals.FindAll(ctx)
}

func (s *LocalService) UpdateLocal(ctx context.Context, actor domain.Identity, id string, in ports.LocalInput) error {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return domain.ErrForbidden
	}
	if in.Country == "" || in.City == "" || in.Direction == "" || in.PhoneNumber == "" {
		return fmt.Errorf("%w: complete all fields", domain.ErrValidation)
	}

	local, err := s.locals.FindByID(ctx, id)
	if err != nil {
		return err
	}
	local.Country = in.Country
	local.City = in.City
	local.Direction = in.Direction
	local.PhoneNumber = in.PhoneNumber
	local.UpdatedAt = s.clock.Now()

	return s.locals.Update(ctx, id, local)
}

func (s *LocalService) DeleteLocal(ctx context.Context, actor domain.Identity, id string) error {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return domain.ErrForbidden
	}
	return s.locals.Delete(ctx, id)
}

// PermissionService manages the permission tag registry.
type PermissionService struct {
	permissions ports.PermissionRepository
	clock       ports.Clock
}

func NewPermissionService(permissions ports.PermissionRepository, clock ports.Clock) *PermissionService {
	return &PermissionService{permissions: permissions, clock: clock}
}

func (s *PermissionService) CreatePermission(ctx context.Context, actor domain.Identity, name string) (*domain.Permission, error) {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return nil, domain.ErrForbidden
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	perm := &domain.Permission{Name: name, CreatedAt: s.clock.Now()}
	if err := s.permissions.Create(ctx, perm); err != nil {
		return nil, err
	}
	return perm, nil
}

func (s *PermissionService) ListPermissions(ctx context.Context, actor domain.Identity) ([]*domain.Permission, error) {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return nil, domain.ErrForbidden
	}
	return s.permissions.FindAll(ctx)
}

func (s *PermissionService) DeletePermission(ctx context.Context, actor domain.Identity, id string) error {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return domain.ErrForbidden
	}
	return s.permissions.Delete(ctx, id)
}
