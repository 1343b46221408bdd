package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
	"github.com/entregas/delivery-marketplace/internal/core/ports"
)

// UserService covers super-admin account administration and self-service
// profile operations.
type UserService struct {
	users     ports.UserRepository
	files     ports.FileStore
	roleCache ports.RoleCache
	clock     ports.Clock
	logger    zerolog.Logger
}

func NewUserService(users ports.UserRepository, files ports.FileStore, roleCache ports.RoleCache, clock ports.Clock, logger zerolog.Logger) *UserService {
	return &UserService{users: users, files: files, roleCache: roleCache, clock: clock, logger: logger}
}

// CreateUser registers a staff (ADMIN_ROLE) account.
func (s *UserService) CreateUser(ctx context.Context, actor domain.Identity, in ports.SignupInput) (*domain.User, error) {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return nil, domain.ErrForbidden
	}
	if in.Name == "" || in.Surname == "" || in.PhoneNumber == "" || in.Email == "" || in.Username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: complete all fields", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &domain.User{
		Name:         in.Name,
		Surname:      in.Surname,
		PhoneNumber:  in.PhoneNumber,
		Email:        in.Email,
		Username:     strings.ToLower(in.Username),
		PasswordHash: string(hash),
		Roles:        []string{domain.RoleAdmin},
		State:        true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("staff account created")
	return created, nil
}

func (s *UserService) GetUser(ctx context.Context, actor domain.Identity, id string) (*domain.User, error) {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return nil, domain.ErrForbidden
	}
	return s.users.FindByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, actor domain.Identity) ([]*domain.User, error) {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return nil, domain.ErrForbidden
	}
	return s.users.FindAll(ctx)
}

func (s *UserService) UpdateUser(ctx context.Context, actor domain.Identity, id string, in ports.SignupInput) error {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return domain.ErrForbidden
	}
	if in.Name == "" || in.Surname == "" || in.PhoneNumber == "" || in.Username == "" {
		return fmt.Errorf("%w: complete all fields", domain.ErrValidation)
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.Name = in.Name
	user.Surname = in.Surname
	user.PhoneNumber = in.PhoneNumber
	user.Email = in.Email
	user.Username = strings.ToLower(in.Username)
	user.UpdatedAt = s.clock.Now()

	return s.users.Update(ctx, id, user)
}

func (s *UserService) DeleteUser(ctx context.Context, actor domain.Identity, id string) error {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return domain.ErrForbidden
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.roleCache.Invalidate(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("user_id", id).Msg("failed to invalidate role cache")
	}
	return nil
}

func (s *UserService) UpdateProfile(ctx context.Context, subject domain.Identity, in ports.ProfileInput) error {
	if in.Name == "" || in.Surname == "" || in.Username == "" {
		return fmt.Errorf("%w: complete all fields", domain.ErrValidation)
	}

	user, err := s.users.FindByID(ctx, subject.SubjectID)
	if err != nil {
		return err
	}
	user.Name = in.Name
	user.Surname = in.Surname
	user.Email = in.Email
	user.Username = strings.ToLower(in.Username)
	user.UpdatedAt = s.clock.Now()

	return s.users.Update(ctx, subject.SubjectID, user)
}

func (s *UserService) ChangePassword(ctx context.Context, subject domain.Identity, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: complete all fields", domain.ErrValidation)
	}

	user, err := s.users.FindByID(ctx, subject.SubjectID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, subject.SubjectID, string(hash))
}

func (s *UserService) ChangeProfileImage(ctx context.Context, subject domain.Identity, data []byte, name string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: image is required", domain.ErrValidation)
	}

	user, err := s.users.FindByID(ctx, subject.SubjectID)
	if err != nil {
		return "", err
	}

	ref, err := s.files.Store(ctx, data, name)
	if err != nil {
		return "", fmt.Errorf("change profile image: %w", err)
	}

	previous := user.Image
	user.Image = ref
	user.UpdatedAt = s.clock.Now()
	if err := s.users.Update(ctx, subject.SubjectID, user); err != nil {
		if rmErr := s.files.Remove(ctx, ref); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("image", ref).Msg("failed to remove orphaned image")
		}
		return "", err
	}

	if previous != "" {
		if rmErr := s.files.Remove(ctx, previous); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("image", previous).Msg("failed to remove replaced image")
		}
	}
	return ref, nil
}
