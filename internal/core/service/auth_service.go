package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
	"github.com/entregas/delivery-marketplace/internal/core/ports"
)

// AuthService implements registration and token issuance.
type AuthService struct {
	users     ports.UserRepository
	clock     ports.Clock
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(users ports.UserRepository, clock ports.Clock, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{users: users, clock: clock, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	// Email is the only optional field.
	if in.Name == "" || in.Surname == "" || in.PhoneNumber == "" || in.Username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: complete the required fields", domain.ErrValidation)
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
		Roles:        []string{domain.RoleUser},
		State:        true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return s.users.Create(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.login(ctx, username, password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) DashboardLogin(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.login(ctx, username, password)
	if err != nil {
		return "", nil, err
	}

	identity := domain.NewIdentity(user.ID, user.Roles)
	if !identity.HasRole(domain.RoleAdmin) && !identity.HasRole(domain.RoleSuperAdmin) {
		return "", nil, domain.ErrForbidden
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) login(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, strings.ToLower(username))
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.State {
		return nil, domain.ErrForbidden
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := s.clock.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
