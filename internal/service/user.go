package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/shareit/internal/apperr"
	"github.com/iliyamo/shareit/internal/model"
	"github.com/iliyamo/shareit/internal/repository"
	"github.com/iliyamo/shareit/internal/utils"
)

// NewUser is a registration request. Password is optional; users without
// one can only be identified through the trusted gateway header.
type NewUser struct {
	Name     string
	Email    string
	Password string
}

// UserService is the user directory.
type UserService struct {
	users      UserStore
	bcryptCost int
	clock      Clock
	logger     zerolog.Logger
}

func NewUserService(users UserStore, bcryptCost int, clock Clock, logger zerolog.Logger) *UserService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &UserService{
		users:      users,
		bcryptCost: bcryptCost,
		clock:      clock,
		logger:     logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *UserService) Create(ctx context.Context, in NewUser) (*model.User, error) {
	u := &model.User{
		Name:      strings.TrimSpace(in.Name),
		Email:     in.Email,
		CreatedAt: s.clock.Now(),
	}
	if in.Password != "" {
		hash, err := utils.HashPassword(in.Password, s.bcryptCost)
		if err != nil {
			return nil, apperr.Internal("hash password", err)
		}
		u.PasswordHash = hash
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("email %s is already registered", in.Email)
		}
		return nil, apperr.Internal("create user", err)
	}
	s.logger.Info().Uint64("user_id", u.ID).Msg("User registered")
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id uint64) (*model.User, error) {
	return requireUser(ctx, s.users, id)
}

func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	out, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list users", err)
	}
	return out, nil
}

// Update applies the present fields of patch. A blank name or email is a
// ValidationError; taking another user's email is a Conflict.
func (s *UserService) Update(ctx context.Context, id uint64, patch model.UserPatch) (*model.User, error) {
	u, err := requireUser(ctx, s.users, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperr.Validation("name cannot be blank")
	}
	if patch.Email != nil && strings.TrimSpace(*patch.Email) == "" {
		return nil, apperr.Validation("email cannot be blank")
	}
	patch.Apply(u)
	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("email %s is already registered", u.Email)
		}
		return nil, apperr.Internal("update user", err)
	}
	return u, nil
}

// Delete removes a user. Users still referenced by items, bookings,
// requests or comments cannot be deleted.
func (s *UserService) Delete(ctx context.Context, id uint64) error {
	err := s.users.Delete(ctx, id)
	switch {
	case err == nil:
		s.logger.Info().Uint64("user_id", id).Msg("User deleted")
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("User with id %d not found", id)
	case errors.Is(err, repository.ErrConflict):
		return apperr.Conflict("User with id %d is still referenced", id)
	}
	return apperr.Internal("delete user", err)
}

// Authenticate checks email and password and returns the user. Every
// failure is reported as the same Unauthorized error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, apperr.Internal("load user by email", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		s.logger.Warn().Uint64("user_id", u.ID).Msg("Failed login")
		return nil, apperr.Unauthorized("invalid credentials")
	}
	return u, nil
}
