package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budgetlink/internal/dto"
	"budgetlink/internal/models"
	"budgetlink/internal/repository"
	"budgetlink/pkg/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserRepo is the slice of the user repository the directory needs.
type UserRepo interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByCode(ctx context.Context, code string) (*models.User, error)
	List(ctx context.Context, nameFilter string, role models.Role) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CodeGenerator interface {
	Generate() string
}

// UserService is the user directory: identity CRUD, linking-code issuance
// and authentication.
type UserService struct {
	users           UserRepo
	codes           CodeGenerator
	jwtManager      *auth.JWTManager
	maxCodeAttempts int
	logger          *zap.Logger
}

func NewUserService(users UserRepo, codes CodeGenerator, jwtManager *auth.JWTManager, maxCodeAttempts int, logger *zap.Logger) *UserService {
	if maxCodeAttempts <= 0 {
		maxCodeAttempts = 10
	}
	return &UserService{
		users:           users,
		codes:           codes,
		jwtManager:      jwtManager,
		maxCodeAttempts: maxCodeAttempts,
		logger:          logger,
	}
}

func (s *UserService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}
	role := models.Role(req.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, req.Role)
	}

	if existing, err := s.users.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, ErrUserExists
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  hashedPassword,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if role == models.RoleConsumer {
		code, err := s.uniqueCode(ctx)
		if err != nil {
			return nil, err
		}
		user.Code = &code
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)

	return userToResponse(user), nil
}

// uniqueCode draws linking codes until the directory reports no holder,
// bounded by maxCodeAttempts.
func (s *UserService) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < s.maxCodeAttempts; attempt++ {
		code := s.codes.Generate()
		_, err := s.users.GetByCode(ctx, code)
		if errors.Is(err, repository.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("lookup user by code: %w", err)
		}
	}
	return "", ErrCodeSpaceExhausted
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return userToResponse(user), nil
}

func (s *UserService) List(ctx context.Context, nameFilter string, role string) ([]*dto.UserResponse, error) {
	users, err := s.users.List(ctx, nameFilter, models.Role(role))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	resp := make([]*dto.UserResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, userToResponse(user))
	}
	return resp, nil
}

func (s *UserService) Update(ctx context.Context, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", ErrValidation)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = hashed
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return userToResponse(user), nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("delete user: %w", err)
	}

	return userToResponse(user), nil
}

// Authenticate verifies the credentials of an active user and issues an
// access token.
func (s *UserService) Authenticate(ctx context.Context, req *dto.AuthRequest) (*dto.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !user.IsActive || !auth.CheckPasswordHash(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.jwtManager.GenerateToken(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &dto.AuthResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtManager.GetTokenDuration().Seconds()),
		User:        *userToResponse(user),
	}, nil
}

func userToResponse(user *models.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:       user.ID.String(),
		Name:     user.Name,
		Email:    user.Email,
		Role:     string(user.Role),
		Code:     user.Code,
		IsActive: user.IsActive,
	}
}
