package service

import (
	"context"
	"errors"

	userserrors "gamehall/internal/users/errors"
	"gamehall/internal/users/repository"
	"gamehall/internal/users/validator"
	"gamehall/pkg/config"
	apperrors "gamehall/pkg/errors"
	"gamehall/pkg/model"

	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, creds *model.Credentials) (*model.Profile, error)
	Login(ctx context.Context, creds *model.Credentials) (*model.Profile, error)
	GetProfile(ctx context.Context, username string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, username string, update *model.ProfileUpdate) error
	Exists(ctx context.Context, id int64) (bool, error)
	AddPlaytime(ctx context.Context, userID int64, req *model.PlaytimeRequest) (float64, error)
	GetPlaytime(ctx context.Context, userID int64) (float64, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	cfg       *config.Config
}

func NewUserService(repo repository.UserRepository, validator *validator.UserValidator, cfg *config.Config) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *userService) Register(ctx context.Context, creds *model.Credentials) (*model.Profile, error) {
	if err := s.validator.ValidateCredentials(creds); err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		s.cfg.Log.Error("Failed to hash password", "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	user := &model.User{
		Username:     creds.Username,
		PasswordHash: string(hash),
		Email:        creds.Email,
		Phone:        creds.Phone,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateUsername) {
			return nil, apperrors.Conflict("Username already taken")
		}
		s.cfg.Log.Error("Failed to create user", "username", creds.Username, "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	s.cfg.Log.Info("User registered", "id", user.ID, "username", user.Username)

	return profileOf(user), nil
}

func (s *userService) Login(ctx context.Context, creds *model.Credentials) (*model.Profile, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, apperrors.InvalidInput("Username and password are required")
	}

	user, err := s.repo.FindByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			// Same response as a wrong password so usernames cannot be probed.
			return nil, apperrors.Unauthorized("Invalid username or password")
		}
		s.cfg.Log.Error("Failed to look up user", "username", creds.Username, "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, apperrors.Unauthorized("Invalid username or password")
	}

	return profileOf(user), nil
}

func (s *userService) GetProfile(ctx context.Context, username string) (*model.Profile, error) {
	if username == "" {
		return nil, apperrors.InvalidInput("Username cannot be empty")
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("user", username)
		}
		return nil, apperrors.Internal("Failed to retrieve profile", err)
	}

	return profileOf(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, username string, update *model.ProfileUpdate) error {
	if username == "" {
		return apperrors.InvalidInput("Username cannot be empty")
	}
	if err := s.validator.ValidateProfileUpdate(update); err != nil {
		return apperrors.Validation(err.Error(), nil)
	}

	if err := s.repo.UpdateProfile(ctx, username, update); err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("user", username)
		}
		s.cfg.Log.Error("Failed to update profile", "username", username, "error", err)
		return apperrors.Internal("Failed to update profile", err)
	}

	return nil
}

func (s *userService) Exists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}

	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		s.cfg.Log.Error("Failed to check user existence", "user_id", id, "error", err)
		return false, apperrors.Internal("Failed to check user existence", err)
	}

	return exists, nil
}

func (s *userService) AddPlaytime(ctx context.Context, userID int64, req *model.PlaytimeRequest) (float64, error) {
	if userID <= 0 {
		return 0, apperrors.InvalidInput("User ID must be positive")
	}
	// Non-positive quantities on the direct endpoint are malformed input,
	// not a field-shape problem.
	if err := s.validator.ValidatePlaytime(req); err != nil {
		return 0, apperrors.InvalidInput(err.Error())
	}

	total, err := s.repo.AddPlaytime(ctx, userID, req.Hours)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return 0, apperrors.NotFoundWithID("user", userID)
		}
		s.cfg.Log.Error("Failed to add playtime", "user_id", userID, "error", err)
		return 0, apperrors.Internal("Failed to add playtime", err)
	}

	s.cfg.Log.Info("Playtime added", "user_id", userID, "hours", req.Hours, "total", total)

	return total, nil
}

func (s *userService) GetPlaytime(ctx context.Context, userID int64) (float64, error) {
	if userID <= 0 {
		return 0, apperrors.InvalidInput("User ID must be positive")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return 0, apperrors.NotFoundWithID("user", userID)
		}
		return 0, apperrors.Internal("Failed to retrieve playtime", err)
	}

	return user.Playtime, nil
}

func profileOf(user *model.User) *model.Profile {
	return &model.Profile{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Phone:    user.Phone,
		Playtime: user.Playtime,
	}
}
