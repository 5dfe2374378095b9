package service

import (
	"context"
	"errors"

	consoleserrors "gamehall/internal/consoles/errors"
	"gamehall/internal/consoles/repository"
	"gamehall/pkg/config"
	apperrors "gamehall/pkg/errors"
	"gamehall/pkg/model"
)

// ConsoleService is the read-only registry of bookable consoles. The set is
// seeded once by the migration command; nothing here mutates it.
type ConsoleService interface {
	GetAll(ctx context.Context) ([]*model.Console, error)
	GetByID(ctx context.Context, id int64) (*model.Console, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type consoleService struct {
	repo repository.ConsoleRepository
	cfg  *config.Config
}

func NewConsoleService(repo repository.ConsoleRepository, cfg *config.Config) ConsoleService {
	return &consoleService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *consoleService) GetAll(ctx context.Context) ([]*model.Console, error) {
	consoles, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list consoles", "error", err)
		return nil, apperrors.Internal("Failed to retrieve consoles", err)
	}

	return consoles, nil
}

func (s *consoleService) GetByID(ctx context.Context, id int64) (*model.Console, error) {
	if id <= 0 {
		return nil, apperrors.InvalidInput("Console ID must be positive")
	}

	console, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, consoleserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("console", id)
		}
		return nil, apperrors.Internal("Failed to retrieve console", err)
	}

	return console, nil
}

func (s *consoleService) Exists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}

	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		s.cfg.Log.Error("Failed to check console existence", "console_id", id, "error", err)
		return false, apperrors.Internal("Failed to check console existence", err)
	}

	return exists, nil
}
