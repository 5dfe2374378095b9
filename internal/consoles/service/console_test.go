package service

import (
	"context"
	"fmt"
	"io"
	"testing"

	consoleserrors "gamehall/internal/consoles/errors"
	"gamehall/pkg/config"
	apperrors "gamehall/pkg/errors"
	"gamehall/pkg/logger"
	"gamehall/pkg/model"
)

type mockConsoleRepo struct {
	consoles []*model.Console
}

func (m *mockConsoleRepo) FindByID(ctx context.Context, id int64) (*model.Console, error) {
	for _, c := range m.consoles {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", consoleserrors.ErrNotFound, id)
}

func (m *mockConsoleRepo) FindAll(ctx context.Context) ([]*model.Console, error) {
	return m.consoles, nil
}

func (m *mockConsoleRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := m.FindByID(ctx, id)
	return err == nil, nil
}

func newTestService(repo *mockConsoleRepo) ConsoleService {
	cfg := &config.Config{Log: logger.New(logger.Config{Output: io.Discard})}
	return NewConsoleService(repo, cfg)
}

func TestGetAll(t *testing.T) {
	repo := &mockConsoleRepo{consoles: []*model.Console{
		{ID: 1, Name: "PS 1"},
		{ID: 2, Name: "PS 2"},
	}}
	svc := newTestService(repo)

	consoles, err := svc.GetAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(consoles) != 2 {
		t.Errorf("expected 2 consoles, got %d", len(consoles))
	}
}

func TestGetByID(t *testing.T) {
	repo := &mockConsoleRepo{consoles: []*model.Console{{ID: 1, Name: "PS 1"}}}
	svc := newTestService(repo)

	console, err := svc.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if console.Name != "PS 1" {
		t.Errorf("name = %q, want %q", console.Name, "PS 1")
	}

	_, err = svc.GetByID(context.Background(), 9)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}

	_, err = svc.GetByID(context.Background(), 0)
	appErr = apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != "INVALID_INPUT" {
		t.Errorf("expected INVALID_INPUT for non-positive id, got %v", err)
	}
}

func TestExists(t *testing.T) {
	repo := &mockConsoleRepo{consoles: []*model.Console{{ID: 1, Name: "PS 1"}}}
	svc := newTestService(repo)

	for _, tc := range []struct {
		id   int64
		want bool
	}{
		{1, true},
		{2, false},
		{0, false},
		{-1, false},
	} {
		got, err := svc.Exists(context.Background(), tc.id)
		if err != nil {
			t.Fatalf("unexpected error for id %d: %v", tc.id, err)
		}
		if got != tc.want {
			t.Errorf("Exists(%d) = %v, want %v", tc.id, got, tc.want)
		}
	}
}
