package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gamehall/internal/bookings/repository"
	"gamehall/internal/bookings/validator"
	"gamehall/pkg/clock"
	"gamehall/pkg/config"
	apperrors "gamehall/pkg/errors"
	"gamehall/pkg/kafka"
	"gamehall/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// ConsoleRegistry is the slice of the console domain the ledger needs.
type ConsoleRegistry interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// MemberAccounts is the slice of the user domain the ledger needs: existence
// checks before a reservation and the playtime credit inside it.
type MemberAccounts interface {
	Exists(ctx context.Context, id int64) (bool, error)
	AddPlaytime(ctx context.Context, userID int64, hours float64) (float64, error)
}

// EventPublisher emits booking events after a successful commit.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type BookingService interface {
	Reserve(ctx context.Context, req *model.ReserveRequest) (*model.BookingReceipt, error)
	GetAll(ctx context.Context, userID *int64, limit int, offset int64) ([]*model.BookingView, int64, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.ConsoleLockRepository
	validator *validator.BookingValidator
	consoles  ConsoleRegistry
	users     MemberAccounts
	publisher EventPublisher
	cfg       *config.Config
}

// NewBookingService wires the reservation ledger. publisher may be nil, in
// which case no events are emitted.
func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.ConsoleLockRepository,
	validator *validator.BookingValidator,
	consoles ConsoleRegistry,
	users MemberAccounts,
	publisher EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: validator,
		consoles:  consoles,
		users:     users,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Reserve books a console for the half-open window [start, end) and credits
// the accrued hours to the member. Checks run in a fixed order: malformed
// input, interval ordering, console existence, user existence, then the
// overlap check. The overlap check, the insert and the playtime credit share
// one transaction under a per-console advisory lock, so either all three land
// or none do.
func (s *bookingService) Reserve(ctx context.Context, req *model.ReserveRequest) (*model.BookingReceipt, error) {
	start, end, err := s.validator.ValidateReserve(req)
	if err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return nil, apperrors.InvalidInput(err.Error())
	}

	if !end.After(start) {
		return nil, apperrors.InvalidInterval("end_time must be strictly after start_time")
	}

	consoleExists, err := s.consoles.Exists(ctx, req.ConsoleID)
	if err != nil {
		return nil, err
	}
	if !consoleExists {
		return nil, apperrors.NotFoundWithID("console", req.ConsoleID)
	}

	userExists, err := s.users.Exists(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !userExists {
		return nil, apperrors.NotFoundWithID("user", req.UserID)
	}

	lockID, err := s.acquireConsoleLock(ctx, req.ConsoleID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseConsoleLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release console lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	bookingID, err := s.repo.NextID(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	booking := &model.Booking{
		ID:        bookingID,
		UserID:    req.UserID,
		ConsoleID: req.ConsoleID,
		StartTime: start,
		EndTime:   end,
	}
	hours := s.cfg.Accrual.Delta(start, end, req.Hours)

	var playtime float64
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindOverlapping(sessCtx, req.ConsoleID, start, end)
		if err != nil {
			return apperrors.Internal("Failed to check existing bookings", err)
		}
		if existing != nil {
			return apperrors.Conflict(fmt.Sprintf(
				"Console is already booked for an overlapping window (%s - %s)",
				clock.Format(existing.StartTime),
				clock.Format(existing.EndTime),
			))
		}

		if err := s.repo.Insert(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}

		playtime, err = s.users.AddPlaytime(sessCtx, req.UserID, hours)
		if err != nil {
			return apperrors.Internal("Failed to credit playtime", err)
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to reserve console",
			"console_id", req.ConsoleID,
			"user_id", req.UserID,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Reservation created",
		"id", booking.ID,
		"console_id", booking.ConsoleID,
		"user_id", booking.UserID,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
		"hours_accrued", hours,
	)

	s.publishReserved(ctx, booking, hours)

	return &model.BookingReceipt{
		Booking:      booking,
		HoursAccrued: hours,
		Playtime:     playtime,
	}, nil
}

func (s *bookingService) GetAll(ctx context.Context, userID *int64, limit int, offset int64) ([]*model.BookingView, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var views []*model.BookingView
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, userID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		views, errFind = s.repo.FindAllViews(ctx, userID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return views, count, nil
}

// acquireConsoleLock takes the per-console advisory lock. The lock covers the
// whole console rather than a slot: two requests for different windows on the
// same console still race on the overlap check, so they serialize here.
func (s *bookingService) acquireConsoleLock(ctx context.Context, consoleID int64) (string, error) {
	lockID := fmt.Sprintf("console_lock_%d", consoleID)

	lock := &model.ConsoleLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.ConsoleLockTTL),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This console is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire console lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseConsoleLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

// publishReserved emits a booking.created event. Best effort: the reservation
// already committed, a publish failure is logged and swallowed.
func (s *bookingService) publishReserved(ctx context.Context, booking *model.Booking, hours float64) {
	if s.publisher == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(fmt.Sprintf("console-%d", booking.ConsoleID)).
		WithValue(map[string]any{
			"booking_id":    booking.ID,
			"user_id":       booking.UserID,
			"console_id":    booking.ConsoleID,
			"start_time":    clock.Format(booking.StartTime),
			"end_time":      clock.Format(booking.EndTime),
			"hours_accrued": hours,
		}).
		WithEventType("booking.created").
		WithSource("gamehall").
		Build()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event", "booking_id", booking.ID, "error", err)
	}
}
