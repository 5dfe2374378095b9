package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"gamehall/internal/bookings/validator"
	"gamehall/pkg/accrual"
	"gamehall/pkg/config"
	apperrors "gamehall/pkg/errors"
	mongotx "gamehall/pkg/db/mongo"
	"gamehall/pkg/kafka"
	"gamehall/pkg/logger"
	"gamehall/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockBookingRepo struct {
	nextIDFn          func(ctx context.Context) (int64, error)
	insertFn          func(ctx context.Context, booking *model.Booking) error
	findOverlappingFn func(ctx context.Context, consoleID int64, start, end time.Time) (*model.Booking, error)
	findAllViewsFn    func(ctx context.Context, userID *int64, limit int, offset int64) ([]*model.BookingView, error)
	countFn           func(ctx context.Context, userID *int64) (int64, error)

	inserted []*model.Booking
}

func (m *mockBookingRepo) NextID(ctx context.Context) (int64, error) {
	if m.nextIDFn != nil {
		return m.nextIDFn(ctx)
	}
	return 1, nil
}

func (m *mockBookingRepo) Insert(ctx context.Context, booking *model.Booking) error {
	if m.insertFn != nil {
		if err := m.insertFn(ctx, booking); err != nil {
			return err
		}
	}
	m.inserted = append(m.inserted, booking)
	return nil
}

func (m *mockBookingRepo) FindOverlapping(ctx context.Context, consoleID int64, start, end time.Time) (*model.Booking, error) {
	if m.findOverlappingFn != nil {
		return m.findOverlappingFn(ctx, consoleID, start, end)
	}
	return nil, nil
}

func (m *mockBookingRepo) FindAllViews(ctx context.Context, userID *int64, limit int, offset int64) ([]*model.BookingView, error) {
	if m.findAllViewsFn != nil {
		return m.findAllViewsFn(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (m *mockBookingRepo) Count(ctx context.Context, userID *int64) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockLockRepo struct {
	createFn func(ctx context.Context, lock *model.ConsoleLock) (*model.ConsoleLock, error)
	created  []string
	deleted  []string
}

func (m *mockLockRepo) Create(ctx context.Context, lock *model.ConsoleLock) (*model.ConsoleLock, error) {
	if m.createFn != nil {
		return m.createFn(ctx, lock)
	}
	m.created = append(m.created, lock.ID)
	return lock, nil
}

func (m *mockLockRepo) Delete(ctx context.Context, lockID string) error {
	m.deleted = append(m.deleted, lockID)
	return nil
}

type mockConsoleRegistry struct {
	existsFn func(ctx context.Context, id int64) (bool, error)
}

func (m *mockConsoleRegistry) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return true, nil
}

type mockMemberAccounts struct {
	existsFn func(ctx context.Context, id int64) (bool, error)

	playtime map[int64]float64
	credits  []float64
}

func (m *mockMemberAccounts) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return true, nil
}

func (m *mockMemberAccounts) AddPlaytime(ctx context.Context, userID int64, hours float64) (float64, error) {
	if m.playtime == nil {
		m.playtime = map[int64]float64{}
	}
	m.playtime[userID] += hours
	m.credits = append(m.credits, hours)
	return m.playtime[userID], nil
}

type mockPublisher struct {
	published []kafka.Message
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, msg)
	return nil
}

type fixture struct {
	repo      *mockBookingRepo
	lockRepo  *mockLockRepo
	consoles  *mockConsoleRegistry
	users     *mockMemberAccounts
	publisher *mockPublisher
	svc       BookingService
}

func newFixture(t *testing.T, policy accrual.Policy) *fixture {
	t.Helper()

	cfg := &config.Config{
		Accrual:        policy,
		ConsoleLockTTL: 10 * time.Second,
		Log:            logger.New(logger.Config{Output: io.Discard}),
	}

	f := &fixture{
		repo:      &mockBookingRepo{},
		lockRepo:  &mockLockRepo{},
		consoles:  &mockConsoleRegistry{},
		users:     &mockMemberAccounts{},
		publisher: &mockPublisher{},
	}
	f.svc = NewBookingService(
		f.repo,
		f.lockRepo,
		validator.NewBookingValidator(cfg.Log),
		f.consoles,
		f.users,
		f.publisher,
		cfg,
	)
	return f
}

func reserveReq(userID, consoleID int64, start, end string) *model.ReserveRequest {
	return &model.ReserveRequest{
		UserID:    userID,
		ConsoleID: consoleID,
		StartTime: start,
		EndTime:   end,
	}
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code, err)
	}
}

func TestReserveSuccessAccruesFlooredHours(t *testing.T) {
	f := newFixture(t, accrual.DefaultPolicy())

	receipt, err := f.svc.Reserve(context.Background(), reserveReq(7, 1, "2026-01-10 16:00:00", "2026-01-10 18:00:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.repo.inserted) != 1 {
		t.Fatalf("expected exactly one insert, got %d", len(f.repo.inserted))
	}
	if receipt.HoursAccrued != 2 {
		t.Errorf("expected 2 hours accrued, got %v", receipt.HoursAccrued)
	}
	if receipt.Playtime != 2 {
		t.Errorf("expected playtime total 2, got %v", receipt.Playtime)
	}
	if receipt.Booking.ID != 1 {
		t.Errorf("expected booking id 1, got %d", receipt.Booking.ID)
	}
	if len(f.publisher.published) != 1 {
		t.Errorf("expected one published event, got %d", len(f.publisher.published))
	}
	if len(f.lockRepo.deleted) != 1 {
		t.Errorf("expected lock release, got %d deletes", len(f.lockRepo.deleted))
	}
}

func TestReserveOverlapConflict(t *testing.T) {
	f := newFixture(t, accrual.DefaultPolicy())

	existingStart, _ := time.Parse("2006-01-02 15:04:05", "2026-01-10 16:00:00")
	existingEnd, _ := time.Parse("2006-01-02 15:04:05", "2026-01-10 18:00:00")
	existing := &model.Booking{ID: 1, ConsoleID: 1, StartTime: existingStart, EndTime: existingEnd}

	f.repo.findOverlappingFn = func(ctx context.Context, consoleID int64, start, end time.Time) (*model.Booking, error) {
		if existing.Overlaps(start, end) {
			return existing, nil
		}
		return nil, nil
	}

	_, err := f.svc.Reserve(context.Background(), reserveReq(7, 1, "2026-01-10 17:00:00", "2026-01-10 19:00:00"))
	wantCode(t, err, "CONFLICT")

	if len(f.repo.inserted) != 0 {
		t.Errorf("conflicting reservation must not insert, got %d inserts", len(f.repo.inserted))
	}
	if len(f.users.credits) != 0 {
		t.Errorf("conflicting reservation must not credit playtime, got %v", f.users.credits)
	}
	if len(f.publisher.published) != 0 {
		t.Errorf("conflicting reservation must not publish events")
	}
	if len(f.lockRepo.deleted) != 1 {
		t.Errorf("lock must be released after a conflict")
	}
}

func TestReserveBackToBackAllowed(t *testing.T) {
	f := newFixture(t, accrual.DefaultPolicy())

	existingStart, _ := time.Parse("2006-01-02 15:04:05", "2026-01-10 16:00:00")
	existingEnd, _ := time.Parse("2006-01-02 15:04:05", "2026-01-10 18:00:00")
	existing := &model.Booking{ID: 1, ConsoleID: 1, StartTime: existingStart, EndTime: existingEnd}

	f.repo.findOverlappingFn = func(ctx context.Context, consoleID int64, start, end time.Time) (*model.Booking, error) {
		if existing.Overlaps(start, end) {
			return existing, nil
		}
		return nil, nil
	}

	receipt, err := f.svc.Reserve(context.Background(), reserveReq(7, 1, "2026-01-10 18:00:00", "2026-01-10 19:00:00"))
	if err != nil {
		t.Fatalf("back-to-back booking must be accepted, got %v", err)
	}
	if receipt.HoursAccrued != 1 {
		t.Errorf("expected 1 hour accrued, got %v", receipt.HoursAccrued)
	}
}

func TestReserveSameWindowOtherConsole(t *testing.T) {
	f := newFixture(t, accrual.DefaultPolicy())

	f.repo.findOverlappingFn = func(ctx context.Context, consoleID int64, start, end time.Time) (*model.Booking, error) {
		if consoleID == 1 {
			t.Fatalf("overlap check must target the requested console")
		}
		return nil, nil
	}

	if _, err := f.svc.Reserve(context.Background(), reserveReq(7, 2, "2026-01-10 16:00:00", "2026-01-10 18:00:00")); err != nil {
		t.Fatalf("same window on another console must be accepted, got %v", err)
	}
}

func TestReserveInvalidInterval(t *testing.T) {
	f := newFixture(t, accrual.DefaultPolicy())

	cases := []struct {
		name  string
		start string
		end   string
	}{
		{"inverted", "2026-01-10 18:00:00", "2026-01-10 16:00:00"},
		{"zero length", "2026-01-10 16:00:00", "2026-01-10 16:00:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Reserve(context.Background(), reserveReq(7, 1, tc.start, tc.end))
			wantCode(t, err, "INVALID_INTERVAL")
		})
	}

	if len(f.repo.inserted) != 0 || len(f.users.credits) != 0 {
		t.Errorf("invalid intervals must leave no trace")
	}
}

func TestReserveMalformedInput(t *testing.T) {
	f := newFixture(t, accrual.DefaultPolicy())

	negative := -1.0

	cases := []struct {
		name string
		req  *model.ReserveRequest
	}{
		{"missing user", reserveReq(0, 1, "2026-01-10 16:00:00", "2026-01-10 18:00:00")},
		{"missing console", reserveReq(7, 0, "2026-01-10 16:00:00", "2026-01-10 18:00:00")},
		{"empty start", reserveReq(7, 1, "", "2026-01-10 18:00:00")},
		{"garbage timestamp", reserveReq(7, 1, "not a time", "2026-01-10 18:00:00")},
		{"rfc3339 timestamp", reserveReq(7, 1, "2026-01-10T16:00:00Z", "2026-01-10 18:00:00")},
		{"negative hours", &model.ReserveRequest{
			UserID: 7, ConsoleID: 1,
			StartTime: "2026-01-10 16:00:00", EndTime: "2026-01-10 18:00:00",
			Hours: &negative,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Reserve(context.Background(), tc.req)
			wantCode(t, err, "INVALID_INPUT")
		})
	}
}

func TestReserveMalformedBeforeInterval(t *testing.T) {
	f := newFixture(t, accrual.DefaultPolicy())

	// Inverted window AND a missing console id: the malformed field wins.
	_, err := f.svc.Reserve(context.Background(), reserveReq(7, 0, "2026-01-10 18:00:00", "2026-01-10 16:00:00"))
	wantCode(t, err, "INVALID_INPUT")
}

func TestReserveUnknownConsole(t *testing.T) {
	f := newFixture(t, accrual.DefaultPolicy())
	f.consoles.existsFn = func(ctx context.Context, id int64) (bool, error) { return false, nil }

	_, err := f.svc.Reserve(context.Background(), reserveReq(7, 99, "2026-01-10 16:00:00", "2026-01-10 18:00:00"))
	wantCode(t, err, "NOT_FOUND")
	if !strings.Contains(err.Error(), "console") {
		t.Errorf("expected console not-found message, got %q", err.Error())
	}
}

func TestReserveUnknownUser(t *testing.T) {
	f := newFixture(t, accrual.DefaultPolicy())
	f.users.existsFn = func(ctx context.Context, id int64) (bool, error) { return false, nil }

	_, err := f.svc.Reserve(context.Background(), reserveReq(99, 1, "2026-01-10 16:00:00", "2026-01-10 18:00:00"))
	wantCode(t, err, "NOT_FOUND")
	if !strings.Contains(err.Error(), "user") {
		t.Errorf("expected user not-found message, got %q", err.Error())
	}
}

func TestReserveUnknownConsoleCheckedBeforeUser(t *testing.T) {
	f := newFixture(t, accrual.DefaultPolicy())
	f.consoles.existsFn = func(ctx context.Context, id int64) (bool, error) { return false, nil }
	f.users.existsFn = func(ctx context.Context, id int64) (bool, error) {
		t.Fatal("user existence must not be checked when the console is unknown")
		return false, nil
	}

	_, err := f.svc.Reserve(context.Background(), reserveReq(99, 99, "2026-01-10 16:00:00", "2026-01-10 18:00:00"))
	wantCode(t, err, "NOT_FOUND")
}

func TestReserveLockContention(t *testing.T) {
	f := newFixture(t, accrual.DefaultPolicy())

	f.lockRepo.createFn = func(ctx context.Context, lock *model.ConsoleLock) (*model.ConsoleLock, error) {
		return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	}

	_, err := f.svc.Reserve(context.Background(), reserveReq(7, 1, "2026-01-10 16:00:00", "2026-01-10 18:00:00"))
	wantCode(t, err, "CONFLICT")

	if len(f.repo.inserted) != 0 {
		t.Errorf("contended reservation must not insert")
	}
}

func TestReserveInsertFailureCreditsNothing(t *testing.T) {
	f := newFixture(t, accrual.DefaultPolicy())

	f.repo.insertFn = func(ctx context.Context, booking *model.Booking) error {
		return errors.New("write failed")
	}

	_, err := f.svc.Reserve(context.Background(), reserveReq(7, 1, "2026-01-10 16:00:00", "2026-01-10 18:00:00"))
	wantCode(t, err, "INTERNAL_ERROR")

	if len(f.users.credits) != 0 {
		t.Errorf("failed insert must not credit playtime, got %v", f.users.credits)
	}
	if len(f.publisher.published) != 0 {
		t.Errorf("failed insert must not publish events")
	}
}

func TestReserveExplicitHoursOverride(t *testing.T) {
	f := newFixture(t, accrual.DefaultPolicy())

	five := 5.0
	req := reserveReq(7, 1, "2026-01-10 16:00:00", "2026-01-10 18:00:00")
	req.Hours = &five

	receipt, err := f.svc.Reserve(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.HoursAccrued != 5 {
		t.Errorf("explicit hours must override the derived value, got %v", receipt.HoursAccrued)
	}
}

func TestReserveFractionalPolicy(t *testing.T) {
	f := newFixture(t, accrual.Policy{Mode: accrual.ModeFractional, MinimumHours: 0.5})

	receipt, err := f.svc.Reserve(context.Background(), reserveReq(7, 1, "2026-01-10 16:00:00", "2026-01-10 17:30:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.HoursAccrued != 1.5 {
		t.Errorf("expected 1.5 hours under fractional accrual, got %v", receipt.HoursAccrued)
	}
}

func TestReserveFractionalSubMinimumClamped(t *testing.T) {
	f := newFixture(t, accrual.Policy{Mode: accrual.ModeFractional, MinimumHours: 0.5})

	receipt, err := f.svc.Reserve(context.Background(), reserveReq(7, 1, "2026-01-10 16:00:00", "2026-01-10 16:10:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.HoursAccrued != 0.5 {
		t.Errorf("a 10-minute window must credit the 0.5 minimum, got %v", receipt.HoursAccrued)
	}
	if receipt.Playtime != 0.5 {
		t.Errorf("expected playtime total 0.5, got %v", receipt.Playtime)
	}
}

func TestReserveSubHourFlooredToMinimum(t *testing.T) {
	f := newFixture(t, accrual.DefaultPolicy())

	receipt, err := f.svc.Reserve(context.Background(), reserveReq(7, 1, "2026-01-10 16:00:00", "2026-01-10 16:30:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.HoursAccrued != 1 {
		t.Errorf("sub-hour windows accrue the minimum of 1, got %v", receipt.HoursAccrued)
	}
}

func TestReservePublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t, accrual.DefaultPolicy())
	f.publisher.err = errors.New("broker down")

	if _, err := f.svc.Reserve(context.Background(), reserveReq(7, 1, "2026-01-10 16:00:00", "2026-01-10 18:00:00")); err != nil {
		t.Fatalf("publish failure must not fail the reservation, got %v", err)
	}
}

func TestGetAllPassesFilterAndNormalizes(t *testing.T) {
	f := newFixture(t, accrual.DefaultPolicy())

	var gotUser *int64
	var gotLimit int
	f.repo.findAllViewsFn = func(ctx context.Context, userID *int64, limit int, offset int64) ([]*model.BookingView, error) {
		gotUser = userID
		gotLimit = limit
		return []*model.BookingView{{ID: 1, Username: "alice", Console: "PS 1"}}, nil
	}
	f.repo.countFn = func(ctx context.Context, userID *int64) (int64, error) { return 1, nil }

	userID := int64(7)
	views, total, err := f.svc.GetAll(context.Background(), &userID, -5, -3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(views) != 1 {
		t.Fatalf("expected one view, got %d (total %d)", len(views), total)
	}
	if gotUser == nil || *gotUser != 7 {
		t.Errorf("user filter not passed through")
	}
	if gotLimit <= 0 {
		t.Errorf("limit must be normalized to a positive value, got %d", gotLimit)
	}
}
