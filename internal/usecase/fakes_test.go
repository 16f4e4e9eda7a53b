package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"txapp-service/internal/domain/entity"
	"txapp-service/pkg/logger"
	"txapp-service/pkg/metrics"
)

var errStoreDown = errors.New("store unavailable")

func newTestMetrics() *metrics.Metrics {
	return metrics.NewMetrics("txapp_test", prometheus.NewRegistry())
}

func newTestLogger() logger.Logger {
	return logger.NewNopLogger()
}

func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2026-03-02 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

var (
	adminIdentity      = entity.NewIdentity(1, entity.RoleAdmin, 0)
	controllerIdentity = entity.NewIdentity(2, entity.RoleController, 0)
)

func driverIdentity(driverID uint) entity.Identity {
	return entity.NewIdentity(100+driverID, entity.RoleDriver, driverID)
}

type fakeShiftRepo struct {
	mu        sync.Mutex
	nextID    uint
	rows      map[uint]*entity.Shift
	updateErr error
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{rows: make(map[uint]*entity.Shift)}
}

func (f *fakeShiftRepo) put(s *entity.Shift) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s.ID = f.nextID
	f.rows[s.ID] = s.Clone()
}

func (f *fakeShiftRepo) CreateOpen(ctx context.Context, shift *entity.Shift) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.rows {
		if s.DriverID == shift.DriverID && s.IsOpen() {
			return entity.ErrShiftAlreadyOpen
		}
	}
	f.nextID++
	shift.ID = f.nextID
	f.rows[shift.ID] = shift.Clone()
	return nil
}

func (f *fakeShiftRepo) FindByID(ctx context.Context, id uint) (*entity.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return nil, entity.ErrShiftNotFound
	}
	return s.Clone(), nil
}

func (f *fakeShiftRepo) FindOpenByDriver(ctx context.Context, driverID uint) ([]*entity.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Shift
	for _, s := range f.rows {
		if s.DriverID == driverID && s.IsOpen() {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func (f *fakeShiftRepo) FindUnvalidated(ctx context.Context) ([]*entity.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Shift
	for _, s := range f.rows {
		if !s.Validated {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeShiftRepo) Update(ctx context.Context, shift *entity.Shift) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.rows[shift.ID]; !ok {
		return entity.ErrShiftNotFound
	}
	f.rows[shift.ID] = shift.Clone()
	return nil
}

func (f *fakeShiftRepo) get(id uint) *entity.Shift {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id].Clone()
}

type fakeTripRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*entity.Trip
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{rows: make(map[uint]*entity.Trip)}
}

func (f *fakeTripRepo) Create(ctx context.Context, trip *entity.Trip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	maxOrder := 0
	for _, t := range f.rows {
		if t.ShiftID != trip.ShiftID {
			continue
		}
		if trip.OrderIndex != 0 && t.OrderIndex == trip.OrderIndex {
			return entity.ErrDuplicateOrder
		}
		if t.OrderIndex > maxOrder {
			maxOrder = t.OrderIndex
		}
	}
	if trip.OrderIndex == 0 {
		trip.OrderIndex = maxOrder + 1
	}
	f.nextID++
	trip.ID = f.nextID
	f.rows[trip.ID] = trip.Clone()
	return nil
}

func (f *fakeTripRepo) FindByID(ctx context.Context, id uint) (*entity.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[id]
	if !ok {
		return nil, entity.ErrTripNotFound
	}
	return t.Clone(), nil
}

func (f *fakeTripRepo) Update(ctx context.Context, trip *entity.Trip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[trip.ID]; !ok {
		return entity.ErrTripNotFound
	}
	f.rows[trip.ID] = trip.Clone()
	return nil
}

func (f *fakeTripRepo) ListByShift(ctx context.Context, shiftID uint) ([]*entity.Trip, error) {
	return f.ListByShifts(ctx, []uint{shiftID})
}

func (f *fakeTripRepo) ListByShifts(ctx context.Context, shiftIDs []uint) ([]*entity.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := make(map[uint]bool, len(shiftIDs))
	for _, id := range shiftIDs {
		wanted[id] = true
	}
	var out []*entity.Trip
	for _, t := range f.rows {
		if wanted[t.ShiftID] {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ShiftID != out[j].ShiftID {
			return out[i].ShiftID < out[j].ShiftID
		}
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out, nil
}

type fakeExpenseRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*entity.Expense
}

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{rows: make(map[uint]*entity.Expense)}
}

func (f *fakeExpenseRepo) Create(ctx context.Context, expense *entity.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	expense.ID = f.nextID
	c := *expense
	f.rows[expense.ID] = &c
	return nil
}

func (f *fakeExpenseRepo) ListByShift(ctx context.Context, shiftID uint) ([]*entity.Expense, error) {
	return f.ListByShifts(ctx, []uint{shiftID})
}

func (f *fakeExpenseRepo) ListByShifts(ctx context.Context, shiftIDs []uint) ([]*entity.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := make(map[uint]bool, len(shiftIDs))
	for _, id := range shiftIDs {
		wanted[id] = true
	}
	var out []*entity.Expense
	for _, e := range f.rows {
		if wanted[e.ShiftID] {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeExpenseRepo) DeleteAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.rows))
	f.rows = make(map[uint]*entity.Expense)
	return n, nil
}

// recordingPublisher keeps published events and optionally forwards them
type recordingPublisher struct {
	mu      sync.Mutex
	seq     int64
	events  []*entity.ChangeEvent
	forward func(*entity.ChangeEvent)
	err     error
}

func (p *recordingPublisher) Publish(ctx context.Context, event *entity.ChangeEvent) error {
	p.mu.Lock()
	if p.err != nil {
		p.mu.Unlock()
		return p.err
	}
	p.seq++
	event.Seq = p.seq
	p.events = append(p.events, event)
	forward := p.forward
	p.mu.Unlock()
	if forward != nil {
		forward(event)
	}
	return nil
}

func (p *recordingPublisher) byEntity(kind entity.EntityType) []*entity.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*entity.ChangeEvent
	for _, e := range p.events {
		if e.Entity == kind {
			out = append(out, e)
		}
	}
	return out
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	items   []*entity.VehicleChangeNotification
	offsets map[string]int64
}

func (f *fakeNotificationRepo) Save(ctx context.Context, n *entity.VehicleChangeNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.Seq = int64(len(f.items) + 1)
	f.items = append(f.items, n)
	return nil
}

func (f *fakeNotificationRepo) ListAfter(ctx context.Context, seq int64, limit int) ([]*entity.VehicleChangeNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.VehicleChangeNotification
	for _, n := range f.items {
		if n.Seq > seq && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) GetOffset(ctx context.Context, consumer string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.offsets[consumer], nil
}

func (f *fakeNotificationRepo) CommitOffset(ctx context.Context, consumer string, seq int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offsets == nil {
		f.offsets = make(map[string]int64)
	}
	f.offsets[consumer] = seq
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []*entity.VehicleChangeNotification
	err  error
}

func (r *recordingNotifier) NotifyVehicleChange(ctx context.Context, n *entity.VehicleChangeNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[string]*entity.User
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return nil, entity.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUserRepo) Save(ctx context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.users == nil {
		f.users = make(map[string]*entity.User)
	}
	if user.ID == 0 {
		f.nextID++
		user.ID = f.nextID
	}
	c := *user
	f.users[user.Username] = &c
	return nil
}

// lifecycle bundles the usecases over shared fakes
type lifecycle struct {
	shifts        *fakeShiftRepo
	trips         *fakeTripRepo
	expenses      *fakeExpenseRepo
	publisher     *recordingPublisher
	notifications *fakeNotificationRepo
	notifier      *recordingNotifier
	ledger        *ShiftLedger
	tripRecorder  *TripRecorder
	expenseLog    *ExpenseRecorder
	oversight     *OversightAggregator
}

func newLifecycle() *lifecycle {
	m := newTestMetrics()
	log := newTestLogger()
	lc := &lifecycle{
		shifts:        newFakeShiftRepo(),
		trips:         newFakeTripRepo(),
		expenses:      newFakeExpenseRepo(),
		publisher:     &recordingPublisher{},
		notifications: &fakeNotificationRepo{},
		notifier:      &recordingNotifier{},
	}
	lc.ledger = NewShiftLedger(lc.shifts, lc.trips, lc.publisher, lc.notifications, lc.notifier, nil, m, log)
	lc.tripRecorder = NewTripRecorder(lc.shifts, lc.trips, lc.publisher, m, log)
	lc.expenseLog = NewExpenseRecorder(lc.shifts, lc.expenses, lc.publisher, m, log)
	lc.oversight = NewOversightAggregator(lc.shifts, lc.trips, lc.expenses, nil, DefaultFeedSize, m, log)
	lc.publisher.forward = func(e *entity.ChangeEvent) {
		lc.oversight.OnChangeEvent(context.Background(), e)
	}
	return lc
}

func (lc *lifecycle) openShift(driverID uint, odometer int, start string) *entity.Shift {
	s, err := lc.ledger.OpenShift(context.Background(), driverIdentity(driverID), OpenShiftInput{
		VehicleID:     10,
		StartTime:     at(start),
		OdometerStart: odometer,
	})
	if err != nil {
		panic(err)
	}
	return s
}
