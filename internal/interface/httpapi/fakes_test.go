package httpapi

import (
	"context"
	"sort"
	"sync"

	"txapp-service/internal/domain/entity"
)

type memShifts struct {
	mu   sync.Mutex
	rows map[uint]*entity.Shift
}

func (m *memShifts) CreateOpen(ctx context.Context, shift *entity.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if s.DriverID == shift.DriverID && s.IsOpen() {
			return entity.ErrShiftAlreadyOpen
		}
	}
	shift.ID = uint(len(m.rows) + 1)
	m.rows[shift.ID] = shift.Clone()
	return nil
}

func (m *memShifts) FindByID(ctx context.Context, id uint) (*entity.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, entity.ErrShiftNotFound
	}
	return s.Clone(), nil
}

func (m *memShifts) FindOpenByDriver(ctx context.Context, driverID uint) ([]*entity.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Shift
	for _, s := range m.rows {
		if s.DriverID == driverID && s.IsOpen() {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func (m *memShifts) FindUnvalidated(ctx context.Context) ([]*entity.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Shift
	for _, s := range m.rows {
		if !s.Validated {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func (m *memShifts) Update(ctx context.Context, shift *entity.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[shift.ID]; !ok {
		return entity.ErrShiftNotFound
	}
	m.rows[shift.ID] = shift.Clone()
	return nil
}

type memTrips struct {
	mu   sync.Mutex
	rows map[uint]*entity.Trip
}

func (m *memTrips) Create(ctx context.Context, trip *entity.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := 1
	for _, t := range m.rows {
		if t.ShiftID == trip.ShiftID && t.OrderIndex >= next {
			next = t.OrderIndex + 1
		}
	}
	if trip.OrderIndex == 0 {
		trip.OrderIndex = next
	}
	trip.ID = uint(len(m.rows) + 1)
	m.rows[trip.ID] = trip.Clone()
	return nil
}

func (m *memTrips) FindByID(ctx context.Context, id uint) (*entity.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok {
		return nil, entity.ErrTripNotFound
	}
	return t.Clone(), nil
}

func (m *memTrips) Update(ctx context.Context, trip *entity.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[trip.ID] = trip.Clone()
	return nil
}

func (m *memTrips) ListByShift(ctx context.Context, shiftID uint) ([]*entity.Trip, error) {
	return m.ListByShifts(ctx, []uint{shiftID})
}

func (m *memTrips) ListByShifts(ctx context.Context, shiftIDs []uint) ([]*entity.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Trip
	for _, t := range m.rows {
		for _, id := range shiftIDs {
			if t.ShiftID == id {
				out = append(out, t.Clone())
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

type memExpenses struct {
	mu   sync.Mutex
	rows []*entity.Expense
}

func (m *memExpenses) Create(ctx context.Context, expense *entity.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	expense.ID = uint(len(m.rows) + 1)
	c := *expense
	m.rows = append(m.rows, &c)
	return nil
}

func (m *memExpenses) ListByShift(ctx context.Context, shiftID uint) ([]*entity.Expense, error) {
	return m.ListByShifts(ctx, []uint{shiftID})
}

func (m *memExpenses) ListByShifts(ctx context.Context, shiftIDs []uint) ([]*entity.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Expense
	for _, e := range m.rows {
		for _, id := range shiftIDs {
			if e.ShiftID == id {
				c := *e
				out = append(out, &c)
			}
		}
	}
	return out, nil
}

func (m *memExpenses) DeleteAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.rows))
	m.rows = nil
	return n, nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func (m *memUsers) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, entity.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (m *memUsers) Save(ctx context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == 0 {
		user.ID = uint(len(m.users) + 1)
	}
	c := *user
	m.users[user.Username] = &c
	return nil
}
