package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/domain/repository"
	"txapp-service/pkg/logger"
	"txapp-service/pkg/metrics"
	"txapp-service/pkg/money"
)

// DefaultFeedSize is the number of recent change events kept in memory
const DefaultFeedSize = 50

// OversightListener is called after every projection change.
// event is nil when the change comes from a full re-fetch.
type OversightListener func(event *entity.ChangeEvent)

// shiftProjection is the cached state of one unvalidated shift
type shiftProjection struct {
	shift    *entity.Shift
	trips    map[uint]*entity.Trip
	expenses map[uint]*entity.Expense
}

func newShiftProjection(shift *entity.Shift) *shiftProjection {
	return &shiftProjection{
		shift:    shift,
		trips:    make(map[uint]*entity.Trip),
		expenses: make(map[uint]*entity.Expense),
	}
}

// OversightAggregator keeps a live projection of every unvalidated shift.
// Change events are applied incrementally; events that cannot be applied
// mark the projection dirty and the refresher re-fetches it from storage.
type OversightAggregator struct {
	shifts   repository.ShiftRepository
	trips    repository.TripRepository
	expenses repository.ExpenseRepository
	activity repository.ActivityLogRepository
	metrics  *metrics.Metrics
	logger   logger.Logger
	now      func() time.Time
	feedSize int

	refreshMu sync.Mutex // one re-fetch at a time
	dirty     chan struct{}

	mu         sync.RWMutex
	projection map[uint]*shiftProjection
	feed       []*entity.ChangeEvent // oldest first
	refreshing bool
	replay     []*entity.ChangeEvent
	listeners  []OversightListener
}

// NewOversightAggregator creates a new aggregator. activity may be nil.
func NewOversightAggregator(
	shifts repository.ShiftRepository,
	trips repository.TripRepository,
	expenses repository.ExpenseRepository,
	activity repository.ActivityLogRepository,
	feedSize int,
	m *metrics.Metrics,
	logger logger.Logger,
) *OversightAggregator {
	if feedSize <= 0 {
		feedSize = DefaultFeedSize
	}
	return &OversightAggregator{
		shifts:     shifts,
		trips:      trips,
		expenses:   expenses,
		activity:   activity,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
		feedSize:   feedSize,
		dirty:      make(chan struct{}, 1),
		projection: make(map[uint]*shiftProjection),
	}
}

// OnUpdate registers a listener for projection changes
func (a *OversightAggregator) OnUpdate(fn OversightListener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// OnChangeEvent records the event in the activity feed and applies it to the projection
func (a *OversightAggregator) OnChangeEvent(ctx context.Context, event *entity.ChangeEvent) {
	if event == nil {
		return
	}

	a.mu.Lock()
	a.feed = append(a.feed, event)
	if len(a.feed) > a.feedSize {
		a.feed = append([]*entity.ChangeEvent(nil), a.feed[len(a.feed)-a.feedSize:]...)
	}
	applied := a.apply(event)
	if a.refreshing {
		a.replay = append(a.replay, event)
	}
	listeners := append([]OversightListener(nil), a.listeners...)
	a.mu.Unlock()

	if !applied {
		a.logger.Debug("Change event not applicable, scheduling refresh",
			"entity", event.Entity,
			"eventType", event.Type,
			"shiftID", event.ShiftID)
		a.markDirty()
	}
	a.updateGauges()
	for _, fn := range listeners {
		fn(event)
	}
}

// apply mutates the projection; the caller holds a.mu
func (a *OversightAggregator) apply(event *entity.ChangeEvent) bool {
	switch event.Entity {
	case entity.EntityShift:
		s := event.Record.Shift
		if s == nil {
			return false
		}
		if event.Type == entity.EventDelete || s.Validated {
			delete(a.projection, s.ID)
			return true
		}
		p, ok := a.projection[s.ID]
		if !ok {
			a.projection[s.ID] = newShiftProjection(s.Clone())
			// an update for an unknown shift means its children are missing
			return event.Type == entity.EventInsert
		}
		p.shift = s.Clone()
		return true

	case entity.EntityTrip:
		t := event.Record.Trip
		if t == nil {
			return false
		}
		p, ok := a.projection[t.ShiftID]
		if !ok {
			return false
		}
		if event.Type == entity.EventDelete {
			delete(p.trips, t.ID)
		} else {
			p.trips[t.ID] = t.Clone()
		}
		return true

	case entity.EntityExpense:
		e := event.Record.Expense
		if e == nil {
			return false
		}
		p, ok := a.projection[e.ShiftID]
		if !ok {
			return false
		}
		if event.Type == entity.EventDelete {
			delete(p.expenses, e.ID)
		} else {
			c := *e
			p.expenses[e.ID] = &c
		}
		return true
	}
	return true
}

func (a *OversightAggregator) markDirty() {
	select {
	case a.dirty <- struct{}{}:
	default:
	}
}

// Refresh re-fetches the whole projection from storage. Events received while
// the fetch is in flight are re-applied on top of the fresh state.
func (a *OversightAggregator) Refresh(ctx context.Context) error {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	start := time.Now()
	a.mu.Lock()
	a.refreshing = true
	a.replay = nil
	a.mu.Unlock()

	projection, err := a.fetch(ctx)
	if err != nil {
		a.mu.Lock()
		a.refreshing = false
		a.replay = nil
		a.mu.Unlock()
		a.metrics.ErrorsCount.WithLabelValues("oversight_refresh").Inc()
		return entity.StepError("oversight_refresh", "fetch", err)
	}

	a.mu.Lock()
	a.projection = projection
	for _, event := range a.replay {
		a.apply(event)
	}
	a.refreshing = false
	a.replay = nil
	listeners := append([]OversightListener(nil), a.listeners...)
	a.mu.Unlock()

	a.metrics.RefreshTime.Observe(time.Since(start).Seconds())
	a.updateGauges()
	for _, fn := range listeners {
		fn(nil)
	}
	return nil
}

func (a *OversightAggregator) fetch(ctx context.Context) (map[uint]*shiftProjection, error) {
	shifts, err := a.shifts.FindUnvalidated(ctx)
	if err != nil {
		return nil, err
	}

	projection := make(map[uint]*shiftProjection, len(shifts))
	ids := make([]uint, 0, len(shifts))
	for _, s := range shifts {
		projection[s.ID] = newShiftProjection(s)
		ids = append(ids, s.ID)
	}
	if len(ids) == 0 {
		return projection, nil
	}

	trips, err := a.trips.ListByShifts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range trips {
		if p, ok := projection[t.ShiftID]; ok {
			p.trips[t.ID] = t
		}
	}

	expenses, err := a.expenses.ListByShifts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		if p, ok := projection[e.ShiftID]; ok {
			p.expenses[e.ID] = e
		}
	}
	return projection, nil
}

// Run loads the projection, then re-fetches it whenever it is marked dirty
// and every interval, until ctx is cancelled
func (a *OversightAggregator) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	if err := a.LoadFeed(ctx); err != nil {
		a.logger.Warn("Failed to load activity feed", "error", err)
	}
	if err := a.Refresh(ctx); err != nil {
		a.logger.Error("Initial oversight refresh failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Oversight refresher stopped")
			return
		case <-a.dirty:
		case <-ticker.C:
		}
		if err := a.Refresh(ctx); err != nil {
			a.logger.Error("Oversight refresh failed", "error", err)
		}
	}
}

// LoadFeed seeds the in-memory feed from the durable activity log
func (a *OversightAggregator) LoadFeed(ctx context.Context) error {
	if a.activity == nil {
		return nil
	}
	events, err := a.activity.Recent(ctx, a.feedSize)
	if err != nil {
		return err
	}
	a.mu.Lock()
	// events received since subscribing are already in the feed
	live := make(map[string]struct{}, len(a.feed))
	for _, e := range a.feed {
		if e.ID != "" {
			live[e.ID] = struct{}{}
		}
	}
	// Recent is newest first
	feed := make([]*entity.ChangeEvent, 0, len(events)+len(a.feed))
	for i := len(events) - 1; i >= 0; i-- {
		if _, ok := live[events[i].ID]; ok && events[i].ID != "" {
			continue
		}
		feed = append(feed, events[i])
	}
	a.feed = append(feed, a.feed...)
	if len(a.feed) > a.feedSize {
		a.feed = a.feed[len(a.feed)-a.feedSize:]
	}
	a.mu.Unlock()
	return nil
}

// RecentActivity returns up to limit events of the feed, newest first
func (a *OversightAggregator) RecentActivity(limit int) []*entity.ChangeEvent {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if limit <= 0 || limit > len(a.feed) {
		limit = len(a.feed)
	}
	out := make([]*entity.ChangeEvent, 0, limit)
	for i := len(a.feed) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.feed[i])
	}
	return out
}

// ActivitySince returns the events with a sequence number above seq, oldest first.
// It reads the durable log when there is one.
func (a *OversightAggregator) ActivitySince(ctx context.Context, seq int64, limit int) ([]*entity.ChangeEvent, error) {
	if limit <= 0 {
		limit = a.feedSize
	}
	if a.activity != nil {
		return a.activity.After(ctx, seq, limit)
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []*entity.ChangeEvent
	for _, e := range a.feed {
		if e.Seq > seq && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListActiveShifts returns every unvalidated shift with its live totals
func (a *OversightAggregator) ListActiveShifts() []entity.ActiveShiftView {
	now := a.now()

	a.mu.RLock()
	views := make([]entity.ActiveShiftView, 0, len(a.projection))
	for _, p := range a.projection {
		views = append(views, p.view(now))
	}
	a.mu.RUnlock()

	sort.Slice(views, func(i, j int) bool {
		if views[i].StartTime.Equal(views[j].StartTime) {
			return views[i].ShiftID < views[j].ShiftID
		}
		return views[i].StartTime.Before(views[j].StartTime)
	})
	return views
}

func (p *shiftProjection) view(now time.Time) entity.ActiveShiftView {
	trips := make([]*entity.Trip, 0, len(p.trips))
	for _, t := range p.trips {
		trips = append(trips, t)
	}
	expenses := make([]*entity.Expense, 0, len(p.expenses))
	for _, e := range p.expenses {
		expenses = append(expenses, e)
	}
	totals := entity.SumTrips(trips)
	spent := entity.SumExpenses(expenses)

	end := now
	if p.shift.EndTime != nil {
		end = *p.shift.EndTime
	}
	elapsed := end.Sub(p.shift.StartTime)
	if elapsed < 0 {
		elapsed = 0
	}

	return entity.ActiveShiftView{
		ShiftID:        p.shift.ID,
		DriverID:       p.shift.DriverID,
		VehicleID:      p.shift.VehicleID,
		State:          p.shift.State(),
		StartTime:      p.shift.StartTime,
		EndTime:        p.shift.EndTime,
		ActiveTrips:    totals.InProgress,
		CompletedTrips: totals.Completed,
		Revenue:        totals.Revenue,
		Expenses:       spent,
		Net:            totals.Revenue.Sub(spent),
		Elapsed:        elapsed,
		LastActivity:   totals.LastActivity,
		RevenuePerHour: perHour(totals.Revenue, elapsed),
	}
}

func perHour(revenue decimal.Decimal, d time.Duration) decimal.Decimal {
	seconds := int64(d / time.Second)
	if seconds <= 0 {
		return decimal.Zero
	}
	hours := decimal.NewFromInt(seconds).Div(decimal.NewFromInt(3600))
	return revenue.DivRound(hours, money.Places)
}

// ComputeFleetMetrics aggregates the active-shift projection
func (a *OversightAggregator) ComputeFleetMetrics() entity.FleetMetrics {
	views := a.ListActiveShifts()
	fm := entity.FleetMetrics{
		ActiveShifts:  len(views),
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
		DriverRates:   []entity.DriverRate{},
		ComputedAt:    a.now(),
	}

	type driverTime struct {
		revenue decimal.Decimal
		elapsed time.Duration
	}
	drivers := make(map[uint]*driverTime)
	for _, v := range views {
		fm.ActiveTrips += v.ActiveTrips
		fm.CompletedTrips += v.CompletedTrips
		fm.TotalRevenue = fm.TotalRevenue.Add(v.Revenue)
		fm.TotalExpenses = fm.TotalExpenses.Add(v.Expenses)

		d, ok := drivers[v.DriverID]
		if !ok {
			d = &driverTime{revenue: decimal.Zero}
			drivers[v.DriverID] = d
		}
		d.revenue = d.revenue.Add(v.Revenue)
		d.elapsed += v.Elapsed
	}

	fm.NetRevenue = fm.TotalRevenue.Sub(fm.TotalExpenses)
	fm.AvgRevenuePerShift = money.Avg(fm.TotalRevenue, len(views))
	fm.AvgTripsPerShift = money.Avg(decimal.NewFromInt(int64(fm.ActiveTrips+fm.CompletedTrips)), len(views))

	for id, d := range drivers {
		fm.DriverRates = append(fm.DriverRates, entity.DriverRate{
			DriverID:       id,
			RevenuePerHour: perHour(d.revenue, d.elapsed),
		})
	}
	sort.Slice(fm.DriverRates, func(i, j int) bool {
		return fm.DriverRates[i].DriverID < fm.DriverRates[j].DriverID
	})
	return fm
}

func (a *OversightAggregator) updateGauges() {
	fm := a.ComputeFleetMetrics()
	a.metrics.ActiveShifts.Set(float64(fm.ActiveShifts))
	a.metrics.FleetRevenue.Set(fm.TotalRevenue.InexactFloat64())
}

var activeShiftColumns = []string{
	"shift_id", "driver_id", "vehicle_id", "state", "start_time", "end_time",
	"active_trips", "completed_trips", "revenue", "expenses", "net",
	"elapsed_minutes", "last_activity", "revenue_per_hour",
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func activeShiftRecord(v entity.ActiveShiftView) []string {
	return []string{
		strconv.FormatUint(uint64(v.ShiftID), 10),
		strconv.FormatUint(uint64(v.DriverID), 10),
		strconv.FormatUint(uint64(v.VehicleID), 10),
		string(v.State),
		v.StartTime.Format(time.RFC3339),
		formatOptionalTime(v.EndTime),
		strconv.Itoa(v.ActiveTrips),
		strconv.Itoa(v.CompletedTrips),
		money.Format(v.Revenue),
		money.Format(v.Expenses),
		money.Format(v.Net),
		strconv.FormatInt(int64(v.Elapsed/time.Minute), 10),
		formatOptionalTime(v.LastActivity),
		money.Format(v.RevenuePerHour),
	}
}

// ExportActiveShiftsCSV serializes the current projection to CSV text
func (a *OversightAggregator) ExportActiveShiftsCSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(activeShiftColumns); err != nil {
		return "", err
	}
	for _, v := range a.ListActiveShifts() {
		if err := w.Write(activeShiftRecord(v)); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ExportActiveShiftsXLSX renders the current projection as a workbook
func (a *OversightAggregator) ExportActiveShiftsXLSX() ([]byte, error) {
	views := a.ListActiveShifts()
	rows := make([][]interface{}, 0, len(views))
	for _, v := range views {
		rows = append(rows, []interface{}{
			v.ShiftID,
			v.DriverID,
			v.VehicleID,
			string(v.State),
			v.StartTime,
			formatOptionalTime(v.EndTime),
			v.ActiveTrips,
			v.CompletedTrips,
			v.Revenue,
			v.Expenses,
			v.Net,
			int64(v.Elapsed / time.Minute),
			formatOptionalTime(v.LastActivity),
			v.RevenuePerHour,
		})
	}
	return renderXLSX(sheet{name: "Active shifts", headings: activeShiftColumns, rows: rows})
}
