package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"

	"txapp-service/internal/domain/entity"
	"txapp-service/pkg/logger"
)

type memoryActivityLog struct {
	mu     sync.Mutex
	events []*entity.ChangeEvent
	err    error
}

func (m *memoryActivityLog) Append(ctx context.Context, event *entity.ChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	event.Seq = int64(len(m.events) + 1)
	m.events = append(m.events, event)
	return nil
}

func (m *memoryActivityLog) Recent(ctx context.Context, limit int) ([]*entity.ChangeEvent, error) {
	return nil, nil
}

func (m *memoryActivityLog) After(ctx context.Context, seq int64, limit int) ([]*entity.ChangeEvent, error) {
	return nil, nil
}

func TestHubDispatchByEntity(t *testing.T) {
	activity := &memoryActivityLog{}
	hub := NewHub(activity, nil, logger.NewNopLogger())

	var trips, all []string
	hub.Subscribe(entity.EntityTrip, func(ctx context.Context, ev *entity.ChangeEvent) {
		trips = append(trips, ev.ID)
	})
	hub.SubscribeAll(func(ctx context.Context, ev *entity.ChangeEvent) {
		all = append(all, ev.ID)
	})

	ctx := context.Background()
	events := []*entity.ChangeEvent{
		{ID: "a", Type: entity.EventInsert, Entity: entity.EntityShift},
		{ID: "b", Type: entity.EventInsert, Entity: entity.EntityTrip},
		{ID: "c", Type: entity.EventUpdate, Entity: entity.EntityTrip},
	}
	for _, ev := range events {
		if err := hub.Publish(ctx, ev); err != nil {
			t.Fatalf("Publish(%s) error = %v", ev.ID, err)
		}
	}

	if len(trips) != 2 || trips[0] != "b" || trips[1] != "c" {
		t.Errorf("trip subscriber got %v, want [b c]", trips)
	}
	if len(all) != 3 {
		t.Errorf("catch-all subscriber got %v, want 3 events", all)
	}
	for i, ev := range events {
		if ev.Seq != int64(i+1) {
			t.Errorf("event %s seq = %d, want %d", ev.ID, ev.Seq, i+1)
		}
	}
}

func TestHubAppendFailureStillDispatches(t *testing.T) {
	activity := &memoryActivityLog{err: errors.New("mongo down")}
	hub := NewHub(activity, nil, logger.NewNopLogger())

	delivered := 0
	hub.SubscribeAll(func(ctx context.Context, ev *entity.ChangeEvent) { delivered++ })

	err := hub.Publish(context.Background(), &entity.ChangeEvent{ID: "x", Type: entity.EventInsert, Entity: entity.EntityExpense})
	if err == nil {
		t.Error("Publish() should report the append failure")
	}
	if delivered != 1 {
		t.Errorf("delivered = %d, want 1", delivered)
	}
}

func TestDecodeEvent(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"valid", `{"id":"e1","seq":4,"event_type":"insert","entity":"trip","shift_id":9,"record":{}}`, false},
		{"missing entity", `{"id":"e2","event_type":"insert","record":{}}`, true},
		{"not json", `{nope`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := decodeEvent(tc.payload)
			if (err != nil) != tc.wantErr {
				t.Fatalf("decodeEvent() error = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && (ev.Seq != 4 || ev.ShiftID != 9 || ev.Entity != entity.EntityTrip) {
				t.Errorf("decodeEvent() = %+v", ev)
			}
		})
	}
}
