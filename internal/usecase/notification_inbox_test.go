package usecase

import (
	"context"
	"errors"
	"testing"

	"txapp-service/internal/domain/entity"
)

func TestNotificationInboxConsume(t *testing.T) {
	ctx := context.Background()
	repo := &fakeNotificationRepo{}
	for i := uint(1); i <= 3; i++ {
		repo.Save(ctx, &entity.VehicleChangeNotification{DriverID: 5, ShiftID: i, OldVehicleID: 1, NewVehicleID: 2})
	}
	inbox := NewNotificationInbox(repo, newTestLogger())

	got, err := inbox.Consume(ctx, adminIdentity, "admin-ui", 2)
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if len(got) != 2 || got[0].Seq != 1 || got[1].Seq != 2 {
		t.Fatalf("first batch = %+v, want seq 1 and 2", got)
	}

	got, err = inbox.Consume(ctx, adminIdentity, "admin-ui", 10)
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if len(got) != 1 || got[0].Seq != 3 {
		t.Fatalf("second batch = %+v, want seq 3", got)
	}

	got, _ = inbox.Consume(ctx, adminIdentity, "admin-ui", 10)
	if len(got) != 0 {
		t.Errorf("drained inbox returned %d notifications", len(got))
	}

	// consumers keep independent offsets
	got, _ = inbox.Consume(ctx, controllerIdentity, "mailer", 10)
	if len(got) != 3 {
		t.Errorf("new consumer got %d notifications, want 3", len(got))
	}
}

func TestNotificationInboxRejects(t *testing.T) {
	inbox := NewNotificationInbox(&fakeNotificationRepo{}, newTestLogger())
	cases := []struct {
		name     string
		actor    entity.Identity
		consumer string
		want     error
	}{
		{"driver cannot read the inbox", driverIdentity(5), "admin-ui", entity.ErrForbidden},
		{"consumer name is required", adminIdentity, "  ", entity.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := inbox.Consume(context.Background(), tc.actor, tc.consumer, 10)
			if !errors.Is(err, tc.want) {
				t.Errorf("Consume() error = %v, want %v", err, tc.want)
			}
		})
	}
}
