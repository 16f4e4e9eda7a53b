package gmail

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"txapp-service/internal/domain/entity"
)

func TestEncodeMessage(t *testing.T) {
	n := &entity.VehicleChangeNotification{
		DriverID:     5,
		OldVehicleID: 3,
		NewVehicleID: 7,
		ShiftID:      42,
		ChangedBy:    105,
		Timestamp:    time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
	}

	raw := encodeMessage("fleet@example.com", []string{"a@example.com", "b@example.com"}, vehicleChangeSubject(n), vehicleChangeBody(n))
	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("message is not base64url: %v", err)
	}
	msg := string(decoded)

	for _, want := range []string{
		"From: fleet@example.com\r\n",
		"To: a@example.com, b@example.com\r\n",
		"Feuille de route: 42\r\n",
		"Ancien véhicule: 3\r\n",
		"Nouveau véhicule: 7\r\n",
		"Date: 2026-03-02T09:30:00Z\r\n",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q\n%s", want, msg)
		}
	}

	headers, body, ok := strings.Cut(msg, "\r\n\r\n")
	if !ok {
		t.Fatal("message has no header/body separator")
	}
	if strings.Contains(headers, "Feuille") {
		t.Error("body leaked into headers")
	}
	if !strings.HasPrefix(body, "Feuille de route") {
		t.Errorf("body = %q", body)
	}
}
