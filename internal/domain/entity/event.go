package entity

import "time"

// EventType is the kind of row change
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// EntityType is the kind of record an event is about
type EntityType string

const (
	EntityShift         EntityType = "shift"
	EntityTrip          EntityType = "trip"
	EntityExpense       EntityType = "expense"
	EntityVehicleChange EntityType = "vehicle_change"
)

// Snapshot carries the record of a change event; exactly one field is set
type Snapshot struct {
	Shift        *Shift                     `json:"shift,omitempty"`
	Trip         *Trip                      `json:"trip,omitempty"`
	Expense      *Expense                   `json:"expense,omitempty"`
	Notification *VehicleChangeNotification `json:"notification,omitempty"`
}

// ChangeEvent is pushed on the realtime channel after every lifecycle mutation
type ChangeEvent struct {
	ID         string     `json:"id"`
	Seq        int64      `json:"seq"`
	Type       EventType  `json:"event_type"`
	Entity     EntityType `json:"entity"`
	ShiftID    uint       `json:"shift_id"`
	Record     Snapshot   `json:"record"`
	Old        *Snapshot  `json:"old,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// VehicleChangeNotification is emitted when a shift's vehicle is reassigned
type VehicleChangeNotification struct {
	Seq          int64     `json:"seq" bson:"seq"`
	DriverID     uint      `json:"driver_id" bson:"driverId"`
	OldVehicleID uint      `json:"old_vehicle_id" bson:"oldVehicleId"`
	NewVehicleID uint      `json:"new_vehicle_id" bson:"newVehicleId"`
	ShiftID      uint      `json:"shift_id" bson:"shiftId"`
	ChangedBy    uint      `json:"changed_by" bson:"changedBy"`
	Timestamp    time.Time `json:"timestamp" bson:"timestamp"`
}
