package entity

import "time"

// Role is the closed set of application roles
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleController Role = "controller"
	RoleDriver     Role = "driver"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Action is a capability checked by the lifecycle operations
type Action string

const (
	ActionOpenShift         Action = "open_shift"
	ActionOpenShiftForOther Action = "open_shift_for_other"
	ActionCloseShift        Action = "close_shift"
	ActionUpdateShift       Action = "update_shift"
	ActionValidateShift     Action = "validate_shift"
	ActionChangeVehicle     Action = "change_vehicle"
	ActionLogTrip           Action = "log_trip"
	ActionLogExpense        Action = "log_expense"
	ActionViewOversight     Action = "view_oversight"
	ActionManageCatalog     Action = "manage_catalog"
	ActionManageData        Action = "manage_data"
	ActionExport            Action = "export"
	// ActionActOnAnyShift lets a role act on shifts it does not own
	ActionActOnAnyShift Action = "act_on_any_shift"
)

// Capabilities is a set of actions
type Capabilities map[Action]struct{}

func capabilities(actions ...Action) Capabilities {
	c := make(Capabilities, len(actions))
	for _, a := range actions {
		c[a] = struct{}{}
	}
	return c
}

var roleCapabilities = map[Role]Capabilities{
	RoleAdmin: capabilities(
		ActionOpenShift, ActionOpenShiftForOther, ActionCloseShift, ActionUpdateShift,
		ActionValidateShift, ActionChangeVehicle, ActionLogTrip, ActionLogExpense,
		ActionViewOversight, ActionManageCatalog, ActionManageData, ActionExport, ActionActOnAnyShift,
	),
	RoleController: capabilities(
		ActionCloseShift, ActionValidateShift, ActionViewOversight, ActionExport, ActionActOnAnyShift,
	),
	RoleDriver: capabilities(
		ActionOpenShift, ActionCloseShift, ActionUpdateShift, ActionChangeVehicle,
		ActionLogTrip, ActionLogExpense,
	),
}

// HasCapability reports whether role may perform action
func HasCapability(role Role, action Action) bool {
	_, ok := roleCapabilities[role][action]
	return ok
}

// Identity is the resolved caller of a lifecycle operation
type Identity struct {
	UserID   uint
	Role     Role
	DriverID uint // zero for non-driver accounts
	caps     Capabilities
}

// NewIdentity resolves the capability set once for the session
func NewIdentity(userID uint, role Role, driverID uint) Identity {
	return Identity{
		UserID:   userID,
		Role:     role,
		DriverID: driverID,
		caps:     roleCapabilities[role],
	}
}

// Can reports whether the identity holds the capability
func (i Identity) Can(action Action) bool {
	_, ok := i.caps[action]
	return ok
}

// CanActOn reports whether the identity may act on a shift owned by driverID
func (i Identity) CanActOn(driverID uint) bool {
	if i.Can(ActionActOnAnyShift) {
		return true
	}
	return i.DriverID != 0 && i.DriverID == driverID
}

// User is an application account
type User struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	DriverID     *uint     `json:"driver_id,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
