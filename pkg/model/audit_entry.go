package model

import "time"

// DefaultActor is recorded as ChangedBy when the caller doesn't name one
const DefaultActor = "system"

// AuditEntry is a single accepted status transition of a device. Entries are
// append-only.
type AuditEntry struct {
	ID             int64
	DeviceID       string
	PreviousStatus string
	NewStatus      string
	ChangedBy      string
	CreatedAt      time.Time
}
