// Package notify announces accepted device status transitions to other
// processes. Publishing happens after the transition is committed, so a
// failed publish never affects the stored state.
package notify

import "time"

// Transition describes one accepted status change
type Transition struct {
	DeviceID       string    `json:"device_id"`
	PreviousStatus string    `json:"previous_status"`
	Status         string    `json:"status"`
	VersionID      int64     `json:"version_id"`
	ChangedBy      string    `json:"changed_by"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Publisher is implemented by the transports transitions are announced on
type Publisher interface {
	PublishTransition(t *Transition) error
}

type discard struct{}

func (discard) PublishTransition(*Transition) error {
	return nil
}

// Discard is a Publisher that drops every transition
var Discard Publisher = discard{}
