package resource

import (
	"fmt"
	"strings"
	"time"

	"github.com/fadliRafidan/smart-lock-api/pkg/devicestate"
	"github.com/fadliRafidan/smart-lock-api/pkg/model"
)

// StatusUpdateResource is the body of a status change request
type StatusUpdateResource struct {
	NewStatus         string `json:"new_status"`
	ExpectedVersionID *int64 `json:"expected_version_id"`
	ChangedBy         string `json:"changed_by,omitempty"`
}

// StatusUpdatedResource is returned for an accepted status change
type StatusUpdatedResource struct {
	DeviceID  string    `json:"device_id"`
	Status    string    `json:"status"`
	VersionID int64     `json:"version_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConflictResource tells the caller which version to retry with
type ConflictResource struct {
	Error            string `json:"error"`
	CurrentStatus    string `json:"current_status"`
	CurrentVersionID int64  `json:"current_version_id"`
}

type ErrorResource struct {
	Error string `json:"error"`
}

func NewError(err error) *ErrorResource {
	return &ErrorResource{Error: err.Error()}
}

func NewStatusUpdated(m *model.Device) *StatusUpdatedResource {
	return &StatusUpdatedResource{
		DeviceID:  m.ID,
		Status:    m.Status,
		VersionID: m.VersionID,
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func NewConflict(c *devicestate.ConflictError) *ConflictResource {
	return &ConflictResource{
		Error:            "Version conflict",
		CurrentStatus:    c.Current.Status,
		CurrentVersionID: c.Current.VersionID,
	}
}

func ValidateStatusUpdate(deviceID string, r *StatusUpdateResource) (c devicestate.StatusChange, err error) {
	if strings.TrimSpace(deviceID) == "" {
		return c, fmt.Errorf("device id is required")
	}
	if strings.TrimSpace(r.NewStatus) == "" {
		return c, fmt.Errorf("new_status is required")
	}
	if r.ExpectedVersionID == nil {
		return c, fmt.Errorf("expected_version_id is required")
	}

	c = devicestate.StatusChange{
		DeviceID:        deviceID,
		Status:          r.NewStatus,
		ExpectedVersion: *r.ExpectedVersionID,
		ChangedBy:       strings.TrimSpace(r.ChangedBy),
	}

	return c, nil
}
