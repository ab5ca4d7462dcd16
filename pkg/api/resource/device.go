package resource

import (
	"fmt"
	"strings"
	"time"

	"github.com/fadliRafidan/smart-lock-api/pkg/model"
)

// DeviceResource is the status view of a device
type DeviceResource struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	VersionID int64     `json:"version_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DeviceListResource struct {
	Members []*DeviceResource `json:"members"`
}

// ProvisionDeviceResource is the body accepted when registering a device
type ProvisionDeviceResource struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

func NewDevice(m *model.Device) *DeviceResource {
	return &DeviceResource{
		ID:        m.ID,
		Name:      m.Name,
		Type:      m.Type,
		Status:    m.Status,
		VersionID: m.VersionID,
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// NewDeviceList keeps the order of m, which the stores return sorted by id
func NewDeviceList(m []model.Device) (out *DeviceListResource) {
	out = &DeviceListResource{
		Members: make([]*DeviceResource, 0, len(m)),
	}

	for i := range m {
		out.Members = append(out.Members, NewDevice(&m[i]))
	}

	return // out
}

func ValidateDevice(r *ProvisionDeviceResource) (m *model.Device, err error) {
	if strings.TrimSpace(r.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if strings.TrimSpace(r.Type) == "" {
		return nil, fmt.Errorf("type is required")
	}
	if strings.TrimSpace(r.Status) == "" {
		return nil, fmt.Errorf("status is required")
	}

	m = &model.Device{
		ID:     strings.TrimSpace(r.ID),
		Name:   r.Name,
		Type:   r.Type,
		Status: r.Status,
	}

	return m, nil
}
