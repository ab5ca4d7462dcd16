package resource

import (
	"time"

	"github.com/fadliRafidan/smart-lock-api/pkg/model"
)

type AuditEntryResource struct {
	ID             int64     `json:"id"`
	DeviceID       string    `json:"device_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	ChangedBy      string    `json:"changed_by"`
	CreatedAt      time.Time `json:"created_at"`
}

type AuditEntryListResource struct {
	Members []*AuditEntryResource `json:"members"`
}

func NewAuditEntry(m *model.AuditEntry) *AuditEntryResource {
	return &AuditEntryResource{
		ID:             m.ID,
		DeviceID:       m.DeviceID,
		PreviousStatus: m.PreviousStatus,
		NewStatus:      m.NewStatus,
		ChangedBy:      m.ChangedBy,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

func NewAuditEntryList(m []model.AuditEntry) (out *AuditEntryListResource) {
	out = &AuditEntryListResource{
		Members: make([]*AuditEntryResource, 0, len(m)),
	}

	for i := range m {
		out.Members = append(out.Members, NewAuditEntry(&m[i]))
	}

	return // out
}
