package memory

import (
	"context"

	"github.com/fadliRafidan/smart-lock-api/pkg/model"
)

type auditEntryStore struct {
	t *tables
}

func (s *auditEntryStore) FetchByDeviceID(ctx context.Context, deviceID string) ([]model.AuditEntry, error) {
	s.t.RLock()
	defer s.t.RUnlock()

	models := make([]model.AuditEntry, 0)
	for _, m := range s.t.auditEntries {
		if m.DeviceID == deviceID {
			models = append(models, m)
		}
	}

	return models, nil
}
