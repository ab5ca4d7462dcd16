package memory

import (
	"context"
	"sort"
	"time"

	"github.com/fadliRafidan/smart-lock-api/pkg/model"
	"github.com/fadliRafidan/smart-lock-api/pkg/storage"
)

type deviceStore struct {
	t *tables
}

func (s *deviceStore) FetchAll(ctx context.Context) ([]model.Device, error) {
	s.t.RLock()
	defer s.t.RUnlock()

	models := make([]model.Device, 0, len(s.t.devices))
	for _, m := range s.t.devices {
		models = append(models, m)
	}

	sort.Slice(models, func(i, j int) bool {
		return models[i].ID < models[j].ID
	})

	return models, nil
}

func (s *deviceStore) FindByID(ctx context.Context, id string) (*model.Device, error) {
	s.t.RLock()
	defer s.t.RUnlock()
	if m, ok := s.t.devices[id]; ok {
		return &m, nil
	}

	return nil, storage.ErrNotFound
}

func (s *deviceStore) Create(ctx context.Context, m *model.Device) error {
	s.t.Lock()
	defer s.t.Unlock()

	if _, ok := s.t.devices[m.ID]; ok {
		return storage.ErrAlreadyExists
	}

	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now().UTC()
	}

	s.t.devices[m.ID] = *m

	return nil
}
