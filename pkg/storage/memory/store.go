package memory

import (
	"context"
	"sync"

	"github.com/fadliRafidan/smart-lock-api/pkg/model"
	"github.com/fadliRafidan/smart-lock-api/pkg/storage"
	"golang.org/x/sync/semaphore"
)

// tables holds the rows shared by the sub-stores. A single lock guards both
// tables so a commit can change them together. writer admits one unit of
// work at a time.
type tables struct {
	devices      map[string]model.Device
	auditEntries []model.AuditEntry
	nextAuditID  int64
	writer       *semaphore.Weighted
	sync.RWMutex
}

// Store contains all memory-based sub-stores for managing the persistent models
type store struct {
	tables       *tables
	devices      *deviceStore
	auditEntries *auditEntryStore
}

// NewStore creates a new memory-based Storage interface
func NewStore() storage.Interface {
	t := &tables{
		devices:     make(map[string]model.Device),
		nextAuditID: 1,
		writer:      semaphore.NewWeighted(1),
	}

	return &store{
		tables:       t,
		devices:      &deviceStore{t: t},
		auditEntries: &auditEntryStore{t: t},
	}
}

// Devices returns a sub-store for managing the device model
func (s *store) Devices() storage.DeviceStore {
	return s.devices
}

// AuditEntries returns a sub-store for reading the transition history
func (s *store) AuditEntries() storage.AuditEntryStore {
	return s.auditEntries
}

// Begin waits until no other unit of work is open or ctx is done. Units of
// work against the memory store are therefore serializable.
func (s *store) Begin(ctx context.Context) (storage.Tx, error) {
	return beginTx(ctx, s.tables)
}
