package postgres

import (
	"context"
	"time"

	"github.com/fadliRafidan/smart-lock-api/pkg/storage"
	"github.com/jmoiron/sqlx"
)

// store contains all PostgreSQL based sub-stores for managing the models
type store struct {
	db               *sqlx.DB
	statementTimeout time.Duration
	devices          *deviceStore
	auditEntries     *auditEntryStore
}

// NewStore creates a new PostgreSQL based Storage interface. A positive
// statementTimeout is applied to every statement of a unit of work.
func NewStore(db *sqlx.DB, statementTimeout time.Duration) storage.Interface {
	return &store{
		db:               db,
		statementTimeout: statementTimeout,
		devices:          newDeviceStore(db),
		auditEntries:     newAuditEntryStore(db),
	}
}

// Devices returns a sub-store for managing the Device model
func (s *store) Devices() storage.DeviceStore {
	return s.devices
}

// AuditEntries returns a sub-store for reading the device_logs table
func (s *store) AuditEntries() storage.AuditEntryStore {
	return s.auditEntries
}

// Begin opens a database transaction bound to ctx. database/sql rolls the
// transaction back on its own if ctx is cancelled before Commit.
func (s *store) Begin(ctx context.Context) (storage.Tx, error) {
	return beginTx(ctx, s.db, s.statementTimeout)
}
