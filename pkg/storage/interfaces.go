package storage

import (
	"context"

	"github.com/fadliRafidan/smart-lock-api/pkg/model"
)

// Interface is implemented by the storage
type Interface interface {
	Devices() DeviceStore
	AuditEntries() AuditEntryStore

	// Begin starts a unit of work. Nothing done through the returned Tx is
	// visible to other callers until Commit succeeds.
	Begin(ctx context.Context) (Tx, error)
}

// DeviceStore is responsible for reading and provisioning the Device model
type DeviceStore interface {
	FetchAll(ctx context.Context) ([]model.Device, error)
	FindByID(ctx context.Context, id string) (*model.Device, error)
	Create(ctx context.Context, m *model.Device) error
}

// AuditEntryStore gives read access to the device transition history
type AuditEntryStore interface {
	FetchByDeviceID(ctx context.Context, deviceID string) ([]model.AuditEntry, error)
}

// Tx is a unit of work against the device and audit tables. Rollback after a
// successful Commit is a no-op, so it is safe to defer.
type Tx interface {
	FindDevice(ctx context.Context, id string) (*model.Device, error)

	// CompareAndSwapStatus sets the status and bumps the version of the device
	// in a single statement, but only while its stored version still equals
	// expectedVersion. swapped is false when no row matched.
	CompareAndSwapStatus(ctx context.Context, id, status string, expectedVersion int64) (m *model.Device, swapped bool, err error)

	InsertAuditEntry(ctx context.Context, m *model.AuditEntry) error

	Commit() error
	Rollback() error
}
