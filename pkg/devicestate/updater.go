package devicestate

import (
	"context"

	"github.com/fadliRafidan/smart-lock-api/pkg/model"
	"github.com/fadliRafidan/smart-lock-api/pkg/storage"
	"github.com/pkg/errors"
)

// StatusChange is a request to move a device to Status, valid only while the
// device is still at ExpectedVersion.
type StatusChange struct {
	DeviceID        string
	Status          string
	ExpectedVersion int64
	ChangedBy       string
}

// Updater applies status changes with optimistic concurrency
type Updater struct {
	store  storage.Interface
	reader *Reader
}

func NewUpdater(store storage.Interface, reader *Reader) *Updater {
	return &Updater{
		store:  store,
		reader: reader,
	}
}

// UpdateStatus applies c in a single unit of work and returns the updated
// device with the audit entry recorded for it.
//
// It fails with ErrNotFound if the device doesn't exist and with a
// *ConflictError if the stored version differs from c.ExpectedVersion. Any
// other error means the unit of work was rolled back.
func (u *Updater) UpdateStatus(ctx context.Context, c StatusChange) (*model.Device, *model.AuditEntry, error) {
	if c.ChangedBy == "" {
		c.ChangedBy = model.DefaultActor
	}

	tx, err := u.store.Begin(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to begin unit of work")
	}
	defer tx.Rollback()

	current, err := tx.FindDevice(ctx, c.DeviceID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, errors.Wrap(err, "failed to look up device")
	}
	previousStatus := current.Status

	updated, swapped, err := tx.CompareAndSwapStatus(ctx, c.DeviceID, c.Status, c.ExpectedVersion)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to swap device status")
	}
	if !swapped {
		// Release the unit of work before reading the committed state
		if err := tx.Rollback(); err != nil {
			return nil, nil, err
		}
		return nil, nil, u.conflict(ctx, c)
	}

	entry := &model.AuditEntry{
		DeviceID:       c.DeviceID,
		PreviousStatus: previousStatus,
		NewStatus:      c.Status,
		ChangedBy:      c.ChangedBy,
	}
	if err := tx.InsertAuditEntry(ctx, entry); err != nil {
		return nil, nil, errors.Wrap(err, "failed to record transition")
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, errors.Wrap(err, "failed to commit transition")
	}

	return updated, entry, nil
}

// conflict re-reads the device outside the aborted unit of work so the error
// carries the latest committed version, not the one seen before the race.
func (u *Updater) conflict(ctx context.Context, c StatusChange) error {
	m, err := u.reader.GetDevice(ctx, c.DeviceID)
	if err != nil {
		return err
	}

	return &ConflictError{
		ExpectedVersion: c.ExpectedVersion,
		Current:         *m,
	}
}
