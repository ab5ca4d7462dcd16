package devicestate

import (
	"context"
	"time"

	"github.com/fadliRafidan/smart-lock-api/pkg/model"
	"github.com/fadliRafidan/smart-lock-api/pkg/notify"
	"github.com/fadliRafidan/smart-lock-api/pkg/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Coordinator is the entry point used by the transports
type Coordinator struct {
	store     storage.Interface
	reader    *Reader
	updater   *Updater
	publisher notify.Publisher
	timeout   time.Duration
}

// NewCoordinator wires the reader and updater on top of store. A positive
// timeout bounds every call; a nil publisher discards transitions.
func NewCoordinator(store storage.Interface, publisher notify.Publisher, timeout time.Duration) *Coordinator {
	if publisher == nil {
		publisher = notify.Discard
	}

	reader := NewReader(store)

	return &Coordinator{
		store:     store,
		reader:    reader,
		updater:   NewUpdater(store, reader),
		publisher: publisher,
		timeout:   timeout,
	}
}

func (co *Coordinator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if co.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, co.timeout)
}

// GetStatus returns the committed snapshot of a device
func (co *Coordinator) GetStatus(ctx context.Context, id string) (*model.Device, error) {
	ctx, cancel := co.withTimeout(ctx)
	defer cancel()

	return co.reader.GetDevice(ctx, id)
}

// UpdateStatus applies c and announces the transition once it is committed.
// Conflicts are never retried here.
func (co *Coordinator) UpdateStatus(ctx context.Context, c StatusChange) (*model.Device, error) {
	ctx, cancel := co.withTimeout(ctx)
	defer cancel()

	m, entry, err := co.updater.UpdateStatus(ctx, c)
	if err != nil {
		logger := log.WithFields(log.Fields{
			"device_id":        c.DeviceID,
			"expected_version": c.ExpectedVersion,
			"outcome":          OutcomeOf(err).String(),
		})
		if OutcomeOf(err) == OutcomeTransientFailure {
			logger.Error("Device status update failed: ", err)
		} else {
			logger.Debug("Device status update rejected: ", err)
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"device_id":       m.ID,
		"previous_status": entry.PreviousStatus,
		"status":          m.Status,
		"version_id":      m.VersionID,
		"changed_by":      entry.ChangedBy,
	}).Info("Device status updated")

	t := &notify.Transition{
		DeviceID:       m.ID,
		PreviousStatus: entry.PreviousStatus,
		Status:         m.Status,
		VersionID:      m.VersionID,
		ChangedBy:      entry.ChangedBy,
		UpdatedAt:      m.UpdatedAt,
	}
	if err := co.publisher.PublishTransition(t); err != nil {
		log.WithField("device_id", m.ID).Warn("Failed to publish transition: ", err)
	}

	return m, nil
}

// History returns the audit trail of a device, oldest first
func (co *Coordinator) History(ctx context.Context, id string) ([]model.AuditEntry, error) {
	ctx, cancel := co.withTimeout(ctx)
	defer cancel()

	if _, err := co.reader.GetDevice(ctx, id); err != nil {
		return nil, err
	}

	entries, err := co.store.AuditEntries().FetchByDeviceID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read device history")
	}

	return entries, nil
}

// ListDevices returns every device ordered by id
func (co *Coordinator) ListDevices(ctx context.Context) ([]model.Device, error) {
	ctx, cancel := co.withTimeout(ctx)
	defer cancel()

	models, err := co.store.Devices().FetchAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list devices")
	}

	return models, nil
}

// Provision registers a new device at version 0. A missing id is generated.
func (co *Coordinator) Provision(ctx context.Context, m *model.Device) error {
	ctx, cancel := co.withTimeout(ctx)
	defer cancel()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.VersionID = 0
	m.UpdatedAt = time.Time{}

	if err := co.store.Devices().Create(ctx, m); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return err
		}
		return errors.Wrap(err, "failed to provision device")
	}

	log.WithFields(log.Fields{
		"device_id": m.ID,
		"type":      m.Type,
		"status":    m.Status,
	}).Info("Device provisioned")

	return nil
}
