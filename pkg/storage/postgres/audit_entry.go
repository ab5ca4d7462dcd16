package postgres

import (
	"context"
	"time"

	"github.com/fadliRafidan/smart-lock-api/pkg/model"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

func newAuditEntryStore(db *sqlx.DB) *auditEntryStore {
	return &auditEntryStore{
		db: db,
	}
}

type auditEntryStore struct {
	db *sqlx.DB
}

type sqlDataAuditEntry struct {
	ID             int64     `db:"id"`
	DeviceID       string    `db:"device_id"`
	PreviousStatus string    `db:"previous_status"`
	NewStatus      string    `db:"new_status"`
	ChangedBy      string    `db:"changed_by"`
	CreatedAt      time.Time `db:"created_at"`
}

func (d *sqlDataAuditEntry) Model() *model.AuditEntry {
	return &model.AuditEntry{
		ID:             d.ID,
		DeviceID:       d.DeviceID,
		PreviousStatus: d.PreviousStatus,
		NewStatus:      d.NewStatus,
		ChangedBy:      d.ChangedBy,
		CreatedAt:      d.CreatedAt.UTC(),
	}
}

func (s *auditEntryStore) FetchByDeviceID(ctx context.Context, deviceID string) ([]model.AuditEntry, error) {
	rows := make([]sqlDataAuditEntry, 0)
	models := make([]model.AuditEntry, 0)

	query := `SELECT id, device_id, previous_status, new_status, changed_by, created_at
		FROM device_logs WHERE device_id=$1 ORDER BY id`
	if err := s.db.SelectContext(ctx, &rows, query, deviceID); err != nil {
		return nil, errors.Wrap(err, "failed to fetch device logs")
	}

	for _, d := range rows {
		models = append(models, *d.Model())
	}

	return models, nil
}

// insertAuditEntry only runs inside a unit of work; device_logs is never
// written outside of an accepted status change.
func insertAuditEntry(ctx context.Context, tx *sqlx.Tx, m *model.AuditEntry) error {
	query := `INSERT INTO device_logs (device_id, previous_status, new_status, changed_by, created_at)
		VALUES ($1, $2, $3, $4, NOW()) RETURNING id, created_at`

	var row struct {
		ID        int64     `db:"id"`
		CreatedAt time.Time `db:"created_at"`
	}
	if err := tx.GetContext(ctx, &row, query, m.DeviceID, m.PreviousStatus, m.NewStatus, m.ChangedBy); err != nil {
		return errors.Wrap(err, "failed to insert device log")
	}
	m.ID = row.ID
	m.CreatedAt = row.CreatedAt.UTC()

	return nil
}
