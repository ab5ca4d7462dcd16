package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fadliRafidan/smart-lock-api/pkg/model"
	"github.com/fadliRafidan/smart-lock-api/pkg/storage"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// uniqueViolation is the PostgreSQL error code for a duplicate key
const uniqueViolation = "23505"

func newDeviceStore(db *sqlx.DB) *deviceStore {
	return &deviceStore{
		db: db,
	}
}

type deviceStore struct {
	db *sqlx.DB
}

type sqlDataDevice struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Type      string    `db:"type"`
	Status    string    `db:"status"`
	VersionID int64     `db:"version_id"`
	UpdatedAt time.Time `db:"updated_at"`
}

var sqlParamsDevice = []string{
	"id",
	"name",
	"type",
	"status",
	"version_id",
	"updated_at",
}

var selectDeviceColumns = strings.Join(sqlParamsDevice, ", ")

func (d *sqlDataDevice) Scan(m *model.Device) error {
	var updatedAt = m.UpdatedAt

	if m.UpdatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	d.ID = m.ID
	d.Name = m.Name
	d.Type = m.Type
	d.Status = m.Status
	d.VersionID = m.VersionID
	d.UpdatedAt = updatedAt

	return nil
}

func (d *sqlDataDevice) Model() (*model.Device, error) {
	m := &model.Device{
		ID:        d.ID,
		Name:      d.Name,
		Type:      d.Type,
		Status:    d.Status,
		VersionID: d.VersionID,
		UpdatedAt: d.UpdatedAt.UTC(),
	}

	return m, nil
}

func (s *deviceStore) FetchAll(ctx context.Context) ([]model.Device, error) {
	return fetchAllDevices(ctx, s.db)
}

func (s *deviceStore) FindByID(ctx context.Context, id string) (*model.Device, error) {
	return findDeviceByID(ctx, s.db, id)
}

func (s *deviceStore) Create(ctx context.Context, m *model.Device) error {
	return createDevice(ctx, s.db, m)
}

func fetchAllDevices(ctx context.Context, db sqlx.QueryerContext) ([]model.Device, error) {
	rows := make([]sqlDataDevice, 0)
	models := make([]model.Device, 0)

	query := fmt.Sprintf("SELECT %s FROM devices ORDER BY id", selectDeviceColumns)
	if err := sqlx.SelectContext(ctx, db, &rows, query); err != nil {
		return nil, errors.Wrap(err, "failed to fetch all devices")
	}

	for _, d := range rows {
		m, err := d.Model()
		if err != nil {
			return nil, errors.Wrap(err, "failed to convert SQL data to device model")
		}

		models = append(models, *m)
	}

	return models, nil
}

// findDeviceByID is shared by the plain reader and the unit of work
func findDeviceByID(ctx context.Context, db sqlx.QueryerContext, id string) (*model.Device, error) {
	d := sqlDataDevice{}
	query := fmt.Sprintf("SELECT %s FROM devices WHERE id=$1", selectDeviceColumns)
	if err := sqlx.GetContext(ctx, db, &d, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find device")
	}

	return d.Model()
}

func createDevice(ctx context.Context, db *sqlx.DB, m *model.Device) error {
	d := sqlDataDevice{}
	if err := d.Scan(m); err != nil {
		return errors.Wrap(err, "failed to convert device model to SQL data")
	}

	query := fmt.Sprintf(
		"INSERT INTO devices (%s) VALUES (%s)",
		selectDeviceColumns,
		":"+strings.Join(sqlParamsDevice, ", :"),
	)
	if _, err := db.NamedExecContext(ctx, query, d); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return storage.ErrAlreadyExists
		}
		return errors.Wrap(err, "failed to create device")
	}
	m.UpdatedAt = d.UpdatedAt

	return nil
}
