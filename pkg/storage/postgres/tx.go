package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fadliRafidan/smart-lock-api/pkg/model"
	"github.com/fadliRafidan/smart-lock-api/pkg/storage"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type tx struct {
	tx *sqlx.Tx
}

func beginTx(ctx context.Context, db *sqlx.DB, statementTimeout time.Duration) (*tx, error) {
	t, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}

	if statementTimeout > 0 {
		// SET LOCAL doesn't accept bind parameters
		query := fmt.Sprintf("SET LOCAL statement_timeout = %d", statementTimeout.Milliseconds())
		if _, err := t.ExecContext(ctx, query); err != nil {
			_ = t.Rollback()
			return nil, errors.Wrap(err, "failed to set statement timeout")
		}
	}

	return &tx{tx: t}, nil
}

func (t *tx) FindDevice(ctx context.Context, id string) (*model.Device, error) {
	return findDeviceByID(ctx, t.tx, id)
}

func (t *tx) CompareAndSwapStatus(ctx context.Context, id, status string, expectedVersion int64) (*model.Device, bool, error) {
	d := sqlDataDevice{}
	query := fmt.Sprintf(`UPDATE devices
		SET status=$1, version_id=version_id+1, updated_at=NOW()
		WHERE id=$2 AND version_id=$3
		RETURNING %s`, selectDeviceColumns)
	if err := t.tx.GetContext(ctx, &d, query, status, id, expectedVersion); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "failed to update device status")
	}

	m, err := d.Model()
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to convert SQL data to device model")
	}

	return m, true, nil
}

func (t *tx) InsertAuditEntry(ctx context.Context, m *model.AuditEntry) error {
	return insertAuditEntry(ctx, t.tx, m)
}

func (t *tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		if err == sql.ErrTxDone {
			return storage.ErrTxFinished
		}
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

func (t *tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return errors.Wrap(err, "failed to rollback transaction")
	}
	return nil
}
