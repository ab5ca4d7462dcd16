package memory

import (
	"context"
	"time"

	"github.com/fadliRafidan/smart-lock-api/pkg/model"
	"github.com/fadliRafidan/smart-lock-api/pkg/storage"
)

// tx stages its writes and applies them to the tables on Commit. It owns the
// tables' writer slot from beginTx until Commit or Rollback, but takes the
// table lock only to read committed rows and to apply its writes.
type tx struct {
	ctx          context.Context
	t            *tables
	now          time.Time
	devices      map[string]model.Device
	auditEntries []model.AuditEntry
	done         bool
}

func beginTx(ctx context.Context, t *tables) (*tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := t.writer.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	return &tx{
		ctx:     ctx,
		t:       t,
		now:     time.Now().UTC(),
		devices: make(map[string]model.Device),
	}, nil
}

func (x *tx) lookup(id string) (model.Device, bool) {
	if m, ok := x.devices[id]; ok {
		return m, true
	}

	x.t.RLock()
	defer x.t.RUnlock()
	m, ok := x.t.devices[id]
	return m, ok
}

func (x *tx) check(ctx context.Context) error {
	if x.done {
		return storage.ErrTxFinished
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return x.ctx.Err()
}

func (x *tx) FindDevice(ctx context.Context, id string) (*model.Device, error) {
	if err := x.check(ctx); err != nil {
		return nil, err
	}

	m, ok := x.lookup(id)
	if !ok {
		return nil, storage.ErrNotFound
	}

	return &m, nil
}

func (x *tx) CompareAndSwapStatus(ctx context.Context, id, status string, expectedVersion int64) (*model.Device, bool, error) {
	if err := x.check(ctx); err != nil {
		return nil, false, err
	}

	m, ok := x.lookup(id)
	if !ok || m.VersionID != expectedVersion {
		return nil, false, nil
	}

	m.Status = status
	m.VersionID++
	m.UpdatedAt = x.now
	x.devices[id] = m

	return &m, true, nil
}

func (x *tx) InsertAuditEntry(ctx context.Context, m *model.AuditEntry) error {
	if err := x.check(ctx); err != nil {
		return err
	}

	// Only the writer slot holder advances nextAuditID
	x.t.RLock()
	next := x.t.nextAuditID
	x.t.RUnlock()

	m.ID = next + int64(len(x.auditEntries))
	m.CreatedAt = x.now
	x.auditEntries = append(x.auditEntries, *m)

	return nil
}

func (x *tx) Commit() error {
	if x.done {
		return storage.ErrTxFinished
	}
	defer x.finish()

	// A unit of work whose caller went away is never applied
	if err := x.ctx.Err(); err != nil {
		return err
	}

	x.t.Lock()
	defer x.t.Unlock()

	for id, m := range x.devices {
		x.t.devices[id] = m
	}
	x.t.auditEntries = append(x.t.auditEntries, x.auditEntries...)
	x.t.nextAuditID += int64(len(x.auditEntries))

	return nil
}

func (x *tx) Rollback() error {
	if x.done {
		return nil
	}
	x.finish()
	return nil
}

func (x *tx) finish() {
	x.done = true
	x.devices = nil
	x.auditEntries = nil
	x.t.writer.Release(1)
}
