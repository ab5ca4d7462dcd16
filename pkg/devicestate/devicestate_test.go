package devicestate

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fadliRafidan/smart-lock-api/pkg/model"
	"github.com/fadliRafidan/smart-lock-api/pkg/notify"
	"github.com/fadliRafidan/smart-lock-api/pkg/storage"
	"github.com/fadliRafidan/smart-lock-api/pkg/storage/memory"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const d1 = "1b3f4bf7-e9ae-4a27-a0f4-d3dd58375225"

func newTestCoordinator(t *testing.T, store storage.Interface, publisher notify.Publisher) *Coordinator {
	t.Helper()

	require.NoError(t, store.Devices().Create(context.Background(), &model.Device{
		ID:     d1,
		Name:   "Room 101",
		Type:   "door_lock",
		Status: "unlocked",
	}))

	return NewCoordinator(store, publisher, 0)
}

type recordingPublisher struct {
	mu          sync.Mutex
	transitions []notify.Transition
	err         error
}

func (p *recordingPublisher) PublishTransition(t *notify.Transition) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transitions = append(p.transitions, *t)
	return p.err
}

func TestUpdateStatusAccepted(t *testing.T) {
	store := memory.NewStore()
	co := newTestCoordinator(t, store, nil)
	ctx := context.Background()

	m, err := co.UpdateStatus(ctx, StatusChange{DeviceID: d1, Status: "locked", ExpectedVersion: 0, ChangedBy: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "locked", m.Status)
	assert.Equal(t, int64(1), m.VersionID)
	assert.False(t, m.UpdatedAt.IsZero())

	entries, err := co.History(ctx, d1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, d1, entries[0].DeviceID)
	assert.Equal(t, "unlocked", entries[0].PreviousStatus)
	assert.Equal(t, "locked", entries[0].NewStatus)
	assert.Equal(t, "alice", entries[0].ChangedBy)
	assert.Equal(t, m.UpdatedAt, entries[0].CreatedAt)
}

func TestUpdateStatusStaleVersionConflicts(t *testing.T) {
	co := newTestCoordinator(t, memory.NewStore(), nil)
	ctx := context.Background()

	_, err := co.UpdateStatus(ctx, StatusChange{DeviceID: d1, Status: "locked", ExpectedVersion: 0})
	require.NoError(t, err)

	_, err = co.UpdateStatus(ctx, StatusChange{DeviceID: d1, Status: "locked", ExpectedVersion: 0})
	require.Error(t, err)
	assert.Equal(t, OutcomeConflict, OutcomeOf(err))

	c, ok := IsConflict(err)
	require.True(t, ok)
	assert.Equal(t, "locked", c.Current.Status)
	assert.Equal(t, int64(1), c.Current.VersionID)
	assert.Equal(t, int64(0), c.ExpectedVersion)

	entries, err := co.History(ctx, d1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUpdateStatusFutureVersionConflicts(t *testing.T) {
	co := newTestCoordinator(t, memory.NewStore(), nil)

	_, err := co.UpdateStatus(context.Background(), StatusChange{DeviceID: d1, Status: "locked", ExpectedVersion: 7})
	c, ok := IsConflict(err)
	require.True(t, ok)
	assert.Equal(t, "unlocked", c.Current.Status)
	assert.Equal(t, int64(0), c.Current.VersionID)
}

func TestUpdateStatusUnknownDevice(t *testing.T) {
	co := newTestCoordinator(t, memory.NewStore(), nil)

	_, err := co.UpdateStatus(context.Background(), StatusChange{DeviceID: "nonexistent", Status: "locked"})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, OutcomeNotFound, OutcomeOf(err))
}

func TestGetStatusUnknownDevice(t *testing.T) {
	co := newTestCoordinator(t, memory.NewStore(), nil)

	_, err := co.GetStatus(context.Background(), "nonexistent")
	assert.Equal(t, OutcomeNotFound, OutcomeOf(err))

	_, err = co.History(context.Background(), "nonexistent")
	assert.Equal(t, OutcomeNotFound, OutcomeOf(err))
}

func TestGetStatusIsRepeatable(t *testing.T) {
	co := newTestCoordinator(t, memory.NewStore(), nil)
	ctx := context.Background()

	first, err := co.GetStatus(ctx, d1)
	require.NoError(t, err)
	second, err := co.GetStatus(ctx, d1)
	require.NoError(t, err)

	assert.Equal(t, first.VersionID, second.VersionID)
	assert.Equal(t, first.Status, second.Status)
}

func TestUpdateStatusSameStatusStillCounts(t *testing.T) {
	co := newTestCoordinator(t, memory.NewStore(), nil)
	ctx := context.Background()

	m, err := co.UpdateStatus(ctx, StatusChange{DeviceID: d1, Status: "unlocked", ExpectedVersion: 0})
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.VersionID)

	entries, err := co.History(ctx, d1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "unlocked", entries[0].PreviousStatus)
	assert.Equal(t, "unlocked", entries[0].NewStatus)
}

func TestUpdateStatusDefaultActor(t *testing.T) {
	co := newTestCoordinator(t, memory.NewStore(), nil)
	ctx := context.Background()

	_, err := co.UpdateStatus(ctx, StatusChange{DeviceID: d1, Status: "locked"})
	require.NoError(t, err)

	entries, err := co.History(ctx, d1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.DefaultActor, entries[0].ChangedBy)
}

func TestVersionMonotonicityAndAuditCompleteness(t *testing.T) {
	co := newTestCoordinator(t, memory.NewStore(), nil)
	ctx := context.Background()

	const n = 25
	statuses := []string{"locked", "unlocked"}
	for i := 0; i < n; i++ {
		m, err := co.UpdateStatus(ctx, StatusChange{
			DeviceID:        d1,
			Status:          statuses[i%2],
			ExpectedVersion: int64(i),
		})
		require.NoError(t, err)
		require.Equal(t, int64(i+1), m.VersionID)
	}

	m, err := co.GetStatus(ctx, d1)
	require.NoError(t, err)
	assert.Equal(t, int64(n), m.VersionID)

	entries, err := co.History(ctx, d1)
	require.NoError(t, err)
	require.Len(t, entries, n)

	previous := "unlocked"
	for i, e := range entries {
		assert.Equal(t, previous, e.PreviousStatus, "entry %d", i)
		assert.Equal(t, statuses[i%2], e.NewStatus, "entry %d", i)
		previous = e.NewStatus
	}
}

func TestConcurrentUpdatesExactlyOneWins(t *testing.T) {
	co := newTestCoordinator(t, memory.NewStore(), nil)
	ctx := context.Background()

	_, err := co.UpdateStatus(ctx, StatusChange{DeviceID: d1, Status: "locked", ExpectedVersion: 0})
	require.NoError(t, err)

	const callers = 2
	var wg sync.WaitGroup
	start := make(chan struct{})
	results := make([]*model.Device, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = co.UpdateStatus(ctx, StatusChange{DeviceID: d1, Status: "unlocked", ExpectedVersion: 1})
		}(i)
	}
	close(start)
	wg.Wait()

	var successes, conflicts int
	for i := 0; i < callers; i++ {
		switch OutcomeOf(errs[i]) {
		case OutcomeSuccess:
			successes++
			assert.Equal(t, int64(2), results[i].VersionID)
		case OutcomeConflict:
			conflicts++
			c, _ := IsConflict(errs[i])
			assert.Equal(t, "unlocked", c.Current.Status)
			assert.Equal(t, int64(2), c.Current.VersionID)
		default:
			t.Fatalf("unexpected error: %v", errs[i])
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	entries, err := co.History(ctx, d1)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestConcurrentUpdatesManyCallers(t *testing.T) {
	co := newTestCoordinator(t, memory.NewStore(), nil)
	ctx := context.Background()

	const callers = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := co.UpdateStatus(ctx, StatusChange{
				DeviceID:  d1,
				Status:    "locked",
				ChangedBy: fmt.Sprintf("caller-%d", i),
			})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.Equal(t, OutcomeConflict, OutcomeOf(err))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)

	m, err := co.GetStatus(ctx, d1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.VersionID)
}

// failingStore lets a test break a unit of work between the status swap and
// the audit insert.
type failingStore struct {
	storage.Interface
	beforeInsert func() error
}

func (s *failingStore) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := s.Interface.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &failingTx{Tx: tx, beforeInsert: s.beforeInsert}, nil
}

type failingTx struct {
	storage.Tx
	beforeInsert func() error
}

func (tx *failingTx) InsertAuditEntry(ctx context.Context, m *model.AuditEntry) error {
	if err := tx.beforeInsert(); err != nil {
		return err
	}
	return tx.Tx.InsertAuditEntry(ctx, m)
}

func TestUpdateStatusInterruptedLeavesNothing(t *testing.T) {
	store := &failingStore{
		Interface:    memory.NewStore(),
		beforeInsert: func() error { return fmt.Errorf("disk full") },
	}
	co := newTestCoordinator(t, store, nil)
	ctx := context.Background()

	_, err := co.UpdateStatus(ctx, StatusChange{DeviceID: d1, Status: "locked", ExpectedVersion: 0})
	require.Error(t, err)
	assert.Equal(t, OutcomeTransientFailure, OutcomeOf(err))

	m, err := co.GetStatus(ctx, d1)
	require.NoError(t, err)
	assert.Equal(t, "unlocked", m.Status)
	assert.Equal(t, int64(0), m.VersionID)

	entries, err := co.History(ctx, d1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdateStatusCancelledLeavesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := &failingStore{
		Interface: memory.NewStore(),
		beforeInsert: func() error {
			cancel()
			return nil
		},
	}
	co := newTestCoordinator(t, store, nil)

	_, err := co.UpdateStatus(ctx, StatusChange{DeviceID: d1, Status: "locked", ExpectedVersion: 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	m, err := co.GetStatus(context.Background(), d1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.VersionID)

	entries, err := co.History(context.Background(), d1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdateStatusPublishesTransition(t *testing.T) {
	publisher := &recordingPublisher{}
	co := newTestCoordinator(t, memory.NewStore(), publisher)
	ctx := context.Background()

	_, err := co.UpdateStatus(ctx, StatusChange{DeviceID: d1, Status: "locked", ChangedBy: "automation"})
	require.NoError(t, err)

	_, err = co.UpdateStatus(ctx, StatusChange{DeviceID: d1, Status: "locked", ExpectedVersion: 0})
	require.Error(t, err)

	require.Len(t, publisher.transitions, 1)
	tr := publisher.transitions[0]
	assert.Equal(t, d1, tr.DeviceID)
	assert.Equal(t, "unlocked", tr.PreviousStatus)
	assert.Equal(t, "locked", tr.Status)
	assert.Equal(t, int64(1), tr.VersionID)
	assert.Equal(t, "automation", tr.ChangedBy)
}

func TestUpdateStatusIgnoresPublishFailure(t *testing.T) {
	publisher := &recordingPublisher{err: fmt.Errorf("nats: connection closed")}
	co := newTestCoordinator(t, memory.NewStore(), publisher)

	m, err := co.UpdateStatus(context.Background(), StatusChange{DeviceID: d1, Status: "locked"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.VersionID)
}

func TestProvision(t *testing.T) {
	co := NewCoordinator(memory.NewStore(), nil, 0)
	ctx := context.Background()

	m := &model.Device{Name: "Front door", Type: "door_lock", Status: "locked", VersionID: 42}
	require.NoError(t, co.Provision(ctx, m))
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, int64(0), m.VersionID)

	got, err := co.GetStatus(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "locked", got.Status)
	assert.Equal(t, int64(0), got.VersionID)

	err = co.Provision(ctx, &model.Device{ID: m.ID, Name: "Dup", Type: "door_lock", Status: "locked"})
	assert.True(t, errors.Is(err, ErrAlreadyExists))

	devices, err := co.ListDevices(ctx)
	require.NoError(t, err)
	assert.Len(t, devices, 1)
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, OutcomeOf(nil))
	assert.Equal(t, OutcomeNotFound, OutcomeOf(errors.Wrap(ErrNotFound, "lookup")))
	assert.Equal(t, OutcomeConflict, OutcomeOf(errors.Wrap(&ConflictError{}, "update")))
	assert.Equal(t, OutcomeTransientFailure, OutcomeOf(fmt.Errorf("connection refused")))
	assert.Equal(t, "conflict", OutcomeConflict.String())
}

func TestUpdateStatusBoundedByTimeoutWhileUnitOfWorkOpen(t *testing.T) {
	store := memory.NewStore()
	newTestCoordinator(t, store, nil)
	co := NewCoordinator(store, nil, 50*time.Millisecond)

	held, err := store.Begin(context.Background())
	require.NoError(t, err)
	defer held.Rollback()

	start := time.Now()
	_, err = co.UpdateStatus(context.Background(), StatusChange{DeviceID: d1, Status: "locked", ExpectedVersion: 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, OutcomeTransientFailure, OutcomeOf(err))
	assert.Less(t, time.Since(start), 400*time.Millisecond)

	start = time.Now()
	m, err := co.GetStatus(context.Background(), d1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.VersionID)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}
