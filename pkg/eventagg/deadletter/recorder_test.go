package deadletter_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/eventagg/pkg/eventagg"
	"github.com/randalmurphal/eventagg/pkg/eventagg/config"
	"github.com/randalmurphal/eventagg/pkg/eventagg/deadletter"
)

type paymentFailed struct {
	OrderID int `json:"order_id"`
}

type paymentListener struct{ seen int }

func (l *paymentListener) OnFailed(paymentFailed) error {
	l.seen++
	return nil
}

func (l *paymentListener) Contracts() []eventagg.Contract {
	return []eventagg.Contract{eventagg.Handles((*paymentListener).OnFailed)}
}

func TestRecorder_CapturesUnhandledMessages(t *testing.T) {
	store := deadletter.NewMemoryStore(10)
	rec := deadletter.NewRecorder(store)

	cfg := eventagg.DefaultConfig()
	cfg.DefaultOwnership = eventagg.OwnershipStrong
	cfg.OnZeroListeners = rec.Record
	agg := eventagg.NewAggregator(&cfg)
	ctx := context.Background()

	n, err := agg.Publish(ctx, paymentFailed{OrderID: 9})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	l := &paymentListener{}
	require.NoError(t, agg.AddListener(l))
	n, err = agg.Publish(ctx, paymentFailed{OrderID: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the unhandled publish is recorded")
	assert.Equal(t, "deadletter_test.paymentFailed", entries[0].MessageType)

	var msg paymentFailed
	require.NoError(t, entries[0].Decode(&msg))
	assert.Equal(t, 9, msg.OrderID)
	assert.Same(t, store, rec.Store())
}

// failingStore rejects every save.
type failingStore struct {
	deadletter.Store
	err error
}

func (s failingStore) Save(context.Context, *deadletter.Entry) error { return s.err }

func TestRecorder_ReportsFailures(t *testing.T) {
	errSave := errors.New("disk full")

	var mu sync.Mutex
	var failures []error
	rec := deadletter.NewRecorder(
		failingStore{Store: deadletter.NewMemoryStore(1), err: errSave},
		deadletter.WithLogger(nil),
		deadletter.WithErrorHandler(func(_ any, err error) {
			mu.Lock()
			defer mu.Unlock()
			failures = append(failures, err)
		}),
		deadletter.WithTimeout(time.Second),
	)

	assert.NotPanics(t, func() { rec.Record(paymentFailed{}) })

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], errSave)
}

func TestRecorder_UnencodableMessageStillSaved(t *testing.T) {
	store := deadletter.NewMemoryStore(10)

	var failures int
	rec := deadletter.NewRecorder(store,
		deadletter.WithLogger(nil),
		deadletter.WithErrorHandler(func(any, error) { failures++ }),
	)
	rec.Record(func() {})

	assert.Equal(t, 1, failures)
	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name     string
		settings config.DeadLetter
		wantNil  bool
		wantErr  bool
	}{
		{"disabled", config.DeadLetter{}, true, false},
		{"memory", config.DeadLetter{Driver: config.DriverMemory, MaxEntries: 5}, false, false},
		{"sqlite", config.DeadLetter{Driver: config.DriverSQLite, Path: ":memory:"}, false, false},
		{"unknown", config.DeadLetter{Driver: "redis"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := deadletter.Open(tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.wantNil {
				assert.Nil(t, store)
				return
			}
			require.NotNil(t, store)
			defer store.Close()

			n, err := store.Count(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 0, n)
		})
	}
}

func TestRecorder_DisabledStoreIsNoop(t *testing.T) {
	store, err := deadletter.Open(config.DeadLetter{})
	require.NoError(t, err)
	require.Nil(t, store)

	rec := deadletter.NewRecorder(store)
	cfg := eventagg.DefaultConfig()
	cfg.OnZeroListeners = rec.Record
	agg := eventagg.NewAggregator(&cfg)

	assert.NotPanics(t, func() {
		n, err := agg.Publish(context.Background(), paymentFailed{OrderID: 1})
		assert.NoError(t, err)
		assert.Equal(t, 0, n)
	})
	assert.Nil(t, rec.Store())
}
