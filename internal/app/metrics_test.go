package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"cookoff-scoreboard/internal/catalog"
	"cookoff-scoreboard/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk gone")
}
func (brokenStore) Set(context.Context, string, []byte) error { return errors.New("quota exceeded") }
func (brokenStore) Delete(context.Context, string) error { return errors.New("disk gone") }

func TestMetricsRecordLedgerActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	ledger := LoadLedger(ctx, catalog.MustDefault(), brokenStore{}, logger, m)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storageFailures.WithLabelValues(string(domain.StorageRead))))

	_, err := ledger.UpsertRating(ctx, "ai-chatgpt", "challenge-0-0", 5)
	require.NoError(t, err)
	_, err = ledger.UpsertNotes(ctx, "ai-chatgpt", "challenge-0-1", "fine")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("rating")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("notes")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.storageFailures.WithLabelValues(string(domain.StorageWrite))))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ledgerEntries))

	require.NoError(t, ledger.Clear(ctx))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ledgerEntries))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Positive(t, count)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.mutation("rating", 1)
		m.storageFailure(domain.StorageWrite)
		m.purged()
		m.size(3)
	})
}
