package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "stockwise/internal/core/numerator"
)

type fakeRow struct {
	val int64
	err error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = r.val
		}
	}
	return nil
}

// fakeQuerier simulates the sys_sequences UPSERT: every call adds the
// increment (1 for strict, RangeSize for cached) and returns the new value.
type fakeQuerier struct {
	mu         sync.Mutex
	currentVal int64
	calls      int
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.mu.Lock()
	defer q.mu.Unlock()

	var increment int64 = 1
	if len(args) == 2 {
		if v, ok := args[1].(int64); ok {
			increment = v
		}
	}

	q.currentVal += increment
	q.calls++
	return &fakeRow{val: q.currentVal}
}

func TestGetNextNumber_Strict(t *testing.T) {
	q := &fakeQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := core.DefaultConfig("DLV")
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	num, err := svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "DLV-2026-00001", num)

	num, err = svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "DLV-2026-00002", num)

	assert.Equal(t, 2, q.calls)
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &fakeQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := core.DefaultConfig("STK")
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	opts := &core.Options{
		Strategy:  core.StrategyCached,
		RangeSize: 10,
	}

	// First call reserves 1..10 in one round-trip
	num, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "STK-2026-00001", num)
	assert.Equal(t, int64(10), q.currentVal)
	assert.Equal(t, 1, q.calls)

	// Subsequent calls come from memory
	num, err = svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "STK-2026-00002", num)
	assert.Equal(t, 1, q.calls)

	// Exhaust the range; the next call refills from the DB
	for i := 0; i < 8; i++ {
		_, err = svc.GetNextNumber(ctx, cfg, opts, period)
		require.NoError(t, err)
	}

	num, err = svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "STK-2026-00011", num)
	assert.Equal(t, int64(20), q.currentVal)
	assert.Equal(t, 2, q.calls)
}

func TestGetNextNumber_KeyResetPeriods(t *testing.T) {
	cfg := core.DefaultConfig("DLV")
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "DLV_2026", buildKey(cfg, period))

	cfg.ResetPeriod = "month"
	assert.Equal(t, "DLV_2026_03", buildKey(cfg, period))

	cfg.ResetPeriod = "never"
	assert.Equal(t, "DLV", buildKey(cfg, period))
}

func TestFormatNumber(t *testing.T) {
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	cfg := core.DefaultConfig("DLV")
	assert.Equal(t, "DLV-2026-00042", formatNumber(cfg, period, 42))

	cfg.IncludeYear = false
	cfg.PadWidth = 3
	assert.Equal(t, "DLV-042", formatNumber(cfg, period, 42))
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(42), ParseNumber("DLV-2026-00042"))
	assert.Equal(t, int64(7), ParseNumber("STK-00007"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
}
