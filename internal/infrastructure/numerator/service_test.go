package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "agroshop/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences UPSERT: one counter per key.
type mockQuerier struct {
	mu   sync.Mutex
	vals map[string]int64
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{vals: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, _ := args[0].(string)
	if len(args) == 2 {
		// SetNextNumber path: overwrite with the supplied value.
		if v, ok := args[1].(int64); ok {
			m.vals[key] = v
			return &mockRow{val: v}
		}
	}
	m.vals[key]++
	return &mockRow{val: m.vals[key]}
}

func TestGetNextNumber_Sequential(t *testing.T) {
	svc := NewWithQuerier(newMockQuerier())
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("GR")
	period := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	num, err := svc.GetNextNumber(ctx, cfg, period)
	require.NoError(t, err)
	assert.Equal(t, "GR-2026-00001", num)

	num, err = svc.GetNextNumber(ctx, cfg, period)
	require.NoError(t, err)
	assert.Equal(t, "GR-2026-00002", num)
}

func TestGetNextNumber_SeparateSequencesPerPrefix(t *testing.T) {
	q := newMockQuerier()
	svc := NewWithQuerier(q)
	ctx := context.Background()
	period := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	numOrd, err := svc.GetNextNumber(ctx, corenumerator.DefaultConfig("ORD"), period)
	require.NoError(t, err)
	numGr, err := svc.GetNextNumber(ctx, corenumerator.DefaultConfig("GR"), period)
	require.NoError(t, err)

	assert.Equal(t, "ORD-2026-00001", numOrd)
	assert.Equal(t, "GR-2026-00001", numGr, "prefixes do not share a counter")
}

func TestGetNextNumber_YearlyReset(t *testing.T) {
	svc := NewWithQuerier(newMockQuerier())
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("ORD")

	num, err := svc.GetNextNumber(ctx, cfg, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "ORD-2026-00001", num)

	num, err = svc.GetNextNumber(ctx, cfg, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "ORD-2027-00001", num, "a new year starts a fresh sequence")
}

func TestGetNextNumber_NoYear(t *testing.T) {
	svc := NewWithQuerier(newMockQuerier())
	cfg := corenumerator.Config{Prefix: "SEQ", IncludeYear: false, PadWidth: 3, ResetPeriod: "never"}

	num, err := svc.GetNextNumber(context.Background(), cfg, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "SEQ-001", num)
}

func TestSetNextNumber(t *testing.T) {
	q := newMockQuerier()
	svc := NewWithQuerier(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("GR")
	period := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, svc.SetNextNumber(ctx, cfg, period, 100))

	num, err := svc.GetNextNumber(ctx, cfg, period)
	require.NoError(t, err)
	assert.Equal(t, "GR-2026-00100", num)
}

func TestSetNextNumber_RejectsNonPositive(t *testing.T) {
	svc := NewWithQuerier(newMockQuerier())

	err := svc.SetNextNumber(context.Background(), corenumerator.DefaultConfig("GR"), time.Now(), 0)
	assert.Error(t, err)
}

func TestGetNextNumber_Uninitialized(t *testing.T) {
	var svc *Service
	_, err := svc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("GR"), time.Now())
	assert.Error(t, err)
}
