package numerator

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "woodline/internal/core/numerator"
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

type mockQuerier struct {
	counters map[string]int64
	lastKey  string
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}
	key, _ := args[0].(string)
	m.lastKey = key

	if len(args) == 2 {
		// SetNextNumber path.
		val, _ := args[1].(int64)
		m.counters[key] = val
		return &mockRow{val: val}
	}

	m.counters[key]++
	return &mockRow{val: m.counters[key]}
}

func fixture() (*Service, *mockQuerier) {
	q := &mockQuerier{}
	svc := New(func(ctx context.Context) Querier { return q })
	return svc, q
}

func TestGetNextNumber_Sequential(t *testing.T) {
	svc, _ := fixture()
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	first, err := svc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("S"), period)
	require.NoError(t, err)
	assert.Equal(t, "S-2026-00001", first)

	second, err := svc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("S"), period)
	require.NoError(t, err)
	assert.Equal(t, "S-2026-00002", second)
}

func TestGetNextNumber_PrefixesAreIndependent(t *testing.T) {
	svc, _ := fixture()
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	_, err := svc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("S"), period)
	require.NoError(t, err)

	payment, err := svc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("PAY"), period)
	require.NoError(t, err)
	assert.Equal(t, "PAY-2026-00001", payment)
}

func TestGetNextNumber_YearlyReset(t *testing.T) {
	svc, q := fixture()

	_, err := svc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("S"), time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "S_2025", q.lastKey)

	number, err := svc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("S"), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "S_2026", q.lastKey)
	assert.Equal(t, "S-2026-00001", number)
}

func TestGetNextNumber_NoYear(t *testing.T) {
	svc, q := fixture()
	cfg := corenumerator.Config{Prefix: "REG", PadWidth: 3, ResetPeriod: "never"}

	number, err := svc.GetNextNumber(context.Background(), cfg, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "REG-001", number)
	assert.Equal(t, "REG", q.lastKey)
}

func TestSetNextNumber(t *testing.T) {
	svc, _ := fixture()
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	cfg := corenumerator.DefaultConfig("S")

	require.NoError(t, svc.SetNextNumber(context.Background(), cfg, period, 100))

	number, err := svc.GetNextNumber(context.Background(), cfg, period)
	require.NoError(t, err)
	assert.Equal(t, "S-2026-00101", number)
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(42), ParseNumber("S-2026-00042"))
	assert.Equal(t, int64(7), ParseNumber("REG-007"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
}
