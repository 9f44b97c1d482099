package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"StockTerminal/internal/model"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "nested", "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	r := openTestRecorder(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, r.RecordQuery(&QuerySnapshot{
		ID: "a", Symbol: "AAPL", Name: "Apple Inc.", Found: true,
		CAGR1Y: model.Percent(12.5), CAGR3Y: model.Percent(8.1), CAGR5Y: model.NotAvailable,
		Volatility: model.Percent(27.3), Source: "http", Timestamp: base,
	}))
	require.NoError(t, r.RecordQuery(&QuerySnapshot{
		ID: "b", Symbol: "NOPE", Found: false, Source: "telegram", Timestamp: base.Add(time.Minute),
	}))

	got, err := r.RecentQueries(10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "b", got[0].ID)
	assert.False(t, got[0].Found)
	assert.False(t, got[0].CAGR1Y.Available)

	assert.Equal(t, "AAPL", got[1].Symbol)
	assert.Equal(t, "Apple Inc.", got[1].Name)
	assert.True(t, got[1].Found)
	assert.Equal(t, model.Percent(12.5), got[1].CAGR1Y)
	assert.Equal(t, model.Percent(8.1), got[1].CAGR3Y)
	assert.Equal(t, model.NotAvailable, got[1].CAGR5Y)
	assert.Equal(t, model.Percent(27.3), got[1].Volatility)
	assert.True(t, base.Equal(got[1].Timestamp))
}

func TestSQLiteRecorder_Limit(t *testing.T) {
	r := openTestRecorder(t)
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"1", "2", "3"} {
		require.NoError(t, r.RecordQuery(&QuerySnapshot{ID: id, Symbol: "X", Timestamp: base.Add(time.Duration(i) * time.Second)}))
	}

	got, err := r.RecentQueries(2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "2", got[1].ID)

	all, err := r.RecentQueries(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLiteRecorder_DuplicateID(t *testing.T) {
	r := openTestRecorder(t)
	require.NoError(t, r.RecordQuery(&QuerySnapshot{ID: "dup", Symbol: "X"}))
	assert.Error(t, r.RecordQuery(&QuerySnapshot{ID: "dup", Symbol: "X"}))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordQuery(&QuerySnapshot{ID: "x"}))
	got, err := r.RecentQueries(5)
	assert.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, r.Close())
}
