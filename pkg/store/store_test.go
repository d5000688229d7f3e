package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/chatlens/pkg/analyzer"
	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/output"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

func testReport(t *testing.T) *output.Report {
	t.Helper()
	result, err := parser.Parse("15/01/2024, 10:00 - Alice: hello there \U0001F600\n" +
		"15/01/2024, 10:05 - Bob: hi alice\n" +
		"16/01/2024, 09:00 - Bob: morning")
	require.NoError(t, err)

	stats, err := analyzer.New().Analyze(context.Background(), result.Messages)
	require.NoError(t, err)

	return output.NewReport(stats, analyzer.Validate(result.Messages), result.Stats, output.Metadata{
		Sources:  []string{"chat.txt"},
		Dialects: output.DialectsOf(result.Messages),
	})
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	mem, err := NewMemoryStore(8)
	require.NoError(t, err)

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "results", "chatlens.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = mem.Close()
		_ = db.Close()
	})
	return map[string]Store{"memory": mem, "sqlite": db}
}

func TestStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			report := testReport(t)

			rec, err := s.Put(ctx, report)
			require.NoError(t, err)
			assert.NotEmpty(t, rec.ID)
			assert.False(t, rec.CreatedAt.IsZero())

			got, err := s.Get(ctx, rec.ID)
			require.NoError(t, err)
			assert.Equal(t, rec.ID, got.ID)
			assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
			require.NotNil(t, got.Report)
			assert.Equal(t, 3, got.Report.Summary.Messages)
			assert.Equal(t, 2, got.Report.Summary.Senders)
			assert.Equal(t, []string{"chat.txt"}, got.Report.Metadata.Sources)
			require.NotNil(t, got.Report.Stats)
			require.NotNil(t, got.Report.Stats.Senders)
			assert.Len(t, got.Report.Stats.Senders.Ranking, 2)

			require.NoError(t, s.Delete(ctx, rec.ID))

			_, err = s.Get(ctx, rec.ID)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.Delete(ctx, rec.ID), ErrNotFound)
		})
	}
}

func TestStore_DistinctIDs(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			report := testReport(t)
			a, err := s.Put(ctx, report)
			require.NoError(t, err)
			b, err := s.Put(ctx, report)
			require.NoError(t, err)
			assert.NotEqual(t, a.ID, b.ID)
		})
	}
}

func TestStore_GetUnknown(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), "no-such-id")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMemoryStore_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	s, err := NewMemoryStore(2)
	require.NoError(t, err)
	report := testReport(t)

	first, err := s.Put(ctx, report)
	require.NoError(t, err)
	second, err := s.Put(ctx, report)
	require.NoError(t, err)

	// Touch first so second becomes the eviction candidate
	_, err = s.Get(ctx, first.ID)
	require.NoError(t, err)

	_, err = s.Put(ctx, report)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	_, err = s.Get(ctx, second.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, first.ID)
	assert.NoError(t, err)
}

func TestNewMemoryStore_InvalidCapacity(t *testing.T) {
	_, err := NewMemoryStore(0)
	assert.Error(t, err)
}

func TestSQLiteStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "chatlens.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	rec, err := db.Put(ctx, testReport(t))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Report.Summary.Messages)
}

func TestNew(t *testing.T) {
	s, err := New(config.StoreConfig{Backend: config.StoreMemory, Capacity: 4})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	require.NoError(t, s.Close())

	s, err = New(config.StoreConfig{Backend: config.StoreSQLite, Path: filepath.Join(t.TempDir(), "r.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = New(config.StoreConfig{Backend: "redis"})
	assert.Error(t, err)
}
