package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/candgest/internal/extraction"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecords() []extraction.Record {
	return []extraction.Record{
		{UnitCode: "0101", Body: "AM", Type: "2", Sigla: "PS", Symbol: "PS", ListName: "PS - Partido", Order: 1, Name: "Ana Reis", Party: "PS"},
		{UnitCode: "0101", Body: "AM", Type: "2", Sigla: "PS", Symbol: "PS", ListName: "PS - Partido", Order: 2, Name: "Rui Sá", Party: "PS", Independent: true},
	}
}

func TestSaveRunAndRecords(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	run := Run{ID: "r1", UnitCode: "0101", Filename: "edital.pdf", ContentHash: "abc", OutputPath: "/tmp/r1.csv", Pages: 2, Lines: 10}
	require.NoError(t, s.SaveRun(ctx, run, sampleRecords()))

	got, err := s.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Records)
	assert.Equal(t, "edital.pdf", got.Filename)
	assert.False(t, got.CreatedAt.IsZero())

	recs, err := s.Records(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), recs)
}

func TestRecords_UnknownRun(t *testing.T) {
	s := openMemory(t)
	_, err := s.Records(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRuns(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveRun(ctx, Run{ID: "a", UnitCode: "01", CreatedAt: base}, nil))
	require.NoError(t, s.SaveRun(ctx, Run{ID: "b", UnitCode: "02", CreatedAt: base.Add(time.Minute)}, nil))
	require.NoError(t, s.SaveRun(ctx, Run{ID: "c", UnitCode: "01", CreatedAt: base.Add(2 * time.Minute)}, nil))

	all, err := s.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, base, all[2].CreatedAt)

	unit, err := s.ListRuns(ctx, "01", 1)
	require.NoError(t, err)
	require.Len(t, unit, 1)
	assert.Equal(t, "c", unit[0].ID)

	none, err := s.ListRuns(ctx, "99", 10)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestDeleteRunCascades(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	require.NoError(t, s.SaveRun(ctx, Run{ID: "r1", UnitCode: "0101"}, sampleRecords()))

	require.NoError(t, s.DeleteRun(ctx, "r1"))
	assert.ErrorIs(t, s.DeleteRun(ctx, "r1"), ErrNotFound)

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM records WHERE run_id = 'r1'`).Scan(&n))
	assert.Zero(t, n)
}

func TestFindByHash(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	require.NoError(t, s.SaveRun(ctx, Run{ID: "r1", UnitCode: "0101", ContentHash: "h1"}, nil))

	run, ok, err := s.FindByHash(ctx, "0101", "h1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "r1", run.ID)

	_, ok, err = s.FindByHash(ctx, "0202", "h1")
	require.NoError(t, err)
	assert.False(t, ok, "same content for another unit is not a duplicate")
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var fk int
	require.NoError(t, s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}
