package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSaveAndGetRun(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run := &Run{
		SchemaPath: "schema.json",
		Inputs:     []string{"a.csv", "b.csv"},
		InputKind:  "csv",
		Processed:  10,
		Emitted:    8,
		Skipped:    2,
		DurationMS: 42,
	}
	require.NoError(t, st.SaveRun(ctx, run))
	assert.NotEmpty(t, run.ID, "SaveRun assigns an id")
	assert.False(t, run.CreatedAt.IsZero())

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.SchemaPath, got.SchemaPath)
	assert.Equal(t, run.Inputs, got.Inputs)
	assert.Equal(t, run.Processed, got.Processed)
	assert.Equal(t, run.Emitted, got.Emitted)
	assert.Equal(t, run.Skipped, got.Skipped)
}

func TestGetRun_NotFound(t *testing.T) {
	st := newTestStore(t)
	_, err := st.GetRun(context.Background(), "no-such-id")
	require.Error(t, err)
}

func TestListRuns(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, st.SaveRun(ctx, &Run{
			SchemaPath: "schema.json",
			Inputs:     []string{"in.txt"},
			InputKind:  "text",
			Processed:  i,
		}))
	}

	runs, err := st.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	limited, err := st.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
