package archive_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"

	"github.com/kode4food/nebula/internal/archive"
	"github.com/kode4food/nebula/pkg/api"
)

func finishedRun() *api.Run {
	return &api.Run{
		ID:       "run-1",
		GraphID:  "graph-1",
		State:    api.State{"x": 6},
		Finished: true,
		Log: []*api.LogEntry{
			{Step: 0, Node: "A", Tool: "double", Snapshot: api.State{"x": 6}},
		},
	}
}

func TestBlobArchiver(t *testing.T) {
	ctx := context.Background()

	a, err := archive.NewBlobArchiver(ctx, "mem://", "test/")
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	t.Run("Get returns not found for missing run", func(t *testing.T) {
		_, err := a.Get(ctx, "graph-1", "run-1")
		assert.ErrorIs(t, err, archive.ErrArchiveNotFound)
	})

	t.Run("Put and Get round-trip", func(t *testing.T) {
		require.NoError(t, a.Put(ctx, finishedRun()))

		got, err := a.Get(ctx, "graph-1", "run-1")
		require.NoError(t, err)
		assert.True(t, got.Finished)
		assert.Nil(t, got.CurrentNode)
		assert.Equal(t, float64(6), got.State["x"])
		require.Len(t, got.Log, 1)
		assert.Equal(t, api.ToolName("double"), got.Log[0].Tool)
	})

	t.Run("Get of another run is not found", func(t *testing.T) {
		_, err := a.Get(ctx, "graph-2", "run-1")
		assert.ErrorIs(t, err, archive.ErrArchiveNotFound)
	})
}

func TestBlobArchiverNotify(t *testing.T) {
	ctx := context.Background()

	a, err := archive.NewBlobArchiver(ctx, "mem://", "runs/")
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	run := finishedRun()
	require.NoError(t, a.Notify(ctx, &api.RunEvent{
		Type:    api.EventTypeStepCompleted,
		RunID:   run.ID,
		GraphID: run.GraphID,
	}))
	_, err = a.Get(ctx, run.GraphID, run.ID)
	assert.ErrorIs(t, err, archive.ErrArchiveNotFound)

	require.NoError(t, a.Notify(ctx, &api.RunEvent{
		Type:    api.EventTypeRunFinished,
		RunID:   run.ID,
		GraphID: run.GraphID,
		Reason:  api.FinishSink,
		Run:     run,
	}))
	got, err := a.Get(ctx, run.GraphID, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
}

func TestBlobArchiverKeyFormat(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	a, err := archive.NewBlobArchiver(ctx, "file://"+dir, "archived/")
	require.NoError(t, err)
	require.NoError(t, a.Put(ctx, finishedRun()))
	require.NoError(t, a.Close())

	bucket, err := blob.OpenBucket(ctx, "file://"+dir)
	require.NoError(t, err)
	defer func() { _ = bucket.Close() }()

	exists, err := bucket.Exists(ctx, "archived/graph-1/run-1.json")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestNewBlobArchiverBadURL(t *testing.T) {
	_, err := archive.NewBlobArchiver(
		context.Background(), "nosuchscheme://bucket", "",
	)
	assert.Error(t, err)
}
