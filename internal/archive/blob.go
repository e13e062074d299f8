package archive

import (
	"context"
	"encoding/json"
	"errors"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/kode4food/nebula/pkg/api"

	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// BlobArchiver writes finished runs to a gocloud.dev/blob bucket, supporting
// S3, GCS, Azure Blob Storage, local directories and in-memory buckets
type BlobArchiver struct {
	bucket *blob.Bucket
	prefix string
}

var ErrArchiveNotFound = errors.New("archived run not found")

func NewBlobArchiver(
	ctx context.Context, bucketURL, prefix string,
) (*BlobArchiver, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	return &BlobArchiver{bucket: bucket, prefix: prefix}, nil
}

// Notify archives the run carried by a run_finished event and ignores
// every other event
func (a *BlobArchiver) Notify(ctx context.Context, ev *api.RunEvent) error {
	if ev.Type != api.EventTypeRunFinished || ev.Run == nil {
		return nil
	}
	return a.Put(ctx, ev.Run)
}

func (a *BlobArchiver) Put(ctx context.Context, run *api.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return a.bucket.WriteAll(ctx, a.keyFor(run.GraphID, run.ID), data, nil)
}

// Get reads back an archived run
func (a *BlobArchiver) Get(
	ctx context.Context, graphID api.GraphID, runID api.RunID,
) (*api.Run, error) {
	data, err := a.bucket.ReadAll(ctx, a.keyFor(graphID, runID))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrArchiveNotFound
		}
		return nil, err
	}

	var run api.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (a *BlobArchiver) Close() error {
	return a.bucket.Close()
}

func (a *BlobArchiver) keyFor(graphID api.GraphID, runID api.RunID) string {
	return a.prefix + string(graphID) + "/" + string(runID) + ".json"
}
