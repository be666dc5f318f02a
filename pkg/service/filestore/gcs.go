// Package filestore stores task document attachments behind opaque handles.
package filestore

import (
	"context"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/utils/safe"
)

// gcsStore stores attachments in a Google Cloud Storage bucket
type gcsStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// GCSOption is a functional option for GCS store configuration
type GCSOption func(*gcsStore)

// WithPrefix sets the object name prefix inside the bucket
func WithPrefix(prefix string) GCSOption {
	return func(s *gcsStore) {
		s.prefix = prefix
	}
}

// NewGCS creates a file store backed by a Cloud Storage bucket
func NewGCS(ctx context.Context, bucket string, opts ...GCSOption) (interfaces.FileStore, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	s := &gcsStore{
		client: client,
		bucket: bucket,
		prefix: "documents",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *gcsStore) Put(ctx context.Context, name string, r io.Reader) (string, error) {
	handle := path.Join(s.prefix, uuid.NewString(), path.Base(name))

	w := s.client.Bucket(s.bucket).Object(handle).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		safe.Close(ctx, w)
		return "", goerr.Wrap(err, "failed to write object",
			goerr.V("bucket", s.bucket), goerr.V("object", handle))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to close object writer",
			goerr.V("bucket", s.bucket), goerr.V("object", handle))
	}

	return handle, nil
}

func (s *gcsStore) Get(ctx context.Context, handle string) (io.ReadCloser, error) {
	r, err := s.client.Bucket(s.bucket).Object(handle).NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open object",
			goerr.V("bucket", s.bucket), goerr.V("object", handle))
	}
	return r, nil
}
