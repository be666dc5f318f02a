package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/service/filestore"
	"github.com/regmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Storage holds CLI flags for the document attachment backend
type Storage struct {
	backend string
	bucket  string
	prefix  string
}

// Flags returns CLI flags for storage configuration
func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "Document storage backend (gcs or memory)",
			Category:    "Storage",
			Value:       "memory",
			Sources:     cli.EnvVars("THEMIS_STORAGE_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "storage-bucket",
			Usage:       "Cloud Storage bucket for documents (required when using gcs backend)",
			Category:    "Storage",
			Sources:     cli.EnvVars("THEMIS_STORAGE_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "storage-prefix",
			Usage:       "Object name prefix inside the bucket",
			Category:    "Storage",
			Value:       "documents",
			Sources:     cli.EnvVars("THEMIS_STORAGE_PREFIX"),
			Destination: &x.prefix,
		},
	}
}

// Configure initializes the file store based on the configured backend
func (x *Storage) Configure(ctx context.Context) (interfaces.FileStore, error) {
	switch x.backend {
	case "gcs":
		if x.bucket == "" {
			return nil, goerr.New("storage-bucket is required when using gcs backend")
		}
		store, err := filestore.NewGCS(ctx, x.bucket, filestore.WithPrefix(x.prefix))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize GCS file store")
		}
		logging.Default().Info("Using Cloud Storage file store",
			"bucket", x.bucket, "prefix", x.prefix)
		return store, nil

	case "memory":
		logging.Default().Info("Using in-memory file store (development mode)")
		return filestore.NewMemory(), nil

	default:
		return nil, goerr.New("invalid storage backend", goerr.V("backend", x.backend))
	}
}
