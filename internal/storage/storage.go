// Package storage provides the document-store backends the catalog and
// slug registry persist through: a local filesystem store for development
// and an S3-compatible object store for deployment, plus a Redis-backed
// response cache used by the metric aggregators.
package storage

import (
	"context"

	"github.com/agentstation/toolindex/pkg/errors"
)

// Store is the concrete union of the catalog and registry store contracts.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Backend names accepted in configuration.
const (
	BackendLocal = "local"
	BackendMinio = "minio"
)

// Config selects and parameterizes a storage backend.
type Config struct {
	Backend string

	// Local backend.
	Dir string

	// MinIO backend.
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// New constructs the configured backend.
func New(cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendLocal, "":
		return NewLocal(cfg.Dir)
	case BackendMinio:
		return NewMinio(cfg)
	default:
		return nil, &errors.ConfigError{
			Component: "storage",
			Message:   "unknown backend " + cfg.Backend,
		}
	}
}
