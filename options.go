package toolindex

import "github.com/agentstation/toolindex/internal/storage"

// Option is a function that configures an Index.
type Option func(*config) error

type config struct {
	store   storage.Store
	storage storage.Config
}

func defaultConfig() *config {
	return &config{
		storage: storage.Config{Backend: storage.BackendLocal, Dir: "data"},
	}
}

// WithStore uses an already constructed storage backend.
func WithStore(store storage.Store) Option {
	return func(c *config) error {
		c.store = store
		return nil
	}
}

// WithLocalDir stores the catalog under dir on the local filesystem.
func WithLocalDir(dir string) Option {
	return func(c *config) error {
		c.storage = storage.Config{Backend: storage.BackendLocal, Dir: dir}
		return nil
	}
}

// WithStorageConfig uses a full storage configuration, for object-store
// backends.
func WithStorageConfig(cfg storage.Config) Option {
	return func(c *config) error {
		c.storage = cfg
		return nil
	}
}
