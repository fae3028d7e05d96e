package config

import "context"

// Source is a typed key/value view of configuration. Each getter returns def
// when the key is absent or cannot be read as the requested type.
type Source interface {
	GetInt(key string, def int) int
	GetInt64(key string, def int64) int64
	GetBool(key string, def bool) bool
}

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths and translates it into
	// the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
