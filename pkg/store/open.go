package store

import (
	"context"

	"github.com/matzehuels/banktags/pkg/errors"
)

// Options selects and configures a backend for [Open].
type Options struct {
	Backend       string // memory, file, sqlite, redis or mongo; empty means file
	Path          string // file: directory; sqlite: database file
	RedisAddr     string
	MongoURI      string
	MongoDatabase string
}

// Open creates the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryBackend(), nil
	case BackendFile, "":
		return NewFileBackend(opts.Path)
	case BackendSQLite:
		return NewSQLiteBackend(opts.Path)
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "redis backend needs an address")
		}
		return NewRedisBackend(ctx, opts.RedisAddr)
	case BackendMongo:
		if opts.MongoURI == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "mongo backend needs a URI")
		}
		return NewMongoBackend(ctx, opts.MongoURI, opts.MongoDatabase, "")
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown storage backend %q", opts.Backend)
	}
}
