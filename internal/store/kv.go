package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// KV is the byte-level persistence contract the library is built on.
type KV interface {
	// Get reports found=false with a nil error for a missing key.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type OpenOptions struct {
	Driver      string
	SQLitePath  string
	RedisAddr   string
	RedisPrefix string
	Logger      zerolog.Logger
}

// Open constructs the backend named by opts.Driver.
func Open(ctx context.Context, opts OpenOptions) (KV, error) {
	var (
		kv  KV
		err error
	)
	driver := strings.ToLower(strings.TrimSpace(opts.Driver))
	switch driver {
	case "", "memory":
		driver = "memory"
		kv = NewMemory()
	case "sqlite":
		kv, err = OpenSQLite(opts.SQLitePath)
	case "redis":
		kv, err = OpenRedis(ctx, RedisOptions{Addr: opts.RedisAddr, Prefix: opts.RedisPrefix})
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	opts.Logger.Info().Str("driver", driver).Msg("store opened")
	return kv, nil
}
