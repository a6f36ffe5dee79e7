package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/occlusion/pkg/adapters/file"
	"github.com/aretw0/occlusion/pkg/adapters/memory"
	"github.com/aretw0/occlusion/pkg/adapters/redis"
	"github.com/aretw0/occlusion/pkg/persistence/middleware"
	"github.com/aretw0/occlusion/pkg/ports"
	"github.com/aretw0/occlusion/pkg/session"
)

// Store kinds accepted by --store.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// StoreOptions selects where trial records are kept.
type StoreOptions struct {
	Kind      string
	Dir       string
	RedisAddr string
	RedisTTL  time.Duration

	// Mask lists patterns of metadata keys replaced before storage.
	Mask []string
	// EncryptionKey enables AES-256 encryption of stored records when set.
	EncryptionKey []byte
	FallbackKeys  [][]byte
}

// Backend is an opened result store, with the locker serializing sessions across processes when one exists.
type Backend struct {
	Store  ports.ResultStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the store connection.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Sessions wraps the backend in a session manager.
func (b *Backend) Sessions(logger *slog.Logger) *session.Manager {
	opts := []session.Option{session.WithLogger(logger)}
	if b.Locker != nil {
		opts = append(opts, session.WithLocker(b.Locker))
	}
	return session.NewManager(b.Store, opts...)
}

// OpenStore builds the result store described by opts. Redis is pinged before use.
func OpenStore(ctx context.Context, opts StoreOptions) (*Backend, error) {
	backend, err := openBackend(ctx, opts)
	if err != nil {
		return nil, err
	}

	var mws []middleware.Middleware
	if len(opts.Mask) > 0 {
		mw, err := middleware.NewPIIMiddleware(opts.Mask)
		if err != nil {
			_ = backend.Close()
			return nil, err
		}
		mws = append(mws, mw)
	}
	if len(opts.EncryptionKey) > 0 {
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    opts.EncryptionKey,
			FallbackKeys: opts.FallbackKeys,
		})
		if err != nil {
			_ = backend.Close()
			return nil, err
		}
		mws = append(mws, mw)
	}
	backend.Store = middleware.Chain(backend.Store, mws...)
	return backend, nil
}

func openBackend(ctx context.Context, opts StoreOptions) (*Backend, error) {
	switch opts.Kind {
	case "", StoreMemory:
		return &Backend{Store: memory.NewStore()}, nil

	case StoreFile:
		return &Backend{Store: file.New(opts.Dir)}, nil

	case StoreRedis:
		var storeOpts []redis.Option
		if opts.RedisTTL > 0 {
			storeOpts = append(storeOpts, redis.WithTTL(opts.RedisTTL))
		}
		store := redis.New(opts.RedisAddr, "", 0, storeOpts...)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.RedisAddr, err)
		}
		return &Backend{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), redis.DefaultPrefix),
			close:  store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store %q (want %s, %s or %s)", opts.Kind, StoreMemory, StoreFile, StoreRedis)
	}
}
