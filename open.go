package backoffice

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/oinconquistado/omni-sub001/cache"
	"github.com/oinconquistado/omni-sub001/config"
	"github.com/oinconquistado/omni-sub001/logging"
	redisprovider "github.com/oinconquistado/omni-sub001/provider/redis"
	"github.com/oinconquistado/omni-sub001/store"
)

// Open is the composition root: it builds the relational pool and the redis
// client from config, verifies both are reachable, and wires the service.
// All handles are constructed here and torn down by Service.Close; nothing
// connects lazily on first use.
func Open(ctx context.Context, cfg *config.Config, log logging.Logger, hooks cache.Hooks) (*Service, error) {
	log = logging.OrNop(log)

	db, err := store.Connect(ctx, store.Config{
		DSN:          cfg.Database.DSN(),
		MaxConns:     cfg.Database.MaxConns,
		MinConns:     cfg.Database.MinConns,
		QueryTimeout: cfg.Database.QueryTimeout,
		Logger:       log,
	})
	if err != nil {
		return nil, err
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.CommandTimeout,
		WriteTimeout: cfg.Redis.CommandTimeout,
		PoolSize:     cfg.Redis.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		// a dead cache at startup is worth knowing about, but the service can
		// run fail-open on it
		log.Warn("cache cluster unreachable at startup", logging.Fields{"addr": cfg.Redis.Addr, "err": err})
	}

	prov, err := redisprovider.New(redisprovider.Config{Client: rdb, CloseClient: true})
	if err != nil {
		db.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("backoffice: redis provider: %w", err)
	}

	cacheStore, err := cache.NewStore(cache.Options{
		Provider:       prov,
		Prefix:         cfg.Redis.KeyPrefix,
		Logger:         log,
		Hooks:          hooks,
		CommandTimeout: cfg.Redis.CommandTimeout,
		DefaultTTL:     cfg.Cache.EntryTTL,
		Disabled:       !cfg.Cache.Enabled,
	})
	if err != nil {
		db.Close()
		_ = prov.Close(ctx)
		return nil, err
	}

	svc, err := New(ServiceOptions{
		Accounts:   store.NewAccounts(db),
		Sessions:   store.NewSessions(db),
		Items:      store.NewItems(db),
		Stock:      store.NewStock(db),
		Cache:      cacheStore,
		Codec:      cfg.Cache.Codec,
		Logger:     log,
		DB:         db,
		EntryTTL:   cfg.Cache.EntryTTL,
		SessionTTL: cfg.Cache.SessionTTL,
	})
	if err != nil {
		db.Close()
		_ = cacheStore.Close(ctx)
		return nil, err
	}

	svc.closers = append(svc.closers,
		func(ctx context.Context) error { return cacheStore.Close(ctx) },
		func(context.Context) error { db.Close(); return nil },
	)
	return svc, nil
}
