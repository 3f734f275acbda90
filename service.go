// Package backoffice is the cache-aside data-access core for the multi-tenant
// back office: it sits between the (external) HTTP handlers and the relational
// store, interposing a TTL key-value cache and keeping every derived cache
// entry (by id, by email, by token, by relationship) consistent as the
// underlying rows change.
//
// The relational store is always written first and is the only source of
// truth. Cache failures are absorbed at the cache layer; every operation here
// completes correctly against the store even with the cache fully down.
package backoffice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oinconquistado/omni-sub001/cache"
	"github.com/oinconquistado/omni-sub001/codec"
	"github.com/oinconquistado/omni-sub001/logging"
	"github.com/oinconquistado/omni-sub001/model"
	"github.com/oinconquistado/omni-sub001/store"
)

// AccountStore is the relational surface the service needs for accounts.
// Satisfied by *store.Accounts.
type AccountStore interface {
	Create(ctx context.Context, a model.Account) (model.Account, error)
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (model.Account, error)
	GetByEmail(ctx context.Context, tenantID, email string) (model.Account, error)
	Update(ctx context.Context, tenantID string, id uuid.UUID, p store.AccountPatch) (old, cur model.Account, err error)
	Delete(ctx context.Context, tenantID string, id uuid.UUID) (model.Account, error)
}

// SessionStore is the relational surface for sessions. Satisfied by
// *store.Sessions. GetByToken enforces lazy expiry (see store docs).
type SessionStore interface {
	Create(ctx context.Context, s model.Session) (model.Session, error)
	GetByToken(ctx context.Context, token string) (model.Session, error)
	DeleteByToken(ctx context.Context, token string) (model.Session, error)
	ListByAccount(ctx context.Context, tenantID string, accountID uuid.UUID) ([]model.Session, error)
}

// ItemStore is the relational surface for catalog items. Satisfied by
// *store.Items.
type ItemStore interface {
	Create(ctx context.Context, it model.CatalogItem) (model.CatalogItem, error)
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (model.CatalogItem, error)
	GetBySKU(ctx context.Context, tenantID, sku string) (model.CatalogItem, error)
	Update(ctx context.Context, tenantID string, id uuid.UUID, p store.ItemPatch) (old, cur model.CatalogItem, err error)
	Delete(ctx context.Context, tenantID string, id uuid.UUID) (model.CatalogItem, error)
}

// StockStore is the relational surface for stock records. Satisfied by
// *store.Stock.
type StockStore interface {
	Create(ctx context.Context, r model.StockRecord) (model.StockRecord, error)
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (model.StockRecord, error)
	GetByProduct(ctx context.Context, tenantID string, productID uuid.UUID) (model.StockRecord, error)
	Update(ctx context.Context, tenantID string, id uuid.UUID, p store.StockPatch) (old, cur model.StockRecord, err error)
	Delete(ctx context.Context, tenantID string, id uuid.UUID) (model.StockRecord, error)
}

// Pinger is the liveness probe of the relational backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service orchestrates read-through and write-through/invalidate across the
// entity types. One instance per process, built by the composition root.
type Service struct {
	accounts AccountStore
	sessions SessionStore
	items    ItemStore
	stock    StockStore

	cache        *cache.Store
	accountCache cache.Typed[model.Account]
	viewCache    cache.Typed[model.AccountWithSessions]
	sessionCache cache.Typed[model.Session]
	itemCache    cache.Typed[model.CatalogItem]
	stockCache   cache.Typed[model.StockRecord]

	db  Pinger
	log logging.Logger
	now func() time.Time

	entryTTL   time.Duration
	sessionTTL time.Duration

	closers []func(context.Context) error
}

// ServiceOptions wire the service. The four stores and the cache store are
// required; everything else has defaults.
type ServiceOptions struct {
	Accounts AccountStore
	Sessions SessionStore
	Items    ItemStore
	Stock    StockStore

	Cache *cache.Store

	// Codec names the serialization for cached entities: "json" (default),
	// "msgpack", or "cbor".
	Codec string

	Logger logging.Logger
	DB     Pinger // optional; Ping reports healthy when nil

	EntryTTL   time.Duration // 0 => the cache store's default
	SessionTTL time.Duration // upper bound; capped by each session's expiry
}

func New(opts ServiceOptions) (*Service, error) {
	if opts.Accounts == nil || opts.Sessions == nil || opts.Items == nil || opts.Stock == nil {
		return nil, fmt.Errorf("backoffice: all entity stores are required")
	}
	if opts.Cache == nil {
		return nil, fmt.Errorf("backoffice: cache store is required")
	}

	s := &Service{
		accounts: opts.Accounts,
		sessions: opts.Sessions,
		items:    opts.Items,
		stock:    opts.Stock,
		cache:    opts.Cache,
		db:       opts.DB,
		log:      logging.OrNop(opts.Logger),
		now:      time.Now,
	}
	s.entryTTL = opts.EntryTTL
	if s.entryTTL == 0 {
		s.entryTTL = opts.Cache.DefaultTTL()
	}
	s.sessionTTL = opts.SessionTTL
	if s.sessionTTL == 0 {
		s.sessionTTL = s.entryTTL
	}

	accCodec, err := codec.ByName[model.Account](opts.Codec)
	if err != nil {
		return nil, err
	}
	viewCodec, err := codec.ByName[model.AccountWithSessions](opts.Codec)
	if err != nil {
		return nil, err
	}
	sessCodec, err := codec.ByName[model.Session](opts.Codec)
	if err != nil {
		return nil, err
	}
	itemCodec, err := codec.ByName[model.CatalogItem](opts.Codec)
	if err != nil {
		return nil, err
	}
	stockCodec, err := codec.ByName[model.StockRecord](opts.Codec)
	if err != nil {
		return nil, err
	}

	s.accountCache = cache.NewTyped(opts.Cache, accCodec)
	s.viewCache = cache.NewTyped(opts.Cache, viewCodec)
	s.sessionCache = cache.NewTyped(opts.Cache, sessCodec)
	s.itemCache = cache.NewTyped(opts.Cache, itemCodec)
	s.stockCache = cache.NewTyped(opts.Cache, stockCodec)

	return s, nil
}

// Ping probes the relational backend.
func (s *Service) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.Ping(ctx)
}

// FlushCache clears the cache namespace. Operator tooling only; never called
// on request paths.
func (s *Service) FlushCache(ctx context.Context) error {
	return s.cache.Flush(ctx)
}

// Close tears down the handles the composition root attached via Open.
func (s *Service) Close(ctx context.Context) error {
	var firstErr error
	for _, c := range s.closers {
		if err := c(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
