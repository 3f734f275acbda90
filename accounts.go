package backoffice

import (
	"context"

	"github.com/google/uuid"

	"github.com/oinconquistado/omni-sub001/keys"
	"github.com/oinconquistado/omni-sub001/logging"
	"github.com/oinconquistado/omni-sub001/model"
	"github.com/oinconquistado/omni-sub001/store"
)

// CreateAccount persists the account and warms its primary and email keys.
// Role defaults to member, status to ACTIVE. A duplicate email within the
// tenant surfaces as *store.ConstraintError.
func (s *Service) CreateAccount(ctx context.Context, a model.Account) (model.Account, error) {
	if a.Role == "" {
		a.Role = model.RoleMember
	}
	if a.Status == "" {
		a.Status = model.AccountActive
	}

	created, err := s.accounts.Create(ctx, a)
	if err != nil {
		return model.Account{}, err
	}
	s.accountCache.Set(ctx, keys.Account(created.ID), created, s.entryTTL)
	s.accountCache.Set(ctx, keys.AccountEmail(created.TenantID, created.Email), created, s.entryTTL)
	return created, nil
}

// AccountByID is the read-through primary lookup. Not-found results are never
// cached; an entity created moments later must be resolvable immediately.
func (s *Service) AccountByID(ctx context.Context, tenantID string, id uuid.UUID) (model.Account, error) {
	k := keys.Account(id)
	if a, ok := s.accountCache.Get(ctx, k); ok && a.TenantID == tenantID {
		return a, nil
	}

	a, err := s.accounts.GetByID(ctx, tenantID, id)
	if err != nil {
		return model.Account{}, err
	}
	s.accountCache.Set(ctx, k, a, s.entryTTL)
	return a, nil
}

// AccountByEmail is the read-through secondary lookup. A miss also warms the
// primary key, amortizing future by-id lookups.
func (s *Service) AccountByEmail(ctx context.Context, tenantID, email string) (model.Account, error) {
	k := keys.AccountEmail(tenantID, email)
	if a, ok := s.accountCache.Get(ctx, k); ok && a.TenantID == tenantID {
		return a, nil
	}

	a, err := s.accounts.GetByEmail(ctx, tenantID, email)
	if err != nil {
		return model.Account{}, err
	}
	s.accountCache.Set(ctx, k, a, s.entryTTL)
	s.accountCache.Set(ctx, keys.Account(a.ID), a, s.entryTTL)
	return a, nil
}

// UpdateAccount writes the store first; a store failure leaves the cache
// untouched. On success every key derived from the old field values is
// reconciled: the old email entry is dropped (not just the new one written),
// the primary and new email entries are repopulated, and the sessions
// aggregate is invalidated since it embeds account fields.
func (s *Service) UpdateAccount(ctx context.Context, tenantID string, id uuid.UUID, p store.AccountPatch) (model.Account, error) {
	old, cur, err := s.accounts.Update(ctx, tenantID, id, p)
	if err != nil {
		return model.Account{}, err
	}

	if old.Email != cur.Email {
		s.accountCache.Delete(ctx, keys.AccountEmail(tenantID, old.Email))
	}
	s.accountCache.Set(ctx, keys.Account(id), cur, s.entryTTL)
	s.accountCache.Set(ctx, keys.AccountEmail(tenantID, cur.Email), cur, s.entryTTL)
	s.viewCache.Delete(ctx, keys.AccountSessions(id))
	return cur, nil
}

// DeleteAccount removes the row, then drops every cache key that could still
// reference it, including the token entries of its sessions (the rows cascade
// in the store). A store failure leaves the cache untouched.
func (s *Service) DeleteAccount(ctx context.Context, tenantID string, id uuid.UUID) error {
	sessions, err := s.sessions.ListByAccount(ctx, tenantID, id)
	if err != nil {
		// token keys will age out by TTL; the delete still proceeds
		s.log.Warn("listing sessions before account delete failed", logging.Fields{"account_id": id, "err": err})
	}

	old, err := s.accounts.Delete(ctx, tenantID, id)
	if err != nil {
		return err
	}

	for _, k := range keys.ForAccount(old) {
		s.cache.Delete(ctx, k)
	}
	for _, sess := range sessions {
		s.sessionCache.Delete(ctx, keys.SessionToken(sess.Token))
	}
	return nil
}

// AccountWithSessions is the read-through aggregate view: the account plus
// its stored sessions, cached as one entry and invalidated whenever the
// account or its session set changes.
func (s *Service) AccountWithSessions(ctx context.Context, tenantID string, id uuid.UUID) (model.AccountWithSessions, error) {
	k := keys.AccountSessions(id)
	if v, ok := s.viewCache.Get(ctx, k); ok && v.Account.TenantID == tenantID {
		return v, nil
	}

	a, err := s.accounts.GetByID(ctx, tenantID, id)
	if err != nil {
		return model.AccountWithSessions{}, err
	}
	sessions, err := s.sessions.ListByAccount(ctx, tenantID, id)
	if err != nil {
		return model.AccountWithSessions{}, err
	}

	v := model.AccountWithSessions{Account: a, Sessions: sessions}
	s.viewCache.Set(ctx, k, v, s.entryTTL)
	return v, nil
}
