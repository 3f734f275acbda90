package backoffice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oinconquistado/omni-sub001/keys"
	"github.com/oinconquistado/omni-sub001/model"
)

// CreateSession persists the session, warms its token key, and invalidates
// the owning account's sessions aggregate.
func (s *Service) CreateSession(ctx context.Context, sess model.Session) (model.Session, error) {
	created, err := s.sessions.Create(ctx, sess)
	if err != nil {
		return model.Session{}, err
	}

	s.sessionCache.Set(ctx, keys.SessionToken(created.Token), created, s.sessionCacheTTL(created))
	s.viewCache.Delete(ctx, keys.AccountSessions(created.AccountID))
	return created, nil
}

// SessionByToken is the read-through token lookup with lazy expiry. A cached
// session past its ExpiresAt is treated as a miss and dropped; the store read
// then deletes the dead row and reports store.ErrNotFound. Repeating the read
// stays not-found without error.
func (s *Service) SessionByToken(ctx context.Context, token string) (model.Session, error) {
	k := keys.SessionToken(token)
	if sess, ok := s.sessionCache.Get(ctx, k); ok {
		if sess.Live(s.now()) {
			return sess, nil
		}
		s.sessionCache.Delete(ctx, k)
		// fall through so the store performs the lazy row delete
	}

	sess, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return model.Session{}, err
	}
	s.sessionCache.Set(ctx, k, sess, s.sessionCacheTTL(sess))
	return sess, nil
}

// DeleteSession removes the row by token, then drops the token key and
// invalidates the owning account's sessions aggregate. A store failure leaves
// the cache untouched.
func (s *Service) DeleteSession(ctx context.Context, token string) error {
	old, err := s.sessions.DeleteByToken(ctx, token)
	if err != nil {
		return err
	}
	for _, k := range keys.ForSession(old) {
		s.cache.Delete(ctx, k)
	}
	return nil
}

// SessionsByAccount lists the account's stored sessions straight from the
// relational store. Expired rows not yet lazily removed are included; callers
// needing liveness filter with Session.Live.
func (s *Service) SessionsByAccount(ctx context.Context, tenantID string, accountID uuid.UUID) ([]model.Session, error) {
	return s.sessions.ListByAccount(ctx, tenantID, accountID)
}

// sessionCacheTTL caps the configured session TTL by the session's remaining
// lifetime, so a cache entry never outlives the session it holds.
func (s *Service) sessionCacheTTL(sess model.Session) time.Duration {
	ttl := s.sessionTTL
	if remaining := sess.ExpiresAt.Sub(s.now()); remaining > 0 && remaining < ttl {
		ttl = remaining
	}
	return ttl
}
