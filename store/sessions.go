package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oinconquistado/omni-sub001/model"
)

const sessionCols = `id, tenant_id, account_id, token, expires_at, created_at`

// Sessions is the relational surface for Session rows. Tokens are globally
// unique, so token lookups are not tenant-scoped.
//
// Expiry is enforced lazily: GetByToken deletes an expired row as a side
// effect and reports it absent. Nothing sweeps expired rows in the background,
// so COUNT-style queries over this table may see dead sessions.
type Sessions struct {
	db  *DB
	now func() time.Time
}

func NewSessions(db *DB) *Sessions {
	return &Sessions{db: db, now: time.Now}
}

func (s *Sessions) Create(ctx context.Context, sess model.Session) (model.Session, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	sess.CreatedAt = s.now().UTC()

	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO sessions (id, tenant_id, account_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sess.ID, sess.TenantID, sess.AccountID, sess.Token, sess.ExpiresAt, sess.CreatedAt)
	if err != nil {
		return model.Session{}, wrapErr("create session", err)
	}
	return sess, nil
}

// GetByToken returns the live session for token. An expired row is deleted in
// place and reported as ErrNotFound; repeating the read stays ErrNotFound
// without error.
func (s *Sessions) GetByToken(ctx context.Context, token string) (model.Session, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	row := s.db.pool.QueryRow(ctx,
		`SELECT `+sessionCols+` FROM sessions WHERE token = $1`, token)
	sess, err := scanSession(row)
	if err != nil {
		return model.Session{}, wrapErr("get session by token", err)
	}
	if !sess.Live(s.now()) {
		// lazy expiry: drop the dead row, report absent
		if _, err := s.db.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, sess.ID); err != nil {
			return model.Session{}, wrapErr("expire session", err)
		}
		return model.Session{}, ErrNotFound
	}
	return sess, nil
}

// DeleteByToken removes the row and returns its pre-image for cache-key
// cleanup. Expired-but-unswept rows delete like any other.
func (s *Sessions) DeleteByToken(ctx context.Context, token string) (model.Session, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	row := s.db.pool.QueryRow(ctx,
		`DELETE FROM sessions WHERE token = $1 RETURNING `+sessionCols, token)
	sess, err := scanSession(row)
	if err != nil {
		return model.Session{}, wrapErr("delete session", err)
	}
	return sess, nil
}

// ListByAccount returns every stored session for the account, including
// expired rows not yet lazily removed.
func (s *Sessions) ListByAccount(ctx context.Context, tenantID string, accountID uuid.UUID) ([]model.Session, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	rows, err := s.db.pool.Query(ctx,
		`SELECT `+sessionCols+` FROM sessions WHERE tenant_id = $1 AND account_id = $2 ORDER BY created_at`,
		tenantID, accountID)
	if err != nil {
		return nil, wrapErr("list sessions", err)
	}
	defer rows.Close()

	var out []model.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, wrapErr("list sessions", err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list sessions", err)
	}
	return out, nil
}

func scanSession(row pgx.Row) (model.Session, error) {
	var s model.Session
	err := row.Scan(&s.ID, &s.TenantID, &s.AccountID, &s.Token, &s.ExpiresAt, &s.CreatedAt)
	return s, err
}
