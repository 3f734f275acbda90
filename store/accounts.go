package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oinconquistado/omni-sub001/model"
)

const accountCols = `id, tenant_id, email, display_name, role, status, created_at, updated_at`

// Accounts is the relational surface for Account rows.
// Email uniqueness is enforced per tenant by the accounts_tenant_email_key index.
type Accounts struct {
	db *DB
}

func NewAccounts(db *DB) *Accounts { return &Accounts{db: db} }

// AccountPatch holds the updatable fields; nil means "leave unchanged".
type AccountPatch struct {
	Email       *string
	DisplayName *string
	Role        *model.Role
	Status      *model.AccountStatus
}

func (s *Accounts) Create(ctx context.Context, a model.Account) (model.Account, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO accounts (id, tenant_id, email, display_name, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.TenantID, a.Email, a.DisplayName, a.Role, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return model.Account{}, wrapErr("create account", err)
	}
	return a, nil
}

func (s *Accounts) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (model.Account, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	row := s.db.pool.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE tenant_id = $1 AND id = $2`,
		tenantID, id)
	a, err := scanAccount(row)
	if err != nil {
		return model.Account{}, wrapErr("get account by id", err)
	}
	return a, nil
}

func (s *Accounts) GetByEmail(ctx context.Context, tenantID, email string) (model.Account, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	row := s.db.pool.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE tenant_id = $1 AND email = $2`,
		tenantID, email)
	a, err := scanAccount(row)
	if err != nil {
		return model.Account{}, wrapErr("get account by email", err)
	}
	return a, nil
}

// Update applies the patch and returns both the pre-image and the updated row.
// The pre-image is read under lock in the same transaction so the caller can
// invalidate cache keys derived from the old field values.
func (s *Accounts) Update(ctx context.Context, tenantID string, id uuid.UUID, p AccountPatch) (old, cur model.Account, err error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return model.Account{}, model.Account{}, wrapErr("update account", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE tenant_id = $1 AND id = $2 FOR UPDATE`,
		tenantID, id)
	old, err = scanAccount(row)
	if err != nil {
		return model.Account{}, model.Account{}, wrapErr("update account", err)
	}

	row = tx.QueryRow(ctx, `
		UPDATE accounts SET
			email        = COALESCE($3, email),
			display_name = COALESCE($4, display_name),
			role         = COALESCE($5, role),
			status       = COALESCE($6, status),
			updated_at   = now()
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+accountCols,
		tenantID, id, p.Email, p.DisplayName, p.Role, p.Status)
	cur, err = scanAccount(row)
	if err != nil {
		return model.Account{}, model.Account{}, wrapErr("update account", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Account{}, model.Account{}, wrapErr("update account", err)
	}
	return old, cur, nil
}

// Delete removes the row and returns its pre-image for cache-key cleanup.
func (s *Accounts) Delete(ctx context.Context, tenantID string, id uuid.UUID) (model.Account, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	row := s.db.pool.QueryRow(ctx,
		`DELETE FROM accounts WHERE tenant_id = $1 AND id = $2 RETURNING `+accountCols,
		tenantID, id)
	a, err := scanAccount(row)
	if err != nil {
		return model.Account{}, wrapErr("delete account", err)
	}
	return a, nil
}

func scanAccount(row pgx.Row) (model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.TenantID, &a.Email, &a.DisplayName, &a.Role, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
