package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oinconquistado/omni-sub001/model"
)

const stockCols = `id, tenant_id, product_id, quantity, reserved_qty, available_qty, reorder_level, max_stock_level`

// Stock is the relational surface for StockRecord rows; one row per
// (tenant, product) pair, enforced by the stock_records_tenant_product_key
// index. The available_qty = quantity - reserved_qty invariant is the
// caller's to maintain; the store writes whatever it is given.
type Stock struct {
	db *DB
}

func NewStock(db *DB) *Stock { return &Stock{db: db} }

// StockPatch holds the updatable fields; nil means "leave unchanged".
type StockPatch struct {
	Quantity      *int64
	ReservedQty   *int64
	AvailableQty  *int64
	ReorderLevel  *int64
	MaxStockLevel *int64
}

func (s *Stock) Create(ctx context.Context, r model.StockRecord) (model.StockRecord, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO stock_records (id, tenant_id, product_id, quantity, reserved_qty, available_qty, reorder_level, max_stock_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.TenantID, r.ProductID, r.Quantity, r.ReservedQty, r.AvailableQty, r.ReorderLevel, r.MaxStockLevel)
	if err != nil {
		return model.StockRecord{}, wrapErr("create stock record", err)
	}
	return r, nil
}

func (s *Stock) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (model.StockRecord, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	row := s.db.pool.QueryRow(ctx,
		`SELECT `+stockCols+` FROM stock_records WHERE tenant_id = $1 AND id = $2`,
		tenantID, id)
	r, err := scanStock(row)
	if err != nil {
		return model.StockRecord{}, wrapErr("get stock by id", err)
	}
	return r, nil
}

func (s *Stock) GetByProduct(ctx context.Context, tenantID string, productID uuid.UUID) (model.StockRecord, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	row := s.db.pool.QueryRow(ctx,
		`SELECT `+stockCols+` FROM stock_records WHERE tenant_id = $1 AND product_id = $2`,
		tenantID, productID)
	r, err := scanStock(row)
	if err != nil {
		return model.StockRecord{}, wrapErr("get stock by product", err)
	}
	return r, nil
}

// Update applies the patch and returns both the pre-image and the updated row.
func (s *Stock) Update(ctx context.Context, tenantID string, id uuid.UUID, p StockPatch) (old, cur model.StockRecord, err error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return model.StockRecord{}, model.StockRecord{}, wrapErr("update stock record", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+stockCols+` FROM stock_records WHERE tenant_id = $1 AND id = $2 FOR UPDATE`,
		tenantID, id)
	old, err = scanStock(row)
	if err != nil {
		return model.StockRecord{}, model.StockRecord{}, wrapErr("update stock record", err)
	}

	row = tx.QueryRow(ctx, `
		UPDATE stock_records SET
			quantity        = COALESCE($3, quantity),
			reserved_qty    = COALESCE($4, reserved_qty),
			available_qty   = COALESCE($5, available_qty),
			reorder_level   = COALESCE($6, reorder_level),
			max_stock_level = COALESCE($7, max_stock_level)
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+stockCols,
		tenantID, id, p.Quantity, p.ReservedQty, p.AvailableQty, p.ReorderLevel, p.MaxStockLevel)
	cur, err = scanStock(row)
	if err != nil {
		return model.StockRecord{}, model.StockRecord{}, wrapErr("update stock record", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.StockRecord{}, model.StockRecord{}, wrapErr("update stock record", err)
	}
	return old, cur, nil
}

// Delete removes the row and returns its pre-image for cache-key cleanup.
func (s *Stock) Delete(ctx context.Context, tenantID string, id uuid.UUID) (model.StockRecord, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	row := s.db.pool.QueryRow(ctx,
		`DELETE FROM stock_records WHERE tenant_id = $1 AND id = $2 RETURNING `+stockCols,
		tenantID, id)
	r, err := scanStock(row)
	if err != nil {
		return model.StockRecord{}, wrapErr("delete stock record", err)
	}
	return r, nil
}

func scanStock(row pgx.Row) (model.StockRecord, error) {
	var r model.StockRecord
	err := row.Scan(&r.ID, &r.TenantID, &r.ProductID, &r.Quantity, &r.ReservedQty, &r.AvailableQty, &r.ReorderLevel, &r.MaxStockLevel)
	return r, err
}
