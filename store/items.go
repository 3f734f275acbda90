package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/oinconquistado/omni-sub001/model"
)

const itemCols = `id, tenant_id, sku, name, price, status`

// Items is the relational surface for CatalogItem rows.
// SKU uniqueness is enforced per tenant by the catalog_items_tenant_sku_key index.
type Items struct {
	db *DB
}

func NewItems(db *DB) *Items { return &Items{db: db} }

// ItemPatch holds the updatable fields; nil means "leave unchanged".
type ItemPatch struct {
	SKU    *string
	Name   *string
	Price  *decimal.Decimal
	Status *model.ItemStatus
}

func (s *Items) Create(ctx context.Context, it model.CatalogItem) (model.CatalogItem, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO catalog_items (id, tenant_id, sku, name, price, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		it.ID, it.TenantID, it.SKU, it.Name, it.Price, it.Status)
	if err != nil {
		return model.CatalogItem{}, wrapErr("create item", err)
	}
	return it, nil
}

func (s *Items) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (model.CatalogItem, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	row := s.db.pool.QueryRow(ctx,
		`SELECT `+itemCols+` FROM catalog_items WHERE tenant_id = $1 AND id = $2`,
		tenantID, id)
	it, err := scanItem(row)
	if err != nil {
		return model.CatalogItem{}, wrapErr("get item by id", err)
	}
	return it, nil
}

func (s *Items) GetBySKU(ctx context.Context, tenantID, sku string) (model.CatalogItem, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	row := s.db.pool.QueryRow(ctx,
		`SELECT `+itemCols+` FROM catalog_items WHERE tenant_id = $1 AND sku = $2`,
		tenantID, sku)
	it, err := scanItem(row)
	if err != nil {
		return model.CatalogItem{}, wrapErr("get item by sku", err)
	}
	return it, nil
}

// Update applies the patch and returns both the pre-image and the updated row.
func (s *Items) Update(ctx context.Context, tenantID string, id uuid.UUID, p ItemPatch) (old, cur model.CatalogItem, err error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return model.CatalogItem{}, model.CatalogItem{}, wrapErr("update item", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+itemCols+` FROM catalog_items WHERE tenant_id = $1 AND id = $2 FOR UPDATE`,
		tenantID, id)
	old, err = scanItem(row)
	if err != nil {
		return model.CatalogItem{}, model.CatalogItem{}, wrapErr("update item", err)
	}

	row = tx.QueryRow(ctx, `
		UPDATE catalog_items SET
			sku    = COALESCE($3, sku),
			name   = COALESCE($4, name),
			price  = COALESCE($5, price),
			status = COALESCE($6, status)
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+itemCols,
		tenantID, id, p.SKU, p.Name, p.Price, p.Status)
	cur, err = scanItem(row)
	if err != nil {
		return model.CatalogItem{}, model.CatalogItem{}, wrapErr("update item", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.CatalogItem{}, model.CatalogItem{}, wrapErr("update item", err)
	}
	return old, cur, nil
}

// Delete removes the row and returns its pre-image for cache-key cleanup.
func (s *Items) Delete(ctx context.Context, tenantID string, id uuid.UUID) (model.CatalogItem, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	row := s.db.pool.QueryRow(ctx,
		`DELETE FROM catalog_items WHERE tenant_id = $1 AND id = $2 RETURNING `+itemCols,
		tenantID, id)
	it, err := scanItem(row)
	if err != nil {
		return model.CatalogItem{}, wrapErr("delete item", err)
	}
	return it, nil
}

func scanItem(row pgx.Row) (model.CatalogItem, error) {
	var it model.CatalogItem
	err := row.Scan(&it.ID, &it.TenantID, &it.SKU, &it.Name, &it.Price, &it.Status)
	return it, err
}
