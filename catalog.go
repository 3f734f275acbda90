package backoffice

import (
	"context"

	"github.com/google/uuid"

	"github.com/oinconquistado/omni-sub001/keys"
	"github.com/oinconquistado/omni-sub001/model"
	"github.com/oinconquistado/omni-sub001/store"
)

// CreateItem persists the catalog item and warms its primary and sku keys.
// A duplicate sku within the tenant surfaces as *store.ConstraintError.
func (s *Service) CreateItem(ctx context.Context, it model.CatalogItem) (model.CatalogItem, error) {
	if it.Status == "" {
		it.Status = model.ItemActive
	}

	created, err := s.items.Create(ctx, it)
	if err != nil {
		return model.CatalogItem{}, err
	}
	s.itemCache.Set(ctx, keys.Item(created.ID), created, s.entryTTL)
	s.itemCache.Set(ctx, keys.ItemSKU(created.TenantID, created.SKU), created, s.entryTTL)
	return created, nil
}

// ItemByID is the read-through primary lookup.
func (s *Service) ItemByID(ctx context.Context, tenantID string, id uuid.UUID) (model.CatalogItem, error) {
	k := keys.Item(id)
	if it, ok := s.itemCache.Get(ctx, k); ok && it.TenantID == tenantID {
		return it, nil
	}

	it, err := s.items.GetByID(ctx, tenantID, id)
	if err != nil {
		return model.CatalogItem{}, err
	}
	s.itemCache.Set(ctx, k, it, s.entryTTL)
	return it, nil
}

// ItemBySKU is the read-through secondary lookup; a miss also warms the
// primary key.
func (s *Service) ItemBySKU(ctx context.Context, tenantID, sku string) (model.CatalogItem, error) {
	k := keys.ItemSKU(tenantID, sku)
	if it, ok := s.itemCache.Get(ctx, k); ok && it.TenantID == tenantID {
		return it, nil
	}

	it, err := s.items.GetBySKU(ctx, tenantID, sku)
	if err != nil {
		return model.CatalogItem{}, err
	}
	s.itemCache.Set(ctx, k, it, s.entryTTL)
	s.itemCache.Set(ctx, keys.Item(it.ID), it, s.entryTTL)
	return it, nil
}

// UpdateItem writes the store first, then reconciles every derived key: a
// changed sku drops the old sku entry before the new one is written.
func (s *Service) UpdateItem(ctx context.Context, tenantID string, id uuid.UUID, p store.ItemPatch) (model.CatalogItem, error) {
	old, cur, err := s.items.Update(ctx, tenantID, id, p)
	if err != nil {
		return model.CatalogItem{}, err
	}

	if old.SKU != cur.SKU {
		s.itemCache.Delete(ctx, keys.ItemSKU(tenantID, old.SKU))
	}
	s.itemCache.Set(ctx, keys.Item(id), cur, s.entryTTL)
	s.itemCache.Set(ctx, keys.ItemSKU(tenantID, cur.SKU), cur, s.entryTTL)
	return cur, nil
}

// DeleteItem removes the row, then drops every key that could reference it,
// including the product's stock entries (the rows cascade in the store).
func (s *Service) DeleteItem(ctx context.Context, tenantID string, id uuid.UUID) error {
	stock, stockErr := s.stock.GetByProduct(ctx, tenantID, id)

	old, err := s.items.Delete(ctx, tenantID, id)
	if err != nil {
		return err
	}

	for _, k := range keys.ForItem(old) {
		s.cache.Delete(ctx, k)
	}
	if stockErr == nil {
		for _, k := range keys.ForStock(stock) {
			s.cache.Delete(ctx, k)
		}
	}
	return nil
}
