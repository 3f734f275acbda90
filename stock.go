package backoffice

import (
	"context"

	"github.com/google/uuid"

	"github.com/oinconquistado/omni-sub001/keys"
	"github.com/oinconquistado/omni-sub001/logging"
	"github.com/oinconquistado/omni-sub001/model"
	"github.com/oinconquistado/omni-sub001/store"
)

func stockFields(r model.StockRecord) logging.Fields {
	return logging.Fields{
		"stock_id":  r.ID,
		"tenant_id": r.TenantID,
		"quantity":  r.Quantity,
		"reserved":  r.ReservedQty,
		"available": r.AvailableQty,
	}
}

// CreateStock persists the stock record and warms its primary and by-product
// keys. A second record for the same (tenant, product) pair surfaces as
// *store.ConstraintError. The availability invariant is the caller's to
// maintain; a record arriving out of balance is stored as-is and logged.
func (s *Service) CreateStock(ctx context.Context, r model.StockRecord) (model.StockRecord, error) {
	if !r.Balanced() {
		s.log.Warn("stock record out of balance", stockFields(r))
	}

	created, err := s.stock.Create(ctx, r)
	if err != nil {
		return model.StockRecord{}, err
	}
	s.stockCache.Set(ctx, keys.Stock(created.ID), created, s.entryTTL)
	s.stockCache.Set(ctx, keys.StockProduct(created.TenantID, created.ProductID), created, s.entryTTL)
	return created, nil
}

// StockByID is the read-through primary lookup.
func (s *Service) StockByID(ctx context.Context, tenantID string, id uuid.UUID) (model.StockRecord, error) {
	k := keys.Stock(id)
	if r, ok := s.stockCache.Get(ctx, k); ok && r.TenantID == tenantID {
		return r, nil
	}

	r, err := s.stock.GetByID(ctx, tenantID, id)
	if err != nil {
		return model.StockRecord{}, err
	}
	s.stockCache.Set(ctx, k, r, s.entryTTL)
	return r, nil
}

// StockByProduct is the read-through secondary lookup; a miss also warms the
// primary key.
func (s *Service) StockByProduct(ctx context.Context, tenantID string, productID uuid.UUID) (model.StockRecord, error) {
	k := keys.StockProduct(tenantID, productID)
	if r, ok := s.stockCache.Get(ctx, k); ok && r.TenantID == tenantID {
		return r, nil
	}

	r, err := s.stock.GetByProduct(ctx, tenantID, productID)
	if err != nil {
		return model.StockRecord{}, err
	}
	s.stockCache.Set(ctx, k, r, s.entryTTL)
	s.stockCache.Set(ctx, keys.Stock(r.ID), r, s.entryTTL)
	return r, nil
}

// UpdateStock writes the store first, then repopulates both derived keys.
// The product binding never changes on update, so no old-value key needs
// dropping.
func (s *Service) UpdateStock(ctx context.Context, tenantID string, id uuid.UUID, p store.StockPatch) (model.StockRecord, error) {
	_, cur, err := s.stock.Update(ctx, tenantID, id, p)
	if err != nil {
		return model.StockRecord{}, err
	}
	if !cur.Balanced() {
		s.log.Warn("stock record out of balance", stockFields(cur))
	}

	s.stockCache.Set(ctx, keys.Stock(id), cur, s.entryTTL)
	s.stockCache.Set(ctx, keys.StockProduct(tenantID, cur.ProductID), cur, s.entryTTL)
	return cur, nil
}

// DeleteStock removes the row, then drops every key that could reference it.
func (s *Service) DeleteStock(ctx context.Context, tenantID string, id uuid.UUID) error {
	old, err := s.stock.Delete(ctx, tenantID, id)
	if err != nil {
		return err
	}
	for _, k := range keys.ForStock(old) {
		s.cache.Delete(ctx, k)
	}
	return nil
}
