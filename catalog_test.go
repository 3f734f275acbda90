package backoffice

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/oinconquistado/omni-sub001/model"
	"github.com/oinconquistado/omni-sub001/store"
)

// TestItemSKUUpdateInvalidation mirrors the account email flow for catalog
// items: changing a sku must drop the old sku entry and repopulate the new.
func TestItemSKUUpdateInvalidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	it, err := env.svc.CreateItem(ctx, model.CatalogItem{
		TenantID: "t1", SKU: "SKU-1", Name: "Widget", Price: decimal.NewFromFloat(9.99),
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	got, err := env.svc.ItemBySKU(ctx, "t1", "SKU-1")
	if err != nil || got.ID != it.ID {
		t.Fatalf("ItemBySKU: %v %+v", err, got)
	}
	if n := env.items.count("GetBySKU"); n != 0 {
		t.Fatalf("warm sku read touched the store (calls=%d)", n)
	}

	newSKU := "SKU-2"
	cur, err := env.svc.UpdateItem(ctx, "t1", it.ID, store.ItemPatch{SKU: &newSKU})
	if err != nil || cur.SKU != newSKU {
		t.Fatalf("UpdateItem: %v %+v", err, cur)
	}

	if _, err := env.svc.ItemBySKU(ctx, "t1", "SKU-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("old sku still resolves: %v", err)
	}
	before := env.items.count("GetBySKU")
	got, err = env.svc.ItemBySKU(ctx, "t1", newSKU)
	if err != nil || got.SKU != newSKU {
		t.Fatalf("new sku read: %v %+v", err, got)
	}
	if env.items.count("GetBySKU") != before {
		t.Fatalf("new sku read went to the store; cache was not repopulated")
	}
}

// TestItemTenantIsolation stores the same sku under two tenants.
func TestItemTenantIsolation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	i1, err := env.svc.CreateItem(ctx, model.CatalogItem{TenantID: "t1", SKU: "S", Name: "one", Price: decimal.NewFromInt(1)})
	if err != nil {
		t.Fatalf("create t1: %v", err)
	}
	i2, err := env.svc.CreateItem(ctx, model.CatalogItem{TenantID: "t2", SKU: "S", Name: "two", Price: decimal.NewFromInt(2)})
	if err != nil {
		t.Fatalf("create t2: %v", err)
	}

	got, err := env.svc.ItemBySKU(ctx, "t1", "S")
	if err != nil || got.ID != i1.ID {
		t.Fatalf("t1 sku read: %v %+v", err, got)
	}
	got, err = env.svc.ItemBySKU(ctx, "t2", "S")
	if err != nil || got.ID != i2.ID {
		t.Fatalf("t2 sku read: %v %+v", err, got)
	}
	if _, err := env.svc.ItemByID(ctx, "t2", i1.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("t2 resolved t1's item by id: %v", err)
	}
}

// TestDeleteItemDropsStockKeys verifies an item delete also clears the
// product's cached stock views.
func TestDeleteItemDropsStockKeys(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	it, err := env.svc.CreateItem(ctx, model.CatalogItem{TenantID: "t1", SKU: "S", Name: "w", Price: decimal.NewFromInt(3)})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	rec, err := env.svc.CreateStock(ctx, model.StockRecord{
		TenantID: "t1", ProductID: it.ID, Quantity: 10, AvailableQty: 10,
	})
	if err != nil {
		t.Fatalf("CreateStock: %v", err)
	}

	if err := env.svc.DeleteItem(ctx, "t1", it.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if _, err := env.svc.ItemByID(ctx, "t1", it.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("deleted item still resolves: %v", err)
	}

	// the fake does not cascade, so drop the row and check the cache alone
	if _, err := env.stock.Delete(ctx, "t1", rec.ID); err != nil {
		t.Fatalf("cleanup stock row: %v", err)
	}
	if _, err := env.svc.StockByProduct(ctx, "t1", it.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("stock view survived the item delete: %v", err)
	}
}
