// Package keys derives cache keys for every lookup path and is the single
// source of truth for "which keys can reference this entity". Every write path
// enumerates keys through this package instead of assembling them at the call
// site, so an invalidation can never miss a secondary view.
//
// Key scheme:
//
//	account:<id>                         - account by id (ids are globally unique)
//	account:email:<tenant>:<email>       - account by tenant-scoped email
//	account:sessions:<id>                - account-with-sessions aggregate view
//	session:token:<token>                - session by globally unique token
//	item:<id>                            - catalog item by id
//	item:sku:<tenant>:<sku>              - catalog item by tenant-scoped sku
//	stock:<id>                           - stock record by id
//	stock:product:<tenant>:<product-id>  - stock record by tenant-scoped product
//
// Tenant-scoped lookup values always carry the tenant segment; leaving it out
// would let one tenant resolve another tenant's entry.
package keys

import (
	"github.com/google/uuid"

	"github.com/oinconquistado/omni-sub001/model"
)

func Account(id uuid.UUID) string {
	return "account:" + id.String()
}

func AccountEmail(tenantID, email string) string {
	return "account:email:" + tenantID + ":" + email
}

func AccountSessions(id uuid.UUID) string {
	return "account:sessions:" + id.String()
}

func SessionToken(token string) string {
	return "session:token:" + token
}

func Item(id uuid.UUID) string {
	return "item:" + id.String()
}

func ItemSKU(tenantID, sku string) string {
	return "item:sku:" + tenantID + ":" + sku
}

func Stock(id uuid.UUID) string {
	return "stock:" + id.String()
}

func StockProduct(tenantID string, productID uuid.UUID) string {
	return "stock:product:" + tenantID + ":" + productID.String()
}

// ForAccount returns every key that can hold a view of the account: the
// primary entry, the email lookup, and the sessions aggregate (which embeds
// the account's fields).
func ForAccount(a model.Account) []string {
	return []string{
		Account(a.ID),
		AccountEmail(a.TenantID, a.Email),
		AccountSessions(a.ID),
	}
}

// ForSession returns every key a session mutation can leave stale: the token
// entry plus the owning account's sessions view.
func ForSession(s model.Session) []string {
	return []string{
		SessionToken(s.Token),
		AccountSessions(s.AccountID),
	}
}

// ForItem returns every key that can hold a view of the catalog item.
func ForItem(it model.CatalogItem) []string {
	return []string{
		Item(it.ID),
		ItemSKU(it.TenantID, it.SKU),
	}
}

// ForStock returns every key that can hold a view of the stock record.
func ForStock(r model.StockRecord) []string {
	return []string{
		Stock(r.ID),
		StockProduct(r.TenantID, r.ProductID),
	}
}
