// Package model holds the tenant-scoped entities served by the cache-aside
// core. All uniqueness constraints (email, sku, product binding) are scoped by
// TenantID; the same value may repeat across tenants but not within one.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role is an account's permission tier.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleViewer:
		return true
	}
	return false
}

// AccountStatus is the lifecycle state of an Account.
type AccountStatus string

const (
	AccountActive    AccountStatus = "ACTIVE"
	AccountInactive  AccountStatus = "INACTIVE"
	AccountSuspended AccountStatus = "SUSPENDED"
)

func (s AccountStatus) Valid() bool {
	switch s {
	case AccountActive, AccountInactive, AccountSuspended:
		return true
	}
	return false
}

// ItemStatus is the lifecycle state of a CatalogItem.
type ItemStatus string

const (
	ItemActive       ItemStatus = "ACTIVE"
	ItemInactive     ItemStatus = "INACTIVE"
	ItemDiscontinued ItemStatus = "DISCONTINUED"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemActive, ItemInactive, ItemDiscontinued:
		return true
	}
	return false
}

// Account is an identity within a tenant. Email is unique per tenant.
// TenantID is the empty string for single-tenant deployments.
type Account struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	TenantID    string        `json:"tenant_id" db:"tenant_id"`
	Email       string        `json:"email" db:"email"`
	DisplayName string        `json:"display_name" db:"display_name"`
	Role        Role          `json:"role" db:"role"`
	Status      AccountStatus `json:"status" db:"status"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// Session is an authentication session owned by an Account.
// Token is globally unique. Expiry is checked lazily on read; nothing sweeps
// expired rows in the background.
type Session struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	AccountID uuid.UUID `json:"account_id" db:"account_id"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Live reports whether the session has not yet expired at the given instant.
func (s Session) Live(now time.Time) bool {
	return s.ExpiresAt.After(now)
}

// CatalogItem is a product in a tenant's catalog. SKU is unique per tenant.
type CatalogItem struct {
	ID       uuid.UUID       `json:"id" db:"id"`
	TenantID string          `json:"tenant_id" db:"tenant_id"`
	SKU      string          `json:"sku" db:"sku"`
	Name     string          `json:"name" db:"name"`
	Price    decimal.Decimal `json:"price" db:"price"`
	Status   ItemStatus      `json:"status" db:"status"`
}

// StockRecord tracks inventory for one product within a tenant; one record
// per (tenant, product) pair. AvailableQty = Quantity - ReservedQty is a
// caller-maintained invariant, never enforced by the store.
type StockRecord struct {
	ID            uuid.UUID `json:"id" db:"id"`
	TenantID      string    `json:"tenant_id" db:"tenant_id"`
	ProductID     uuid.UUID `json:"product_id" db:"product_id"`
	Quantity      int64     `json:"quantity" db:"quantity"`
	ReservedQty   int64     `json:"reserved_qty" db:"reserved_qty"`
	AvailableQty  int64     `json:"available_qty" db:"available_qty"`
	ReorderLevel  int64     `json:"reorder_level" db:"reorder_level"`
	MaxStockLevel int64     `json:"max_stock_level" db:"max_stock_level"`
}

// Balanced reports whether the availability invariant currently holds.
func (r StockRecord) Balanced() bool {
	return r.AvailableQty == r.Quantity-r.ReservedQty
}

// AccountWithSessions is the aggregate view cached per account; it embeds the
// account plus its sessions as of population time.
type AccountWithSessions struct {
	Account  Account   `json:"account"`
	Sessions []Session `json:"sessions"`
}
