package keys

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/oinconquistado/omni-sub001/model"
)

func TestTenantScopedKeysDiffer(t *testing.T) {
	// identical lookup values under different tenants must never collide
	if AccountEmail("t1", "a@x.com") == AccountEmail("t2", "a@x.com") {
		t.Fatalf("email keys collide across tenants")
	}
	if ItemSKU("t1", "SKU") == ItemSKU("t2", "SKU") {
		t.Fatalf("sku keys collide across tenants")
	}
	pid := uuid.New()
	if StockProduct("t1", pid) == StockProduct("t2", pid) {
		t.Fatalf("stock product keys collide across tenants")
	}
}

func TestKeyShapes(t *testing.T) {
	id := uuid.MustParse("6a9c5bdc-2f35-4e2d-9d7e-0552f4a3f001")

	if got := Account(id); got != "account:"+id.String() {
		t.Fatalf("account key: %q", got)
	}
	if got := AccountEmail("t1", "a@x.com"); got != "account:email:t1:a@x.com" {
		t.Fatalf("email key: %q", got)
	}
	if got := AccountSessions(id); got != "account:sessions:"+id.String() {
		t.Fatalf("sessions view key: %q", got)
	}
	if got := SessionToken("tok"); got != "session:token:tok" {
		t.Fatalf("token key: %q", got)
	}
	if got := ItemSKU("t1", "S"); got != "item:sku:t1:S" {
		t.Fatalf("sku key: %q", got)
	}
}

func TestForAccountEnumeratesEveryView(t *testing.T) {
	a := model.Account{ID: uuid.New(), TenantID: "t1", Email: "a@x.com"}
	ks := ForAccount(a)
	want := []string{Account(a.ID), AccountEmail("t1", "a@x.com"), AccountSessions(a.ID)}
	if len(ks) != len(want) {
		t.Fatalf("ForAccount returned %d keys, want %d", len(ks), len(want))
	}
	for i, k := range want {
		if ks[i] != k {
			t.Fatalf("ForAccount[%d] = %q, want %q", i, ks[i], k)
		}
	}
}

func TestForSessionIncludesOwnersView(t *testing.T) {
	s := model.Session{ID: uuid.New(), AccountID: uuid.New(), Token: "tok"}
	ks := ForSession(s)
	var hasView bool
	for _, k := range ks {
		if k == AccountSessions(s.AccountID) {
			hasView = true
		}
	}
	if !hasView {
		t.Fatalf("ForSession misses the owner's aggregate view: %v", ks)
	}
}

func TestEveryTenantScopedKeyCarriesTenant(t *testing.T) {
	pid := uuid.New()
	for _, k := range []string{
		AccountEmail("tenant-x", "e"),
		ItemSKU("tenant-x", "s"),
		StockProduct("tenant-x", pid),
	} {
		if !strings.Contains(k, "tenant-x") {
			t.Fatalf("key %q lost its tenant segment", k)
		}
	}
}
