package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEffective_RoleDefaults(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		has     []Permission
		lacks   []Permission
	}{
		{
			name: "sales cashier sells products not services",
			role: RoleSalesCashier,
			has:  []Permission{PermSaleProduct, PermCustomerWrite, PermPaymentCreate, PermStockRead},
			lacks: []Permission{
				PermSaleService, PermStockPurchase, PermStockWriteOff,
				PermEmployeeManage, PermReportRead, PermExpenseWrite,
			},
		},
		{
			name: "service cashier sells services not products",
			role: RoleServiceCashier,
			has:  []Permission{PermSaleService, PermCustomerWrite, PermPaymentCreate},
			lacks: []Permission{
				PermSaleProduct, PermStockTransfer, PermEmployeeManage, PermReportRead,
			},
		},
		{
			name: "master works the workshop only",
			role: RoleMaster,
			has:  []Permission{PermWorkshopRead, PermWorkshopWork, PermProductRead, PermStockRead},
			lacks: []Permission{
				PermSaleProduct, PermSaleService, PermPaymentCreate,
				PermCustomerWrite, PermStockPurchase, PermEmployeeManage,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eff := ResolveEffective(tt.role, nil)
			assert.Equal(t, SourceRoleDefault, eff.Source)

			for _, p := range tt.has {
				assert.True(t, eff.Has(p), "expected %s to hold %s", tt.role, p)
			}
			for _, p := range tt.lacks {
				assert.False(t, eff.Has(p), "expected %s to lack %s", tt.role, p)
			}
		})
	}
}

func TestResolveEffective_OwnerAlwaysPasses(t *testing.T) {
	// Even a bizarre empty override cannot strip the owner.
	eff := ResolveEffective(RoleOwner, []Permission{})
	require.Equal(t, SourceCustomOverride, eff.Source)

	for _, p := range All() {
		assert.True(t, eff.Has(p), "owner must hold %s", p)
	}
}

func TestResolveEffective_CustomOverride(t *testing.T) {
	custom := []Permission{PermCustomerRead, PermReportRead}
	eff := ResolveEffective(RoleSalesCashier, custom)

	require.Equal(t, SourceCustomOverride, eff.Source)
	assert.True(t, eff.Has(PermCustomerRead))
	// Override can grant beyond role defaults.
	assert.True(t, eff.Has(PermReportRead))
	// Role defaults no longer apply.
	assert.False(t, eff.Has(PermSaleProduct))
	assert.False(t, eff.Has(PermPaymentCreate))
}

func TestResolveEffective_EmptyOverrideRevokesAll(t *testing.T) {
	// nil means "no override": role defaults apply.
	byDefault := ResolveEffective(RoleMaster, nil)
	assert.Equal(t, SourceRoleDefault, byDefault.Source)
	assert.True(t, byDefault.Has(PermWorkshopWork))

	// An empty non-nil list is a real override that grants nothing.
	revoked := ResolveEffective(RoleMaster, []Permission{})
	assert.Equal(t, SourceCustomOverride, revoked.Source)
	assert.Empty(t, revoked.Permissions)
	assert.False(t, revoked.Has(PermWorkshopWork))
	assert.False(t, revoked.Has(PermWorkshopRead))
}

func TestEffective_HasAny(t *testing.T) {
	eff := ResolveEffective(RoleSalesCashier, nil)

	assert.True(t, eff.HasAny(PermSaleService, PermSaleProduct))
	assert.False(t, eff.HasAny(PermSaleService, PermEmployeeManage))
	assert.False(t, eff.HasAny())
}

func TestDefaultsFor_ReturnsCopy(t *testing.T) {
	first := DefaultsFor(RoleMaster)
	require.NotEmpty(t, first)
	first[0] = Permission("mutated")

	second := DefaultsFor(RoleMaster)
	assert.NotEqual(t, first[0], second[0])
}

func TestDefaultsFor_OwnerGetsFullVocabulary(t *testing.T) {
	assert.ElementsMatch(t, All(), DefaultsFor(RoleOwner))
}

func TestFromStrings_RoundTrip(t *testing.T) {
	eff := ResolveEffective(RoleServiceCashier, nil)
	rebuilt := FromStrings(RoleServiceCashier, eff.Strings())

	assert.ElementsMatch(t, eff.Permissions, rebuilt.Permissions)
	assert.True(t, rebuilt.Has(PermSaleService))
	assert.False(t, rebuilt.Has(PermSaleProduct))
}

func TestIsValidRole(t *testing.T) {
	for _, r := range Roles() {
		assert.True(t, IsValidRole(r))
	}
	assert.False(t, IsValidRole(Role("admin")))
	assert.False(t, IsValidRole(Role("")))
}

func TestGroups_CoverVocabulary(t *testing.T) {
	seen := map[Permission]bool{}
	for _, perms := range Groups() {
		for _, p := range perms {
			seen[p] = true
		}
	}
	for _, p := range All() {
		assert.True(t, seen[p], "permission %s missing from groups", p)
	}
}
