// Package access defines the static role and permission model.
//
// Roles form a fixed enumeration; permissions are a closed vocabulary of
// opaque string tags. Group membership below exists only for UI grouping
// and carries no runtime semantics.
package access

// Role is one of the fixed user roles.
type Role string

const (
	RoleOwner         Role = "owner"
	RoleSalesCashier  Role = "sales_cashier"
	RoleServiceCashier Role = "service_cashier"
	RoleMaster        Role = "master"
)

// Roles lists all valid roles.
func Roles() []Role {
	return []Role{RoleOwner, RoleSalesCashier, RoleServiceCashier, RoleMaster}
}

// IsValidRole reports whether r is a known role.
func IsValidRole(r Role) bool {
	switch r {
	case RoleOwner, RoleSalesCashier, RoleServiceCashier, RoleMaster:
		return true
	}
	return false
}

// Permission is an opaque string tag from a closed vocabulary.
type Permission string

// Permission vocabulary.
const (
	PermCustomerRead   Permission = "customer:read"
	PermCustomerWrite  Permission = "customer:write"
	PermProductRead    Permission = "product:read"
	PermProductWrite   Permission = "product:write"
	PermWarehouseRead  Permission = "warehouse:read"
	PermWarehouseWrite Permission = "warehouse:write"
	PermSaleProduct    Permission = "sale:product"
	PermSaleService    Permission = "sale:service"
	PermSaleComplete   Permission = "sale:complete"
	PermSaleCancel     Permission = "sale:cancel"
	PermPaymentCreate  Permission = "payment:create"
	PermStockPurchase  Permission = "stock:purchase"
	PermStockTransfer  Permission = "stock:transfer"
	PermStockWriteOff  Permission = "stock:writeoff"
	PermStockInventory Permission = "stock:inventory"
	PermStockRead      Permission = "stock:read"
	PermExpenseRead    Permission = "expense:read"
	PermExpenseWrite   Permission = "expense:write"
	PermWorkshopRead   Permission = "workshop:read"
	PermWorkshopWork   Permission = "workshop:work"
	PermReportRead     Permission = "report:read"
	PermEmployeeManage Permission = "employee:manage"
	PermSupplierRead   Permission = "supplier:read"
	PermSupplierWrite  Permission = "supplier:write"
	PermSettingsWrite  Permission = "settings:write"
)

// All returns the full permission vocabulary.
func All() []Permission {
	return []Permission{
		PermCustomerRead, PermCustomerWrite,
		PermProductRead, PermProductWrite,
		PermWarehouseRead, PermWarehouseWrite,
		PermSaleProduct, PermSaleService, PermSaleComplete, PermSaleCancel,
		PermPaymentCreate,
		PermStockPurchase, PermStockTransfer, PermStockWriteOff, PermStockInventory, PermStockRead,
		PermExpenseRead, PermExpenseWrite,
		PermWorkshopRead, PermWorkshopWork,
		PermReportRead,
		PermEmployeeManage,
		PermSupplierRead, PermSupplierWrite,
		PermSettingsWrite,
	}
}

// Groups maps a UI group label to its permissions. Presentation only.
func Groups() map[string][]Permission {
	return map[string][]Permission{
		"customers": {PermCustomerRead, PermCustomerWrite},
		"catalog":   {PermProductRead, PermProductWrite, PermSupplierRead, PermSupplierWrite},
		"sales":     {PermSaleProduct, PermSaleService, PermSaleComplete, PermSaleCancel, PermPaymentCreate},
		"stock":     {PermWarehouseRead, PermWarehouseWrite, PermStockPurchase, PermStockTransfer, PermStockWriteOff, PermStockInventory, PermStockRead},
		"finance":   {PermExpenseRead, PermExpenseWrite, PermReportRead},
		"workshop":  {PermWorkshopRead, PermWorkshopWork},
		"admin":     {PermEmployeeManage, PermSettingsWrite},
	}
}

// roleDefaults is the static role → permission table.
// The owner has no entry: owners pass every check unconditionally.
var roleDefaults = map[Role][]Permission{
	RoleSalesCashier: {
		PermCustomerRead, PermCustomerWrite,
		PermProductRead, PermWarehouseRead,
		PermSaleProduct, PermSaleComplete, PermSaleCancel,
		PermPaymentCreate,
		PermStockRead,
		PermWorkshopRead,
	},
	RoleServiceCashier: {
		PermCustomerRead, PermCustomerWrite,
		PermProductRead, PermWarehouseRead,
		PermSaleService, PermSaleComplete, PermSaleCancel,
		PermPaymentCreate,
		PermStockRead,
		PermWorkshopRead,
	},
	RoleMaster: {
		PermWorkshopRead, PermWorkshopWork,
		PermProductRead, PermStockRead,
	},
}

// DefaultsFor returns a copy of the default permission list for a role.
// The owner role returns the full vocabulary.
func DefaultsFor(role Role) []Permission {
	if role == RoleOwner {
		return All()
	}
	defaults := roleDefaults[role]
	out := make([]Permission, len(defaults))
	copy(out, defaults)
	return out
}
