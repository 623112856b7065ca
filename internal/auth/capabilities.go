package auth

import "github.com/mall-of-cayman/marketplace-service/internal/domain"

// Capability names a permission string gating one operation group.
type Capability string

// Seller-facing capabilities.
const (
	CapabilityProducts        Capability = "products"
	CapabilityInventory       Capability = "inventory"
	CapabilityOrders          Capability = "orders"
	CapabilityStoreSettings   Capability = "store_settings"
	CapabilityPaymentSettings Capability = "payment_settings"
	CapabilityRefunds         Capability = "refunds"
	CapabilityStoreInfo       Capability = "store_info"
	CapabilityWithdraw        Capability = "withdraw"
	CapabilitySubscription    Capability = "subscription"
	CapabilityCategories      Capability = "categories"
	CapabilityDeliveryConfig  Capability = "delivery_config"
)

// Platform administration capabilities.
const (
	CapabilityShopsReview     Capability = "shops_review"
	CapabilityUsersManage     Capability = "users_manage"
	CapabilityDistrictsManage Capability = "districts_manage"
	CapabilityManagersControl Capability = "managers_control"
)

// CapabilitySet is an immutable membership set over capabilities.
type CapabilitySet map[Capability]struct{}

// Has reports membership. Unknown capabilities are never granted.
func (s CapabilitySet) Has(capability Capability) bool {
	_, ok := s[capability]
	return ok
}

func newCapabilitySet(caps ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

var allCapabilities = []Capability{
	CapabilityProducts,
	CapabilityInventory,
	CapabilityOrders,
	CapabilityStoreSettings,
	CapabilityPaymentSettings,
	CapabilityRefunds,
	CapabilityStoreInfo,
	CapabilityWithdraw,
	CapabilitySubscription,
	CapabilityCategories,
	CapabilityDeliveryConfig,
	CapabilityShopsReview,
	CapabilityUsersManage,
	CapabilityDistrictsManage,
	CapabilityManagersControl,
}

// managerAllowList is the full extent of what a store manager may do on the
// shop it is assigned to. Everything outside it is denied, named or not.
var managerAllowList = newCapabilitySet(
	CapabilityProducts,
	CapabilityInventory,
	CapabilityOrders,
)

// PermissionTable maps administrator roles to fixed capability sets. Built
// once at startup and never mutated afterwards; there are no dynamic grants.
type PermissionTable struct {
	roles map[domain.UserRole]CapabilitySet
}

// NewPermissionTable constructs the fixed role table.
func NewPermissionTable() *PermissionTable {
	return &PermissionTable{
		roles: map[domain.UserRole]CapabilitySet{
			domain.RoleSuperAdmin: newCapabilitySet(allCapabilities...),
			domain.RoleSupportAdmin: newCapabilitySet(
				CapabilityOrders,
				CapabilityRefunds,
				CapabilityShopsReview,
				CapabilityManagersControl,
			),
			domain.RoleContentAdmin: newCapabilitySet(
				CapabilityCategories,
				CapabilityDistrictsManage,
			),
		},
	}
}

// PermissionsFor returns the capability set derived from an admin role.
// Non-admin roles get an empty set.
func (t *PermissionTable) PermissionsFor(role domain.UserRole) CapabilitySet {
	if set, ok := t.roles[role]; ok {
		return set
	}
	return CapabilitySet{}
}

// Permits reports whether the principal may exercise the capability.
// Administrators consult their role-derived set, shop owners are allowed
// everything on their own shop, store managers only their allow-list.
func Permits(p *Principal, capability Capability) bool {
	if p == nil {
		return false
	}
	switch p.Kind {
	case PrincipalAdministrator:
		return p.permissions.Has(capability)
	case PrincipalShopOwner:
		return true
	case PrincipalStoreManager:
		return managerAllowList.Has(capability)
	}
	return false
}
