package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mall-of-cayman/marketplace-service/internal/domain"
)

func TestPermits_ShopOwnerAllowedEverything(t *testing.T) {
	owner := &Principal{Kind: PrincipalShopOwner, Shop: &domain.Shop{ID: "shop-1"}}

	for _, capability := range allCapabilities {
		assert.True(t, Permits(owner, capability), "owner should hold %s", capability)
	}
}

func TestPermits_ManagerAllowListOnly(t *testing.T) {
	manager := &Principal{Kind: PrincipalStoreManager, Shop: &domain.Shop{ID: "shop-1"}}

	assert.True(t, Permits(manager, CapabilityProducts))
	assert.True(t, Permits(manager, CapabilityInventory))
	assert.True(t, Permits(manager, CapabilityOrders))

	// Everything outside the allow-list is denied, including capabilities the
	// shop owner would hold on the same shop.
	assert.False(t, Permits(manager, CapabilityStoreSettings))
	assert.False(t, Permits(manager, CapabilityPaymentSettings))
	assert.False(t, Permits(manager, CapabilityWithdraw))
	assert.False(t, Permits(manager, CapabilityDeliveryConfig))
	assert.False(t, Permits(manager, CapabilityManagersControl))
}

func TestPermits_UnknownCapabilityDenied(t *testing.T) {
	manager := &Principal{Kind: PrincipalStoreManager}
	admin := &Principal{
		Kind:        PrincipalAdministrator,
		permissions: NewPermissionTable().PermissionsFor(domain.RoleSupportAdmin),
	}

	assert.False(t, Permits(manager, Capability("made_up_capability")))
	assert.False(t, Permits(admin, Capability("made_up_capability")))
}

func TestPermits_NilPrincipalDenied(t *testing.T) {
	assert.False(t, Permits(nil, CapabilityProducts))
}

func TestPermissionTable_RoleSets(t *testing.T) {
	table := NewPermissionTable()

	super := table.PermissionsFor(domain.RoleSuperAdmin)
	for _, capability := range allCapabilities {
		assert.True(t, super.Has(capability), "super admin should hold %s", capability)
	}

	support := table.PermissionsFor(domain.RoleSupportAdmin)
	assert.True(t, support.Has(CapabilityOrders))
	assert.True(t, support.Has(CapabilityRefunds))
	assert.True(t, support.Has(CapabilityShopsReview))
	assert.True(t, support.Has(CapabilityManagersControl))
	assert.False(t, support.Has(CapabilityDistrictsManage))
	assert.False(t, support.Has(CapabilityUsersManage))

	content := table.PermissionsFor(domain.RoleContentAdmin)
	assert.True(t, content.Has(CapabilityCategories))
	assert.True(t, content.Has(CapabilityDistrictsManage))
	assert.False(t, content.Has(CapabilityShopsReview))
}

func TestPermissionTable_NonAdminRolesGetNothing(t *testing.T) {
	table := NewPermissionTable()

	assert.Empty(t, table.PermissionsFor(domain.RoleCustomer))
	assert.Empty(t, table.PermissionsFor(domain.RoleStoreManager))
}
