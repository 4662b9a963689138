package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminsHoldEverything(t *testing.T) {
	for _, role := range []string{RoleSuperAdmin, RoleAdmin} {
		for _, p := range allPermissions {
			assert.True(t, Allowed(role, p), "%s should hold %s", role, p)
		}
	}
}

func TestManagerCannotManagePolicy(t *testing.T) {
	assert.False(t, Allowed(RoleManager, PolicyManage))
	assert.True(t, Allowed(RoleManager, BatchTransition))
	assert.True(t, Allowed(RoleManager, BatchIntake))
	assert.Len(t, Permissions(RoleManager), len(allPermissions)-1)
}

func TestTechnicianPermissions(t *testing.T) {
	assert.Equal(t, []string{
		SensorIngest,
		SiloView,
		BatchView,
		RiskView,
		RiskRecompute,
		NotificationsView,
		NotificationsManage,
	}, Permissions(RoleTechnician))
	assert.False(t, Allowed(RoleTechnician, BatchTransition))
	assert.False(t, Allowed(RoleTechnician, BatchIntake))
}

func TestUnknownRoleHoldsNothing(t *testing.T) {
	assert.False(t, Allowed("", SiloView))
	assert.False(t, Allowed("auditor", SiloView))
	assert.Empty(t, Permissions("auditor"))
}
