package access

const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleTechnician = "technician"
)

const (
	SensorIngest        = "sensor.ingest"
	SiloView            = "silo.view"
	BatchView           = "batch.view"
	BatchIntake         = "batch.intake"
	BatchTransition     = "batch.transition"
	RiskView            = "risk.view"
	RiskRecompute       = "risk.recompute"
	NotificationsView   = "notifications.view"
	NotificationsManage = "notifications.manage"
	PolicyManage        = "policy.manage"
)

var allPermissions = []string{
	SensorIngest,
	SiloView,
	BatchView,
	BatchIntake,
	BatchTransition,
	RiskView,
	RiskRecompute,
	NotificationsView,
	NotificationsManage,
	PolicyManage,
}

var rolePermissions = map[string]map[string]struct{}{
	RoleSuperAdmin: set(allPermissions...),
	RoleAdmin:      set(allPermissions...),
	RoleManager:    without(allPermissions, PolicyManage),
	RoleTechnician: set(
		SensorIngest,
		SiloView,
		BatchView,
		RiskView,
		RiskRecompute,
		NotificationsView,
		NotificationsManage,
	),
}

// Allowed reports whether role holds permission. Unknown roles hold nothing.
func Allowed(role, permission string) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = perms[permission]
	return ok
}

// Permissions lists what role holds, in declaration order.
func Permissions(role string) []string {
	out := make([]string, 0, len(allPermissions))
	for _, p := range allPermissions {
		if Allowed(role, p) {
			out = append(out, p)
		}
	}
	return out
}

func set(perms ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		m[p] = struct{}{}
	}
	return m
}

func without(perms []string, drop string) map[string]struct{} {
	m := set(perms...)
	delete(m, drop)
	return m
}
