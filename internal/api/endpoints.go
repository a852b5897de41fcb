package api

// Route paths served by the auth core.
const (
	Health = "/healthz"

	AuthRegister = "/auth/register"
	AuthLogin    = "/auth/login"
	AuthRefresh  = "/auth/refresh"
	AuthLogout   = "/auth/logout"
	AuthMe       = "/auth/me"
	AuthSetupPin = "/auth/setup-pin"
	AuthPinLogin = "/auth/pin-login"
	AuthDevices  = "/auth/devices"
	AuthDevice   = "/auth/devices/:device_id"

	AdminUsers      = "/admin/users"
	AdminUserRole   = "/admin/users/:id/role"
	AdminUserActive = "/admin/users/:id/active"
)

// PublicEndpoints defines endpoints that don't require authentication.
var PublicEndpoints = map[string]bool{
	Health:       true,
	AuthRegister: true,
	AuthLogin:    true,
	AuthRefresh:  true,
	AuthPinLogin: true,
}
