package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Wayfarer545/MotoKonig-web-application-sub000/internal/api"
)

// RegisterRoutes mounts the auth surface on the app. Public routes skip the
// principal extractor; everything else runs behind it.
func RegisterRoutes(app *fiber.App, h *Handler, m *Middleware) {
	app.Post(api.AuthRegister, h.Register)
	app.Post(api.AuthLogin, h.Login)
	app.Post(api.AuthRefresh, h.Refresh)
	app.Post(api.AuthPinLogin, h.PinLogin)

	app.Post(api.AuthLogout, m.Authenticate(), h.Logout)
	app.Get(api.AuthMe, m.Authenticate(), h.Me)
	app.Post(api.AuthSetupPin, m.Authenticate(), h.SetupPin)
	app.Get(api.AuthDevices, m.Authenticate(), h.ListDevices)
	app.Delete(api.AuthDevice, m.Authenticate(), h.RevokeDevice)

	admin := app.Group("/admin", m.Authenticate(), m.RequireRole(RoleAdmin))
	admin.Get("/users", h.ListUsers)
	admin.Patch("/users/:id/role", h.UpdateUserRole)
	admin.Patch("/users/:id/active", h.SetUserActive)
}
