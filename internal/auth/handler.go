package auth

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler is the thin HTTP adapter over the orchestrator. It owns request
// parsing and the status-code mapping, nothing else.
type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Password == "" || req.Password != req.PasswordConfirm {
		return badRequest(c, "passwords do not match")
	}

	user, err := h.service.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(RegisterResponse{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		Message:  "user registered",
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	username, password, ok := basicCredentials(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return h.fail(c, ErrUnauthenticated)
	}

	pair, err := h.service.Login(c.UserContext(), username, password)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(pair)
}

func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return badRequest(c, "refresh_token is required")
	}

	pair, err := h.service.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(pair)
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return h.fail(c, ErrUnauthenticated)
	}

	if err := h.service.Logout(c.UserContext(), token); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(MessageResponse{Message: "logged out"})
}

func (h *Handler) Me(c *fiber.Ctx) error {
	principal, ok := PrincipalFrom(c)
	if !ok {
		return h.fail(c, ErrUnauthenticated)
	}
	return c.JSON(MeResponse{
		UserID:   principal.UserID,
		Username: principal.Username,
		Role:     principal.Role,
	})
}

func (h *Handler) SetupPin(c *fiber.Ctx) error {
	principal, ok := PrincipalFrom(c)
	if !ok {
		return h.fail(c, ErrUnauthenticated)
	}

	var req SetupPinRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.PinCode == "" || req.DeviceID == "" {
		return badRequest(c, "pin_code and device_id are required")
	}

	setup, err := h.service.SetupPin(c.UserContext(), principal.UserID, req.PinCode, req.DeviceID, req.DeviceName)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(SetupPinResponse{
		DeviceToken:  setup.DeviceToken,
		PinExpiresAt: setup.PinExpiresAt,
		Message:      "pin enrolled",
	})
}

func (h *Handler) PinLogin(c *fiber.Ctx) error {
	var req PinLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.PinCode == "" || req.DeviceID == "" || req.RefreshToken == "" {
		return badRequest(c, "pin_code, device_id and refresh_token are required")
	}

	pair, err := h.service.PinLogin(c.UserContext(), req.PinCode, req.DeviceID, req.RefreshToken)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(pair)
}

func (h *Handler) ListDevices(c *fiber.Ctx) error {
	principal, ok := PrincipalFrom(c)
	if !ok {
		return h.fail(c, ErrUnauthenticated)
	}

	devices, err := h.service.ListDevices(c.UserContext(), principal.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(devices)
}

func (h *Handler) RevokeDevice(c *fiber.Ctx) error {
	principal, ok := PrincipalFrom(c)
	if !ok {
		return h.fail(c, ErrUnauthenticated)
	}
	deviceID := c.Params("device_id")
	if deviceID == "" {
		return badRequest(c, "device_id is required")
	}

	if err := h.service.RevokeDevice(c.UserContext(), principal.UserID, deviceID); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(MessageResponse{Message: "device revoked"})
}

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, userResponse(&u))
	}
	return c.JSON(resp)
}

func (h *Handler) UpdateUserRole(c *fiber.Ctx) error {
	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	user, err := h.service.UpdateUserRole(c.UserContext(), c.Params("id"), req.Role)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(userResponse(user))
}

func (h *Handler) SetUserActive(c *fiber.Ctx) error {
	var req SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	user, err := h.service.SetUserActive(c.UserContext(), c.Params("id"), req.Active)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(userResponse(user))
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := statusFromError(err)
	if status >= fiber.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("request_id", requestID(c)),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrDeviceBlacklisted):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrExpiredToken),
		errors.Is(err, ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrTooManyAttempts):
		return fiber.StatusTooManyRequests
	case errors.Is(err, ErrUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func badRequest(c *fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": detail})
}

func userResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

func basicCredentials(header string) (string, string, bool) {
	const prefix = "Basic "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return "", "", false
	}
	return username, password, true
}
