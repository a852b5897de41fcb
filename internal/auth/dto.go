package auth

import "time"

type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Message  string `json:"message"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SetupPinRequest struct {
	PinCode    string `json:"pin_code"`
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
}

type SetupPinResponse struct {
	DeviceToken  string    `json:"device_token"`
	PinExpiresAt time.Time `json:"pin_expires_at"`
	Message      string    `json:"message"`
}

type PinLoginRequest struct {
	PinCode      string `json:"pin_code"`
	DeviceID     string `json:"device_id"`
	RefreshToken string `json:"refresh_token"`
}

type MeResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
