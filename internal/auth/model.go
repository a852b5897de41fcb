package auth

import (
	"strings"
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleUser     = "user"
)

type User struct {
	ID           string `gorm:"primaryKey;type:uuid"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:user"`
	Active       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}

// Principal is the authenticated caller identity handed to downstream
// handlers after token extraction.
type Principal struct {
	UserID   string
	Username string
	Role     string
}

// Device describes one enrolled PIN device as returned by ListDevices.
type Device struct {
	DeviceID   string    `json:"device_id"`
	DeviceName string    `json:"device_name"`
	CreatedAt  time.Time `json:"created_at"`
	LastLogin  time.Time `json:"last_login"`
}

// NormalizeUsername lower-cases and trims the username. All lookups and
// writes go through this, so the stored value is always the normal form.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleOperator, RoleUser:
		return true
	}
	return false
}
