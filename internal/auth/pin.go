package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/pbkdf2"

	"github.com/Wayfarer545/MotoKonig-web-application-sub000/internal/config"
)

const (
	pinKeyPrefix             = "pin:"
	pinAttemptsKeyPrefix     = "pin_attempts:"
	deviceBlacklistKeyPrefix = "blacklisted_device:"

	// Revoked devices stay blocked for a year; re-enrollment before that
	// needs admin intervention.
	DeviceBlacklistTTL = 365 * 24 * time.Hour

	pinHashKeyLength = 32
)

// PinRecord is the per-(user, device) entry behind pin:{user}:{device}.
type PinRecord struct {
	PinHash     string
	DeviceName  string
	DeviceToken string
	CreatedAt   time.Time
	LastLogin   time.Time
}

type PinService struct {
	config *config.PinConfig
	redis  redis.UniversalClient
}

func NewPinService(cfg *config.PinConfig, redisClient redis.UniversalClient) *PinService {
	return &PinService{config: cfg, redis: redisClient}
}

func pinKey(userID, deviceID string) string {
	return pinKeyPrefix + userID + ":" + deviceID
}

func attemptsKey(userID, deviceID string) string {
	return pinAttemptsKeyPrefix + userID + ":" + deviceID
}

func blacklistedDeviceKey(userID, deviceID string) string {
	return deviceBlacklistKeyPrefix + userID + ":" + deviceID
}

// HashPin derives the stored PIN hash with PBKDF2-HMAC-SHA256, salted by
// the device id. Changing the iteration count is a migration.
func (s *PinService) HashPin(pin, deviceID string) string {
	key := pbkdf2.Key([]byte(pin), []byte(deviceID), s.config.HashIterations, pinHashKeyLength, sha256.New)
	return base64.StdEncoding.EncodeToString(key)
}

// VerifyPin recomputes the hash and compares in constant time.
func (s *PinService) VerifyPin(pin, deviceID, storedHash string) bool {
	computed := s.HashPin(pin, deviceID)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}

// SavePin writes the PIN record and arms its TTL. A prior record for the
// same (user, device) is overwritten.
func (s *PinService) SavePin(ctx context.Context, userID, deviceID, pinHash, deviceName, deviceToken string, ttl time.Duration) error {
	key := pinKey(userID, deviceID)
	now := time.Now().UTC()

	fields := map[string]interface{}{
		"pin_hash":     pinHash,
		"device_name":  deviceName,
		"device_token": deviceToken,
		"created_at":   now.Format(time.RFC3339),
		"last_login":   "",
	}
	if err := s.redis.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("save pin: %w", err)
	}
	if err := s.redis.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("save pin ttl: %w", err)
	}
	return nil
}

// GetPinRecord returns nil without error when the record is absent or its
// TTL has elapsed.
func (s *PinService) GetPinRecord(ctx context.Context, userID, deviceID string) (*PinRecord, error) {
	fields, err := s.redis.HGetAll(ctx, pinKey(userID, deviceID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get pin: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return recordFromFields(fields), nil
}

func (s *PinService) DeletePin(ctx context.Context, userID, deviceID string) error {
	if err := s.redis.Del(ctx, pinKey(userID, deviceID)).Err(); err != nil {
		return fmt.Errorf("delete pin: %w", err)
	}
	return nil
}

// IncrementAttempts bumps the failure counter, arming the sliding window
// on first increment, and returns the new count.
func (s *PinService) IncrementAttempts(ctx context.Context, userID, deviceID string) (int, error) {
	key := attemptsKey(userID, deviceID)
	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment attempts: %w", err)
	}
	if count == 1 {
		if err := s.redis.Expire(ctx, key, s.config.AttemptsWindow).Err(); err != nil {
			return 0, fmt.Errorf("attempts window: %w", err)
		}
	}
	return int(count), nil
}

func (s *PinService) GetAttempts(ctx context.Context, userID, deviceID string) (int, error) {
	count, err := s.redis.Get(ctx, attemptsKey(userID, deviceID)).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("get attempts: %w", err)
	}
	return count, nil
}

func (s *PinService) ResetAttempts(ctx context.Context, userID, deviceID string) error {
	if err := s.redis.Del(ctx, attemptsKey(userID, deviceID)).Err(); err != nil {
		return fmt.Errorf("reset attempts: %w", err)
	}
	return nil
}

func (s *PinService) RecordLastLogin(ctx context.Context, userID, deviceID string, ts time.Time) error {
	key := pinKey(userID, deviceID)
	n, err := s.redis.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("record last login: %w", err)
	}
	if n == 0 {
		// Record expired between verification and now; nothing to update.
		return nil
	}
	if err := s.redis.HSet(ctx, key, "last_login", ts.UTC().Format(time.RFC3339)).Err(); err != nil {
		return fmt.Errorf("record last login: %w", err)
	}
	return nil
}

// ListDevices enumerates the user's non-expired PIN records. Records that
// expire mid-scan simply come back empty and are skipped.
func (s *PinService) ListDevices(ctx context.Context, userID string) ([]Device, error) {
	prefix := pinKeyPrefix + userID + ":"
	devices := []Device{}

	iter := s.redis.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		fields, err := s.redis.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("list devices: %w", err)
		}
		if len(fields) == 0 {
			continue
		}
		rec := recordFromFields(fields)
		devices = append(devices, Device{
			DeviceID:   key[len(prefix):],
			DeviceName: rec.DeviceName,
			CreatedAt:  rec.CreatedAt,
			LastLogin:  rec.LastLogin,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return devices, nil
}

// BlacklistDevice tombstones the (user, device) pair so it cannot be
// re-enrolled.
func (s *PinService) BlacklistDevice(ctx context.Context, userID, deviceID string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, blacklistedDeviceKey(userID, deviceID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist device: %w", err)
	}
	return nil
}

func (s *PinService) IsDeviceBlacklisted(ctx context.Context, userID, deviceID string) (bool, error) {
	n, err := s.redis.Exists(ctx, blacklistedDeviceKey(userID, deviceID)).Result()
	if err != nil {
		return false, fmt.Errorf("device blacklist lookup: %w", err)
	}
	return n > 0, nil
}

func recordFromFields(fields map[string]string) *PinRecord {
	rec := &PinRecord{
		PinHash:     fields["pin_hash"],
		DeviceName:  fields["device_name"],
		DeviceToken: fields["device_token"],
	}
	if t, err := time.Parse(time.RFC3339, fields["created_at"]); err == nil {
		rec.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, fields["last_login"]); err == nil {
		rec.LastLogin = t
	}
	return rec
}
