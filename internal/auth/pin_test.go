package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPinService_HashVerify(t *testing.T) {
	env := newTestEnv(t)

	hash := env.pins.HashPin("4242", "dev-A")
	assert.NotEmpty(t, hash)
	assert.NotContains(t, hash, "4242")

	assert.True(t, env.pins.VerifyPin("4242", "dev-A", hash))
	assert.False(t, env.pins.VerifyPin("0000", "dev-A", hash))
	// The device id is the salt: the same PIN on another device must not match.
	assert.False(t, env.pins.VerifyPin("4242", "dev-B", hash))
	assert.False(t, env.pins.VerifyPin("4242", "dev-A", "malformed"))
}

func TestPinService_SaveGetDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	record, err := env.pins.GetPinRecord(ctx, "user-1", "dev-A")
	require.NoError(t, err)
	assert.Nil(t, record)

	hash := env.pins.HashPin("4242", "dev-A")
	require.NoError(t, env.pins.SavePin(ctx, "user-1", "dev-A", hash, "phone", "token-1", env.config.Pin.TTL))

	record, err = env.pins.GetPinRecord(ctx, "user-1", "dev-A")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, hash, record.PinHash)
	assert.Equal(t, "phone", record.DeviceName)
	assert.Equal(t, "token-1", record.DeviceToken)
	assert.False(t, record.CreatedAt.IsZero())
	assert.True(t, record.LastLogin.IsZero())

	// Re-enrollment on the same device overwrites.
	newHash := env.pins.HashPin("9999", "dev-A")
	require.NoError(t, env.pins.SavePin(ctx, "user-1", "dev-A", newHash, "phone v2", "token-2", env.config.Pin.TTL))

	record, err = env.pins.GetPinRecord(ctx, "user-1", "dev-A")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, newHash, record.PinHash)
	assert.Equal(t, "token-2", record.DeviceToken)

	require.NoError(t, env.pins.DeletePin(ctx, "user-1", "dev-A"))
	record, err = env.pins.GetPinRecord(ctx, "user-1", "dev-A")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestPinService_RecordExpires(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.pins.SavePin(ctx, "user-1", "dev-A", "hash", "phone", "token-1", env.config.Pin.TTL))

	env.redis.FastForward(env.config.Pin.TTL + time.Minute)

	record, err := env.pins.GetPinRecord(ctx, "user-1", "dev-A")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestPinService_Attempts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	count, err := env.pins.GetAttempts(ctx, "user-1", "dev-A")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	for i := 1; i <= 3; i++ {
		count, err = env.pins.IncrementAttempts(ctx, "user-1", "dev-A")
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}

	count, err = env.pins.GetAttempts(ctx, "user-1", "dev-A")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, env.pins.ResetAttempts(ctx, "user-1", "dev-A"))
	count, err = env.pins.GetAttempts(ctx, "user-1", "dev-A")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestPinService_AttemptsWindowExpires(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.pins.IncrementAttempts(ctx, "user-1", "dev-A")
	require.NoError(t, err)
	_, err = env.pins.IncrementAttempts(ctx, "user-1", "dev-A")
	require.NoError(t, err)

	env.redis.FastForward(env.config.Pin.AttemptsWindow + time.Minute)

	count, err := env.pins.GetAttempts(ctx, "user-1", "dev-A")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestPinService_ListDevices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	devices, err := env.pins.ListDevices(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, devices)

	require.NoError(t, env.pins.SavePin(ctx, "user-1", "dev-A", "hash-a", "phone", "token-a", env.config.Pin.TTL))
	require.NoError(t, env.pins.SavePin(ctx, "user-1", "dev-B", "hash-b", "tablet", "token-b", time.Minute))
	// Another user's devices must not leak into the listing.
	require.NoError(t, env.pins.SavePin(ctx, "user-2", "dev-C", "hash-c", "other", "token-c", env.config.Pin.TTL))

	devices, err = env.pins.ListDevices(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, devices, 2)

	names := map[string]string{}
	for _, d := range devices {
		names[d.DeviceID] = d.DeviceName
	}
	assert.Equal(t, "phone", names["dev-A"])
	assert.Equal(t, "tablet", names["dev-B"])

	// dev-B's short TTL elapses; the listing keeps working.
	env.redis.FastForward(2 * time.Minute)
	devices, err = env.pins.ListDevices(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "dev-A", devices[0].DeviceID)
}

func TestPinService_DeviceBlacklist(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	blacklisted, err := env.pins.IsDeviceBlacklisted(ctx, "user-1", "dev-A")
	require.NoError(t, err)
	assert.False(t, blacklisted)

	require.NoError(t, env.pins.BlacklistDevice(ctx, "user-1", "dev-A", DeviceBlacklistTTL))

	blacklisted, err = env.pins.IsDeviceBlacklisted(ctx, "user-1", "dev-A")
	require.NoError(t, err)
	assert.True(t, blacklisted)

	// Other devices for the same user are unaffected.
	blacklisted, err = env.pins.IsDeviceBlacklisted(ctx, "user-1", "dev-B")
	require.NoError(t, err)
	assert.False(t, blacklisted)
}

func TestPinService_RecordLastLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// No record: a last-login update is a no-op, not an error.
	require.NoError(t, env.pins.RecordLastLogin(ctx, "user-1", "dev-A", time.Now()))
	record, err := env.pins.GetPinRecord(ctx, "user-1", "dev-A")
	require.NoError(t, err)
	assert.Nil(t, record)

	require.NoError(t, env.pins.SavePin(ctx, "user-1", "dev-A", "hash", "phone", "token-1", env.config.Pin.TTL))

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, env.pins.RecordLastLogin(ctx, "user-1", "dev-A", ts))

	record, err = env.pins.GetPinRecord(ctx, "user-1", "dev-A")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, ts, record.LastLogin.UTC())
}
