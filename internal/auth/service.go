package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Wayfarer545/MotoKonig-web-application-sub000/internal/config"
)

// TokenPair is the result of every successful credential exchange.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// PinSetup is returned by SetupPin. The device token binds subsequent PIN
// logins on this device to this enrollment.
type PinSetup struct {
	DeviceToken  string    `json:"device_token"`
	PinExpiresAt time.Time `json:"pin_expires_at"`
}

// Service orchestrates the auth use cases over the user store, the token
// service, the PIN service, and the credential service.
type Service struct {
	config    *config.AppConfig
	log       *zap.Logger
	repo      UserRepository
	passwords *PasswordHasher
	tokens    *TokenService
	pins      *PinService
}

func NewService(cfg *config.AppConfig, log *zap.Logger, repo UserRepository, tokens *TokenService, pins *PinService) *Service {
	return &Service{
		config:    cfg,
		log:       log,
		repo:      repo,
		passwords: NewPasswordHasher(),
		tokens:    tokens,
		pins:      pins,
	}
}

// backendErr logs the underlying cause and hides it behind ErrUnavailable.
func (s *Service) backendErr(op string, err error) error {
	s.log.Error(op, zap.Error(err))
	return ErrUnavailable
}

// Register creates a new user. The first user ever registered becomes the
// admin; this is the deliberate bootstrap rule, guarded in the same logical
// operation as the insert.
func (s *Service) Register(ctx context.Context, username, password string) (*User, error) {
	username = NormalizeUsername(username)
	if len(username) < 3 {
		return nil, fmt.Errorf("%w: username must be at least 3 characters", ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password must not be empty", ErrValidation)
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, s.backendErr("register: lookup failed", err)
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, s.backendErr("register: count failed", err)
	}
	role := RoleUser
	if count == 0 {
		role = RoleAdmin
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, s.backendErr("register: hash failed", err)
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			// Lost the race against a concurrent register; the unique
			// index is the arbiter.
			return nil, ErrUsernameTaken
		}
		return nil, s.backendErr("register: insert failed", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("role", role))
	return user, nil
}

// Login exchanges a username and password for a token pair. Unknown user,
// inactive user, and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.repo.GetByUsername(ctx, NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Burn a hash so unknown users cost the same as wrong passwords.
			_, _ = s.passwords.Hash("motokonig-timing-pad")
			return nil, ErrInvalidCredentials
		}
		return nil, s.backendErr("login: lookup failed", err)
	}

	if !user.Active {
		s.log.Warn("login attempt for inactive user", zap.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	if !s.passwords.Verify(password, user.PasswordHash) {
		s.log.Warn("login password mismatch", zap.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(TokenInput{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		TokenID:  NewTokenID(),
	})
	if err != nil {
		return nil, s.backendErr("login: mint failed", err)
	}
	return pair, nil
}

// Refresh rotates a refresh token: mint first, then denylist the old token.
// The denylist insert is the commit point; two racing refreshes may both
// mint, but only the first one's denylist wins and the loser's pair simply
// ages out.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Decode(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	denied, err := s.tokens.IsDenylisted(ctx, refreshToken)
	if err != nil {
		return nil, s.backendErr("refresh: denylist lookup failed", err)
	}
	if denied {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, s.backendErr("refresh: user lookup failed", err)
	}
	if !user.Active {
		return nil, ErrInvalidToken
	}

	pair, err := s.issuePair(TokenInput{
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role,
		TokenID:     NewTokenID(),
		DeviceID:    claims.DeviceID,
		DeviceToken: claims.DeviceToken,
	})
	if err != nil {
		return nil, s.backendErr("refresh: mint failed", err)
	}

	if err := s.tokens.Denylist(ctx, refreshToken, claims.ExpiresAt.Time); err != nil {
		return nil, s.backendErr("refresh: denylist insert failed", err)
	}
	return pair, nil
}

// Logout denylists the presented token. Undecodable tokens are tombstoned
// by raw value with a fixed TTL so logout stays idempotent and does not act
// as a malformed-token oracle.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.tokens.Decode(accessToken)
	if err != nil {
		if err := s.tokens.Denylist(ctx, accessToken, time.Time{}); err != nil {
			return s.backendErr("logout: fallback denylist failed", err)
		}
		return nil
	}

	if err := s.tokens.Denylist(ctx, accessToken, claims.ExpiresAt.Time); err != nil {
		return s.backendErr("logout: denylist failed", err)
	}
	return nil
}

// SetupPin enrolls a device for PIN login. Re-enrollment on the same device
// overwrites the prior PIN; a blacklisted device fails fast.
func (s *Service) SetupPin(ctx context.Context, userID, pin, deviceID, deviceName string) (*PinSetup, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.backendErr("setup pin: user lookup failed", err)
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}

	blacklisted, err := s.pins.IsDeviceBlacklisted(ctx, userID, deviceID)
	if err != nil {
		return nil, s.backendErr("setup pin: blacklist lookup failed", err)
	}
	if blacklisted {
		return nil, ErrDeviceBlacklisted
	}

	pinHash := s.pins.HashPin(pin, deviceID)
	deviceToken := uuid.NewString()

	if err := s.pins.SavePin(ctx, userID, deviceID, pinHash, deviceName, deviceToken, s.config.Pin.TTL); err != nil {
		return nil, s.backendErr("setup pin: save failed", err)
	}

	s.log.Info("pin enrolled", zap.String("user_id", userID), zap.String("device_id", deviceID))
	return &PinSetup{
		DeviceToken:  deviceToken,
		PinExpiresAt: time.Now().Add(s.config.Pin.TTL),
	}, nil
}

// PinLogin exchanges a PIN plus a valid refresh token for a fresh pair
// bound to the enrolled device. The failure counter is consulted before the
// stored PIN, so a locked-out device reveals nothing about PIN validity.
func (s *Service) PinLogin(ctx context.Context, pin, deviceID, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Decode(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	denied, err := s.tokens.IsDenylisted(ctx, refreshToken)
	if err != nil {
		return nil, s.backendErr("pin login: denylist lookup failed", err)
	}
	if denied {
		return nil, ErrInvalidToken
	}

	userID := claims.Subject

	attempts, err := s.pins.GetAttempts(ctx, userID, deviceID)
	if err != nil {
		return nil, s.backendErr("pin login: attempts lookup failed", err)
	}
	if attempts >= s.config.Pin.MaxAttempts {
		return nil, ErrTooManyAttempts
	}

	record, err := s.pins.GetPinRecord(ctx, userID, deviceID)
	if err != nil {
		return nil, s.backendErr("pin login: record lookup failed", err)
	}
	if record == nil {
		return nil, ErrInvalidCredentials
	}

	if !s.pins.VerifyPin(pin, deviceID, record.PinHash) {
		count, err := s.pins.IncrementAttempts(ctx, userID, deviceID)
		if err != nil {
			return nil, s.backendErr("pin login: attempts increment failed", err)
		}
		remaining := s.config.Pin.MaxAttempts - count
		if remaining < 0 {
			remaining = 0
		}
		return nil, fmt.Errorf("%w: %d attempts remaining", ErrInvalidCredentials, remaining)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, s.backendErr("pin login: user lookup failed", err)
	}
	if !user.Active {
		return nil, ErrInvalidToken
	}

	if err := s.pins.ResetAttempts(ctx, userID, deviceID); err != nil {
		return nil, s.backendErr("pin login: attempts reset failed", err)
	}

	pair, err := s.issuePair(TokenInput{
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role,
		TokenID:     NewTokenID(),
		DeviceID:    deviceID,
		DeviceToken: record.DeviceToken,
	})
	if err != nil {
		return nil, s.backendErr("pin login: mint failed", err)
	}

	if err := s.tokens.Denylist(ctx, refreshToken, claims.ExpiresAt.Time); err != nil {
		return nil, s.backendErr("pin login: denylist insert failed", err)
	}

	if err := s.pins.RecordLastLogin(ctx, userID, deviceID, time.Now()); err != nil {
		s.log.Warn("pin login: last-login update failed", zap.Error(err))
	}
	return pair, nil
}

func (s *Service) ListDevices(ctx context.Context, userID string) ([]Device, error) {
	devices, err := s.pins.ListDevices(ctx, userID)
	if err != nil {
		return nil, s.backendErr("list devices failed", err)
	}
	return devices, nil
}

// RevokeDevice removes the PIN record and blocks re-enrollment. Revoke wins
// over a racing SetupPin: the blacklist entry outlives any PIN written in
// the window.
func (s *Service) RevokeDevice(ctx context.Context, userID, deviceID string) error {
	if err := s.pins.DeletePin(ctx, userID, deviceID); err != nil {
		return s.backendErr("revoke device: delete failed", err)
	}
	if err := s.pins.BlacklistDevice(ctx, userID, deviceID, DeviceBlacklistTTL); err != nil {
		return s.backendErr("revoke device: blacklist failed", err)
	}
	s.log.Info("device revoked", zap.String("user_id", userID), zap.String("device_id", deviceID))
	return nil
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.backendErr("list users failed", err)
	}
	return users, nil
}

func (s *Service) UpdateUserRole(ctx context.Context, userID, role string) (*User, error) {
	if !ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.backendErr("update role: lookup failed", err)
	}
	user.Role = role
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, s.backendErr("update role: save failed", err)
	}
	return user, nil
}

func (s *Service) SetUserActive(ctx context.Context, userID string, active bool) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.backendErr("set active: lookup failed", err)
	}
	user.Active = active
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, s.backendErr("set active: save failed", err)
	}
	return user, nil
}

// issuePair mints an access and refresh token sharing one token id.
func (s *Service) issuePair(in TokenInput) (*TokenPair, error) {
	access, err := s.tokens.CreateAccessToken(in)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.CreateRefreshToken(in)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}
