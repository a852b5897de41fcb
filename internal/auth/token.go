package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Wayfarer545/MotoKonig-web-application-sub000/internal/config"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	denylistKeyPrefix = "blacklist:"

	// TTL for tombstones keyed by raw tokens that could not be parsed.
	denylistFallbackTTL = time.Hour
)

// Claims is the claim set carried inside every signed bearer token.
type Claims struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	TokenType   string `json:"type"`
	DeviceID    string `json:"device_id,omitempty"`
	DeviceToken string `json:"device_token,omitempty"`
	jwt.RegisteredClaims
}

// TokenInput holds the claims the orchestrator supplies when minting.
// DeviceID and DeviceToken are set only on the mobile PIN flow.
type TokenInput struct {
	UserID      string
	Username    string
	Role        string
	TokenID     string
	DeviceID    string
	DeviceToken string
}

type TokenService struct {
	config *config.AuthConfig
	redis  redis.UniversalClient
}

func NewTokenService(cfg *config.AuthConfig, redisClient redis.UniversalClient) (*TokenService, error) {
	if cfg.SigningSecret == "" {
		return nil, errors.New("signing secret is required")
	}
	if cfg.SigningAlgorithm != "HS256" {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.SigningAlgorithm)
	}
	return &TokenService{config: cfg, redis: redisClient}, nil
}

// NewTokenID returns a fresh random 128-bit token id.
func NewTokenID() string {
	return uuid.NewString()
}

func (ts *TokenService) CreateAccessToken(in TokenInput) (string, error) {
	return ts.sign(in, TokenTypeAccess, ts.config.AccessTTL)
}

func (ts *TokenService) CreateRefreshToken(in TokenInput) (string, error) {
	return ts.sign(in, TokenTypeRefresh, ts.config.RefreshTTL)
}

func (ts *TokenService) sign(in TokenInput, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Username:    in.Username,
		Role:        in.Role,
		TokenType:   tokenType,
		DeviceID:    in.DeviceID,
		DeviceToken: in.DeviceToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   in.UserID,
			ID:        in.TokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(ts.config.SigningSecret))
}

// Decode parses and verifies signature and expiry. The denylist is not
// consulted here.
func (ts *TokenService) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ts.config.SigningSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IsDenylisted reports whether the token's id has been tombstoned. Tokens
// that cannot be parsed are treated as denylisted.
func (ts *TokenService) IsDenylisted(ctx context.Context, tokenString string) (bool, error) {
	jti, ok := extractTokenID(tokenString)
	if !ok {
		return true, nil
	}
	n, err := ts.redis.Exists(ctx, denylistKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("denylist lookup: %w", err)
	}
	return n > 0, nil
}

// Denylist tombstones the token until its original expiry. Unparseable
// tokens are keyed by their raw value with a fixed fallback TTL.
func (ts *TokenService) Denylist(ctx context.Context, tokenString string, expiresAt time.Time) error {
	key := denylistKeyPrefix
	ttl := denylistFallbackTTL

	if jti, ok := extractTokenID(tokenString); ok {
		key += jti
		ttl = time.Until(expiresAt)
		if ttl <= 0 {
			// Already past its natural expiry; decode rejects it anyway.
			return nil
		}
	} else {
		key += tokenString
	}

	if err := ts.redis.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("denylist insert: %w", err)
	}
	return nil
}

// extractTokenID pulls the jti out without verifying the signature. The
// denylist is keyed by id, and a forged id can only ever shadow a tombstone
// that the real token earned.
func extractTokenID(tokenString string) (string, bool) {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	if err != nil || claims.ID == "" {
		return "", false
	}
	return claims.ID, true
}
