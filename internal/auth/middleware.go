package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const principalKey = "principal"

// Middleware is the principal extractor at the transport boundary.
type Middleware struct {
	tokens *TokenService
	log    *zap.Logger
}

func NewMiddleware(tokens *TokenService, log *zap.Logger) *Middleware {
	return &Middleware{tokens: tokens, log: log}
}

// Authenticate turns `Authorization: Bearer <token>` into a Principal or
// rejects the request. The denylist is checked before decoding so revoked
// tokens fail regardless of their remaining lifetime.
func (m *Middleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthenticated(c, "missing bearer token")
		}

		denied, err := m.tokens.IsDenylisted(c.UserContext(), token)
		if err != nil {
			m.log.Error("denylist check failed",
				zap.String("request_id", requestID(c)),
				zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": ErrUnavailable.Error(),
			})
		}
		if denied {
			return unauthenticated(c, "token revoked")
		}

		claims, err := m.tokens.Decode(token)
		if err != nil {
			return unauthenticated(c, "invalid or expired token")
		}
		if claims.TokenType != TokenTypeAccess {
			return unauthenticated(c, "not an access token")
		}

		c.Locals(principalKey, Principal{
			UserID:   claims.Subject,
			Username: claims.Username,
			Role:     claims.Role,
		})
		return c.Next()
	}
}

// RequireRole is the caller-supplied role predicate; it assumes
// Authenticate already ran.
func (m *Middleware) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFrom(c)
		if !ok {
			return unauthenticated(c, "no principal")
		}
		for _, role := range roles {
			if principal.Role == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": ErrForbidden.Error(),
		})
	}
}

// PrincipalFrom returns the authenticated principal stored by Authenticate.
func PrincipalFrom(c *fiber.Ctx) (Principal, bool) {
	principal, ok := c.Locals(principalKey).(Principal)
	return principal, ok
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthenticated(c *fiber.Ctx, reason string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":  ErrUnauthenticated.Error(),
		"detail": reason,
	})
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
