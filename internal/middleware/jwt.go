package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/fathima-sithara/contacts-service/internal/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	LocalUsername = "username"
	LocalClaims   = "claims"
)

type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTAuth admits requests carrying a valid, unrevoked bearer token and stores
// the acting username in c.Locals. revoked may be nil.
func JWTAuth(jm *utils.JWTManager, revoked RevocationChecker, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		if auth == "" {
			return utils.JSONError(c, fiber.StatusUnauthorized, "Token is missing!")
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return utils.JSONError(c, fiber.StatusUnauthorized, "Invalid authorization header")
		}

		claims, err := jm.Verify(strings.TrimSpace(parts[1]))
		if errors.Is(err, utils.ErrTokenExpired) {
			return utils.JSONError(c, fiber.StatusUnauthorized, "Token has expired!")
		}
		if err != nil {
			return utils.JSONError(c, fiber.StatusUnauthorized, "Token is invalid!")
		}

		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.UserContext(), claims.ID)
			if err != nil {
				logger.Error("revocation lookup failed", zap.Error(err))
				return utils.JSONError(c, fiber.StatusServiceUnavailable, "authorization temporarily unavailable")
			}
			if isRevoked {
				return utils.JSONError(c, fiber.StatusUnauthorized, "Token has been revoked!")
			}
		}

		c.Locals(LocalUsername, claims.Username)
		c.Locals(LocalClaims, claims)
		return c.Next()
	}
}

// Username returns the authenticated username set by JWTAuth.
func Username(c *fiber.Ctx) string {
	u, _ := c.Locals(LocalUsername).(string)
	return u
}

func Claims(c *fiber.Ctx) *utils.CustomClaims {
	cl, _ := c.Locals(LocalClaims).(*utils.CustomClaims)
	return cl
}
