package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pitchside/uct-api/pkg/apperrors"
	"github.com/pitchside/uct-api/pkg/responses"
	jwtpkg "github.com/pitchside/uct-api/pkg/token"
)

const (
	AuthPlayerIDKey    = "auth_player_id"
	AuthPlayerEmailKey = "auth_player_email"
	AuthPlayerRoleKey  = "auth_player_role"
)

// SessionValidator checks both the JWT signature and the server-side token
// record. Satisfied by the token service.
type SessionValidator interface {
	ValidateAccess(tokenString string) (*jwtpkg.Claims, error)
}

// Auth authenticates a request from its Bearer token. Beyond the JWT check
// it requires the session record to be live and the player to still be an
// active, verified account.
func Auth(sessions SessionValidator, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			responses.SendError(c, apperrors.Unauthorized("authorization header is required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			responses.SendError(c, apperrors.Unauthorized("invalid authorization header format, expected: Bearer <token>"))
			return
		}

		claims, err := sessions.ValidateAccess(parts[1])
		if err != nil {
			responses.SendError(c, apperrors.Unauthorized("invalid or expired token"))
			return
		}

		var row struct {
			Role       string
			IsActive   bool
			IsVerified bool
		}
		err = db.Table("players").
			Select("role, is_active, is_verified").
			Where("id = ? AND deleted_at IS NULL", claims.PlayerID).
			Scan(&row).Error
		if err != nil || row.Role == "" {
			responses.SendError(c, apperrors.Unauthorized("player not found"))
			return
		}
		if !row.IsActive {
			responses.SendError(c, apperrors.Unauthorized("account is deactivated"))
			return
		}
		if !row.IsVerified {
			responses.SendError(c, apperrors.Unauthorized("account is not verified"))
			return
		}

		c.Set(AuthPlayerIDKey, claims.PlayerID)
		c.Set(AuthPlayerEmailKey, claims.Email)
		// The database row wins over whatever role the JWT was minted with.
		c.Set(AuthPlayerRoleKey, row.Role)
		c.Next()
	}
}

// RequireRoles guards a route group for the listed roles. Must run after
// Auth.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(AuthPlayerRoleKey)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		responses.SendError(c, apperrors.Forbidden("insufficient permissions"))
	}
}

// PlayerIDFromContext extracts the authenticated player's ID.
func PlayerIDFromContext(c *gin.Context) (uint, error) {
	v, exists := c.Get(AuthPlayerIDKey)
	if !exists {
		return 0, errors.New("player ID not found in context")
	}
	id, ok := v.(uint)
	if !ok {
		return 0, fmt.Errorf("player ID has unexpected type: %T", v)
	}
	return id, nil
}

// EmailFromContext extracts the authenticated player's email.
func EmailFromContext(c *gin.Context) string {
	return c.GetString(AuthPlayerEmailKey)
}
