package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextActor    = "actor"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing_authorization_header", "Authorization header is required.")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid_authorization_header", "Expected a Bearer token.")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			httperr.Unauthorized(c, "invalid_token", "Token is invalid or expired.")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			httperr.Unauthorized(c, "invalid_token_claims", "Token claims are unreadable.")
			return
		}

		actor, ok := actorFromClaims(claims)
		if !ok {
			httperr.Unauthorized(c, "invalid_token_payload", "Token does not identify an admin or staff member.")
			return
		}

		c.Set(ContextUserID, actor.UserID)
		c.Set(ContextUserRole, string(actor.Role))
		c.Set(ContextActor, actor)

		c.Next()
	}
}

// actorFromClaims maps sub/role/staffId onto an actor. Staff tokens must
// name the staff record they act as.
func actorFromClaims(claims jwt.MapClaims) (domain.Actor, bool) {
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return domain.Actor{}, false
	}
	role, _ := claims["role"].(string)

	switch domain.Role(role) {
	case domain.RoleAdmin:
		return domain.Admin(uint(sub)), true
	case domain.RoleStaff:
		staffID, ok := claims["staffId"].(float64)
		if !ok || staffID <= 0 {
			return domain.Actor{}, false
		}
		return domain.StaffMember(uint(sub), uint(staffID)), true
	}
	return domain.Actor{}, false
}

// ActorFrom returns the authenticated actor. Only valid behind
// AuthMiddleware.
func ActorFrom(c *gin.Context) domain.Actor {
	return c.MustGet(ContextActor).(domain.Actor)
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ActorFrom(c).IsAdmin() {
			httperr.Forbidden(c, "not_authorized", "Admin role required.")
			return
		}
		c.Next()
	}
}
