package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"storeadmin/internal/service"
	"storeadmin/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set for downstream handlers after a successful check
const (
	ContextCallerID = "callerID" // end-user identity (JWT subject)
	ContextAdminID  = "adminID"  // resolved admin account id
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// evaluator holds the authorization service reference — set via InitAuthorization
var evaluator service.AuthorizationService

// InitAuthorization sets the evaluator used by RequireAccess middleware
func InitAuthorization(authz service.AuthorizationService) {
	evaluator = authz
}

// CallerID extracts and verifies the caller identity from the request token.
// Returns an empty string when no authenticated caller is resolvable; the
// evaluator turns that into a not-authenticated denial.
func CallerID(c *gin.Context) string {
	// Try cookie first, fallback to Authorization header
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			return ""
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return ""
		}
		tokenString = parts[1]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		return ""
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}

	sub, _ := claims["sub"].(string)
	return sub
}

// RequireAccess validates the caller's token and asks the authorization
// evaluator whether (resource, action) may proceed. Every privileged route
// goes through here; handlers never re-implement the check.
func RequireAccess(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID := CallerID(c)

		decision, err := evaluator.Authorize(c.Request.Context(), callerID, resource, action)
		if err != nil {
			if errors.Is(err, service.ErrStorageUnavailable) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, response.Error(http.StatusServiceUnavailable, "Failed to verify permissions"))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to verify permissions"))
			return
		}

		if !decision.Allowed {
			switch decision.Reason {
			case service.DenyReasonNotAuthenticated:
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing or invalid"))
			case service.DenyReasonInsufficientPermission:
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: missing permission '"+resource+"."+action+"'"))
			default:
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: admin account required"))
			}
			return
		}

		c.Set(ContextCallerID, callerID)
		c.Set(ContextAdminID, decision.AdminID)

		c.Next()
	}
}

// RequireAuthenticated only verifies the token, without an admin check.
// Used by /me so a freshly promoted caller can inspect their own account.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID := CallerID(c)
		if callerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing or invalid"))
			return
		}
		c.Set(ContextCallerID, callerID)
		c.Next()
	}
}

// AdminID returns the resolved admin account id set by RequireAccess.
func AdminID(c *gin.Context) string {
	id, _ := c.Get(ContextAdminID)
	s, _ := id.(string)
	return s
}
