package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"savingz.backend/internal/domain/entities"
	domainerrors "savingz.backend/internal/domain/errors"
	"savingz.backend/internal/interfaces/http/response"
	"savingz.backend/pkg/identity"
	"savingz.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// IdentityKey is the gin key holding the verified *identity.Identity
	IdentityKey = "identity"
	// UserKey is the gin key holding the *entities.User loaded by RequireAdmin
	UserKey = "user"
)

// AuthMiddleware verifies the bearer token and stores the identity it asserts
func AuthMiddleware(verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			response.Abort(c, domainerrors.Unauthorized("Authorization header is required"))
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			response.Abort(c, domainerrors.Unauthorized("Invalid authorization format. Use: Bearer <token>"))
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		id, err := verifier.Verify(c.Request.Context(), tokenString)
		if err != nil {
			logger.Warn(c.Request.Context(), "Token verification failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			if errors.Is(err, identity.ErrExpiredToken) {
				response.Abort(c, domainerrors.Unauthorized("Token has expired"))
				return
			}
			response.Abort(c, domainerrors.Unauthorized("Invalid token"))
			return
		}

		c.Set(IdentityKey, id)
		ctx := identity.WithIdentity(c.Request.Context(), id)
		ctx = context.WithValue(ctx, logger.UserIDKey, id.UID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetIdentity gets the verified identity from context
func GetIdentity(c *gin.Context) (*identity.Identity, bool) {
	value, exists := c.Get(IdentityKey)
	if !exists {
		return nil, false
	}
	id, ok := value.(*identity.Identity)
	return id, ok && id != nil && id.UID != ""
}

// GetUID gets the verified provider uid from context
func GetUID(c *gin.Context) (string, bool) {
	id, ok := GetIdentity(c)
	if !ok {
		return "", false
	}
	return id.UID, true
}

// GetUser returns the user stored by RequireAdmin
func GetUser(c *gin.Context) (*entities.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*entities.User)
	return user, ok && user != nil
}

// UserLookup resolves the stored user of a verified identity
type UserLookup interface {
	GetUser(ctx context.Context, firebaseUID string) (*entities.User, error)
}

// RequireAdmin allows only users whose stored role is admin. Every refusal,
// including an unknown user, is a 403.
func RequireAdmin(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := GetUID(c)
		if !ok {
			response.Abort(c, domainerrors.Unauthorized("unauthorized"))
			return
		}

		user, err := users.GetUser(c.Request.Context(), uid)
		if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
			response.Abort(c, err)
			return
		}
		if !user.IsAdmin() {
			response.Abort(c, domainerrors.Forbidden("Insufficient permissions"))
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}
