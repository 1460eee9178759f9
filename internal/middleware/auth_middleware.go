package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/app/models/dto"
	"github.com/yeegr/singular/internal/pkg/apperrors"
	"github.com/yeegr/singular/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextActorID   = "actorID"
	ContextActorKind = "actorKind"
	ContextHandle    = "handle"
)

// AuthMiddleware resolves the calling actor from a bearer token. Token
// issuance lives upstream; this side only validates.
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			errorDetail = errorDetail.WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			errorDetail = errorDetail.WithDetails("Invalid token format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			errorCode := dto.ErrorCodeInvalidToken
			errorDetails := "Invalid token"
			if errors.Is(err, apperrors.ErrTokenExpired) {
				errorCode = dto.ErrorCodeExpiredToken
				errorDetails = "Token has expired"
			}

			errorDetail := dto.NewErrorDetail(errorCode, "Authentication failed")
			errorDetail = errorDetail.WithDetails(errorDetails)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		actorID, err := strconv.ParseInt(claims.ActorID, 10, 64)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Authentication failed")
			errorDetail = errorDetail.WithDetails("Malformed actor identifier")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		kind := models.ActorKind(claims.ActorKind)
		if !kind.Valid() {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Authentication failed")
			errorDetail = errorDetail.WithDetails("Unknown actor kind")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Set(ContextActorID, actorID)
		c.Set(ContextActorKind, kind)
		c.Set(ContextHandle, claims.Handle)

		c.Next()
	}
}

// PlatformOnly restricts a route to platform actors
func (m *AuthMiddleware) PlatformOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, exists := c.Get(ContextActorKind)
		if !exists || kind.(models.ActorKind) != models.ActorPlatform {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Platform access required")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}

// CurrentActor reads the calling actor out of the request context
func CurrentActor(c *gin.Context) (models.ActorRef, bool) {
	id, okID := c.Get(ContextActorID)
	kind, okKind := c.Get(ContextActorKind)
	if !okID || !okKind {
		return models.ActorRef{}, false
	}
	return models.ActorRef{ID: id.(int64), Kind: kind.(models.ActorKind)}, true
}
