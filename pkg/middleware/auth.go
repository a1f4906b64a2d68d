package middleware

import (
	"context"
	"net/http"
	"strings"

	"company-workspace-backend/pkg/logger"
	"company-workspace-backend/pkg/models"
	"company-workspace-backend/pkg/utils"
)

// ContextKey is the type of keys this package stores in a request context
type ContextKey string

const (
	IdentityContextKey ContextKey = "identity"
	identityHolderKey  ContextKey = "identity_holder"
)

// identityHolder lets outer middleware see the identity resolved further in
type identityHolder struct {
	identity *models.Identity
}

func withIdentityHolder(ctx context.Context, h *identityHolder) context.Context {
	return context.WithValue(ctx, identityHolderKey, h)
}

// AuthMiddleware requires a valid bearer access token and stores the caller
// identity in the request context.
func AuthMiddleware(jwtService *utils.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.HTTP().WithField("path", r.URL.Path)

			tokenString, ok := bearerToken(r)
			if !ok {
				log.Debug("missing or malformed authorization header")
				utils.WriteErrorResponseWithCode(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Missing authorization header", "")
				return
			}

			identity, err := jwtService.ExtractIdentity(tokenString)
			if err != nil {
				log.WithError(err).Debug("rejected access token")
				utils.WriteErrorResponseWithCode(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Invalid or expired token", "")
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware attaches the caller identity when a valid token is
// present and lets the request through either way.
func OptionalAuthMiddleware(jwtService *utils.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenString, ok := bearerToken(r); ok {
				if identity, err := jwtService.ExtractIdentity(tokenString); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), identity))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader || strings.TrimSpace(tokenString) == "" {
		return "", false
	}
	return strings.TrimSpace(tokenString), true
}

// WithIdentity returns a copy of ctx carrying identity
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	if h, ok := ctx.Value(identityHolderKey).(*identityHolder); ok {
		h.identity = identity
	}
	return context.WithValue(ctx, IdentityContextKey, identity)
}

// GetIdentityFromContext returns the caller stored by the auth middleware.
// A missing identity yields nil.
func GetIdentityFromContext(ctx context.Context) *models.Identity {
	identity, _ := ctx.Value(IdentityContextKey).(*models.Identity)
	return identity
}
