package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vendora/vendora-api/internal/pkg/jwt"
	"github.com/vendora/vendora-api/internal/pkg/response"
	"github.com/vendora/vendora-api/internal/pkg/session"
)

// VendorResolver lists the vendors a user manages.
type VendorResolver interface {
	VendorIDsForOwner(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1], true
	}
	// Browsers cannot set headers on a websocket handshake.
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		if t := r.URL.Query().Get("token"); t != "" {
			return t, true
		}
	}
	return "", false
}

func buildSession(ctx context.Context, claims *jwt.Claims, vendors VendorResolver) session.Session {
	s := session.Session{UserID: claims.UserID, Role: session.Role(claims.Role)}
	if vendors != nil && s.Role == session.RoleVendor {
		ids, err := vendors.VendorIDsForOwner(ctx, claims.UserID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", claims.UserID.String()).Msg("Failed to resolve vendor ownership")
		}
		s.VendorIDs = ids
	}
	return s
}

// Auth validates the bearer token and attaches a session to the request.
func Auth(jwtService *jwt.Service, vendors VendorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				response.Unauthorized(w, "Missing or malformed authorization header")
				return
			}

			claims, err := jwtService.ValidateAccessToken(token)
			if err != nil {
				if errors.Is(err, jwt.ErrExpiredToken) {
					response.Unauthorized(w, "Token expired")
				} else {
					response.Unauthorized(w, "Invalid token")
				}
				return
			}

			ctx := session.WithContext(r.Context(), buildSession(r.Context(), claims, vendors))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches a session when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(jwtService *jwt.Service, vendors VendorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if claims, err := jwtService.ValidateAccessToken(token); err == nil {
					r = r.WithContext(session.WithContext(r.Context(), buildSession(r.Context(), claims, vendors)))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects sessions whose role is not listed.
func RequireRole(roles ...session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current := session.FromContext(r.Context()).Role
			for _, role := range roles {
				if current == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Forbidden(w, "Insufficient permissions")
		})
	}
}

func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(session.RoleAdmin)
}
