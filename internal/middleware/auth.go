package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// principalKey is the context key for the authenticated principal.
const principalKey contextKey = "principal"

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom extracts the principal from the context.
// Returns the anonymous principal if none was set.
func PrincipalFrom(ctx context.Context) models.Principal {
	p, _ := ctx.Value(principalKey).(models.Principal)
	return p
}

func authenticate(jwtManager *auth.JWTManager, header string) (models.Principal, error) {
	tokenString, err := auth.BearerToken(header)
	if err != nil {
		return models.Principal{}, err
	}
	claims, err := jwtManager.Validate(tokenString)
	if err != nil {
		return models.Principal{}, err
	}
	return claims.Principal(), nil
}

// RequireAuth returns a Connect interceptor that validates the bearer token and
// stores the principal in the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			principal, err := authenticate(jwtManager, req.Header().Get("Authorization"))
			if err != nil {
				slog.Warn("Authentication failed", "procedure", req.Spec().Procedure, "error", err)
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			return next(WithPrincipal(ctx, principal), req)
		}
	}
}

// unauthorizedResponse is the 401 body. The client logs out on expired or invalid.
type unauthorizedResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Expired bool   `json:"expired,omitempty"`
	Invalid bool   `json:"invalid,omitempty"`
}

// RequireAuthHTTP is the net/http counterpart of RequireAuth.
func RequireAuthHTTP(jwtManager *auth.JWTManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := authenticate(jwtManager, r.Header.Get("Authorization"))
		if err != nil {
			resp := unauthorizedResponse{
				Code:    "UNAUTHENTICATED",
				Message: err.Error(),
				Expired: errors.Is(err, auth.ErrExpiredToken),
			}
			resp.Invalid = !resp.Expired
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(resp)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}
