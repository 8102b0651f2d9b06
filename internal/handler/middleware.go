package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/segyhp/membership-fees/internal/auth"
	customError "github.com/segyhp/membership-fees/pkg/errors"
	"github.com/segyhp/membership-fees/pkg/response"
)

const (
	msgNoToken     = "Not authorized, no token"
	msgTokenFailed = "Not authorized, token failed"
)

type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Principal is the authenticated caller of a request.
type Principal struct {
	ID   uuid.UUID
	Role string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// RequireAuth rejects requests without a valid bearer token and stores the
// principal on the request context.
func RequireAuth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, found := strings.CutPrefix(header, "Bearer ")
			raw = strings.TrimSpace(raw)
			if !found || raw == "" {
				response.Unauthorized(w, msgNoToken)
				return
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				response.Unauthorized(w, msgTokenFailed)
				return
			}
			id, err := uuid.Parse(claims.Subject)
			if err != nil {
				response.Unauthorized(w, msgTokenFailed)
				return
			}

			ctx := WithPrincipal(r.Context(), Principal{ID: id, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				response.Unauthorized(w, msgNoToken)
				return
			}
			if p.Role != role {
				response.FromError(w, customError.WrapForbidden("Not authorized as "+article(role)+" "+role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func article(word string) string {
	if word != "" && strings.ContainsRune("aeiou", rune(word[0])) {
		return "an"
	}
	return "a"
}
