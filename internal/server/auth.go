package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"

	"rcadesk/internal/domain"
	"rcadesk/internal/logging"
)

type AuthConfig struct {
	JWTSecret        string
	TokenTTL         time.Duration
	AllowActorHeader bool
}

type Principal struct {
	User   domain.User
	Source string
}

func (p Principal) Actor() domain.Actor {
	return domain.Actor{ID: p.User.ID, Role: p.User.Role}
}

type principalKey struct{}

func withPrincipal(ctx context.Context, p Principal) context.Context {
	noteActor(ctx, p.User.ID)
	ctx = logging.WithActorID(ctx, p.User.ID)
	return context.WithValue(ctx, principalKey{}, p)
}

func principalFromContext(ctx context.Context) (Principal, huma.StatusError) {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok && p.User.ID != 0 {
		return p, nil
	}
	return Principal{}, newAPIError(http.StatusUnauthorized, "unauthorized", "authentication required", nil)
}

func actorFromContext(ctx context.Context) (domain.Actor, huma.StatusError) {
	p, err := principalFromContext(ctx)
	if err != nil {
		return domain.Actor{}, err
	}
	return p.Actor(), nil
}

type jwtClaims struct {
	jwt.RegisteredClaims
	Role domain.Role `json:"role"`
}

func signToken(secret string, u domain.User, ttl time.Duration, now time.Time) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", errors.New("jwt secret not configured")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: u.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// authenticateJWT returns the subject user id and role claim.
func authenticateJWT(token, secret string) (int64, domain.Role, error) {
	if strings.TrimSpace(secret) == "" {
		return 0, "", errors.New("jwt secret not configured")
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &jwtClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return 0, "", err
	}
	if !parsed.Valid {
		return 0, "", errors.New("invalid token")
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", errors.New("subject claim must be a user id")
	}
	return id, claims.Role, nil
}

func bearerToken(authz string) (string, bool) {
	parts := strings.Fields(authz)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

type userLookup func(id int64) (domain.User, bool)

// newAuthMiddleware resolves the caller to a current user record. The role
// always comes from the store so a status or role change takes effect on the
// next request.
func newAuthMiddleware(basePath string, cfg AuthConfig, lookup userLookup) func(http.Handler) http.Handler {
	open := map[string]bool{
		path.Join(basePath, "health"):       true,
		path.Join(basePath, "auth/login"):   true,
		path.Join(basePath, "openapi.json"): true,
	}
	invalid := func(w http.ResponseWriter) {
		respondStatusError(w, newAPIError(http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			// Only enforce for API base path.
			if basePath != "" && !strings.HasPrefix(req.URL.Path, basePath) {
				next.ServeHTTP(w, req)
				return
			}
			if open[req.URL.Path] {
				next.ServeHTTP(w, req)
				return
			}

			authz := strings.TrimSpace(req.Header.Get("Authorization"))
			legacyActor := strings.TrimSpace(req.Header.Get("X-Actor-Id"))

			if authz != "" {
				token, ok := bearerToken(authz)
				if !ok {
					invalid(w)
					return
				}
				id, role, err := authenticateJWT(token, cfg.JWTSecret)
				if err != nil {
					invalid(w)
					return
				}
				u, ok := lookup(id)
				if !ok || u.Role != role {
					invalid(w)
					return
				}
				next.ServeHTTP(w, req.WithContext(withPrincipal(req.Context(), Principal{User: u, Source: "jwt"})))
				return
			}

			if legacyActor != "" && cfg.AllowActorHeader {
				id, err := strconv.ParseInt(legacyActor, 10, 64)
				u, ok := lookup(id)
				if err != nil || !ok {
					invalid(w)
					return
				}
				ctx := withPrincipal(req.Context(), Principal{User: u, Source: "legacy_header"})
				logging.FromContext(ctx).Warn("using unauthenticated X-Actor-Id header")
				next.ServeHTTP(w, req.WithContext(ctx))
				return
			}

			respondStatusError(w, newAPIError(http.StatusUnauthorized, "unauthorized", "authentication required", nil))
		})
	}
}

func respondStatusError(w http.ResponseWriter, err huma.StatusError) {
	status := http.StatusInternalServerError
	if e, ok := err.(interface{ GetStatus() int }); ok {
		status = e.GetStatus()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(err); encErr != nil {
		slog.Warn("write error response", "err", encErr)
	}
}
