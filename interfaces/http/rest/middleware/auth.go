package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	pkgerrors "dailytens/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const authorKey contextKey = "author"

// AuthorClaims are the claims accepted on the authoring endpoints
type AuthorClaims struct {
	jwt.RegisteredClaims
}

// AuthConfig configures bearer authentication for authoring writes
type AuthConfig struct {
	Secret string
	Issuer string
}

// Enabled reports whether a signing secret has been configured
func (c AuthConfig) Enabled() bool {
	return c.Secret != ""
}

// RequireAuthor validates an HS256 bearer token before letting a write
// through. With no secret configured the middleware passes every request,
// which is how local development and the CLI run.
func RequireAuthor(cfg AuthConfig, logger *zap.Logger) func(next http.Handler) http.Handler {
	if !cfg.Enabled() {
		logger.Warn("Authoring endpoints are unauthenticated")
		return func(next http.Handler) http.Handler { return next }
	}

	secret := []byte(cfg.Secret)
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractToken(r)
			if !ok {
				respondUnauthorized(w, "Missing authorization header")
				return
			}

			claims := &AuthorClaims{}
			_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
				return secret, nil
			})
			if err != nil {
				logger.Debug("Rejected authoring token",
					zap.String("remoteAddr", getClientIP(r)),
					zap.Error(err),
				)
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					respondUnauthorized(w, "Token has expired")
				case errors.Is(err, jwt.ErrTokenSignatureInvalid):
					respondUnauthorized(w, "Invalid token signature")
				default:
					respondUnauthorized(w, "Invalid token")
				}
				return
			}

			ctx := context.WithValue(r.Context(), authorKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthorFromContext returns the token subject of an authenticated request
func AuthorFromContext(ctx context.Context) string {
	author, _ := ctx.Value(authorKey).(string)
	return author
}

func extractToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	respondWithError(w, http.StatusUnauthorized, message)
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(pkgerrors.ErrorResponse{
		Error:   true,
		Type:    string(pkgerrors.ErrorTypeUnauthorized),
		Message: message,
		Code:    string(pkgerrors.ErrorTypeUnauthorized),
	})
}
