// apps/go-server/internal/httpserver/session_mw.go
//
// Anonymous session middleware. Every request gets a stable session id:
// read from the signed cookie when present and valid, minted otherwise.
// The id keys all per-browser game state and persisted scores. No accounts,
// no passwords — the JWT only binds the id to this server's secret.

package httpserver

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionCookieName = "steamgauge_session"

// ctxSessionKey is the context key type for the session id.
type ctxSessionKey struct{}

// withSession decorates requests with a session id, setting the cookie on
// first contact. It never rejects a request.
func (s *Server) withSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sessionFromRequest(r)
			if id == "" {
				id = uuid.NewString()
				setSessionCookie(w, id)
			}
			ctx := context.WithValue(r.Context(), ctxSessionKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionID extracts the session id placed by withSession.
func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(ctxSessionKey{}).(string)
	return id
}

// sessionFromRequest parses and verifies the session cookie (or a bearer
// token, for non-browser clients). Empty string when absent or invalid.
func sessionFromRequest(r *http.Request) string {
	tok := bearerOrCookie(r)
	if tok == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(getEnv("SESSION_SECRET", "dev_secret_change_me")), nil
	})
	if err != nil || !t.Valid {
		return ""
	}
	id, _ := claims["sid"].(string)
	return id
}

// setSessionCookie signs the id into an HS256 JWT cookie with the same
// security attributes the client origin requires.
func setSessionCookie(w http.ResponseWriter, id string) {
	exp := time.Now().Add(180 * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": id,
		"exp": exp.Unix(),
		"iat": time.Now().Unix(),
	})
	signed, err := t.SignedString([]byte(getEnv("SESSION_SECRET", "dev_secret_change_me")))
	if err != nil {
		return
	}
	secure := os.Getenv("NODE_ENV") == "production"
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a token from Authorization header or the session
// cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}
