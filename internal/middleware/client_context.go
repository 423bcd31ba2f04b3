package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"peptide-labels/internal/ports/auth"

	"github.com/google/uuid"
)

type ctxKey string

const (
	clientIDKey ctxKey = "client_id"
	claimsKey   ctxKey = "claims"
)

// HeaderClientID identifica al cliente (equivalente al storage del navegador).
const HeaderClientID = "X-Client-ID"

var validClientID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// ClientContext resuelve el id de cliente de cada request:
// - Si verifier != nil y viene Bearer token válido => ClientID de las claims.
// - Si no, header X-Client-ID (si tiene formato válido).
// - Si no, un uuid nuevo.
// El id elegido se devuelve siempre en el header de respuesta.
func ClientContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			id := ""

			if verifier != nil {
				if token := bearerToken(r.Header.Get("Authorization")); token != "" {
					// Token inválido no corta: sigue como cliente anónimo.
					if claims, err := verifier.Verify(ctx, token); err == nil && claims.ClientID != "" {
						ctx = context.WithValue(ctx, claimsKey, claims)
						id = claims.ClientID
					}
				}
			}

			if id == "" {
				if h := strings.TrimSpace(r.Header.Get(HeaderClientID)); validClientID.MatchString(h) {
					id = h
				}
			}
			if id == "" {
				id = uuid.NewString()
			}

			w.Header().Set(HeaderClientID, id)
			ctx = context.WithValue(ctx, clientIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetClientID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(clientIDKey).(string)
	return id, ok && id != ""
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
