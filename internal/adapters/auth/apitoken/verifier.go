package apitoken

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"peptide-labels/internal/ports/auth"
)

var (
	ErrTokenEmpty   = errors.New("token is empty")
	ErrTokenUnknown = errors.New("token not recognized")
)

// Verifier implementa auth.AuthVerifier con una lista fija de tokens.
// Cada token fija el namespace de settings (p.ej. una estación compartida).
type Verifier struct {
	entries []entry
}

type entry struct {
	token  []byte
	claims auth.Claims
}

// Parse lee "token=clientID[,token=clientID...]" (formato de la config).
func Parse(raw string) (*Verifier, error) {
	v := &Verifier{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		token, clientID, ok := strings.Cut(part, "=")
		token, clientID = strings.TrimSpace(token), strings.TrimSpace(clientID)
		if !ok || token == "" || clientID == "" {
			return nil, fmt.Errorf("invalid api token entry %q (want token=client)", part)
		}
		v.entries = append(v.entries, entry{
			token:  []byte(token),
			claims: auth.Claims{ClientID: clientID, Name: clientID},
		})
	}
	return v, nil
}

func (v *Verifier) Len() int {
	if v == nil {
		return 0
	}
	return len(v.entries)
}

func (v *Verifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}
	if v == nil {
		return auth.Claims{}, ErrTokenUnknown
	}

	// comparación en tiempo constante contra todos
	var found *auth.Claims
	for i := range v.entries {
		if subtle.ConstantTimeCompare(v.entries[i].token, []byte(token)) == 1 {
			found = &v.entries[i].claims
		}
	}
	if found == nil {
		return auth.Claims{}, ErrTokenUnknown
	}
	return *found, nil
}
