// Package auth verifies bearer tokens against an OIDC issuer for
// linearrag-server's query API, grounded on the teacher's
// internal/auth/oidc.go. The teacher's OIDC flow also drives a
// browser login (authorization code + PKCE, cookie sessions, a user
// store) for a multi-user web app; this package keeps only the token
// verification core (oidc.NewProvider, Provider.Verifier,
// IDTokenVerifier.Verify) since linearrag-server is a machine-to-machine
// JSON API authenticated by a bearer access/ID token, not a browser
// session.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	oidc "github.com/coreos/go-oidc/v3/oidc"
)

// Claims is the subset of ID token claims the query API checks.
type Claims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
}

type contextKey int

const claimsContextKey contextKey = 0

// Verifier validates bearer tokens against one OIDC issuer.
type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewVerifier discovers issuer's OIDC configuration and builds a
// Verifier that checks tokens were issued for clientID.
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, err
	}
	return &Verifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// Middleware rejects requests without a valid "Authorization: Bearer
// <token>" header and stores the verified Claims in the request
// context otherwise. A nil Verifier disables auth entirely, so
// linearrag-server can run without an OIDC issuer configured.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	if v == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := v.verifyRequest(r)
		if err != nil {
			http.Error(w, "unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsContextKey, claims)))
	})
}

func (v *Verifier) verifyRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, errors.New("missing bearer token")
	}
	idt, err := v.verifier.Verify(r.Context(), token)
	if err != nil {
		return nil, err
	}
	var c Claims
	if err := idt.Claims(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// FromContext returns the Claims verified for this request, if any.
func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsContextKey).(*Claims)
	return c, ok
}
