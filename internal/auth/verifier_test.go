package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilVerifierMiddlewareDisablesAuth(t *testing.T) {
	var v *Verifier
	called := false
	h := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestVerifyRequestRejectsMissingBearerToken(t *testing.T) {
	v := &Verifier{}
	_, err := v.verifyRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorContains(t, err, "missing bearer token")
}
