package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erpmaroc/paie-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedRouter(t *testing.T, jwtService jwt.Service) *chi.Mux {
	t.Helper()
	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
	r.Use(AuthRequired(jwtService))
	r.Get("/protected", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func encodeToken(t *testing.T, jwtService jwt.Service, claims map[string]interface{}) string {
	t.Helper()
	_, tokenString, err := jwtService.JWTAuth().Encode(claims)
	require.NoError(t, err)
	return tokenString
}

func doRequest(r *chi.Mux, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired_AcceptsAccessToken(t *testing.T) {
	jwtService := jwt.NewJWTService("test-secret")
	r := protectedRouter(t, jwtService)

	token := encodeToken(t, jwtService, map[string]interface{}{"user_id": "hr-1", "type": "access"})
	assert.Equal(t, http.StatusOK, doRequest(r, token).Code)
}

func TestAuthRequired_RejectsMissingToken(t *testing.T) {
	jwtService := jwt.NewJWTService("test-secret")
	r := protectedRouter(t, jwtService)

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
}

func TestAuthRequired_RejectsNonAccessToken(t *testing.T) {
	jwtService := jwt.NewJWTService("test-secret")
	r := protectedRouter(t, jwtService)

	token := encodeToken(t, jwtService, map[string]interface{}{"user_id": "hr-1", "type": "refresh"})
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, token).Code)
}

func TestAuthRequired_RejectsRevokedToken(t *testing.T) {
	jwtService := jwt.NewJWTService("test-secret")
	r := protectedRouter(t, jwtService)

	token := encodeToken(t, jwtService, map[string]interface{}{"user_id": "hr-1", "type": "access"})
	require.Equal(t, http.StatusOK, doRequest(r, token).Code)

	jwtService.RevokeToken(token)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, token).Code)
}
