package http

import (
	"net/http"

	"github.com/erpmaroc/paie-backend-go/internal/handler/http/response"
	"github.com/erpmaroc/paie-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type AuthHandler interface {
	Logout(w http.ResponseWriter, r *http.Request)
}

type authHandlerImpl struct {
	jwtService jwt.Service
}

func NewAuthHandler(jwtService jwt.Service) AuthHandler {
	return &authHandlerImpl{jwtService: jwtService}
}

// Logout revokes the presented access token. The middleware has already
// verified it, so revocation applies to a known-good token only.
func (h *authHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	token := jwtauth.TokenFromHeader(r)
	if token == "" {
		response.Unauthorized(w, "Invalid token")
		return
	}

	h.jwtService.RevokeToken(token)
	response.SuccessWithMessage(w, "Logged out", nil)
}
