package handler

import (
	"net/http"

	"github.com/iho/cashledger/internal/adapter/http/dto"
	"github.com/iho/cashledger/internal/adapter/http/middleware"
)

// AuthHandler handles authentication endpoints. Tokens are issued out of
// band (see the cli token command); the API only introspects them.
type AuthHandler struct{}

// NewAuthHandler creates a new auth handler
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// WhoAmI returns the caller carried by the request's bearer token.
func (h *AuthHandler) WhoAmI(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, dto.PrincipalResponse{
		Subject: principal.Subject,
		Role:    principal.Role,
	})
}
