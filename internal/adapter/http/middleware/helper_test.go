package middleware

import (
	"context"
	"net/http"

	"github.com/iho/cashledger/internal/domain"
)

func withPrincipal(r *http.Request, p *domain.Principal) context.Context {
	return context.WithValue(r.Context(), PrincipalContextKey, p)
}
