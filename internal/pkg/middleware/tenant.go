package middleware

import (
	"context"
	"net/http"

	"github.com/opamenu/om-order/pkg/response"
	"github.com/opamenu/om-order/pkg/status"
)

type tenantCtxKey struct{}

const TenantHeader = "X-Tenant-Id"

// TenantResolver extracts the tenant id the API gateway injects after
// authenticating the caller. Requests without one never reach the domain
// layer.
type TenantResolver struct{}

func NewTenantResolver() *TenantResolver {
	return &TenantResolver{}
}

func (m *TenantResolver) Resolve(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get(TenantHeader)
		if tenantID == "" {
			response.JSON(w, http.StatusUnauthorized, response.RESTEnvelope{
				Status:  status.UNAUTHORIZED,
				Message: "missing tenant identification",
			})

			return
		}

		ctx := context.WithValue(r.Context(), tenantCtxKey{}, tenantID)
		next(w, r.WithContext(ctx))
	}
}

// GetTenantFromCtx returns the tenant id stored by TenantResolver.
func GetTenantFromCtx(ctx context.Context) (string, bool) {
	tenantID, ok := ctx.Value(tenantCtxKey{}).(string)
	return tenantID, ok
}
