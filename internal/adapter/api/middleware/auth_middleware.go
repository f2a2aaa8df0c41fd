package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/usecase"
	"campusmarket/pkg/response"
)

const (
	ContextKeyIdentity = "identity"
	ContextKeyUID      = "uid"
)

type AuthMiddleware struct {
	identityUC *usecase.IdentityUseCase
}

func NewAuthMiddleware(identityUC *usecase.IdentityUseCase) *AuthMiddleware {
	return &AuthMiddleware{
		identityUC: identityUC,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, err := m.identityUC.Resolve(c.Request().Context(), BearerToken(c.Request()))
		if err != nil {
			return response.Error(c, err)
		}

		c.Set(ContextKeyIdentity, identity)
		c.Set(ContextKeyUID, identity.UserID)

		return next(c)
	}
}

// BearerToken reads "Authorization: Bearer <token>", falling back to the
// token query parameter browsers use for websocket upgrades.
func BearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func IdentityFrom(c echo.Context) (entity.Identity, bool) {
	identity, ok := c.Get(ContextKeyIdentity).(entity.Identity)
	return identity, ok && !identity.IsZero()
}
