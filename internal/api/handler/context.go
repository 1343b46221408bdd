package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
)

// ctxIdentity extracts the caller identity injected by the Auth middleware.
// Its absence means the route was registered without the middleware, which is
// a wiring bug; fail closed with 401.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := c.Get("identity").(domain.Identity)
	if !ok {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
