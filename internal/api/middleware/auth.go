package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
	"github.com/entregas/delivery-marketplace/internal/core/ports"
)

// identityKey is the echo context key under which Auth stores the caller.
const identityKey = "identity"

// Auth validates the JWT, resolves the subject's current roles (read-through
// via the role cache, falling back to the user store) and injects a
// domain.Identity into context. Roles never come from the token itself, so a
// role change takes effect as soon as the cache entry expires.
func Auth(jwtSecret string, cache ports.RoleCache, users ports.UserRepository, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			sub, _ := claims["sub"].(string)
			if sub == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing subject")
			}

			roles, err := resolveRoles(c, sub, cache, users, log)
			if err != nil {
				return err
			}

			c.Set(identityKey, domain.NewIdentity(sub, roles))
			return next(c)
		}
	}
}

func resolveRoles(c echo.Context, sub string, cache ports.RoleCache, users ports.UserRepository, log zerolog.Logger) ([]string, error) {
	ctx := c.Request().Context()

	if cache != nil {
		roles, ok, err := cache.Get(ctx, sub)
		if err != nil {
			log.Warn().Err(err).Str("subject", sub).Msg("role cache read failed")
		} else if ok {
			return roles, nil
		}
	}

	roles, err := users.FindRoles(ctx, sub)
	if err != nil {
		// A valid token whose account is gone or deactivated is no longer
		// an authenticated caller.
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unknown subject")
	}

	if cache != nil {
		if err := cache.Set(ctx, sub, roles); err != nil {
			log.Warn().Err(err).Str("subject", sub).Msg("role cache write failed")
		}
	}
	return roles, nil
}
