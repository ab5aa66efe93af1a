package middleware

import (
	"net/http"

	"marketmedia/internal/common"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTConfig selects how access tokens are verified. When JWKS is set tokens are
// checked against its keys; otherwise Secret is used as an HMAC key.
type JWTConfig struct {
	Secret string
	JWKS   *keyfunc.JWKS
}

// JWTMiddleware verifies the bearer token and stores the numeric subject as the
// user id in the request context. Every failure is a 401.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	config := echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(jwt.RegisteredClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
	if cfg.JWKS != nil {
		config.KeyFunc = cfg.JWKS.Keyfunc
	} else {
		config.SigningKey = []byte(cfg.Secret)
	}
	verify := echojwt.WithConfig(config)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			sub, err := token.Claims.GetSubject()
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing subject in token")
			}
			userID, err := common.ParseUserID(sub)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid subject in token")
			}

			c.SetRequest(c.Request().WithContext(common.WithUserID(c.Request().Context(), userID)))
			return next(c)
		})
	}
}
