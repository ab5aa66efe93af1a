package middleware

import (
	"net/http"

	"marketmedia/internal/common"

	"github.com/labstack/echo/v4"
)

// AdminMiddleware restricts maintenance routes to operator accounts. It runs
// after JWTMiddleware, which puts the user id in the context.
type AdminMiddleware struct {
	admins map[int64]struct{}
}

func NewAdminMiddleware(adminUserIDs []int64) *AdminMiddleware {
	admins := make(map[int64]struct{}, len(adminUserIDs))
	for _, id := range adminUserIDs {
		admins[id] = struct{}{}
	}
	return &AdminMiddleware{admins: admins}
}

func (m *AdminMiddleware) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := common.GetUserIDFromContext(c.Request().Context())
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			if _, ok := m.admins[userID]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}
