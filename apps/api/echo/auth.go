package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/classpoint/assistant/core/school"
)

const (
	headerAdminPassword = "X-Admin-Password"
	authScheme          = "Bearer"
)

var (
	contextUserKey  = "user"
	contextTokenKey = "sessionToken"
)

// sessionMiddleware resolves the "Authorization: Bearer <token>" header to the session user.
func sessionMiddleware(store *school.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token, ok := bearerToken(ctx)
			if !ok {
				return errUnauthorized
			}
			usr, err := store.CurrentUser(ctx.Request().Context(), token)
			if err != nil {
				if errors.Cause(err) == school.ErrSessionNotFound {
					return errUnauthorized
				}
				return errors.Wrap(err, "finding session user")
			}
			ctx.Set(contextTokenKey, token)
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

// adminMiddleware checks the X-Admin-Password header against the stored admin password.
func adminMiddleware(store *school.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			pwd := ctx.Request().Header.Get(headerAdminPassword)
			if pwd == "" {
				return errUnauthorized
			}
			ok, err := store.CheckAdminPassword(ctx.Request().Context(), pwd)
			if err != nil {
				return errors.Wrap(err, "checking admin password")
			}
			if !ok {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

func bearerToken(ctx echo.Context) (string, bool) {
	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	l := len(authScheme)
	if len(auth) > l+1 && strings.EqualFold(auth[:l], authScheme) {
		if token := strings.TrimSpace(auth[l+1:]); token != "" {
			return token, true
		}
	}
	return "", false
}

func getContextUser(ctx echo.Context) (school.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(school.User); ok {
		return usr, nil
	}
	return school.User{}, errUnauthorized
}
