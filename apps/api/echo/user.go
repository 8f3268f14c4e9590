package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/classpoint/assistant/core"
	"github.com/classpoint/assistant/core/school"
)

type userApi struct {
	srv   *Server
	store *school.Store
}

func registerUserAPI(g *echo.Group, session, admin echo.MiddlewareFunc, srv *Server) {
	api := userApi{srv: srv, store: srv.deps.Store}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/register", api.create)
	ug.POST("/login", api.login)

	// session endpoints
	ug.POST("/logout", api.logout, session)
	ug.GET("/me", api.me, session)

	// admin endpoints
	ag := ug.Group("", admin)
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

func (api *userApi) create(ctx echo.Context) error {
	data := new(school.NewUser)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	data.Role = school.RoleStudent // admins are created with the admin CLI or PUT /users/:id
	usr, err := api.store.Register(ctx.Request().Context(), *data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) login(ctx echo.Context) error {
	data := new(LoginRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	data.Clean()
	if err := api.srv.validateRequest(data); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	usr, err := api.store.Login(reqCtx, data.Login, data.Password)
	if err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "logging in")
	}
	sess, err := api.store.StartSession(reqCtx, usr.ID)
	if err != nil {
		return errors.Wrap(err, "starting session")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: sess.Token, User: usr})
}

func (api *userApi) logout(ctx echo.Context) error {
	token, _ := ctx.Get(contextTokenKey).(string)
	if err := api.store.EndSession(ctx.Request().Context(), token); err != nil {
		return errors.Wrap(err, "ending session")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) query(ctx echo.Context) error {
	var filter school.UserFilter
	if err := ctx.Bind(&filter); err != nil {
		return err
	}
	users, err := api.store.ListUsers(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing users")
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	usr, err := api.store.GetUser(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	data := new(school.UpdateUser)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	usr, err := api.store.UpdateUser(ctx.Request().Context(), id, *data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	if err = api.store.DeleteUser(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func paramID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}

type (
	LoginRequest struct {
		Login    string `json:"login" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string      `json:"token"`
		User  school.User `json:"user"`
	}
)

func (lr *LoginRequest) Clean() {
	lr.Login = core.CleanString(lr.Login, true /* lower */)
}
