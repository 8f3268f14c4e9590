package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/classpoint/assistant/core/school"
)

type schoolApi struct {
	srv   *Server
	store *school.Store
}

func registerSchoolAPI(g *echo.Group, session, admin echo.MiddlewareFunc, srv *Server) {
	api := schoolApi{srv: srv, store: srv.deps.Store}

	cg := g.Group("/classes")
	cg.GET("", api.classQuery, session)
	cg.GET("/:class/tasks", api.taskQuery, session)
	cg.POST("/:class/tasks", api.taskCreate, admin)
	cg.GET("/:class/schedule", api.scheduleQuery, session)
	cg.POST("/:class/schedule", api.scheduleCreate, admin)

	tg := g.Group("/tasks")
	tg.POST("/:id/complete", api.taskComplete, session)
	tg.PATCH("/:id", api.taskSetActive, admin)
	tg.DELETE("/:id", api.taskDestroy, admin)

	g.POST("/ai/ask", api.ask, session)
}

func (api *schoolApi) classQuery(ctx echo.Context) error {
	classes, err := api.store.ListClasses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *schoolApi) taskQuery(ctx echo.Context) error {
	tasks, err := api.store.ListTasks(ctx.Request().Context(), ctx.Param("class"))
	if err != nil {
		return errors.Wrap(err, "listing tasks")
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *schoolApi) taskCreate(ctx echo.Context) error {
	data := new(school.NewTask)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	data.Class = ctx.Param("class")
	task, err := api.store.AddTask(ctx.Request().Context(), *data)
	if err != nil {
		return errors.Wrap(err, "adding task")
	}
	return ctx.JSON(http.StatusCreated, task)
}

func (api *schoolApi) taskComplete(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if !usr.IsStudent() {
		return errStudentsOnly
	}
	usr, completed, err := api.store.CompleteTask(ctx.Request().Context(), usr.ID, id)
	if err != nil {
		return errors.Wrap(err, "completing task")
	}
	return ctx.JSON(http.StatusOK, CompleteTaskResponse{User: usr, Completed: completed})
}

func (api *schoolApi) taskSetActive(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	data := new(TaskActiveRequest)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = api.srv.validateRequest(data); err != nil {
		return err
	}
	task, err := api.store.SetTaskActive(ctx.Request().Context(), id, *data.IsActive)
	if err != nil {
		return errors.Wrap(err, "updating task")
	}
	return ctx.JSON(http.StatusOK, task)
}

func (api *schoolApi) taskDestroy(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	if err = api.store.DeleteTask(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting task")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) scheduleQuery(ctx echo.Context) error {
	entries, err := api.store.Schedule(ctx.Request().Context(), ctx.Param("class"))
	if err != nil {
		return errors.Wrap(err, "listing schedule")
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *schoolApi) scheduleCreate(ctx echo.Context) error {
	data := new(school.NewScheduleEntry)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	entry, err := api.store.AddScheduleEntry(ctx.Request().Context(), ctx.Param("class"), *data)
	if err != nil {
		return errors.Wrap(err, "adding schedule entry")
	}
	return ctx.JSON(http.StatusCreated, entry)
}

func (api *schoolApi) ask(ctx echo.Context) error {
	data := new(AskRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := api.srv.validateRequest(data); err != nil {
		return err
	}
	answer, err := api.store.Answer(ctx.Request().Context(), data.Message)
	if err != nil {
		return errors.Wrap(err, "answering")
	}
	return ctx.JSON(http.StatusOK, AskResponse{Answer: answer})
}

type (
	CompleteTaskResponse struct {
		User      school.User `json:"user"`
		Completed bool        `json:"completed"`
	}

	TaskActiveRequest struct {
		IsActive *bool `json:"is_active" validate:"required"`
	}

	AskRequest struct {
		Message string `json:"message" validate:"required,notblank"`
	}

	AskResponse struct {
		Answer string `json:"answer"`
	}
)
