package echoapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/classpoint/assistant/core/school"
)

const mimeTextCSV = "text/csv; charset=UTF-8"

type adminApi struct {
	srv   *Server
	store *school.Store
}

func registerAdminAPI(g *echo.Group, admin echo.MiddlewareFunc, srv *Server) {
	api := adminApi{srv: srv, store: srv.deps.Store}

	ag := g.Group("", admin)

	ag.GET("/knowledge", api.knowledgeQuery)
	ag.POST("/knowledge", api.knowledgeCreate)
	ag.POST("/knowledge/import", api.knowledgeImport)
	ag.DELETE("/knowledge/:category", api.knowledgeDestroy)
	ag.DELETE("/knowledge/:category/:keyword", api.knowledgeDestroy)

	ag.GET("/logs", api.logQuery)
	ag.POST("/logs", api.logCreate)
	ag.GET("/stats", api.stats)
	ag.GET("/system", api.system)

	ag.GET("/backup", api.backup)
	ag.POST("/restore", api.restore)
	ag.POST("/clear", api.clear)
	ag.GET("/export/users.csv", api.exportUsers)
	ag.GET("/export/logs.csv", api.exportLogs)

	ag.GET("/settings", api.settings)
	ag.PUT("/settings", api.settingsUpdate)
	ag.PUT("/admin/password", api.passwordChange)
}

func (api *adminApi) knowledgeQuery(ctx echo.Context) error {
	kb, err := api.store.Knowledge(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "reading knowledge")
	}
	return ctx.JSON(http.StatusOK, kb)
}

func (api *adminApi) knowledgeCreate(ctx echo.Context) error {
	data := new(school.KnowledgeSeed)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	kws, err := api.store.AddKnowledge(ctx.Request().Context(), data.Category, data.Keywords, data.Answer)
	if err != nil {
		return errors.Wrap(err, "adding knowledge")
	}
	return ctx.JSON(http.StatusCreated, KnowledgeResponse{Category: data.Category, Keywords: kws})
}

func (api *adminApi) knowledgeImport(ctx echo.Context) error {
	n, err := api.store.ImportKnowledge(ctx.Request().Context(), ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "importing knowledge")
	}
	return ctx.JSON(http.StatusOK, ImportResponse{Imported: n})
}

func (api *adminApi) knowledgeDestroy(ctx echo.Context) error {
	if err := api.store.DeleteKnowledge(ctx.Request().Context(), ctx.Param("category"), ctx.Param("keyword")); err != nil {
		return errors.Wrap(err, "deleting knowledge")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) logQuery(ctx echo.Context) error {
	var query LogsQuery
	if err := ctx.Bind(&query); err != nil {
		return err
	}
	logs, err := api.store.Logs(ctx.Request().Context(), query.Limit)
	if err != nil {
		return errors.Wrap(err, "listing logs")
	}
	return ctx.JSON(http.StatusOK, logs)
}

func (api *adminApi) logCreate(ctx echo.Context) error {
	data := new(LogRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := api.srv.validateRequest(data); err != nil {
		return err
	}
	entry, err := api.store.AddLog(ctx.Request().Context(), data.User, data.Action, data.Type, data.Level)
	if err != nil {
		return errors.Wrap(err, "adding log")
	}
	return ctx.JSON(http.StatusCreated, entry)
}

func (api *adminApi) stats(ctx echo.Context) error {
	stats, err := api.store.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *adminApi) system(ctx echo.Context) error {
	sys, err := api.store.SystemInfo(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "reading system info")
	}
	return ctx.JSON(http.StatusOK, sys)
}

func (api *adminApi) backup(ctx echo.Context) error {
	data, err := api.store.Backup(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "backing up")
	}
	setAttachment(ctx, school.BackupFilename(nowFunc()))
	return ctx.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, data)
}

func (api *adminApi) restore(ctx echo.Context) error {
	data, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "reading backup")
	}
	if err = api.store.Restore(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "restoring backup")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) clear(ctx echo.Context) error {
	if err := api.store.ClearAll(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "clearing data")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) exportUsers(ctx echo.Context) error {
	setAttachment(ctx, school.ExportFilename("users", nowFunc()))
	ctx.Response().Header().Set(echo.HeaderContentType, mimeTextCSV)
	ctx.Response().WriteHeader(http.StatusOK)
	return errors.Wrap(api.store.ExportUsersCSV(ctx.Request().Context(), ctx.Response()), "exporting users")
}

func (api *adminApi) exportLogs(ctx echo.Context) error {
	setAttachment(ctx, school.ExportFilename("logs", nowFunc()))
	ctx.Response().Header().Set(echo.HeaderContentType, mimeTextCSV)
	ctx.Response().WriteHeader(http.StatusOK)
	return errors.Wrap(api.store.ExportLogsCSV(ctx.Request().Context(), ctx.Response()), "exporting logs")
}

func (api *adminApi) settings(ctx echo.Context) error {
	settings, err := api.store.Settings(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "reading settings")
	}
	return ctx.JSON(http.StatusOK, settings)
}

func (api *adminApi) settingsUpdate(ctx echo.Context) error {
	data := new(school.Settings)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	settings, err := api.store.UpdateSettings(ctx.Request().Context(), *data)
	if err != nil {
		return errors.Wrap(err, "updating settings")
	}
	return ctx.JSON(http.StatusOK, settings)
}

func (api *adminApi) passwordChange(ctx echo.Context) error {
	data := new(PasswordChangeRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := api.srv.validateRequest(data); err != nil {
		return err
	}
	if err := api.store.ChangeAdminPassword(ctx.Request().Context(), data.Password); err != nil {
		return errors.Wrap(err, "changing admin password")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func setAttachment(ctx echo.Context, filename string) {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
}

type (
	KnowledgeResponse struct {
		Category string   `json:"category"`
		Keywords []string `json:"keywords"`
	}

	ImportResponse struct {
		Imported int `json:"imported"`
	}

	LogsQuery struct {
		Limit int `query:"limit"`
	}

	LogRequest struct {
		User   string `json:"user" validate:"required,notblank"`
		Action string `json:"action" validate:"required,notblank"`
		Type   string `json:"type"`
		Level  string `json:"level"`
	}

	PasswordChangeRequest struct {
		Password        string `json:"password" validate:"required,notblank"`
		PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	}
)
