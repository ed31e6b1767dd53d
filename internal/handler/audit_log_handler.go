package handler

import (
	"net/http"
	"strconv"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /logs（監査ログ）のAPI
type AuditLogHandler struct {
	uc *usecase.AuditLogUsecase
}

// DI
func NewAuditLogHandler(uc *usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{uc: uc}
}

func (h *AuditLogHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/logs")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("", h.append, middleware.AdminRoleGuard())
	g.GET("", h.list)
	g.GET("/system", h.listSystem, middleware.AdminRoleGuard())
	g.GET("/me", h.listMine)
	g.GET("/types", h.listTypes)
	g.GET("/:id", h.detail)

	//監査ログは不変。更新・削除はロールに関係なく403を返す。
	g.PUT("/:id", h.reject)
	g.DELETE("/:id", h.reject)
}

type AppendLogRequest struct {
	Description string `json:"description"`
	ActorKind   string `json:"actor_kind"`
	LogTypeID   int64  `json:"log_type_id"`
	UserID      *int64 `json:"user_id"`
}

func (h *AuditLogHandler) append(c echo.Context) error {
	var req AppendLogRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	log, err := h.uc.Append(c.Request().Context(), actor, usecase.AppendLogInput{
		Description: req.Description,
		ActorKind:   model.ActorKind(req.ActorKind),
		LogTypeID:   req.LogTypeID,
		UserID:      req.UserID,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, log)
}

// 一覧系の共通クエリを読む
func parseListLogsQuery(c echo.Context) (usecase.ListLogsInput, error) {
	var in usecase.ListLogsInput

	if v := c.QueryParam("log_type_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return in, err
		}
		in.LogTypeID = &x
	}

	if v := c.QueryParam("user_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return in, err
		}
		in.UserID = &x
	}

	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return in, err
		}
		in.CreatedFrom = &t
	}

	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return in, err
		}
		in.CreatedTo = &t
	}

	if v := c.QueryParam("skip"); v != "" {
		s, err := strconv.Atoi(v)
		if err != nil {
			return in, err
		}
		in.Skip = s
	}

	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return in, err
		}
		in.Limit = l
	}

	return in, nil
}

func (h *AuditLogHandler) list(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	in, err := parseListLogsQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query"})
	}

	out, err := h.uc.List(c.Request().Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AuditLogHandler) listSystem(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	in, err := parseListLogsQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query"})
	}

	out, err := h.uc.ListSystem(c.Request().Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AuditLogHandler) listMine(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	in, err := parseListLogsQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query"})
	}

	out, err := h.uc.ListMine(c.Request().Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AuditLogHandler) listTypes(c echo.Context) error {
	types, err := h.uc.ListTypes(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, types)
}

func (h *AuditLogHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	log, err := h.uc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, log)
}

func (h *AuditLogHandler) reject(c echo.Context) error {
	return c.JSON(http.StatusForbidden, ErrorResponse{Error: "audit logs are immutable"})
}
