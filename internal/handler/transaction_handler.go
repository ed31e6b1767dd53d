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
	"github.com/shopspring/decimal"
)

// /transactions（在庫台帳）のAPI
type TransactionHandler struct {
	uc *usecase.TransactionUsecase
}

// DI
func NewTransactionHandler(uc *usecase.TransactionUsecase) *TransactionHandler {
	return &TransactionHandler{uc: uc}
}

// 台帳ルートを登録。全ルート要ログイン、再計算は管理者のみ。
func (h *TransactionHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/transactions")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("", h.record)
	g.GET("", h.list)
	g.GET("/stock/:product_id", h.stock)
	g.GET("/reports/low-stock", h.lowStock)
	g.GET("/:id", h.detail)

	//台帳は不変。更新・削除はロールに関係なく403を返す。
	g.PUT("/:id", h.reject)
	g.DELETE("/:id", h.reject)

	g.POST("/recompute/:product_id", h.recompute, middleware.AdminRoleGuard())
}

type RecordMovementRequest struct {
	Kind          string          `json:"kind"`
	ProductID     int64           `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	EffectiveDate *time.Time      `json:"effective_date"`
	Note          string          `json:"note"`
}

func (h *TransactionHandler) record(c echo.Context) error {
	var req RecordMovementRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	tx, err := h.uc.RecordMovement(c.Request().Context(), userID, usecase.RecordMovementInput{
		Kind:          model.MovementKind(req.Kind),
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		EffectiveDate: req.EffectiveDate,
		Note:          req.Note,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, tx)
}

func (h *TransactionHandler) list(c echo.Context) error {
	var productID *int64
	if v := c.QueryParam("product_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
		}
		productID = &x
	}

	var kind *model.MovementKind
	if v := c.QueryParam("kind"); v != "" {
		k := model.MovementKind(v)
		kind = &k
	}

	skip := 0
	if v := c.QueryParam("skip"); v != "" {
		s, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid skip"})
		}
		skip = s
	}

	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	txs, err := h.uc.ListMovements(c.Request().Context(), usecase.ListMovementsInput{
		ProductID: productID,
		Kind:      kind,
		Skip:      skip,
		Limit:     limit,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, txs)
}

func (h *TransactionHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	tx, err := h.uc.GetMovement(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, tx)
}

func (h *TransactionHandler) stock(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	out, err := h.uc.CurrentStock(c.Request().Context(), productID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *TransactionHandler) lowStock(c echo.Context) error {
	threshold := decimal.Zero
	if v := c.QueryParam("threshold"); v != "" {
		t, err := decimal.NewFromString(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid threshold"})
		}
		threshold = t
	}

	items, err := h.uc.LowStockReport(c.Request().Context(), threshold)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, items)
}

func (h *TransactionHandler) recompute(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.RecomputeProjection(c.Request().Context(), userID, productID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *TransactionHandler) reject(c echo.Context) error {
	return c.JSON(http.StatusForbidden, ErrorResponse{Error: "transactions are immutable"})
}
