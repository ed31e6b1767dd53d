package server

import (
	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
)

// 全ハンドラのルートをechoに登録する
func RegisterRoutes(
	e *echo.Echo,
	cfg config.Config,
	authH *handler.AuthHandler,
	productH *handler.ProductHandler,
	transactionH *handler.TransactionHandler,
	purchaseH *handler.PurchaseHandler,
	auditLogH *handler.AuditLogHandler,
) {
	authH.RegisterRoutes(e, cfg)
	productH.RegisterRoutes(e, cfg)
	transactionH.RegisterRoutes(e, cfg)
	purchaseH.RegisterRoutes(e, cfg)
	auditLogH.RegisterRoutes(e, cfg)
}
