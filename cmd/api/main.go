package main

import (
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

// ログ種別カタログの初期投入。既にあれば何もしない。
func seedLogTypes(gormDB *gorm.DB) error {
	catalog := []model.LogType{
		{Name: model.LogTypeError, Description: "error events", IsActive: true},
		{Name: model.LogTypeWarning, Description: "warning events", IsActive: true},
		{Name: model.LogTypeInfo, Description: "informational events", IsActive: true},
		{Name: model.LogTypeLogin, Description: "user login", IsActive: true},
		{Name: model.LogTypeSignup, Description: "user registration", IsActive: true},
	}

	for _, lt := range catalog {
		if err := gormDB.Where("name = ?", lt.Name).FirstOrCreate(&lt).Error; err != nil {
			return err
		}
	}
	return nil
}

func main() {
	//.envはローカル開発用。なければ環境変数をそのまま使う。
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := config.NewLogger(cfg)

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		logger.WithError(err).Fatal("db connect failed")
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Transaction{},
		&model.Inventory{},
		&model.Purchase{},
		&model.LogType{},
		&model.AuditLog{},
	); err != nil {
		logger.WithError(err).Fatal("migrate failed")
	}

	if err := seedLogTypes(gormDB); err != nil {
		logger.WithError(err).Fatal("log type seed failed")
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	transactionRepo := infraRepo.NewTransactionGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	purchaseRepo := infraRepo.NewPurchaseGormRepository(gormDB)
	auditLogRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	logTypeRepo := infraRepo.NewLogTypeGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//監査ログの書き込み口
	recorder := usecase.NewAuditRecorder(auditLogRepo, logTypeRepo, logger)

	//Usecase生成
	authValidator := validator.NewAuthValidator(userRepo)
	authUC := usecase.NewAuthUsecase(cfg, userRepo, authValidator, recorder)
	productUC := usecase.NewProductUsecase(productRepo)
	transactionUC := usecase.NewTransactionUsecase(txManager, transactionRepo, inventoryRepo, productRepo, recorder)
	purchaseUC := usecase.NewPurchaseUsecase(txManager, purchaseRepo, transactionRepo, recorder)
	auditLogUC := usecase.NewAuditLogUsecase(auditLogRepo, logTypeRepo, userRepo)

	//Handler生成
	authH := handler.NewAuthHandler(authUC)
	productH := handler.NewProductHandler(productUC)
	transactionH := handler.NewTransactionHandler(transactionUC)
	purchaseH := handler.NewPurchaseHandler(purchaseUC)
	auditLogH := handler.NewAuditLogHandler(auditLogUC)

	//Server起動
	e := server.New(cfg, authH, productH, transactionH, purchaseH, auditLogH)

	addr := ":" + cfg.Port
	if cfg.Port[0] == ':' {
		addr = cfg.Port
	}

	logger.WithField("addr", addr).Info("server starting")
	if err := server.Start(e, addr); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
