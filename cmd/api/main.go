package main

import (
	"os"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/cache"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load failed")
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		logger.Fatal().Err(err).Msg("db connect failed")
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Category{},
		&model.Product{},
		&model.ColorVariant{},
		&model.CartItem{},
		&model.AdminCartItem{},
		&model.Favorite{},
		&model.AdminFavorite{},
		&model.Promocode{},
		&model.Review{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	); err != nil {
		logger.Fatal().Err(err).Msg("auto migrate failed")
	}

	//Redis（商品詳細キャッシュ）
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	cartRepo := infraRepo.NewCartItemGormRepository(gormDB)
	adminCartRepo := infraRepo.NewAdminCartItemGormRepository(gormDB)
	favoriteRepo := infraRepo.NewFavoriteGormRepository(gormDB)
	adminFavoriteRepo := infraRepo.NewAdminFavoriteGormRepository(gormDB)
	promocodeRepo := infraRepo.NewPromocodeGormRepository(gormDB)
	reviewRepo := infraRepo.NewReviewGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	productCache := cache.NewProductCache(rdb)

	//Usecase生成
	authValidator := validator.NewAuthValidator(userRepo)
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo, authValidator)
	productUC := usecase.NewProductUsecase(productRepo, reviewRepo, auditRepo, productCache)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, adminCartRepo, productRepo)
	favoriteUC := usecase.NewFavoriteUsecase(favoriteRepo, adminFavoriteRepo, productRepo)
	promocodeUC := usecase.NewPromocodeUsecase(promocodeRepo)
	reviewUC := usecase.NewReviewUsecase(reviewRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txManager, orderRepo, orderItemRepo, promocodeRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(orderRepo, orderItemRepo, auditRepo)
	adminUserUC := usecase.NewAdminUserUsecase(userRepo, auditRepo)

	//Handler生成
	handlers := server.Handlers{
		Product:      handler.NewProductHandler(productUC),
		Category:     handler.NewCategoryHandler(categoryUC),
		Cart:         handler.NewCartHandler(cartUC),
		Favorite:     handler.NewFavoriteHandler(favoriteUC),
		Promocode:    handler.NewPromocodeHandler(promocodeUC),
		Review:       handler.NewReviewHandler(reviewUC),
		Order:        handler.NewOrderHandler(orderUC),
		Auth:         handler.NewAuthHandler(authUC, cfg),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminUser:    handler.NewAdminUserHandler(adminUserUC, authUC),
	}

	//Server起動
	e := server.New(cfg)
	handlers.RegisterAll(e, cfg, userRepo)

	addr := ":" + cfg.Port
	if cfg.Port[0] == ':' {
		addr = cfg.Port
	}

	if err := e.Start(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
