package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"renovation-system/internal/controllers"
	"renovation-system/internal/entities"
	"renovation-system/internal/listeners"
	"renovation-system/internal/repositories"
	"renovation-system/internal/services"
	"renovation-system/pkg/config"
	"renovation-system/pkg/eventbus"
	"renovation-system/pkg/middleware"
	"renovation-system/pkg/service"
	"renovation-system/pkg/telegram"

	"github.com/google/uuid"
)

type Loggers struct {
	Main    *zap.Logger
	Auth    *zap.Logger
	Order   *zap.Logger
	History *zap.Logger
}

func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	bus *eventbus.Bus,
	loggers *Loggers,
	cfg *config.Config,
) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, loggers.Auth)
	txManager := repositories.NewTxManager(dbConn)

	// --- Репозитории ---
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	userRepo := repositories.NewUserRepository(dbConn)
	orderRepo := repositories.NewOrderRepository(dbConn)
	historyRepo := repositories.NewHistoryRepository(dbConn)
	roomRepo := repositories.NewRoomRepository(dbConn)
	currencyRepo := repositories.NewCurrencyRepository(dbConn)
	regionRepo := repositories.NewRegionRepository(dbConn)
	socialRepo := repositories.NewSocialRepository(dbConn)
	orderStatusRepo := repositories.NewOrderStatusRepository(dbConn)

	// --- Сервисы ---
	authService := services.NewAuthService(userRepo, cacheRepo, jwtSvc, cfg.UserCacheTTL, loggers.Auth)
	orderService := services.NewOrderService(orderRepo, historyRepo, roomRepo, currencyRepo, txManager, authService, bus, loggers.Order)
	historyService := services.NewHistoryService(historyRepo)
	roomService := services.NewRoomService(roomRepo, orderRepo)
	currencyService := services.NewCurrencyService(currencyRepo, orderRepo)
	statisticsService := services.NewStatisticsService(orderRepo)

	regionService := services.NewReferenceService(regionRepo,
		func(id uuid.UUID, name string) entities.Region { return entities.Region{ID: id, Name: name} },
		func(r *entities.Region, name string) { r.Name = name },
	)
	socialService := services.NewReferenceService(socialRepo,
		func(id uuid.UUID, name string) entities.Social { return entities.Social{ID: id, Name: name} },
		func(s *entities.Social, name string) { s.Name = name },
	)
	orderStatusService := services.NewReferenceService(orderStatusRepo,
		func(id uuid.UUID, name string) entities.OrderStatus { return entities.OrderStatus{ID: id, Name: name} },
		func(s *entities.OrderStatus, name string) { s.Name = name },
	)

	// --- Слушатели событий ---
	telegramService := telegram.NewService(cfg.Telegram.BotToken)
	notificationListener := listeners.NewNotificationListener(telegramService, cfg.Telegram, loggers.Main)
	notificationListener.Register(bus)

	// --- Роутеры ---
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, secureGroup, authService, loggers.Auth)
	runOrderRouter(secureGroup, orderService, loggers.Order)
	runHistoryRouter(secureGroup, historyService, loggers.History)
	runRoomRouter(secureGroup, roomService, loggers.Order)
	runCurrencyRouter(secureGroup, currencyService, loggers.Order)
	runStatisticsRouter(secureGroup, statisticsService, loggers.Main)
	runReferenceRouter(secureGroup, "regions", controllers.NewReferenceController(regionService, "Регион", loggers.Main))
	runReferenceRouter(secureGroup, "socials", controllers.NewReferenceController(socialService, "Источник", loggers.Main))
	runReferenceRouter(secureGroup, "order-statuses", controllers.NewReferenceController(orderStatusService, "Статус заказа", loggers.Main))

	loggers.Main.Info("InitRouter: Маршруты успешно созданы")
}
