package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"equipment-booking/internal/controllers"
	"equipment-booking/internal/repositories"
	"equipment-booking/internal/routes"
	"equipment-booking/internal/scheduler"
	"equipment-booking/internal/services"
	"equipment-booking/pkg/config"
	"equipment-booking/pkg/customvalidator"
	"equipment-booking/pkg/database/postgresql"
	"equipment-booking/pkg/logger"
	"equipment-booking/pkg/middleware"
	"equipment-booking/pkg/service"
	"equipment-booking/pkg/telegram"
	"equipment-booking/pkg/utils"
)

func main() {
	cfg := config.New()

	appLogger := logger.NewLogger()
	defer appLogger.Sync()

	dbPool := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbPool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		appLogger.Fatal("Не удалось подключиться к Redis", zap.Error(err))
	}
	defer redisClient.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	v := validator.New()
	if err := customvalidator.RegisterCustomValidations(v); err != nil {
		appLogger.Fatal("Не удалось зарегистрировать валидаторы", zap.Error(err))
	}
	e.Validator = utils.NewValidator(v)

	// Репозитории
	txManager := repositories.NewTxManager(dbPool)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	userRepo := repositories.NewUserRepository(dbPool, appLogger)
	departmentRepo := repositories.NewDepartmentRepository(dbPool, appLogger)
	accessRepo := repositories.NewDepartmentAccessRepository(dbPool, appLogger)
	categoryRepo := repositories.NewEquipmentCategoryRepository(dbPool, appLogger)
	equipmentRepo := repositories.NewEquipmentRepository(dbPool, appLogger)
	bookingRepo := repositories.NewBookingRepository(dbPool, appLogger)

	// Сервисы
	jwtService := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL, appLogger)
	telegramService := telegram.NewService(cfg.Telegram.BotToken)
	notifier := services.NewTelegramNotifier(telegramService, appLogger)

	authService := services.NewAuthService(userRepo, cacheRepo, jwtService, cfg.Auth, appLogger)
	accessService := services.NewAccessService(accessRepo, departmentRepo, appLogger)
	departmentService := services.NewDepartmentService(departmentRepo, accessService, appLogger)
	categoryService := services.NewEquipmentCategoryService(categoryRepo, appLogger)
	equipmentService := services.NewEquipmentService(equipmentRepo, categoryRepo, departmentRepo, accessService, appLogger)
	bookingService := services.NewBookingService(bookingRepo, equipmentRepo, accessService, txManager, notifier, cfg.Booking, appLogger)
	userService := services.NewUserService(userRepo, appLogger)
	reportService := services.NewReportService(bookingRepo, appLogger)
	botService := services.NewTelegramBotService(telegramService, userRepo, bookingRepo, bookingService, cacheRepo, cfg.Telegram, appLogger)

	// Контроллеры и маршруты
	authMW := middleware.NewAuthMiddleware(jwtService, appLogger)
	ctrls := routes.Controllers{
		Auth:       controllers.NewAuthController(authService, appLogger),
		Department: controllers.NewDepartmentController(departmentService, userService, appLogger),
		Category:   controllers.NewEquipmentCategoryController(categoryService, appLogger),
		Equipment:  controllers.NewEquipmentController(equipmentService, userService, appLogger),
		Booking:    controllers.NewBookingController(bookingService, userService, appLogger),
		Access:     controllers.NewDepartmentAccessController(accessService, userService, appLogger),
		User:       controllers.NewUserController(userService, appLogger),
		Report:     controllers.NewReportController(reportService, appLogger),
		Telegram:   controllers.NewTelegramController(botService, cfg.Telegram.WebhookSecret, appLogger),
	}
	routes.InitRouter(e, ctrls, authMW, appLogger)

	// Фоновая проверка бронирований
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	sweeper := scheduler.NewSweeper(bookingService, cfg.Booking.SweepInterval, appLogger)
	go sweeper.Run(sweepCtx)

	go func() {
		appLogger.Info("HTTP сервер запускается", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil {
			appLogger.Info("HTTP сервер остановлен", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Получен сигнал завершения, останавливаемся...")
	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Ошибка при остановке сервера", zap.Error(err))
	}
}
