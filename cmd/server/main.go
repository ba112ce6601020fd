package main

import (
	"log/slog"
	"net/http"
	"os"

	_ "devinventory/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"devinventory/internal/cache"
	"devinventory/internal/config"
	"devinventory/internal/db"
	"devinventory/internal/handler"
	"devinventory/internal/logging"
	"devinventory/internal/model"
	"devinventory/internal/repository"
	"devinventory/internal/router"
	"devinventory/internal/service"
	"devinventory/internal/storage"
)

// @title Device Inventory API
// @version 1.0
// @description Device inventory service: device registry, user registration, image uploads and device checkout.
// @host localhost:8080
// @schemes http
func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		slog.Error("database init failed", "error", err)
		os.Exit(1)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		slog.Warn("RESET_DB=true detected, dropping all tables")
		for _, table := range []interface{}{&model.Device{}, &model.User{}} {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				slog.Warn("drop table failed (may not exist)", "error", err)
			}
		}
	}

	if err := gormDB.AutoMigrate(&model.Device{}, &model.User{}); err != nil {
		slog.Error("auto-migrate failed", "error", err)
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	imageStore, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		slog.Error("image store init failed", "error", err)
		os.Exit(1)
	}

	deviceRepo := repository.NewDeviceRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB)

	deviceService := service.NewDeviceService(deviceRepo, imageStore, cacheClient)
	checkoutService := service.NewCheckoutService(deviceRepo, cacheClient)
	userService := service.NewUserService(userRepo)

	deviceHandler := handler.NewDeviceHandler(deviceService)
	userHandler := handler.NewUserHandler(userService, checkoutService)

	router.Register(e, deviceHandler, userHandler)

	swaggerHost := cfg.SwaggerHost
	if swaggerHost == "" {
		swaggerHost = "http://localhost:" + cfg.ServerPort
	}
	slog.Info("swagger documentation available", "url", swaggerHost+"/swagger/index.html")

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		slog.Error("server start failed", "error", err)
		os.Exit(1)
	}
}
