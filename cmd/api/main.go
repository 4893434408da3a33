package main

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/org-hierarchy-api/internal/config"
	"github.com/org-hierarchy-api/internal/handler"
	"github.com/org-hierarchy-api/internal/repository"
	"github.com/org-hierarchy-api/internal/service"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

func main() {
	// Инициализация логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load(config.DefaultEnvFiles...)
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Подключение к БД
	db, err := connectDB(cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("failed to get sql.DB", slog.Any("error", err))
		os.Exit(1)
	}
	defer sqlDB.Close()

	// Запуск миграций
	if err := runMigrations(sqlDB); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Инициализация репозиториев
	caps := repository.NewCapabilities(db, cfg.Hierarchy.CapabilityCheck, logger)
	branchRepo := repository.NewBranchRepository(db)
	deptRepo := repository.NewDepartmentRepository(db, branchRepo, logger)
	managerRepo := repository.NewManagerRepository(db, caps, logger)
	auditRepo := repository.NewAuditRepository(db)
	profileRepo := repository.NewProfileRepository(db, caps)

	// Инициализация сервисов
	auditService := service.NewAuditService(auditRepo, profileRepo, service.AuditLimits{
		Default: cfg.Audit.DefaultLimit,
		Max:     cfg.Audit.MaxLimit,
	}, logger)
	hierarchyService := service.NewHierarchyService(branchRepo, deptRepo, managerRepo, cfg.Hierarchy.FetchTimeout, logger)
	hierarchyValidator := service.NewHierarchyValidator(deptRepo, managerRepo, logger)
	branchService := service.NewBranchService(branchRepo, auditService, logger)
	deptService := service.NewDepartmentService(deptRepo, branchRepo, managerRepo, auditService, logger)
	managerService := service.NewManagerService(managerRepo, deptRepo, auditService, logger)

	// Настройка роутера
	router := handler.NewRouter(
		handler.NewHierarchyHandler(hierarchyService, hierarchyValidator, logger),
		handler.NewBranchHandler(branchService, logger),
		handler.NewDepartmentHandler(deptService, logger),
		handler.NewManagerHandler(managerService, logger),
		handler.NewAuditHandler(auditService, logger),
		logger,
	)

	// Настройка HTTP сервера
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("could not gracefully shutdown the server", slog.Any("error", err))
		}
		close(done)
	}()

	logger.Info("server is starting", slog.String("port", cfg.Server.Port))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("could not listen on port", slog.String("port", cfg.Server.Port), slog.Any("error", err))
		os.Exit(1)
	}

	<-done
	logger.Info("server stopped")
}

func connectDB(cfg config.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for attempt := 1; attempt <= cfg.ConnectAttempts; attempt++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err == nil {
			var sqlDB *sql.DB
			if sqlDB, err = db.DB(); err == nil {
				if err = sqlDB.Ping(); err == nil {
					return db, nil
				}
			}
		}
		logger.Warn("database is not ready",
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)
		time.Sleep(time.Second)
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", cfg.ConnectAttempts, err)
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
