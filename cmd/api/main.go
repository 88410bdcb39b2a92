package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/TheWizardo/InventoryPro/api/routes"
	"github.com/TheWizardo/InventoryPro/internal/assembly"
	"github.com/TheWizardo/InventoryPro/internal/employees"
	"github.com/TheWizardo/InventoryPro/internal/guard"
	"github.com/TheWizardo/InventoryPro/internal/inventory"
	"github.com/TheWizardo/InventoryPro/internal/inventorylog"
	"github.com/TheWizardo/InventoryPro/internal/projects"
	"github.com/TheWizardo/InventoryPro/pkg/config"
	"github.com/TheWizardo/InventoryPro/pkg/db"
	"github.com/TheWizardo/InventoryPro/pkg/logger"
	"github.com/TheWizardo/InventoryPro/pkg/metrics"
	"github.com/TheWizardo/InventoryPro/pkg/migrate"
	"github.com/TheWizardo/InventoryPro/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	assemblyMetrics := metrics.NewAssemblyMetrics(registry)

	conn := dbClient.DB()
	guardChecker := guard.NewChecker(conn)
	inventoryRepo := inventory.NewRepository(conn)
	employeeRepo := employees.NewRepository(conn)
	projectRepo := projects.NewRepository(conn)
	assemblyRepo := assembly.NewRepository(conn)
	logRepo := inventorylog.NewRepository(conn)

	logService, err := inventorylog.NewService(logRepo, dbClient, employeeRepo, inventoryRepo)
	requireService(logg, "log service", err)

	inventoryService, err := inventory.NewService(inventoryRepo, dbClient, logRepo, employeeRepo, guardChecker, assemblyMetrics)
	requireService(logg, "inventory service", err)

	employeeService, err := employees.NewService(employeeRepo, dbClient, guardChecker, assemblyMetrics)
	requireService(logg, "employee service", err)

	projectService, err := projects.NewService(projectRepo, dbClient, inventoryRepo)
	requireService(logg, "project service", err)

	assemblyService, err := assembly.NewService(
		assemblyRepo,
		dbClient,
		inventoryRepo,
		projectRepo,
		logRepo,
		employeeRepo,
		cfg.Assembly,
		cfg.FeatureFlags,
		assemblyMetrics,
	)
	requireService(logg, "assembly service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			inventoryService,
			employeeService,
			projectService,
			assemblyService,
			logService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name, err)
	os.Exit(1)
}
