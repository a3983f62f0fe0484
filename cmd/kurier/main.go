package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kurier-ops/kurier-ops/internal/app"
	"github.com/kurier-ops/kurier-ops/internal/cashdesk"
	"github.com/kurier-ops/kurier-ops/internal/clients"
	"github.com/kurier-ops/kurier-ops/internal/deliveries"
	"github.com/kurier-ops/kurier-ops/internal/drivers"
	"github.com/kurier-ops/kurier-ops/internal/expenses"
	"github.com/kurier-ops/kurier-ops/internal/ledger"
	"github.com/kurier-ops/kurier-ops/internal/platform/cache"
	"github.com/kurier-ops/kurier-ops/internal/platform/db"
	"github.com/kurier-ops/kurier-ops/internal/products"
	"github.com/kurier-ops/kurier-ops/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := db.Migrate(cfg.PGDSN); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	// Redis is best effort: the summary endpoint works uncached without it.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, summary caching disabled", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	driversRepo := drivers.NewRepository(dbpool)
	driversService := drivers.NewService(driversRepo)
	driversHandler := drivers.NewHandler(logger, driversService)

	clientsRepo := clients.NewRepository(dbpool)
	clientsService := clients.NewService(clientsRepo)
	clientsHandler := clients.NewHandler(logger, clientsService)

	deliveriesRepo := deliveries.NewRepository(dbpool)
	deliveriesService := deliveries.NewService(deliveriesRepo)
	deliveriesHandler := deliveries.NewHandler(logger, deliveriesService)

	expensesRepo := expenses.NewRepository(dbpool)
	expensesService := expenses.NewService(expensesRepo)
	expensesHandler := expenses.NewHandler(logger, expensesService)

	cashdeskRepo := cashdesk.NewRepository(dbpool)
	cashdeskService := cashdesk.NewService(cashdeskRepo)
	cashdeskHandler := cashdesk.NewHandler(logger, cashdeskService)

	ledgerCache := ledger.NewCache(redisClient, cfg.SummaryTTL, logger)
	ledgerRepo := ledger.NewRepository(dbpool)
	ledgerService := ledger.NewService(ledgerRepo, ledgerCache)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	productsRepo := products.NewRepository(dbpool)
	productsService := products.NewService(productsRepo)
	productsHandler := products.NewHandler(logger, productsService)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportBuilder := report.NewBuilder(driversService, deliveriesService, expensesService, cashdeskService)
	reportHandler := report.NewHandler(logger, reportBuilder, reportClient, cfg.PublicBaseURL)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		DriversHandler:    driversHandler,
		ClientsHandler:    clientsHandler,
		DeliveriesHandler: deliveriesHandler,
		ExpensesHandler:   expensesHandler,
		CashdeskHandler:   cashdeskHandler,
		LedgerHandler:     ledgerHandler,
		ProductsHandler:   productsHandler,
		ReportHandler:     reportHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
