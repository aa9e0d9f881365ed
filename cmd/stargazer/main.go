package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"stargazer/internal/api"
	"stargazer/internal/config"
	"stargazer/internal/notify"
	"stargazer/internal/scheduler"
	"stargazer/internal/services"
	"stargazer/pkg/client"
)

func main() {
	daemon := flag.Bool("daemon", false, "run the cron scheduler and HTTP API instead of a single evaluation")
	flag.Parse()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting Stargazer")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	clientConfig := client.ClientConfig{
		Timeout:        10 * time.Second,
		MaxRetries:     cfg.Retry.MaxRetries,
		RetryDelay:     cfg.Retry.Delay,
		Multiplier:     cfg.Retry.Multiplier,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}

	// Initialize components
	weather := client.NewTomorrowClient(cfg.Weather.APIKey, clientConfig, logger)
	forecaster := services.NewForecaster(cfg, weather, logger)
	pusher := notify.NewPushover(cfg.Pushover.Token, cfg.Pushover.User, clientConfig, logger)
	store := services.NewReportStore()

	sched := scheduler.NewScheduler(forecaster, pusher, store, cfg.Scheduler.CronSchedule, logger)

	if !*daemon {
		runOnce(sched, logger)
		return
	}

	// Daemon mode: cron evaluation plus the HTTP API
	if err := sched.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: errorHandler,
	})

	handler := api.NewHandler(forecaster, store, sched, logger)
	api.SetupRoutes(app, handler, logger)

	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sched.Stop()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func runOnce(sched *scheduler.Scheduler, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := sched.Run(ctx); err != nil {
		logger.Fatal("Forecast evaluation failed", zap.Error(err))
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	// Default to 500 status code
	code := fiber.StatusInternalServerError

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   err.Error(),
		"success": false,
	})
}
