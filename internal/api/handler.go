package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"stargazer/internal/scheduler"
	"stargazer/internal/services"
)

type Handler struct {
	forecaster *services.Forecaster
	store      *services.ReportStore
	scheduler  *scheduler.Scheduler
	logger     *zap.Logger
}

func NewHandler(forecaster *services.Forecaster, store *services.ReportStore, sched *scheduler.Scheduler, logger *zap.Logger) *Handler {
	return &Handler{
		forecaster: forecaster,
		store:      store,
		scheduler:  sched,
		logger:     logger,
	}
}

// GetForecast handles GET /api/v1/forecast
func (h *Handler) GetForecast(c *fiber.Ctx) error {
	report, ok := h.store.Latest()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No forecast evaluated yet",
		})
	}

	return c.JSON(report)
}

// GetMoon handles GET /api/v1/moon
func (h *Handler) GetMoon(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"days": h.forecaster.LunarForecast(),
	})
}

// GetSky handles GET /api/v1/sky
func (h *Handler) GetSky(c *fiber.Ctx) error {
	h.logger.Info("Fetching sky forecast")

	days, err := h.forecaster.SkyForecast(c.Context())
	if err != nil {
		h.logger.Error("Failed to fetch sky forecast", zap.Error(err))

		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Failed to fetch sky forecast",
			"details": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"days": days,
	})
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now(),
		"last_run":  h.scheduler.LastRun(),
		"next_run":  h.scheduler.NextRun(),
		"uptime":    time.Since(startTime).String(),
	})
}

var startTime = time.Now()
