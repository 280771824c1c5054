package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ghi-core/backend/internal/storage"
	"github.com/ghi-core/backend/pkg/logger"
)

// Runner is a collector that can execute one cycle on demand.
type Runner interface {
	RunOnce(ctx context.Context) int
}

// CollectorHandler exposes manual collection triggers and the listener
// reference data (monitored accounts and keywords).
type CollectorHandler struct {
	store  storage.Store
	beacon Runner
	social Runner
}

func NewCollectorHandler(store storage.Store, beacon, social Runner) *CollectorHandler {
	return &CollectorHandler{store: store, beacon: beacon, social: social}
}

func (h *CollectorHandler) CollectBeacon(c *fiber.Ctx) error {
	if h.beacon == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Beacon collector is disabled",
		})
	}
	inserted := h.beacon.RunOnce(c.Context())
	logger.Info("Manual beacon collection triggered", zap.Int("inserted", inserted))
	return c.JSON(fiber.Map{"source": "beacon", "inserted": inserted})
}

func (h *CollectorHandler) CollectSocial(c *fiber.Ctx) error {
	if h.social == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Social listener is disabled",
		})
	}
	inserted := h.social.RunOnce(c.Context())
	logger.Info("Manual social collection triggered", zap.Int("inserted", inserted))
	return c.JSON(fiber.Map{"source": "social", "inserted": inserted})
}

func (h *CollectorHandler) ListMonitoredAccounts(c *fiber.Ctx) error {
	accounts, err := h.store.ListMonitoredAccounts(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"accounts": accounts, "count": len(accounts)})
}

func (h *CollectorHandler) ListListenerKeywords(c *fiber.Ctx) error {
	keywords, err := h.store.ListListenerKeywords(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"keywords": keywords, "count": len(keywords)})
}
