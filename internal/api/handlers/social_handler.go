package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ghi-core/backend/internal/storage"
	"github.com/ghi-core/backend/internal/workflow"
	"github.com/ghi-core/backend/pkg/logger"
)

type SocialHandler struct {
	store  storage.Store
	bridge *workflow.PromotionBridge
}

func NewSocialHandler(store storage.Store, bridge *workflow.PromotionBridge) *SocialHandler {
	return &SocialHandler{store: store, bridge: bridge}
}

func (h *SocialHandler) ListSocialSignals(c *fiber.Ctx) error {
	includeDismissed := c.QueryBool("include_dismissed", false)
	signals, err := h.store.ListSocialSignals(c.Context(), includeDismissed, limitFrom(c))
	if err != nil {
		logger.Error("Failed to list social signals", zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"social_signals": signals, "count": len(signals)})
}

func (h *SocialHandler) GetSocialSignal(c *fiber.Ctx) error {
	signal, err := h.store.GetSocialSignal(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(signal)
}

func (h *SocialHandler) Promote(c *fiber.Ctx) error {
	var req struct {
		Disease string `json:"disease"`
		Country string `json:"country"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Disease == "" || req.Country == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Disease and country are required",
		})
	}

	signalID, err := h.bridge.Promote(c.Context(), c.Params("id"), req.Disease, req.Country, actorFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"social_signal_id": c.Params("id"),
		"signal_id":        signalID,
	})
}

func (h *SocialHandler) Dismiss(c *fiber.Ctx) error {
	if err := h.bridge.Dismiss(c.Context(), c.Params("id"), actorFrom(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"social_signal_id": c.Params("id"),
		"status":           "dismissed",
	})
}
