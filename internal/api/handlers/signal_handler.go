package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ghi-core/backend/internal/storage"
	"github.com/ghi-core/backend/internal/workflow"
	"github.com/ghi-core/backend/pkg/logger"
)

type SignalHandler struct {
	store storage.Store
	gate  *workflow.TriageGate
}

func NewSignalHandler(store storage.Store, gate *workflow.TriageGate) *SignalHandler {
	return &SignalHandler{store: store, gate: gate}
}

func (h *SignalHandler) ListSignals(c *fiber.Ctx) error {
	signals, err := h.store.ListSignals(c.Context(), limitFrom(c))
	if err != nil {
		logger.Error("Failed to list signals", zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"signals": signals,
		"count":   len(signals),
	})
}

func (h *SignalHandler) GetSignal(c *fiber.Ctx) error {
	signal, err := h.store.GetSignal(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(signal)
}

func (h *SignalHandler) Accept(c *fiber.Ctx) error {
	var req struct {
		Notes string `json:"notes"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	assessment, err := h.gate.Accept(c.Context(), c.Params("id"), req.Notes, actorFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"signal_id":  c.Params("id"),
		"assessment": assessment,
	})
}

func (h *SignalHandler) Reject(c *fiber.Ctx) error {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Rejection reason is required",
		})
	}

	if err := h.gate.Reject(c.Context(), c.Params("id"), req.Reason, actorFrom(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"signal_id": c.Params("id"),
		"status":    "rejected",
	})
}
