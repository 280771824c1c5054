package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ghi-core/backend/internal/storage"
	"github.com/ghi-core/backend/internal/workflow"
	"github.com/ghi-core/backend/pkg/logger"
)

type EscalationHandler struct {
	store  storage.Store
	ledger *workflow.EscalationLedger
}

func NewEscalationHandler(store storage.Store, ledger *workflow.EscalationLedger) *EscalationHandler {
	return &EscalationHandler{store: store, ledger: ledger}
}

func (h *EscalationHandler) ListEscalations(c *fiber.Ctx) error {
	escalations, err := h.store.ListEscalations(c.Context(), limitFrom(c))
	if err != nil {
		logger.Error("Failed to list escalations", zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"escalations": escalations, "count": len(escalations)})
}

func (h *EscalationHandler) GetEscalation(c *fiber.Ctx) error {
	escalation, err := h.store.GetEscalation(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(escalation)
}

func (h *EscalationHandler) Resolve(c *fiber.Ctx) error {
	var req struct {
		Decision string `json:"decision"`
		Notes    string `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Decision == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Decision is required",
		})
	}

	escalation, err := h.ledger.Resolve(c.Context(), c.Params("id"), req.Decision, req.Notes, actorFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(escalation)
}
