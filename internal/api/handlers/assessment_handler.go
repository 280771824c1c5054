package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ghi-core/backend/internal/storage"
	"github.com/ghi-core/backend/internal/workflow"
	"github.com/ghi-core/backend/pkg/logger"
)

type AssessmentHandler struct {
	store    storage.Store
	workflow *workflow.AssessmentWorkflow
}

func NewAssessmentHandler(store storage.Store, wf *workflow.AssessmentWorkflow) *AssessmentHandler {
	return &AssessmentHandler{store: store, workflow: wf}
}

func (h *AssessmentHandler) ListAssessments(c *fiber.Ctx) error {
	if signalID := c.Query("signal_id"); signalID != "" {
		assessments, err := h.store.ListAssessmentsBySignal(c.Context(), signalID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"assessments": assessments, "count": len(assessments)})
	}

	assessments, err := h.store.ListAssessments(c.Context(), limitFrom(c))
	if err != nil {
		logger.Error("Failed to list assessments", zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"assessments": assessments, "count": len(assessments)})
}

func (h *AssessmentHandler) GetAssessment(c *fiber.Ctx) error {
	assessment, err := h.store.GetAssessment(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(assessment)
}

func (h *AssessmentHandler) Save(c *fiber.Ctx) error {
	var req struct {
		Q1      bool   `json:"ihr_question_1"`
		Q1Notes string `json:"ihr_question_1_notes"`
		Q2      bool   `json:"ihr_question_2"`
		Q2Notes string `json:"ihr_question_2_notes"`
		Q3      bool   `json:"ihr_question_3"`
		Q3Notes string `json:"ihr_question_3_notes"`
		Q4      bool   `json:"ihr_question_4"`
		Q4Notes string `json:"ihr_question_4_notes"`

		Hazard      string `json:"rra_hazard"`
		Exposure    string `json:"rra_exposure"`
		Context     string `json:"rra_context"`
		OverallRisk string `json:"rra_overall_risk"`
		Confidence  string `json:"rra_confidence"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	assessment, err := h.workflow.Save(c.Context(), c.Params("id"), workflow.Answers{
		Q1: req.Q1, Q1Notes: req.Q1Notes,
		Q2: req.Q2, Q2Notes: req.Q2Notes,
		Q3: req.Q3, Q3Notes: req.Q3Notes,
		Q4: req.Q4, Q4Notes: req.Q4Notes,
		Hazard:      req.Hazard,
		Exposure:    req.Exposure,
		Context:     req.Context,
		OverallRisk: req.OverallRisk,
		Confidence:  req.Confidence,
	}, actorFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(assessment)
}

func (h *AssessmentHandler) Escalate(c *fiber.Ctx) error {
	var req struct {
		Reason   string `json:"reason"`
		Priority string `json:"priority"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Escalation reason is required",
		})
	}
	if req.Priority == "" {
		req.Priority = "High"
	}

	escalation, err := h.workflow.Escalate(c.Context(), c.Params("id"), req.Reason, req.Priority, actorFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(escalation)
}

func (h *AssessmentHandler) Complete(c *fiber.Ctx) error {
	var req struct {
		OutcomeDecision string `json:"outcome_decision"`
		Justification   string `json:"justification"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.OutcomeDecision == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Outcome decision is required",
		})
	}

	if err := h.workflow.Complete(c.Context(), c.Params("id"), req.OutcomeDecision, req.Justification, actorFrom(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"assessment_id": c.Params("id"),
		"status":        "completed",
	})
}
