package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ghi-core/backend/internal/auth"
	"github.com/ghi-core/backend/internal/storage"
	"github.com/ghi-core/backend/internal/workflow"
)

// Identity headers set by the authenticating proxy. Token issuance and
// verification happen upstream; this layer only consumes the result.
const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

func actorFrom(c *fiber.Ctx) auth.Actor {
	return auth.Actor{
		ID:   c.Get(headerUserID),
		Role: c.Get(headerUserRole, auth.RoleViewer),
	}
}

// fail maps workflow and storage errors onto HTTP statuses. The error text
// names the failed precondition, so it is returned to the caller as-is.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, workflow.ErrPermissionDenied):
		status = fiber.StatusForbidden
	case errors.Is(err, workflow.ErrPreconditionFailed):
		status = fiber.StatusPreconditionFailed
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrAlreadyPromoted),
		errors.Is(err, workflow.ErrEscalationPending),
		errors.Is(err, storage.ErrDuplicate):
		status = fiber.StatusConflict
	}

	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = "Internal server error"
	}
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func limitFrom(c *fiber.Ctx) int {
	limit := c.QueryInt("limit", 100)
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return limit
}
