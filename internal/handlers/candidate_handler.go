package handlers

import (
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/services"
	"github.com/gofiber/fiber/v2"
)

// ListCandidates lists every candidate, or only those of ?constituency=<id>.
func (h *Handler) ListCandidates(c *fiber.Ctx) error {
	candidates, err := h.svc.Candidates.List(c.UserContext(), c.Query("constituency"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(candidates)
}

func (h *Handler) CreateCandidate(c *fiber.Ctx) error {
	var request services.CandidateInput
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c)
	}

	candidate, err := h.svc.Candidates.Create(c.UserContext(), request)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Candidate created successfully",
		"candidate": candidate,
	})
}
