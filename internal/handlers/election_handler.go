package handlers

import (
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/middleware"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListElections(c *fiber.Ctx) error {
	elections, err := h.svc.Elections.List(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(elections)
}

func (h *Handler) UpcomingElections(c *fiber.Ctx) error {
	elections, err := h.svc.Elections.Upcoming(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(elections)
}

func (h *Handler) CreateElection(c *fiber.Ctx) error {
	var request services.ElectionInput
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c)
	}

	election, err := h.svc.Elections.Create(c.UserContext(), request)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(election)
}

func (h *Handler) GetElection(c *fiber.Ctx) error {
	election, err := h.svc.Elections.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(election)
}

func (h *Handler) Vote(c *fiber.Ctx) error {
	var request struct {
		CandidateID string `json:"candidate_id" form:"candidate_id"`
	}
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c)
	}

	err := h.svc.Voting.CastVote(c.UserContext(), middleware.UserID(c), c.Params("id"), request.CandidateID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Vote cast successfully"})
}

func (h *Handler) VotingStatus(c *fiber.Ctx) error {
	voted, err := h.svc.Elections.HasVoted(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"has_voted": voted})
}

// Apply files a candidacy for the current user in an upcoming election.
func (h *Handler) Apply(c *fiber.Ctx) error {
	var request services.ApplicationInput
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c)
	}

	candidate, err := h.svc.Candidates.Apply(c.UserContext(), middleware.UserID(c), c.Params("id"), request)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Application submitted successfully",
		"candidate": candidate,
	})
}
