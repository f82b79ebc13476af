package handlers

import (
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/services"
	"github.com/gofiber/fiber/v2"
)

// List all users
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := h.svc.Users.List(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(users)
}

// Get user details by ID
func (h *Handler) GetUser(c *fiber.Ctx) error {
	user, err := h.svc.Users.Profile(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// VerifyUser sets or clears the identity verification flag.
func (h *Handler) VerifyUser(c *fiber.Ctx) error {
	var request struct {
		IsVerified *bool `json:"is_verified"`
	}
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c)
	}
	if request.IsVerified == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "is_verified is required"})
	}

	user, err := h.svc.Users.SetVerified(c.UserContext(), c.Params("id"), *request.IsVerified)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// IDProofURL returns a short-lived download link for the user's ID document.
func (h *Handler) IDProofURL(c *fiber.Ctx) error {
	url, err := h.svc.Users.ProofURL(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"url":        url,
		"expires_in": int(services.ProofURLExpiry.Seconds()),
	})
}

func (h *Handler) SyncElectionStatuses(c *fiber.Ctx) error {
	n, err := h.svc.Elections.SyncStatuses(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

func (h *Handler) AuditElection(c *fiber.Ctx) error {
	audit, err := h.svc.Elections.Audit(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(audit)
}

func (h *Handler) AuditElections(c *fiber.Ctx) error {
	audits, err := h.svc.Elections.AuditAll(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(audits)
}
