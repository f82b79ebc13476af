package handlers

import (
	"time"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/middleware"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/services"
	"github.com/gofiber/fiber/v2"
)

// idProofField is the multipart field holding an uploaded ID document.
const idProofField = "id_proof_file"

// Register accepts either a JSON body or a multipart form with an optional
// ID document upload.
func (h *Handler) Register(c *fiber.Ctx) error {
	var request services.RegisterInput
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c)
	}

	if form, err := c.MultipartForm(); err == nil {
		if files := form.File[idProofField]; len(files) > 0 {
			fh := files[0]
			f, err := fh.Open()
			if err != nil {
				return fail(c, err)
			}
			defer f.Close()
			request.Document = &services.Document{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get(fiber.HeaderContentType),
				Size:        fh.Size,
				Body:        f,
			}
		}
	}

	user, err := h.svc.Auth.Register(c.UserContext(), request)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user_id": user.ID,
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var request struct {
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c)
	}

	token, user, err := h.svc.Auth.Login(c.UserContext(), request.Email, request.Password)
	if err != nil {
		return fail(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.tokens.TTL()),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Session returns the claims of the current session token.
func (h *Handler) Session(c *fiber.Ctx) error {
	return c.JSON(middleware.Claims(c))
}
