package auth

import (
	"errors"

	"nextgen-crm/internal/features/access"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Service       AuthService
	AccessService access.AccessService
}

func NewAuthController(service AuthService, accessService access.AccessService) *AuthController {
	return &AuthController{Service: service, AccessService: accessService}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates the principal and resolves it to a CRM identity.
// Any access-class failure signs the principal out immediately: no
// token is returned and the reason is surfaced to the user.
func (c *AuthController) Login(ctx *fiber.Ctx) error {
	var req loginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Email == "" || req.Password == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please enter both email and password",
		})
	}

	principal, err := c.Service.SignIn(ctx.UserContext(), req.Email, req.Password)
	if err != nil {
		status := fiber.StatusUnauthorized
		if errors.Is(err, ErrTooManyAttempts) {
			status = fiber.StatusTooManyRequests
		}
		return ctx.Status(status).JSON(fiber.Map{
			"error": Translate(err),
		})
	}

	identity, err := c.AccessService.Resolve(ctx.UserContext(), principal.Email)
	if err != nil {
		if access.IsAccessError(err) {
			// Forced sign-out: the principal authenticated but may
			// not use the CRM.
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal Server Error",
		})
	}

	return ctx.JSON(fiber.Map{
		"token": principal.Token,
		"user":  identity,
	})
}
