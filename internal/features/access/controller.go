package access

import (
	"nextgen-crm/internal/features/permission"
	"nextgen-crm/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type AccessController struct {
	Service AccessService
}

func NewAccessController(service AccessService) *AccessController {
	return &AccessController{Service: service}
}

// Me resolves the caller's current identity from the token claims. The
// client uses it to rehydrate after reconnecting.
func (c *AccessController) Me(ctx *fiber.Ctx) error {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	identity, err := c.Service.Resolve(ctx.UserContext(), claims.Email)
	if err != nil {
		if IsAccessError(err) {
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal Server Error",
		})
	}

	return ctx.JSON(identity)
}

// UpdateRolePermissions overwrites a role's capability map. Admin only;
// every open session holding the role picks the change up live through
// its role-definition watch.
func (c *AccessController) UpdateRolePermissions(ctx *fiber.Ctx) error {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	actor, err := c.Service.Resolve(ctx.UserContext(), claims.Email)
	if err != nil {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden",
		})
	}
	if !permission.IsAdmin(actor.Role) {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only admins can edit role permissions",
		})
	}

	name := ctx.Params("name")
	def, err := c.Service.Repository().FindRoleByName(ctx.UserContext(), name)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal Server Error",
		})
	}
	if def == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Role not found",
		})
	}

	var body struct {
		Permissions permission.Set `json:"permissions"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	def.Permissions = body.Permissions
	if err := c.Service.Repository().UpdateRolePermissions(ctx.UserContext(), def.ID, def); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update role",
		})
	}

	return ctx.JSON(def)
}
