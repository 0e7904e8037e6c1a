package access

import (
	"nextgen-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AccessApi struct {
	Controller *AccessController
}

func NewAccessApi(controller *AccessController) *AccessApi {
	return &AccessApi{Controller: controller}
}

func (a *AccessApi) Setup(app *fiber.App) {
	api := app.Group("/api", middleware.AuthMiddleware())
	api.Get("/me", a.Controller.Me)
	api.Put("/roles/:name/permissions", a.Controller.UpdateRolePermissions)
}
