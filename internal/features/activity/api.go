package activity

import (
	"nextgen-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ActivityApi struct {
	Controller *ActivityController
}

func NewActivityApi(controller *ActivityController) *ActivityApi {
	return &ActivityApi{Controller: controller}
}

func (a *ActivityApi) Setup(app *fiber.App) {
	api := app.Group("/api/activities", middleware.AuthMiddleware())
	api.Get("/", a.Controller.Recent)
}
