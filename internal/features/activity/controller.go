package activity

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type ActivityController struct {
	Service ActivityService
}

func NewActivityController(service ActivityService) *ActivityController {
	return &ActivityController{Service: service}
}

func (c *ActivityController) Recent(ctx *fiber.Ctx) error {
	limit, _ := strconv.Atoi(ctx.Query("limit", "20"))

	activities, err := c.Service.Recent(ctx.UserContext(), limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load activities",
		})
	}
	return ctx.JSON(activities)
}
