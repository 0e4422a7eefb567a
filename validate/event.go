package validate

import (
	"event_access/constants"
	"event_access/helper"
	"event_access/model"
	"event_access/utils"
	"errors"

	"github.com/gofiber/fiber/v2"
)

func CreateEvent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claim, _, _ := helper.GetInfoAccountFromToken(c)
		if claim.AccountId == 0 {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", errors.New("no account"))
		}

		var input model.CreateEventInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
		}

		c.Locals("claim", claim)
		c.Locals("input", input)
		return c.Next()
	}
}

func AssignStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claim, isAdmin, _ := helper.GetInfoAccountFromToken(c)
		if !isAdmin {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_PERMISSION, errors.New("only admin can assign staff"))
		}

		var input model.AssignStaffInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
		}

		c.Locals("claim", claim)
		c.Locals("input", input)
		return c.Next()
	}
}
