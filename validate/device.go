package validate

import (
	"event_access/constants"
	"event_access/model"
	"event_access/utils"

	"github.com/gofiber/fiber/v2"
)

func CreateDevice() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.CreateDeviceInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
		}

		c.Locals("input", input)
		return c.Next()
	}
}

func UpdateDevice() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.UpdateDeviceInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
		}

		c.Locals("input", input)
		return c.Next()
	}
}

func DeviceLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.DeviceLoginInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
		}

		c.Locals("input", input)
		return c.Next()
	}
}
