package validate

import (
	"errors"
	"strconv"

	"event_access/constants"
	"event_access/database"
	"event_access/helper"
	"event_access/model"
	"event_access/utils"

	"github.com/gofiber/fiber/v2"
)

// CheckinFeed gác feed websocket: principal phải thuộc organization của event
// trước khi được subscribe, feed mang PII của người mua vé
func CheckinFeed() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claim, _, _ := helper.GetInfoAccountFromToken(c)
		if claim.AccountId == 0 {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", errors.New("no account"))
		}

		eventId, err := strconv.Atoi(c.Params("id"))
		if err != nil || eventId <= 0 {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, errors.New("params invalid"))
		}

		db := database.DB
		orgId, err := helper.ResolveOrganization(db, claim)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NO_ORGANIZATION, err)
		}

		var event model.Event
		if err := db.First(&event, eventId).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, constants.EVENT_NOT_FOUND, err)
		}
		if event.OrganizationId != orgId {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.WRONG_ORGANIZATION, errors.New("event org mismatch"))
		}

		c.Locals("feedEventId", event.ID)
		return c.Next()
	}
}
