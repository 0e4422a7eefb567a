package handler

import (
	"errors"
	"fmt"

	"event_access/constants"
	"event_access/database"
	"event_access/helper"
	"event_access/model"
	"event_access/store"
	"event_access/utils"

	"github.com/gofiber/fiber/v2"
)

// ValidateTicket: endpoint cho staff (qr / document / manual-id). Mọi quyết
// định trả 200 kèm result code ổn định; 4xx chỉ dành cho input hỏng / sai org.
func ValidateTicket(c *fiber.Ctx) error {
	claim := c.Locals("claim").(model.TokenClaim)
	input := c.Locals("input").(model.ValidateTicketInput)

	db := database.DB
	orgId, err := helper.ResolveOrganization(db, claim)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NO_ORGANIZATION, err)
	}

	result, err := coordinator.Validate(&claim.AccountId, orgId, input)
	if err != nil {
		if errors.Is(err, helper.ErrWrongOrganization) {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.WRONG_ORGANIZATION, err)
		}
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
	}

	if result.Ticket != nil {
		writeAudit(claim.AccountId, "validate_ticket", fmt.Sprintf("ticket:%d", result.Ticket.ID),
			map[string]interface{}{"method": input.Method, "result": result.Result}, c.IP())
		BroadcastCheckin(result.Ticket.EventId, result)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// ValidateQR: endpoint cho thiết bị quét tại cửa. Thiết bị bị khoá hoặc chưa
// đăng ký thì chặn ngay với invalid_device, trước mọi truy cập vé.
func ValidateQR(c *fiber.Ctx) error {
	input := c.Locals("input").(model.ValidateQRInput)
	deviceId, _ := c.Locals("deviceId").(string)

	db := database.DB
	devices := store.NewDeviceStore(db)

	device, err := devices.FindByDeviceId(deviceId)
	if err != nil || !device.Enabled {
		return c.Status(fiber.StatusOK).JSON(model.CheckinResult{
			Allowed: false,
			Result:  model.ResultInvalidDevice,
			Message: "Device not authorized",
		})
	}

	var event model.Event
	if err := db.Where("slug = ?", input.EventSlug).First(&event).Error; err != nil {
		return c.Status(fiber.StatusOK).JSON(model.CheckinResult{
			Allowed: false,
			Result:  model.ResultNotFound,
			Message: constants.EVENT_NOT_FOUND,
		})
	}

	result, err := coordinator.Validate(nil, device.OrganizationId, model.ValidateTicketInput{
		Method:    model.MethodQR,
		QRToken:   input.QRToken,
		EventId:   event.ID,
		DeviceId:  deviceId,
		RequestId: input.RequestId,
	})
	if err != nil {
		if errors.Is(err, helper.ErrWrongOrganization) {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.WRONG_ORGANIZATION, err)
		}
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
	}

	BroadcastCheckin(event.ID, result)

	return c.Status(fiber.StatusOK).JSON(result)
}

// GetCheckinHistory liệt kê audit trail check-in của một event (org-scoped)
func GetCheckinHistory(c *fiber.Ctx) error {
	claim, _, _ := helper.GetInfoAccountFromToken(c)
	if claim.AccountId == 0 {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", errors.New("no account"))
	}
	eventId := c.Locals("inputId").(int)

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

	pagination := new(model.Pagination)
	if err := c.QueryParser(pagination); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
	}

	entries, total, err := store.NewCheckinStore(db).ListByEvent(event.ID, pagination.Limit, pagination.Page)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	response := &model.ResponseCustom{
		Rows:       entries,
		Limit:      pagination.Limit,
		Page:       pagination.Page,
		TotalCount: total,
	}
	return utils.SuccessResponse(c, fiber.StatusOK, response)
}
