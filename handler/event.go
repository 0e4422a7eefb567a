package handler

import (
	"errors"
	"fmt"

	"event_access/constants"
	"event_access/database"
	"event_access/helper"
	"event_access/model"
	"event_access/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func CreateEvent(c *fiber.Ctx) error {
	claim := c.Locals("claim").(model.TokenClaim)
	input := c.Locals("input").(model.CreateEventInput)

	db := database.DB
	orgId, err := helper.ResolveOrganization(db, claim)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NO_ORGANIZATION, err)
	}

	event := model.Event{
		Name:           input.Name,
		Slug:           helper.GenerateUniqueEventSlug(db, input.Name),
		Venue:          input.Venue,
		Address:        input.Address,
		City:           input.City,
		Date:           input.Date,
		OrganizationId: orgId,
	}
	if err := db.Create(&event).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create event", err)
	}

	writeAudit(claim.AccountId, "create_event", fmt.Sprintf("event:%d", event.ID),
		map[string]interface{}{"slug": event.Slug}, c.IP())

	return utils.SuccessResponse(c, fiber.StatusOK, event)
}

func GetEvents(c *fiber.Ctx) error {
	claim, _, _ := helper.GetInfoAccountFromToken(c)
	if claim.AccountId == 0 {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", errors.New("no account"))
	}

	db := database.DB
	orgId, err := helper.ResolveOrganization(db, claim)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NO_ORGANIZATION, err)
	}

	var events []model.Event
	if err := db.Where("organization_id = ?", orgId).Order("date desc").Find(&events).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, events)
}

// AssignStaff gán (hoặc cập nhật) nhân sự vào event kèm quota vé mời
func AssignStaff(c *fiber.Ctx) error {
	claim := c.Locals("claim").(model.TokenClaim)
	input := c.Locals("input").(model.AssignStaffInput)

	db := database.DB
	orgId, err := helper.ResolveOrganization(db, claim)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NO_ORGANIZATION, err)
	}

	var event model.Event
	if err := db.First(&event, input.EventId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.EVENT_NOT_FOUND, err)
	}
	if event.OrganizationId != orgId {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.WRONG_ORGANIZATION, errors.New("event org mismatch"))
	}

	entry := model.EventStaff{EventId: input.EventId, UserId: input.UserId}
	err = db.Where(model.EventStaff{EventId: input.EventId, UserId: input.UserId}).
		FirstOrCreate(&entry).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	// quota_limit có thể hạ xuống dưới quota_used đã tiêu — không reset used
	if err := db.Model(&model.EventStaff{}).Where("id = ?", entry.ID).
		UpdateColumn("quota_limit", input.QuotaLimit).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	writeAudit(claim.AccountId, "assign_staff", fmt.Sprintf("event:%d", input.EventId),
		map[string]interface{}{"user_id": input.UserId, "quota_limit": input.QuotaLimit}, c.IP())

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"success": true})
}

// GetTeamMembers liệt kê nhân sự của một event kèm quota
func GetTeamMembers(c *fiber.Ctx) error {
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

	var members []model.EventStaff
	if err := db.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "username", "email", "role")
	}).Where("event_id = ?", event.ID).Find(&members).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, members)
}
