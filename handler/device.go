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

func resolveCallerOrg(c *fiber.Ctx) (model.TokenClaim, uint, error) {
	claim, _, _ := helper.GetInfoAccountFromToken(c)
	if claim.AccountId == 0 {
		return claim, 0, errors.New("no account")
	}
	orgId, err := helper.ResolveOrganization(database.DB, claim)
	if err != nil {
		return claim, 0, err
	}
	return claim, orgId, nil
}

func GetDevices(c *fiber.Ctx) error {
	_, orgId, err := resolveCallerOrg(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NO_ORGANIZATION, err)
	}

	devices, err := store.NewDeviceStore(database.DB).ListByOrganization(orgId)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, devices)
}

func CreateDevice(c *fiber.Ctx) error {
	claim, orgId, err := resolveCallerOrg(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NO_ORGANIZATION, err)
	}
	input := c.Locals("input").(model.CreateDeviceInput)

	pinHash, err := helper.HashPassword(input.Pin)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	device := model.Device{
		DeviceId:       input.DeviceId,
		Alias:          input.Alias,
		PinHash:        pinHash,
		Enabled:        true,
		OrganizationId: orgId,
	}
	if err := store.NewDeviceStore(database.DB).Create(&device); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to create device", err)
	}

	writeAudit(claim.AccountId, "create_device", fmt.Sprintf("device:%s", device.DeviceId), nil, c.IP())

	return utils.SuccessResponse(c, fiber.StatusOK, device)
}

func UpdateDevice(c *fiber.Ctx) error {
	claim, orgId, err := resolveCallerOrg(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NO_ORGANIZATION, err)
	}
	input := c.Locals("input").(model.UpdateDeviceInput)

	updates := map[string]interface{}{}
	if input.Enabled != nil {
		updates["enabled"] = *input.Enabled
	}
	if input.Alias != nil {
		updates["alias"] = *input.Alias
	}
	if len(updates) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, errors.New("nothing to update"))
	}

	if err := store.NewDeviceStore(database.DB).Update(orgId, input.DeviceId, updates); err != nil {
		if errors.Is(err, store.ErrDeviceNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, constants.DEVICE_NOT_FOUND, err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	writeAudit(claim.AccountId, "update_device", fmt.Sprintf("device:%s", input.DeviceId), nil, c.IP())

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"success": true})
}

func DeleteDevice(c *fiber.Ctx) error {
	claim, orgId, err := resolveCallerOrg(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NO_ORGANIZATION, err)
	}
	deviceId := c.Params("deviceId")
	if deviceId == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, errors.New("missing device id"))
	}

	if err := store.NewDeviceStore(database.DB).Delete(orgId, deviceId); err != nil {
		if errors.Is(err, store.ErrDeviceNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, constants.DEVICE_NOT_FOUND, err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	writeAudit(claim.AccountId, "delete_device", fmt.Sprintf("device:%s", deviceId), nil, c.IP())

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"success": true})
}

// LoginDevice: login bằng alias + PIN. Mọi nhánh fail trả cùng một message
// chung, không tiết lộ alias tồn tại hay không.
func LoginDevice(c *fiber.Ctx) error {
	input := c.Locals("input").(model.DeviceLoginInput)

	devices := store.NewDeviceStore(database.DB)
	device, err := devices.FindByAlias(input.Alias)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.INVALID_CREDENTIALS, errors.New("unknown alias"))
	}

	if !device.Enabled {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Device is disabled", errors.New("device disabled"))
	}

	if !helper.CheckPasswordHash(input.Pin, device.PinHash) {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.INVALID_CREDENTIALS, errors.New("pin mismatch"))
	}

	if err := devices.TouchLastActive(device.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	token, err := helper.GenerateDeviceToken(device)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"token": token,
		"device": fiber.Map{
			"id":    device.DeviceId,
			"alias": device.Alias,
		},
	})
}
