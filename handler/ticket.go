package handler

import (
	"errors"
	"fmt"
	"log"
	"time"

	"event_access/constants"
	"event_access/database"
	"event_access/helper"
	"event_access/model"
	"event_access/store"
	"event_access/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// CreateTicket phát hành vé: giữ quota (nếu là vé mời của rrpp/staff), ký
// token, insert row, gửi email kèm QR. Email lỗi không rollback vé.
func CreateTicket(c *fiber.Ctx) error {
	claim := c.Locals("claim").(model.TokenClaim)
	input := c.Locals("input").(model.CreateTicketInput)

	db := database.DB
	isAdmin := claim.Role == constants.ROLE_ADMIN
	isInvitation := input.Type == model.TicketInvitation

	var event model.Event
	if err := db.Where("slug = ?", input.EventSlug).First(&event).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.EVENT_NOT_FOUND, err)
	}

	orgId, err := helper.ResolveOrganization(db, claim)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NO_ORGANIZATION, err)
	}
	if event.OrganizationId != orgId {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.WRONG_ORGANIZATION, errors.New("event org mismatch"))
	}

	// Vé mời của non-admin ăn vào quota, reserve trước khi tạo vé
	reserved := false
	ledger := store.NewQuotaLedger(db)
	if isInvitation && !isAdmin {
		if err := ledger.Reserve(event.ID, claim.AccountId); err != nil {
			if errors.Is(err, store.ErrQuotaExhausted) {
				return utils.ErrorResponse(c, fiber.StatusConflict, constants.QUOTA_EXHAUSTED, err)
			}
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
		}
		reserved = true
	}

	price := input.Price
	if isInvitation {
		price = 0
	}

	// Client không gửi requestId thì server tự sinh, mọi vé đều trace được
	requestId := input.RequestId
	if requestId == "" {
		requestId = uuid.NewString()
	}

	token, err := signer.Mint(utils.QRPayload{
		EventId:   event.ID,
		Type:      input.Type,
		Email:     input.BuyerEmail,
		Timestamp: time.Now().UnixMilli(),
		Issuer:    claim.AccountId,
	})
	if err != nil {
		if reserved {
			ledger.Release(event.ID, claim.AccountId)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	// Link loại vé nếu event có định nghĩa (mang theo valid_until)
	var ticketTypeId *uint
	var ticketType model.TicketType
	if err := db.Where("event_id = ? AND name = ?", event.ID, input.Type).First(&ticketType).Error; err == nil {
		ticketTypeId = &ticketType.ID
	}

	tickets := store.NewTicketStore(db)
	ticket, err := tickets.Create(&model.Ticket{
		EventId:      event.ID,
		TicketTypeId: ticketTypeId,
		Type:         input.Type,
		Price:        price,
		BuyerName:    input.BuyerName,
		BuyerEmail:   input.BuyerEmail,
		BuyerPhone:   input.BuyerPhone,
		BuyerDoc:     input.BuyerDoc,
		QRToken:      token,
		Status:       model.TicketValid,
		CreatedBy:    claim.AccountId,
		RequestId:    utils.StringPtr(requestId),
	})
	if err != nil {
		if reserved {
			ledger.Release(event.ID, claim.AccountId)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create ticket", err)
	}

	writeAudit(claim.AccountId, "create_ticket", fmt.Sprintf("ticket:%d", ticket.ID),
		map[string]interface{}{"type": input.Type, "event_slug": input.EventSlug, "buyer_email": input.BuyerEmail}, c.IP())

	sendTicketMail(ticket, &event)

	return utils.SuccessResponse(c, fiber.StatusOK, ticket)
}

func sendTicketMail(ticket *model.Ticket, event *model.Event) {
	qrBytes, err := utils.GenerateQRCode(ticket.QRToken, 256)
	if err != nil {
		log.Printf("failed to render QR for ticket %d: %v", ticket.ID, err)
		return
	}

	data := utils.TicketEmailData{
		BuyerName: ticket.BuyerName,
		EventName: event.Name,
		Venue:     event.Venue,
		Address:   event.Address,
		City:      event.City,
		Date:      event.Date.Format("Monday, 2 January 2006"),
		Time:      event.Date.Format("15:04"),
		Type:      ticket.Type,
		TicketId:  ticket.ID,
	}

	ticketId := ticket.ID
	mailer.SendTicketEmail(ticket.BuyerEmail, data, qrBytes, func() {
		if err := store.NewTicketStore(database.DB).MarkEmailSent(ticketId); err != nil {
			log.Printf("failed to mark email sent for ticket %d: %v", ticketId, err)
		}
	})
}

// VoidTicket huỷ vé — terminal từ mọi trạng thái, void lại lần nữa là no-op
func VoidTicket(c *fiber.Ctx) error {
	claim := c.Locals("claim").(model.TokenClaim)
	input := c.Locals("input").(model.VoidTicketInput)

	db := database.DB
	tickets := store.NewTicketStore(db)

	ticket, err := tickets.FindByID(input.TicketId)
	if errors.Is(err, store.ErrTicketNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.TICKET_NOT_FOUND, err)
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	orgId, err := helper.ResolveOrganization(db, claim)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NO_ORGANIZATION, err)
	}
	var event model.Event
	if err := db.First(&event, ticket.EventId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	if event.OrganizationId != orgId {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.WRONG_ORGANIZATION, errors.New("ticket org mismatch"))
	}

	reason := fmt.Sprintf("Voided by %s (%s)", claim.Role, claim.Username)
	if input.Reason != "" {
		reason = fmt.Sprintf("%s: %s", reason, input.Reason)
	}

	voided, err := tickets.Void(ticket.ID, reason)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	writeAudit(claim.AccountId, "void_ticket", fmt.Sprintf("ticket:%d", ticket.ID),
		map[string]interface{}{"reason": reason}, c.IP())

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"message": "Ticket voided successfully",
		"ticket":  voided,
	})
}

func GetTickets(c *fiber.Ctx) error {
	claim, _, _ := helper.GetInfoAccountFromToken(c)
	if claim.AccountId == 0 {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", errors.New("no account"))
	}

	db := database.DB
	orgId, err := helper.ResolveOrganization(db, claim)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NO_ORGANIZATION, err)
	}

	filterInput := new(model.FilterTicketInput)
	if err := c.QueryParser(filterInput); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
	}

	condition := db.Model(&model.Ticket{}).
		Joins("JOIN events ON events.id = tickets.event_id").
		Where("events.organization_id = ?", orgId)

	if filterInput.EventId > 0 {
		condition = condition.Where("tickets.event_id = ?", filterInput.EventId)
	}
	if filterInput.Status != "" {
		condition = condition.Where("tickets.status = ?", filterInput.Status)
	}

	var totalCount int64
	condition.Count(&totalCount)

	var tickets []model.Ticket
	condition = utils.ApplyPagination(condition, filterInput.Limit, filterInput.Page)
	if err := condition.Order("tickets.created_at desc").Find(&tickets).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	var rows []model.TicketSummary
	if err := copier.Copy(&rows, &tickets); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	response := &model.ResponseCustom{
		Rows:       rows,
		Limit:      filterInput.Limit,
		Page:       filterInput.Page,
		TotalCount: totalCount,
	}
	return utils.SuccessResponse(c, fiber.StatusOK, response)
}

func GetTicketById(c *fiber.Ctx) error {
	claim, _, _ := helper.GetInfoAccountFromToken(c)
	if claim.AccountId == 0 {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", errors.New("no account"))
	}
	ticketId := c.Locals("inputId").(int)

	db := database.DB
	ticket, _, status, err := findOrgTicket(db, claim, uint(ticketId))
	if err != nil {
		return utils.ErrorResponse(c, status, err.Error(), err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, ticket)
}

// ResendTicketEmail gửi lại email vé kèm QR
func ResendTicketEmail(c *fiber.Ctx) error {
	claim, _, _ := helper.GetInfoAccountFromToken(c)
	if claim.AccountId == 0 {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", errors.New("no account"))
	}
	ticketId := c.Locals("inputId").(int)

	db := database.DB
	ticket, event, status, err := findOrgTicket(db, claim, uint(ticketId))
	if err != nil {
		return utils.ErrorResponse(c, status, err.Error(), err)
	}

	sendTicketMail(ticket, event)

	writeAudit(claim.AccountId, "resend_ticket_email", fmt.Sprintf("ticket:%d", ticket.ID),
		map[string]interface{}{"buyer_email": ticket.BuyerEmail}, c.IP())

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"message": "Ticket email queued",
	})
}

// findOrgTicket load vé + event và ép org check, trả status HTTP phù hợp
func findOrgTicket(db *gorm.DB, claim model.TokenClaim, ticketId uint) (*model.Ticket, *model.Event, int, error) {
	ticket, err := store.NewTicketStore(db).FindByID(ticketId)
	if errors.Is(err, store.ErrTicketNotFound) {
		return nil, nil, fiber.StatusNotFound, errors.New(constants.TICKET_NOT_FOUND)
	}
	if err != nil {
		return nil, nil, fiber.StatusInternalServerError, err
	}

	orgId, err := helper.ResolveOrganization(db, claim)
	if err != nil {
		return nil, nil, fiber.StatusForbidden, helper.ErrNoOrganization
	}

	var event model.Event
	if err := db.First(&event, ticket.EventId).Error; err != nil {
		return nil, nil, fiber.StatusInternalServerError, err
	}
	if event.OrganizationId != orgId {
		return nil, nil, fiber.StatusForbidden, errors.New(constants.WRONG_ORGANIZATION)
	}
	return ticket, &event, fiber.StatusOK, nil
}
