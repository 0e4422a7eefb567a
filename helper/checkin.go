package helper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"event_access/constants"
	"event_access/model"
	"event_access/store"
	"event_access/utils"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var ErrWrongOrganization = errors.New("ticket does not belong to your organization")

const replayKeyTTL = 24 * time.Hour

// CheckinCoordinator hội tụ ba đường validate (qr / document / manual-id)
// về cùng một org check, cùng một expiry check và cùng một TicketStore.Redeem.
// Ba method chỉ khác nhau ở cách resolve ra vé.
type CheckinCoordinator struct {
	db       *gorm.DB
	signer   *utils.TokenSigner
	tickets  *store.TicketStore
	checkins *store.CheckinStore
	devices  *store.DeviceStore
	redis    *redis.Client
}

func NewCheckinCoordinator(db *gorm.DB, signer *utils.TokenSigner, rdb *redis.Client) *CheckinCoordinator {
	return &CheckinCoordinator{
		db:       db,
		signer:   signer,
		tickets:  store.NewTicketStore(db),
		checkins: store.NewCheckinStore(db),
		devices:  store.NewDeviceStore(db),
		redis:    rdb,
	}
}

// Validate trả về CheckinResult cho mọi quyết định đã phán xử được (kể cả từ
// chối), còn error chỉ dành cho input hỏng (400, không side effect) hoặc sai
// organization (403). Mọi attempt đã phán xử ghi đúng một row checkins.
func (co *CheckinCoordinator) Validate(operatorId *uint, orgId uint, input model.ValidateTicketInput) (model.CheckinResult, error) {
	if cached, ok := co.replayLookup(input.RequestId); ok {
		return cached, nil
	}

	// Mọi attempt phải gắn vào một event, kể cả khi không resolve được vé —
	// nếu không thì row checkins không ghi được
	if input.EventId == 0 {
		return model.CheckinResult{}, errors.New("event id missing")
	}

	deviceRef := co.resolveDevice(input.DeviceId)

	var ticket *model.Ticket
	switch input.Method {
	case model.MethodQR:
		if input.QRToken == "" {
			return model.CheckinResult{}, errors.New("qr token missing")
		}

		payload, err := co.signer.Verify(input.QRToken)
		if errors.Is(err, utils.ErrInvalidToken) {
			return co.reject(nil, input.EventId, deviceRef, operatorId, input,
				model.ResultInvalidToken, "Malformed QR code"), nil
		}
		if errors.Is(err, utils.ErrInvalidSignature) {
			return co.reject(nil, input.EventId, deviceRef, operatorId, input,
				model.ResultInvalidSignature, "Invalid digital signature"), nil
		}
		if err != nil {
			return model.CheckinResult{}, err
		}

		ticket, err = co.tickets.FindByToken(input.QRToken)
		if errors.Is(err, store.ErrTicketNotFound) {
			return co.reject(nil, input.EventId, deviceRef, operatorId, input,
				model.ResultNotFound, constants.TICKET_NOT_FOUND), nil
		}
		if err != nil {
			return model.CheckinResult{}, err
		}

		if input.EventId != 0 && payload.EventId != input.EventId {
			return co.reject(&ticket.ID, input.EventId, deviceRef, operatorId, input,
				model.ResultWrongEvent, "Ticket is for another event"), nil
		}

	case model.MethodDocument:
		if input.BuyerDoc == "" || input.EventId == 0 {
			return model.CheckinResult{}, errors.New("document or event id missing")
		}
		if input.Notes == "" {
			return model.CheckinResult{}, errors.New(constants.NOTES_REQUIRED)
		}

		var err error
		ticket, err = co.tickets.FindByDocument(input.BuyerDoc, input.EventId)
		if errors.Is(err, store.ErrTicketNotFound) {
			return co.reject(nil, input.EventId, deviceRef, operatorId, input,
				model.ResultNotFound, "Ticket not found or already used"), nil
		}
		if err != nil {
			return model.CheckinResult{}, err
		}

	case model.MethodManualID:
		if input.TicketId == 0 {
			return model.CheckinResult{}, errors.New("ticket id missing")
		}
		if input.Notes == "" {
			return model.CheckinResult{}, errors.New(constants.NOTES_REQUIRED)
		}

		var err error
		ticket, err = co.tickets.FindByID(input.TicketId)
		if errors.Is(err, store.ErrTicketNotFound) {
			return co.reject(nil, input.EventId, deviceRef, operatorId, input,
				model.ResultNotFound, constants.TICKET_NOT_FOUND), nil
		}
		if err != nil {
			return model.CheckinResult{}, err
		}

	default:
		return model.CheckinResult{}, errors.New("invalid validation method")
	}

	// Org check: mismatch là lỗi 403 cứng, không phải result code cho scanner
	var event model.Event
	if err := co.db.First(&event, ticket.EventId).Error; err != nil {
		return model.CheckinResult{}, err
	}
	if event.OrganizationId != orgId {
		return model.CheckinResult{}, ErrWrongOrganization
	}

	// Expiry áp cho cả ba method, độc lập với status
	if ticket.TicketType != nil && ticket.TicketType.ValidUntil != nil &&
		time.Now().After(*ticket.TicketType.ValidUntil) {
		msg := fmt.Sprintf("No longer valid, only valid until %s",
			ticket.TicketType.ValidUntil.Format("15:04"))
		return co.rejectTicket(ticket, deviceRef, operatorId, input, model.ResultExpired, msg), nil
	}

	redeemed, won, err := co.tickets.Redeem(ticket.ID)
	if err != nil {
		return model.CheckinResult{}, err
	}

	if !won {
		switch redeemed.Status {
		case model.TicketVoid:
			return co.rejectTicket(redeemed, deviceRef, operatorId, input,
				model.ResultVoid, "TICKET VOIDED"), nil
		default:
			msg := "ALREADY USED"
			if first, ferr := co.checkins.FirstAllowed(redeemed.ID); ferr == nil && first != nil {
				msg = fmt.Sprintf("ALREADY USED at %s", first.ScannedAt.Format("15:04:05"))
			} else if redeemed.ScannedAt != nil {
				msg = fmt.Sprintf("ALREADY USED at %s", redeemed.ScannedAt.Format("15:04:05"))
			}
			return co.rejectTicket(redeemed, deviceRef, operatorId, input,
				model.ResultAlreadyUsed, msg), nil
		}
	}

	co.appendLog(&redeemed.ID, redeemed.EventId, deviceRef, operatorId, input, model.ResultAllowed)
	result := model.CheckinResult{
		Allowed: true,
		Result:  model.ResultAllowed,
		Message: "ACCESS GRANTED",
		Ticket:  summarize(redeemed),
	}
	co.replayStore(input.RequestId, result)
	return result, nil
}

// resolveDevice: thiết bị chưa đăng ký degrade về "không gắn thiết bị",
// không bao giờ làm fail lượt check-in của staff.
func (co *CheckinCoordinator) resolveDevice(deviceId string) *uint {
	if deviceId == "" {
		return nil
	}
	device, err := co.devices.FindByDeviceId(deviceId)
	if err != nil {
		log.Printf("device %s not registered, defaulting to null", deviceId)
		return nil
	}
	return &device.ID
}

func (co *CheckinCoordinator) reject(ticketId *uint, eventId uint, deviceRef, operatorId *uint, input model.ValidateTicketInput, result, message string) model.CheckinResult {
	co.appendLog(ticketId, eventId, deviceRef, operatorId, input, result)
	res := model.CheckinResult{Allowed: false, Result: result, Message: message}
	co.replayStore(input.RequestId, res)
	return res
}

func (co *CheckinCoordinator) rejectTicket(ticket *model.Ticket, deviceRef, operatorId *uint, input model.ValidateTicketInput, result, message string) model.CheckinResult {
	co.appendLog(&ticket.ID, ticket.EventId, deviceRef, operatorId, input, result)
	res := model.CheckinResult{
		Allowed: false,
		Result:  result,
		Message: message,
		Ticket:  summarize(ticket),
	}
	co.replayStore(input.RequestId, res)
	return res
}

// appendLog append audit row. Transition đã commit thì lỗi ghi log không được
// unwind — chỉ log nội bộ.
func (co *CheckinCoordinator) appendLog(ticketId *uint, eventId uint, deviceRef, operatorId *uint, input model.ValidateTicketInput, result string) {
	entry := &model.Checkin{
		TicketId:   ticketId,
		EventId:    eventId,
		DeviceId:   deviceRef,
		OperatorId: operatorId,
		Method:     input.Method,
		Result:     result,
		Notes:      input.Notes,
		RequestId:  utils.StringPtr(input.RequestId),
		ScannedAt:  time.Now(),
	}
	if err := co.checkins.Append(entry); err != nil {
		log.Printf("failed to append checkin log for ticket %v: %v", ticketId, err)
	}
}

// Replay guard: request_id đã xử lý thì trả lại kết quả cũ, không log thêm
// lần nữa. Best-effort — Redis chết thì bỏ qua, conditional update phía store
// vẫn giữ đúng exactly-once.
func (co *CheckinCoordinator) replayLookup(requestId string) (model.CheckinResult, bool) {
	if requestId == "" || co.redis == nil {
		return model.CheckinResult{}, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := co.redis.Get(ctx, replayKey(requestId)).Result()
	if err != nil {
		return model.CheckinResult{}, false
	}
	var cached model.CheckinResult
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return model.CheckinResult{}, false
	}
	return cached, true
}

func (co *CheckinCoordinator) replayStore(requestId string, result model.CheckinResult) {
	if requestId == "" || co.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := co.redis.Set(ctx, replayKey(requestId), raw, replayKeyTTL).Err(); err != nil {
		log.Printf("failed to cache checkin result for request %s: %v", requestId, err)
	}
}

func replayKey(requestId string) string {
	return "checkin:req:" + requestId
}

func summarize(ticket *model.Ticket) *model.TicketSummary {
	return &model.TicketSummary{
		ID:         ticket.ID,
		EventId:    ticket.EventId,
		Type:       ticket.Type,
		BuyerName:  ticket.BuyerName,
		BuyerEmail: ticket.BuyerEmail,
		BuyerDoc:   ticket.BuyerDoc,
		Status:     ticket.Status,
		ScannedAt:  ticket.ScannedAt,
	}
}
