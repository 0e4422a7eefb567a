package store

import (
	"errors"
	"time"

	"event_access/model"

	"gorm.io/gorm"
)

var ErrTicketNotFound = errors.New("ticket not found")

// TicketStore sở hữu state machine của vé: valid -> used | void, used -> void,
// void là terminal. Mọi transition là một UPDATE có điều kiện do DB phán xử,
// không bao giờ read-then-write từ phía caller.
type TicketStore struct {
	db *gorm.DB
}

func NewTicketStore(db *gorm.DB) *TicketStore {
	return &TicketStore{db: db}
}

// Create phát hành vé. RequestId trùng (idempotency) thì trả lại vé đã có
// thay vì tạo bản ghi mới — unique index trên request_id chặn race.
func (s *TicketStore) Create(ticket *model.Ticket) (*model.Ticket, error) {
	if ticket.RequestId != nil {
		var existing model.Ticket
		err := s.db.Where("request_id = ?", *ticket.RequestId).First(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if err := s.db.Create(ticket).Error; err != nil {
		// thua race trên request_id: đọc lại row thắng cuộc
		if ticket.RequestId != nil {
			var existing model.Ticket
			if ferr := s.db.Where("request_id = ?", *ticket.RequestId).First(&existing).Error; ferr == nil {
				return &existing, nil
			}
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketStore) FindByToken(token string) (*model.Ticket, error) {
	var ticket model.Ticket
	err := s.db.Preload("TicketType").Where("qr_token = ?", token).First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// FindByDocument chỉ match vé còn valid: tra cứu thủ công theo giấy tờ
// không được phép resolve về vé đã dùng hay đã huỷ.
func (s *TicketStore) FindByDocument(buyerDoc string, eventId uint) (*model.Ticket, error) {
	var ticket model.Ticket
	err := s.db.Preload("TicketType").
		Where("buyer_doc = ? AND event_id = ? AND status = ?", buyerDoc, eventId, model.TicketValid).
		First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *TicketStore) FindByID(id uint) (*model.Ticket, error) {
	var ticket model.Ticket
	err := s.db.Preload("TicketType").First(&ticket, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Redeem thực hiện transition valid -> used. RowsAffected quyết định thắng thua:
// 0 row nghĩa là một request khác đã thắng hoặc vé không còn valid — caller
// đọc status hiện tại từ vé trả về để phân loại already_used / void.
func (s *TicketStore) Redeem(id uint) (*model.Ticket, bool, error) {
	now := time.Now()
	res := s.db.Model(&model.Ticket{}).
		Where("id = ? AND status = ?", id, model.TicketValid).
		Updates(map[string]interface{}{"status": model.TicketUsed, "scanned_at": now})
	if res.Error != nil {
		return nil, false, res.Error
	}

	ticket, err := s.FindByID(id)
	if err != nil {
		return nil, false, err
	}
	return ticket, res.RowsAffected > 0, nil
}

// Void là terminal từ mọi trạng thái; void lại vé đã void là no-op idempotent.
func (s *TicketStore) Void(id uint, reason string) (*model.Ticket, error) {
	res := s.db.Model(&model.Ticket{}).
		Where("id = ? AND status <> ?", id, model.TicketVoid).
		Updates(map[string]interface{}{"status": model.TicketVoid, "void_reason": reason})
	if res.Error != nil {
		return nil, res.Error
	}
	return s.FindByID(id)
}

func (s *TicketStore) MarkEmailSent(id uint) error {
	return s.db.Model(&model.Ticket{}).Where("id = ?", id).
		UpdateColumn("email_sent_at", time.Now()).Error
}
