package model

import "time"

const (
	TicketValid = "valid"
	TicketUsed  = "used"
	TicketVoid  = "void"
)

const TicketInvitation = "invitation"

// TicketType mô tả loại vé của một event, valid_until giới hạn giờ check-in
type TicketType struct {
	DTO
	EventId    uint       `gorm:"not null;index" json:"eventId"`
	Name       string     `gorm:"not null" json:"name"`
	Price      float64    `gorm:"not null;default:0" json:"price"`
	ValidUntil *time.Time `json:"validUntil"`

	Event Event `gorm:"foreignKey:EventId" json:"-"`
}

// Ticket: qr_token là immutable sau khi phát hành, không bao giờ xoá row —
// huỷ vé chỉ chuyển status sang void.
type Ticket struct {
	DTO
	EventId      uint    `gorm:"not null;index" json:"eventId"`
	TicketTypeId *uint   `gorm:"index" json:"ticketTypeId"`
	Type         string  `gorm:"not null" json:"type"`
	Price        float64 `gorm:"not null;default:0" json:"price"`

	BuyerName  string `gorm:"not null" json:"buyerName"`
	BuyerEmail string `gorm:"not null;index" json:"buyerEmail"`
	BuyerPhone string `json:"buyerPhone"`
	BuyerDoc   string `gorm:"index" json:"buyerDoc"`

	QRToken   string  `gorm:"not null;uniqueIndex;size:1024" json:"qrToken"`
	Status    string  `gorm:"not null;default:'valid';index" json:"status"`
	CreatedBy uint    `gorm:"not null" json:"createdBy"`
	RequestId *string `gorm:"uniqueIndex" json:"requestId,omitempty"`

	ScannedAt   *time.Time `json:"scannedAt,omitempty"`
	VoidReason  *string    `json:"voidReason,omitempty"`
	EmailSentAt *time.Time `json:"emailSentAt,omitempty"`

	Event      Event       `gorm:"foreignKey:EventId" json:"-"`
	TicketType *TicketType `gorm:"foreignKey:TicketTypeId" json:"-"`
}

type CreateTicketInput struct {
	EventSlug  string  `json:"eventSlug" validate:"required"`
	Type       string  `json:"type" validate:"required"`
	Price      float64 `json:"price" validate:"omitempty,gte=0"`
	BuyerName  string  `json:"buyerName" validate:"required"`
	BuyerEmail string  `json:"buyerEmail" validate:"required,email"`
	BuyerPhone string  `json:"buyerPhone" validate:"omitempty"`
	BuyerDoc   string  `json:"buyerDoc" validate:"omitempty"`
	RequestId  string  `json:"requestId" validate:"omitempty"`
}

type VoidTicketInput struct {
	TicketId uint   `json:"ticketId" validate:"required"`
	Reason   string `json:"reason" validate:"omitempty"`
}

type FilterTicketInput struct {
	Pagination
	EventId uint   `json:"eventId" validate:"omitempty,gt=0"`
	Status  string `json:"status" validate:"omitempty,oneof=valid used void"`
}

// TicketSummary là DTO trả cho client quét vé, không kèm token
type TicketSummary struct {
	ID         uint       `json:"id"`
	EventId    uint       `json:"eventId"`
	Type       string     `json:"type"`
	BuyerName  string     `json:"buyerName"`
	BuyerEmail string     `json:"buyerEmail"`
	BuyerDoc   string     `json:"buyerDoc"`
	Status     string     `json:"status"`
	ScannedAt  *time.Time `json:"scannedAt,omitempty"`
}
