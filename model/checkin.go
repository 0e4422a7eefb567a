package model

import "time"

// Phương thức validate vé
const (
	MethodQR       = "qr"
	MethodDocument = "document"
	MethodManualID = "manual-id"
)

// Result code ổn định cho client quét vé
const (
	ResultAllowed          = "allowed"
	ResultAlreadyUsed      = "already_used"
	ResultVoid             = "void"
	ResultInvalidSignature = "invalid_signature"
	ResultInvalidToken     = "invalid_token"
	ResultInvalidDevice    = "invalid_device"
	ResultNotFound         = "not_found"
	ResultWrongEvent       = "wrong_event"
	ResultExpired          = "expired"
)

// Checkin là audit trail append-only: mọi lượt validate (kể cả bị từ chối)
// ghi đúng một row, không bao giờ update hay xoá.
type Checkin struct {
	DTO
	TicketId   *uint     `gorm:"index" json:"ticketId"`
	EventId    uint      `gorm:"not null;index" json:"eventId"`
	DeviceId   *uint     `gorm:"index" json:"deviceId"`
	OperatorId *uint     `json:"operatorId"`
	Method     string    `gorm:"not null" json:"method"`
	Result     string    `gorm:"not null;index" json:"result"`
	Notes      string    `json:"notes"`
	RequestId  *string   `json:"requestId,omitempty"`
	ScannedAt  time.Time `gorm:"not null" json:"scannedAt"`

	Ticket *Ticket `gorm:"foreignKey:TicketId" json:"-"`
	Device *Device `gorm:"foreignKey:DeviceId" json:"-"`
}

// EventId bắt buộc cho mọi method: attempt bị từ chối cũng phải gắn được
// vào event để ghi audit trail
type ValidateTicketInput struct {
	Method    string `json:"method" validate:"required,oneof=qr document manual-id"`
	QRToken   string `json:"qrToken" validate:"omitempty"`
	BuyerDoc  string `json:"buyerDoc" validate:"omitempty"`
	EventId   uint   `json:"eventId" validate:"required,gt=0"`
	TicketId  uint   `json:"ticketId" validate:"omitempty,gt=0"`
	Notes     string `json:"notes" validate:"omitempty"`
	DeviceId  string `json:"deviceId" validate:"omitempty"`
	RequestId string `json:"requestId" validate:"omitempty"`
}

// DeviceId lấy từ device token, không nhận từ body
type ValidateQRInput struct {
	QRToken   string `json:"qrToken" validate:"required"`
	EventSlug string `json:"eventSlug" validate:"required"`
	RequestId string `json:"requestId" validate:"omitempty"`
}

type CheckinResult struct {
	Allowed bool           `json:"allowed"`
	Result  string         `json:"result"`
	Message string         `json:"message"`
	Ticket  *TicketSummary `json:"ticket,omitempty"`
}
