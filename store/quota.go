package store

import (
	"errors"

	"event_access/model"

	"gorm.io/gorm"
)

var ErrQuotaExhausted = errors.New("invitation quota exhausted")

// QuotaLedger giữ hạn mức vé mời per-staff per-event. Reserve là một UPDATE
// có điều kiện duy nhất do DB đánh giá atomic — hai request đồng thời không
// thể cùng ăn đơn vị quota cuối cùng.
type QuotaLedger struct {
	db *gorm.DB
}

func NewQuotaLedger(db *gorm.DB) *QuotaLedger {
	return &QuotaLedger{db: db}
}

func (l *QuotaLedger) Reserve(eventId, userId uint) error {
	res := l.db.Model(&model.EventStaff{}).
		Where("event_id = ? AND user_id = ? AND quota_used < quota_limit", eventId, userId).
		UpdateColumn("quota_used", gorm.Expr("quota_used + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrQuotaExhausted
	}
	return nil
}

// Release trả lại một đơn vị quota khi insert vé thất bại sau khi đã Reserve.
func (l *QuotaLedger) Release(eventId, userId uint) error {
	return l.db.Model(&model.EventStaff{}).
		Where("event_id = ? AND user_id = ? AND quota_used > 0", eventId, userId).
		UpdateColumn("quota_used", gorm.Expr("quota_used - 1")).Error
}
