package store

import (
	"errors"
	"time"

	"event_access/model"

	"gorm.io/gorm"
)

// CheckinStore ghi audit trail check-in. Log là append-only: chỉ Create,
// không Update, không Delete.
type CheckinStore struct {
	db *gorm.DB
}

func NewCheckinStore(db *gorm.DB) *CheckinStore {
	return &CheckinStore{db: db}
}

func (s *CheckinStore) Append(entry *model.Checkin) error {
	if entry.ScannedAt.IsZero() {
		entry.ScannedAt = time.Now()
	}
	return s.db.Create(entry).Error
}

// FirstAllowed trả về lượt check-in thành công gốc của vé, phục vụ thông báo
// "đã dùng lúc ..." cho operator.
func (s *CheckinStore) FirstAllowed(ticketId uint) (*model.Checkin, error) {
	var entry model.Checkin
	err := s.db.Where("ticket_id = ? AND result = ?", ticketId, model.ResultAllowed).
		Order("scanned_at asc").First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *CheckinStore) ListByEvent(eventId uint, limit, page *int) ([]model.Checkin, int64, error) {
	var entries []model.Checkin
	var total int64

	condition := s.db.Model(&model.Checkin{}).Where("event_id = ?", eventId)
	if err := condition.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := s.db.Where("event_id = ?", eventId).Order("scanned_at desc")
	if limit != nil && *limit > 0 && page != nil && *page >= 1 {
		query = query.Limit(*limit).Offset(*limit * (*page - 1))
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// CountByResultSince gom số lượt theo result code từ một mốc thời gian,
// phục vụ báo cáo hàng ngày.
func (s *CheckinStore) CountByResultSince(eventId uint, since time.Time) (map[string]int64, error) {
	type row struct {
		Result string
		Total  int64
	}
	var rows []row
	err := s.db.Model(&model.Checkin{}).
		Select("result, count(*) as total").
		Where("event_id = ? AND scanned_at >= ?", eventId, since).
		Group("result").Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Result] = r.Total
	}
	return counts, nil
}
