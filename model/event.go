package model

import "time"

type Event struct {
	DTO
	Name           string    `gorm:"not null" validate:"required" json:"name"`
	Slug           string    `gorm:"not null;uniqueIndex" json:"slug"`
	Venue          string    `gorm:"not null" json:"venue"`
	Address        string    `json:"address"`
	City           string    `json:"city"`
	Date           time.Time `gorm:"not null" json:"date"`
	OrganizationId uint      `gorm:"not null;index" json:"organizationId"`

	Organization Organization `gorm:"foreignKey:OrganizationId" json:"-"`
}

// EventStaff gán nhân sự vào event kèm hạn mức vé mời.
// Invariant: quota_used <= quota_limit, chỉ tăng qua update có điều kiện.
type EventStaff struct {
	DTO
	EventId    uint `gorm:"not null;uniqueIndex:idx_event_staff" json:"eventId"`
	UserId     uint `gorm:"not null;uniqueIndex:idx_event_staff" json:"userId"`
	QuotaLimit int  `gorm:"not null;default:0" json:"quotaLimit"`
	QuotaUsed  int  `gorm:"not null;default:0" json:"quotaUsed"`

	Event Event   `gorm:"foreignKey:EventId" json:"-"`
	User  Account `gorm:"foreignKey:UserId" json:"-"`
}

type CreateEventInput struct {
	Name    string    `json:"name" validate:"required"`
	Venue   string    `json:"venue" validate:"required"`
	Address string    `json:"address"`
	City    string    `json:"city"`
	Date    time.Time `json:"date" validate:"required"`
}

type AssignStaffInput struct {
	EventId    uint `json:"eventId" validate:"required"`
	UserId     uint `json:"userId" validate:"required"`
	QuotaLimit int  `json:"quotaLimit" validate:"gte=0"`
}
