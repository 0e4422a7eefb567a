package model

import "time"

type Device struct {
	DTO
	DeviceId       string     `gorm:"not null;uniqueIndex;size:64" json:"deviceId"`
	Alias          string     `gorm:"not null;uniqueIndex;size:64" json:"alias"`
	PinHash        string     `gorm:"not null" json:"-"`
	Enabled        bool       `gorm:"not null;default:true" json:"enabled"`
	OrganizationId uint       `gorm:"not null;index" json:"organizationId"`
	LastActiveAt   *time.Time `json:"lastActiveAt"`

	Organization Organization `gorm:"foreignKey:OrganizationId" json:"-"`
}

type CreateDeviceInput struct {
	DeviceId string `json:"deviceId" validate:"required"`
	Alias    string `json:"alias" validate:"required"`
	Pin      string `json:"pin" validate:"required,min=4"`
}

type UpdateDeviceInput struct {
	DeviceId string  `json:"deviceId" validate:"required"`
	Enabled  *bool   `json:"enabled"`
	Alias    *string `json:"alias"`
}

type DeviceLoginInput struct {
	Alias string `json:"alias" validate:"required"`
	Pin   string `json:"pin" validate:"required"`
}
