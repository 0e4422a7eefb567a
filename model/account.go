package model

type Account struct {
	DTO
	Username       string `gorm:"not null;uniqueIndex" json:"username"`
	Email          string `gorm:"uniqueIndex" json:"email"`
	Password       string `gorm:"not null" json:"-"`
	Role           string `gorm:"not null;default:'staff'" json:"role"`
	Active         bool   `gorm:"not null;default:true" json:"active"`
	OrganizationId *uint  `gorm:"index" json:"organizationId"`

	Organization *Organization `gorm:"foreignKey:OrganizationId" json:"-"`
}

type CreateAccountInput struct {
	Username       string `json:"username" validate:"required,min=3"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8"`
	Role           string `json:"role" validate:"required,oneof=admin rrpp staff"`
	OrganizationId uint   `json:"organizationId" validate:"required"`
}
