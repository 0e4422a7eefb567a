package model

type Organization struct {
	DTO
	Name string `gorm:"not null;uniqueIndex" json:"name"`
}
