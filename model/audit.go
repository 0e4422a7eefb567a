package model

type AuditLog struct {
	DTO
	UserId    uint   `gorm:"index" json:"userId"`
	Action    string `gorm:"not null;index" json:"action"`
	Resource  string `gorm:"not null" json:"resource"`
	Details   string `json:"details"`
	IPAddress string `json:"ipAddress"`
}
