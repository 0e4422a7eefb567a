package database

import (
	"event_access/constants"
	"event_access/model"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func SeedData(db *gorm.DB) {
	org := model.Organization{Name: "Imagine Lab"}
	if err := db.Where(model.Organization{Name: org.Name}).FirstOrCreate(&org).Error; err != nil {
		log.Println("failed to seed organization:", err)
		return
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte("changeme123"), 10)
	hashPassword := string(bytes)
	if err != nil {
		log.Println("failed to hash seed password:", err)
		return
	}

	accounts := []model.Account{
		{Username: "Administration", Email: "admin@example.com", Password: hashPassword, Active: true, Role: constants.ROLE_ADMIN, OrganizationId: &org.ID},
	}

	for _, account := range accounts {
		// Tạo mới nếu không tồn tại
		if err := db.Where(model.Account{Username: account.Username}).FirstOrCreate(&account).Error; err != nil {
			log.Println("failed to seed data for account:", account.Username, "error:", err)
		}
	}
}
