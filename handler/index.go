package handler

import (
	"encoding/json"
	"log"

	"event_access/config"
	"event_access/database"
	"event_access/helper"
	"event_access/model"
	"event_access/utils"
)

var (
	signer      *utils.TokenSigner
	mailer      *utils.Mailer
	coordinator *helper.CheckinCoordinator
)

// Init nối các collaborator process-wide một lần sau khi DB/Redis sẵn sàng
func Init(cfg *config.App) {
	signer = utils.NewTokenSigner(cfg.QRSecret)
	mailer = utils.NewMailer(cfg)
	coordinator = helper.NewCheckinCoordinator(database.DB, signer, database.Redis)
}

// writeAudit ghi audit log best-effort, không bao giờ fail request vì audit
func writeAudit(userId uint, action, resource string, details map[string]interface{}, ip string) {
	raw, _ := json.Marshal(details)
	entry := model.AuditLog{
		UserId:    userId,
		Action:    action,
		Resource:  resource,
		Details:   string(raw),
		IPAddress: ip,
	}
	if err := database.DB.Create(&entry).Error; err != nil {
		log.Printf("failed to write audit log (%s %s): %v", action, resource, err)
	}
}
