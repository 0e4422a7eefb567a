package store

import (
	"testing"
	"time"

	"event_access/database"
	"event_access/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// sqlite in-memory: một connection duy nhất, tránh SQLITE_BUSY khi test concurrent
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seedEvent(t *testing.T, db *gorm.DB) *model.Event {
	t.Helper()

	org := model.Organization{Name: "Test Org " + time.Now().Format("150405.000000000")}
	require.NoError(t, db.Create(&org).Error)

	event := model.Event{
		Name:           "Test Night",
		Slug:           "test-night",
		Venue:          "Club X",
		City:           "Madrid",
		Date:           time.Now().Add(24 * time.Hour),
		OrganizationId: org.ID,
	}
	require.NoError(t, db.Create(&event).Error)
	return &event
}

func seedTicket(t *testing.T, db *gorm.DB, eventId uint, mutate func(*model.Ticket)) *model.Ticket {
	t.Helper()

	ticket := model.Ticket{
		EventId:    eventId,
		Type:       "general",
		BuyerName:  "Ana",
		BuyerEmail: "ana@example.com",
		BuyerDoc:   "12345678A",
		QRToken:    "token-" + time.Now().Format("150405.000000000"),
		Status:     model.TicketValid,
		CreatedBy:  1,
	}
	if mutate != nil {
		mutate(&ticket)
	}
	require.NoError(t, db.Create(&ticket).Error)
	return &ticket
}
