package helper

import (
	"encoding/json"
	"testing"
	"time"

	"event_access/database"
	"event_access/model"
	"event_access/utils"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
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

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

type checkinFixture struct {
	db     *gorm.DB
	signer *utils.TokenSigner
	co     *CheckinCoordinator
	org    model.Organization
	event  model.Event
}

func newCheckinFixture(t *testing.T) *checkinFixture {
	t.Helper()

	db := newTestDB(t)
	signer := utils.NewTokenSigner("test-secret")

	f := &checkinFixture{
		db:     db,
		signer: signer,
		co:     NewCheckinCoordinator(db, signer, nil),
		org:    model.Organization{Name: "Imagine Lab"},
	}
	require.NoError(t, db.Create(&f.org).Error)

	f.event = model.Event{
		Name:           "Opening Night",
		Slug:           "opening-night",
		Venue:          "Warehouse",
		City:           "Madrid",
		Date:           time.Now().Add(6 * time.Hour),
		OrganizationId: f.org.ID,
	}
	require.NoError(t, db.Create(&f.event).Error)
	return f
}

// mintTicket phát hành vé với token đã ký thật, như handler CreateTicket làm
func (f *checkinFixture) mintTicket(t *testing.T, mutate func(*model.Ticket)) *model.Ticket {
	t.Helper()

	payload := utils.QRPayload{
		EventId:   f.event.ID,
		Type:      "general",
		Email:     "ana@example.com",
		Timestamp: time.Now().UnixMilli(),
		Issuer:    1,
	}
	token, err := f.signer.Mint(payload)
	require.NoError(t, err)

	ticket := model.Ticket{
		EventId:    f.event.ID,
		Type:       "general",
		BuyerName:  "Ana",
		BuyerEmail: "ana@example.com",
		BuyerDoc:   "12345678A",
		QRToken:    token,
		Status:     model.TicketValid,
		CreatedBy:  1,
	}
	if mutate != nil {
		mutate(&ticket)
	}
	require.NoError(t, f.db.Create(&ticket).Error)
	return &ticket
}

func (f *checkinFixture) checkinRows(t *testing.T) []model.Checkin {
	t.Helper()
	var rows []model.Checkin
	require.NoError(t, f.db.Order("id asc").Find(&rows).Error)
	return rows
}

func TestValidateQRAllowedThenAlreadyUsed(t *testing.T) {
	f := newCheckinFixture(t)
	ticket := f.mintTicket(t, nil)
	operator := uint(5)

	input := model.ValidateTicketInput{
		Method:  model.MethodQR,
		QRToken: ticket.QRToken,
		EventId: f.event.ID,
	}

	first, err := f.co.Validate(&operator, f.org.ID, input)
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, model.ResultAllowed, first.Result)
	assert.Equal(t, "ACCESS GRANTED", first.Message)
	require.NotNil(t, first.Ticket)
	assert.Equal(t, model.TicketUsed, first.Ticket.Status)

	second, err := f.co.Validate(&operator, f.org.ID, input)
	require.NoError(t, err)
	assert.False(t, second.Allowed)
	assert.Equal(t, model.ResultAlreadyUsed, second.Result)
	assert.Contains(t, second.Message, "ALREADY USED at ")

	rows := f.checkinRows(t)
	require.Len(t, rows, 2)
	assert.Equal(t, model.ResultAllowed, rows[0].Result)
	assert.Equal(t, model.ResultAlreadyUsed, rows[1].Result)
	require.NotNil(t, rows[0].TicketId)
	assert.Equal(t, ticket.ID, *rows[0].TicketId)
	require.NotNil(t, rows[0].OperatorId)
	assert.Equal(t, operator, *rows[0].OperatorId)
}

func TestValidateQRTamperedSignature(t *testing.T) {
	f := newCheckinFixture(t)
	ticket := f.mintTicket(t, nil)

	// ghép payload thật với chữ ký của secret khác
	forged, err := utils.NewTokenSigner("attacker-secret").Mint(utils.QRPayload{
		EventId: f.event.ID, Type: "general", Email: "ana@example.com", Timestamp: 1, Issuer: 1,
	})
	require.NoError(t, err)

	result, err := f.co.Validate(nil, f.org.ID, model.ValidateTicketInput{
		Method:  model.MethodQR,
		QRToken: forged,
		EventId: f.event.ID,
	})
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, model.ResultInvalidSignature, result.Result)
	assert.Nil(t, result.Ticket)

	// attempt bị log với ticket_id null, vé gốc không bị đụng tới
	rows := f.checkinRows(t)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].TicketId)
	assert.Equal(t, model.ResultInvalidSignature, rows[0].Result)

	var fresh model.Ticket
	require.NoError(t, f.db.First(&fresh, ticket.ID).Error)
	assert.Equal(t, model.TicketValid, fresh.Status)
}

func TestValidateQRMalformedToken(t *testing.T) {
	f := newCheckinFixture(t)

	result, err := f.co.Validate(nil, f.org.ID, model.ValidateTicketInput{
		Method:  model.MethodQR,
		QRToken: "not-a-token",
		EventId: f.event.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ResultInvalidToken, result.Result)

	// attempt không resolve được vé vẫn phải để lại đúng một row audit
	rows := f.checkinRows(t)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].TicketId)
	assert.Equal(t, f.event.ID, rows[0].EventId)
	assert.Equal(t, model.ResultInvalidToken, rows[0].Result)
}

func TestValidateRequiresEventId(t *testing.T) {
	f := newCheckinFixture(t)
	ticket := f.mintTicket(t, nil)

	// thiếu event id là lỗi input cứng, không phán xử, không side effect
	_, err := f.co.Validate(nil, f.org.ID, model.ValidateTicketInput{
		Method:  model.MethodQR,
		QRToken: ticket.QRToken,
	})
	require.Error(t, err)
	assert.Empty(t, f.checkinRows(t))

	var fresh model.Ticket
	require.NoError(t, f.db.First(&fresh, ticket.ID).Error)
	assert.Equal(t, model.TicketValid, fresh.Status)
}

func TestValidateQRWrongEvent(t *testing.T) {
	f := newCheckinFixture(t)
	ticket := f.mintTicket(t, nil)

	other := model.Event{
		Name: "Other Night", Slug: "other-night", Venue: "Warehouse",
		Date: time.Now().Add(6 * time.Hour), OrganizationId: f.org.ID,
	}
	require.NoError(t, f.db.Create(&other).Error)

	result, err := f.co.Validate(nil, f.org.ID, model.ValidateTicketInput{
		Method:  model.MethodQR,
		QRToken: ticket.QRToken,
		EventId: other.ID,
	})
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, model.ResultWrongEvent, result.Result)

	var fresh model.Ticket
	require.NoError(t, f.db.First(&fresh, ticket.ID).Error)
	assert.Equal(t, model.TicketValid, fresh.Status)
}

func TestValidateVoidedTicket(t *testing.T) {
	f := newCheckinFixture(t)
	ticket := f.mintTicket(t, func(tk *model.Ticket) {
		tk.Status = model.TicketVoid
	})

	result, err := f.co.Validate(nil, f.org.ID, model.ValidateTicketInput{
		Method:  model.MethodQR,
		QRToken: ticket.QRToken,
		EventId: f.event.ID,
	})
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, model.ResultVoid, result.Result)
	assert.Equal(t, "TICKET VOIDED", result.Message)
}

func TestValidateExpiredTicketType(t *testing.T) {
	f := newCheckinFixture(t)

	cutoff := time.Now().Add(-1 * time.Hour)
	ticketType := model.TicketType{EventId: f.event.ID, Name: "Early Bird", ValidUntil: &cutoff}
	require.NoError(t, f.db.Create(&ticketType).Error)

	ticket := f.mintTicket(t, func(tk *model.Ticket) {
		tk.TicketTypeId = &ticketType.ID
	})

	result, err := f.co.Validate(nil, f.org.ID, model.ValidateTicketInput{
		Method:  model.MethodQR,
		QRToken: ticket.QRToken,
		EventId: f.event.ID,
	})
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, model.ResultExpired, result.Result)
	assert.Contains(t, result.Message, "only valid until")

	// hết hạn không đốt vé: status vẫn valid
	var fresh model.Ticket
	require.NoError(t, f.db.First(&fresh, ticket.ID).Error)
	assert.Equal(t, model.TicketValid, fresh.Status)
}

func TestValidateCrossOrganizationIsHardError(t *testing.T) {
	f := newCheckinFixture(t)
	ticket := f.mintTicket(t, nil)

	otherOrg := model.Organization{Name: "Rival Org"}
	require.NoError(t, f.db.Create(&otherOrg).Error)

	_, err := f.co.Validate(nil, otherOrg.ID, model.ValidateTicketInput{
		Method:  model.MethodQR,
		QRToken: ticket.QRToken,
		EventId: f.event.ID,
	})
	assert.ErrorIs(t, err, ErrWrongOrganization)

	// 403 không để lại dấu vết trong audit trail check-in
	assert.Empty(t, f.checkinRows(t))
}

func TestValidateByDocumentRequiresNotes(t *testing.T) {
	f := newCheckinFixture(t)
	ticket := f.mintTicket(t, nil)

	_, err := f.co.Validate(nil, f.org.ID, model.ValidateTicketInput{
		Method:   model.MethodDocument,
		BuyerDoc: ticket.BuyerDoc,
		EventId:  f.event.ID,
	})
	require.Error(t, err)

	result, err := f.co.Validate(nil, f.org.ID, model.ValidateTicketInput{
		Method:   model.MethodDocument,
		BuyerDoc: ticket.BuyerDoc,
		EventId:  f.event.ID,
		Notes:    "forgot phone, checked ID at door",
	})
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, model.ResultAllowed, result.Result)

	// tra cứu lại theo giấy tờ sau khi đã dùng: không match nữa
	retry, err := f.co.Validate(nil, f.org.ID, model.ValidateTicketInput{
		Method:   model.MethodDocument,
		BuyerDoc: ticket.BuyerDoc,
		EventId:  f.event.ID,
		Notes:    "second attempt",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ResultNotFound, retry.Result)
}

func TestValidateByManualID(t *testing.T) {
	f := newCheckinFixture(t)
	ticket := f.mintTicket(t, nil)

	_, err := f.co.Validate(nil, f.org.ID, model.ValidateTicketInput{
		Method:   model.MethodManualID,
		TicketId: ticket.ID,
		EventId:  f.event.ID,
	})
	require.Error(t, err)

	result, err := f.co.Validate(nil, f.org.ID, model.ValidateTicketInput{
		Method:   model.MethodManualID,
		TicketId: ticket.ID,
		EventId:  f.event.ID,
		Notes:    "scanner broken",
	})
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	rows := f.checkinRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, model.MethodManualID, rows[0].Method)
	assert.Equal(t, "scanner broken", rows[0].Notes)
}

func TestValidateUnregisteredDeviceDegradesToNull(t *testing.T) {
	f := newCheckinFixture(t)
	ticket := f.mintTicket(t, nil)

	result, err := f.co.Validate(nil, f.org.ID, model.ValidateTicketInput{
		Method:   model.MethodQR,
		QRToken:  ticket.QRToken,
		EventId:  f.event.ID,
		DeviceId: "never-registered",
	})
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	rows := f.checkinRows(t)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].DeviceId)
}

func TestValidateReplayReturnsCachedResult(t *testing.T) {
	db := newTestDB(t)
	signer := utils.NewTokenSigner("test-secret")
	rdb, mock := redismock.NewClientMock()
	co := NewCheckinCoordinator(db, signer, rdb)

	cached := model.CheckinResult{
		Allowed: true,
		Result:  model.ResultAllowed,
		Message: "ACCESS GRANTED",
	}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)

	mock.ExpectGet("checkin:req:req-42").SetVal(string(raw))

	// request đã xử lý: trả kết quả cũ, không đụng DB, không log thêm
	result, err := co.Validate(nil, 1, model.ValidateTicketInput{
		Method:    model.MethodQR,
		QRToken:   "irrelevant",
		RequestId: "req-42",
	})
	require.NoError(t, err)
	assert.Equal(t, cached, result)

	var count int64
	require.NoError(t, db.Model(&model.Checkin{}).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateRedisDownIsBestEffort(t *testing.T) {
	f := newCheckinFixture(t)
	ticket := f.mintTicket(t, nil)

	rdb, mock := redismock.NewClientMock()
	co := NewCheckinCoordinator(f.db, f.signer, rdb)

	// Redis trả lỗi ở cả lookup lẫn store: check-in vẫn phán xử bình thường
	mock.ExpectGet("checkin:req:req-7").SetErr(assert.AnError)
	mock.Regexp().ExpectSet("checkin:req:req-7", `.*`, replayKeyTTL).SetErr(assert.AnError)

	result, err := co.Validate(nil, f.org.ID, model.ValidateTicketInput{
		Method:    model.MethodQR,
		QRToken:   ticket.QRToken,
		EventId:   f.event.ID,
		RequestId: "req-7",
	})
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}
