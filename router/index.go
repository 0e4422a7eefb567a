package router

import (
	"event_access/handler"
	"event_access/middleware"
	"event_access/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/login", handler.Login)

	// Thiết bị quét tại cửa
	device := api.Group("/device")
	device.Post("/login", validate.DeviceLogin(), handler.LoginDevice)
	device.Post("/validate-qr", middleware.DeviceProtected(), validate.ValidateQR(), handler.ValidateQR)

	// Registry thiết bị (org-scoped)
	devices := api.Group("/devices", middleware.Protected())
	devices.Get("/", handler.GetDevices)
	devices.Post("/", validate.CreateDevice(), handler.CreateDevice)
	devices.Patch("/", validate.UpdateDevice(), handler.UpdateDevice)
	devices.Delete("/:deviceId", handler.DeleteDevice)

	events := api.Group("/event", middleware.Protected())
	events.Post("/", validate.CreateEvent(), handler.CreateEvent)
	events.Get("/", handler.GetEvents)
	events.Post("/staff", validate.AssignStaff(), handler.AssignStaff)
	events.Get("/:id/team", validate.GetById("id"), handler.GetTeamMembers)
	events.Get("/:id/checkins", validate.GetById("id"), handler.GetCheckinHistory)

	tickets := api.Group("/ticket", middleware.Protected())
	tickets.Post("/", validate.CreateTicket(), handler.CreateTicket)
	tickets.Get("/", handler.GetTickets)
	tickets.Post("/validate", validate.ValidateTicket(), handler.ValidateTicket)
	tickets.Post("/void", validate.VoidTicket(), handler.VoidTicket)
	tickets.Get("/:id", validate.GetById("id"), handler.GetTicketById)
	tickets.Post("/:id/resend-email", validate.GetById("id"), handler.ResendTicketEmail)

	// Live feed check-in cho dashboard tại cửa
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/event/:id/checkins", middleware.Protected(), validate.CheckinFeed(), websocket.New(handler.CheckinFeed))
}
