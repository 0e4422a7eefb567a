package main

import (
	"event_access/config"
	"event_access/database"
	"event_access/handler"
	"event_access/helper"
	"event_access/router"
	"event_access/utils"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	app := fiber.New()

	cfg := config.LoadApp()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept",
		AllowCredentials: true,
		ExposeHeaders:    "Set-Cookie",
		MaxAge:           600,
	}))

	database.ConnectDB()
	database.ConnectRedis(cfg)
	handler.Init(cfg)

	helper.StartCheckinSummaryScheduler(database.DB, utils.NewMailer(cfg))
	defer helper.StopCheckinSummaryScheduler()

	router.SetupRoutes(app)
	log.Fatal(app.Listen(":8002"))
}
