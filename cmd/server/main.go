package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/messmate/internal/config"
	"github.com/example/messmate/internal/database"
	"github.com/example/messmate/internal/otp"
	"github.com/example/messmate/internal/routes"
	"github.com/example/messmate/internal/services"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)
	redisClient := database.ConnectRedis(cfg.RedisAddr, cfg.RedisPass)

	otpStore := otp.NewRedisStore(redisClient, cfg.OtpExpires)
	mailer := services.NewEmailService(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom)
	images := services.NewStorageService(cfg.UploadURL, cfg.UploadPreset)

	app := fiber.New(fiber.Config{
		AppName:      "MessMate Backend",
		ErrorHandler: routes.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, cfg, otpStore, mailer, images)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
