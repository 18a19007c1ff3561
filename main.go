package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/niccoates/dail/config"
	"github.com/niccoates/dail/controllers"
	"github.com/niccoates/dail/routes"
	"github.com/niccoates/dail/storage"
	"github.com/niccoates/dail/uploads"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("конфигурация: %v", err)
	}
	if err := config.ConnectRedis(context.Background()); err != nil {
		log.Fatalf("хранилище: %v", err)
	}

	uploader, err := uploads.NewLocalUploader(config.App.UploadDir, config.App.ClientURL)
	if err != nil {
		log.Fatalf("загрузки: %v", err)
	}

	controllers.Setup(storage.NewRedisStore(config.Redis), config.App.AppSecret, uploader)

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Static("/uploads", config.App.UploadDir)

	routes.Setup(app)

	log.Fatal(app.Listen(":" + config.App.Port))
}
