package routes

import (
	"github.com/niccoates/dail/controllers"
	"github.com/niccoates/dail/middleware"

	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App) {
	// 1. AUTH
	auth := app.Group("/auth")
	auth.Post("/signup", controllers.Register)
	auth.Post("/session", controllers.Login)
	auth.Post("/refresh", controllers.Refresh)
	auth.Post("/logout", controllers.Logout)

	// 2. CALENDAR + JWT
	calendar := app.Group("/calendar", middleware.JWTProtected())
	calendar.Get("/", controllers.GetMonth)
	calendar.Post("/", controllers.PostDay)

	// 3. USER + JWT
	user := app.Group("/user", middleware.JWTProtected())
	user.Put("/profile", controllers.UpdateProfile)
	user.Post("/photo", controllers.UploadPhoto)
	user.Delete("/", controllers.DeleteAccount)
}
