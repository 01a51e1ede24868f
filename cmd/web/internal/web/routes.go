package web

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures the application routes.
func SetupRoutes(app *fiber.App, h Handlers, mediaDir string) {
	// Uploaded images
	app.Static("/media", mediaDir)

	app.Get("/", h.TweetList)
	app.Get("/create", h.TweetCreateForm)
	app.Post("/create", h.TweetCreate)
}
