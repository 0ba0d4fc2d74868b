package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api", handler.AuthRequired)

	api.Get("/goal", handler.GetGoal)
	api.Post("/goal", handler.CreateGoal)

	routines := api.Group("/routines")
	routines.Get("", handler.GetRoutines)
	routines.Post("", handler.AddRoutine)
	routines.Post("/:id/certify", handler.Certify)
	routines.Get("/:id/streak", handler.GetStreak)

	api.Get("/today", handler.GetToday)
	api.Get("/feed", handler.GetFeed)
	api.Get("/records", handler.GetRecords)
	api.Get("/calendar", handler.GetCalendar)

	api.Get("/settings", handler.GetSettings)
	api.Patch("/settings", handler.UpdateSettings)
}
