// Package api serves the tracker over HTTP for the local user.
package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/julianstephens/flashdo/internal/constants"
	"github.com/julianstephens/flashdo/internal/logger"
	"github.com/julianstephens/flashdo/internal/media"
	"github.com/julianstephens/flashdo/internal/tracker"
	"github.com/julianstephens/flashdo/internal/validation"
)

const contextUserKey = "user_id"

type Handler struct {
	tracker   *tracker.Tracker
	secretKey []byte
}

func NewHandler(t *tracker.Tracker, secretKey []byte) (*Handler, error) {
	if len(secretKey) < 32 {
		return nil, errors.New("api signing key must be at least 32 bytes")
	}
	return &Handler{tracker: t, secretKey: secretKey}, nil
}

// NewApp builds the fiber app with every route registered.
func NewApp(handler *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               constants.AppName,
		BodyLimit:             constants.MaxMediaBytes + 1<<20,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	RegisterRoutes(app, handler)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return apiError(c, fe.Code, fe.Message)
	}
	logger.Error("Unhandled API error", "path", c.Path(), "error", err)
	return apiError(c, fiber.StatusInternalServerError, "internal error")
}

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, tracker.ErrNoActiveGoal), errors.Is(err, tracker.ErrRoutineNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, tracker.ErrGoalExists):
		status = fiber.StatusConflict
	case errors.Is(err, tracker.ErrRoutineLimit),
		errors.Is(err, validation.ErrInvalidName),
		errors.Is(err, validation.ErrInvalidDate),
		errors.Is(err, validation.ErrInvalidDateRange),
		errors.Is(err, validation.ErrInvalidSchedule),
		errors.Is(err, validation.ErrInvalidFrequency),
		errors.Is(err, media.ErrEmpty):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, media.ErrTooLarge):
		status = fiber.StatusRequestEntityTooLarge
	case errors.Is(err, media.ErrUnsupportedType):
		status = fiber.StatusUnsupportedMediaType
	case errors.Is(err, media.ErrUploadFailed):
		status = fiber.StatusBadGateway
	case errors.Is(err, tracker.ErrNoUploader):
		status = fiber.StatusNotImplemented
	}

	if status == fiber.StatusInternalServerError {
		logger.Error("Request failed", "path", c.Path(), "error", err)
		return apiError(c, status, "internal error")
	}
	return apiError(c, status, err.Error())
}
