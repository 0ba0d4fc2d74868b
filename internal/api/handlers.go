package api

import (
	"cmp"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/julianstephens/flashdo/internal/constants"
	"github.com/julianstephens/flashdo/internal/feed"
	"github.com/julianstephens/flashdo/internal/media"
	"github.com/julianstephens/flashdo/internal/models"
	"github.com/julianstephens/flashdo/internal/tracker"
	"github.com/julianstephens/flashdo/internal/utils"
	"github.com/julianstephens/flashdo/internal/validation"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

type goalResponse struct {
	Goal      models.Goal `json:"goal"`
	Day       int         `json:"day"`
	TotalDays int         `json:"total_days"`
	Streak    int         `json:"streak"`
}

func (handler *Handler) GetGoal(c *fiber.Ctx) error {
	goal, err := handler.tracker.CurrentGoal()
	if err != nil {
		return respondError(c, err)
	}
	progress, err := handler.tracker.Progress()
	if err != nil {
		return respondError(c, err)
	}
	streak, err := handler.tracker.GoalStreak()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(goalResponse{Goal: goal, Day: progress.Day, TotalDays: progress.TotalDays, Streak: streak})
}

type createGoalRequest struct {
	Name       string `json:"name"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	PeriodDays int    `json:"period_days"`
	IsPublic   bool   `json:"is_public"`
}

func (handler *Handler) CreateGoal(c *fiber.Ctx) error {
	var req createGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}
	goal, err := handler.tracker.CreateGoal(tracker.GoalInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(goal)
}

func (handler *Handler) GetRoutines(c *fiber.Ctx) error {
	routines, err := handler.tracker.Routines()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"routines": nonNil(routines)})
}

type addRoutineRequest struct {
	Name      string `json:"name"`
	Time      string `json:"time"`
	Slot      string `json:"slot"`
	Frequency string `json:"frequency"`
}

func (handler *Handler) AddRoutine(c *fiber.Ctx) error {
	var req addRoutineRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	var schedule models.Schedule
	switch {
	case req.Time != "" && req.Slot != "":
		return apiError(c, fiber.StatusUnprocessableEntity, "give either time or slot, not both")
	case req.Slot != "":
		schedule = models.InSlot(models.Slot(strings.ToLower(req.Slot)))
	default:
		schedule = models.AtTime(req.Time)
	}

	frequency, err := utils.ParseWeekdays(cmp.Or(req.Frequency, "daily"))
	if err != nil {
		return apiError(c, fiber.StatusUnprocessableEntity, validation.ErrInvalidFrequency.Error()+": "+err.Error())
	}

	routine, err := handler.tracker.AddRoutine(tracker.RoutineInput{
		Name:      req.Name,
		Schedule:  schedule,
		Frequency: frequency,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(routine)
}

type certifyRequest struct {
	MediaRef  string `json:"media_ref"`
	MediaType string `json:"media_type"`
	Caption   string `json:"caption"`
}

// Certify accepts either a multipart upload in the "media" field or a JSON
// body referencing media that is already stored.
func (handler *Handler) Certify(c *fiber.Ctx) error {
	routineID := c.Params("id")

	var (
		result tracker.Result
		err    error
	)
	if fh, ferr := c.FormFile("media"); ferr == nil {
		if fh.Size > constants.MaxMediaBytes {
			return respondError(c, media.ErrTooLarge)
		}
		f, err := fh.Open()
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "unreadable upload")
		}
		data, err := io.ReadAll(io.LimitReader(f, constants.MaxMediaBytes+1))
		f.Close()
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "unreadable upload")
		}
		capture := media.Capture{Name: fh.Filename, Data: data}
		result, err = handler.tracker.CertifyUpload(c.UserContext(), routineID, capture, c.FormValue("caption"))
		if err != nil {
			return respondError(c, err)
		}
	} else {
		var req certifyRequest
		if err := c.BodyParser(&req); err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid request body")
		}
		result, err = handler.tracker.Certify(routineID, tracker.Proof{
			MediaRef:  req.MediaRef,
			MediaType: models.MediaType(req.MediaType),
			Caption:   req.Caption,
		})
		if err != nil {
			return respondError(c, err)
		}
	}

	status := fiber.StatusOK
	if result.Accepted() {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(result)
}

func (handler *Handler) GetStreak(c *fiber.Ctx) error {
	streak, err := handler.tracker.Streak(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"routine_id": c.Params("id"), "streak": streak})
}

func (handler *Handler) GetToday(c *fiber.Ctx) error {
	today, err := handler.tracker.Today()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"routines": nonNil(today)})
}

type storyView struct {
	models.Story
	ExpiresInSeconds int `json:"expires_in_seconds"`
}

func (handler *Handler) GetFeed(c *fiber.Ctx) error {
	stories, err := handler.tracker.Feed()
	if err != nil {
		return respondError(c, err)
	}
	now, err := handler.tracker.Now()
	if err != nil {
		return respondError(c, err)
	}

	views := []storyView{}
	for s := range stories {
		views = append(views, storyView{Story: s, ExpiresInSeconds: int(feed.Remaining(s, now) / time.Second)})
	}
	return c.JSON(fiber.Map{"stories": views})
}

func (handler *Handler) GetRecords(c *fiber.Ctx) error {
	records, err := handler.tracker.Records()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"records": nonNil(records)})
}

func (handler *Handler) GetCalendar(c *fiber.Ctx) error {
	now, err := handler.tracker.Now()
	if err != nil {
		return respondError(c, err)
	}
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month()))
	if month < 1 || month > 12 {
		return apiError(c, fiber.StatusBadRequest, "month must be between 1 and 12")
	}

	days, err := handler.tracker.CertifiedDays(year, time.Month(month))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"year": year, "month": month, "days": nonNil(days)})
}

func (handler *Handler) GetSettings(c *fiber.Ctx) error {
	settings, err := handler.tracker.Settings()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(settings)
}

type updateSettingsRequest struct {
	Timezone     *string `json:"timezone"`
	StrictWindow *bool   `json:"strict_window"`
}

func (handler *Handler) UpdateSettings(c *fiber.Ctx) error {
	var req updateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Timezone != nil && !utils.ValidateTimezone(*req.Timezone) {
		return apiError(c, fiber.StatusUnprocessableEntity, "invalid timezone")
	}

	settings, err := handler.tracker.UpdateSettings(func(s *models.Settings) {
		if req.Timezone != nil {
			s.Timezone = *req.Timezone
		}
		if req.StrictWindow != nil {
			s.StrictWindow = *req.StrictWindow
		}
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(settings)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
