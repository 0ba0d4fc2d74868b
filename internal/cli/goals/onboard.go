package goals

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/flashdo/internal/cli"
	"github.com/julianstephens/flashdo/internal/constants"
	"github.com/julianstephens/flashdo/internal/tracker"
	"github.com/julianstephens/flashdo/internal/utils"
)

// OnboardCmd walks a new user through creating a goal and its routines.
type OnboardCmd struct{}

type routineAnswer struct {
	Name      string
	Schedule  string
	Frequency string
}

type onboardAnswers struct {
	GoalName string
	Period   int
	Public   bool
	Routines []routineAnswer
}

func (c *OnboardCmd) Run(ctx *cli.Context) error {
	answers := onboardAnswers{Period: constants.GoalPeriods[1]}

	periodOptions := make([]huh.Option[int], len(constants.GoalPeriods))
	for i, days := range constants.GoalPeriods {
		periodOptions[i] = huh.NewOption(fmt.Sprintf("%d days", days), days)
	}

	goalForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What is your goal?").
				Value(&answers.GoalName).
				Validate(notBlank("goal name")),
			huh.NewSelect[int]().
				Title("How long?").
				Options(periodOptions...).
				Value(&answers.Period),
			huh.NewConfirm().
				Title("Share your stories in the feed?").
				Value(&answers.Public),
		),
	).WithTheme(huh.ThemeDracula())
	if err := goalForm.Run(); err != nil {
		return interrupted(err)
	}

	for len(answers.Routines) < constants.MaxRoutinesPerGoal {
		var r routineAnswer
		r.Frequency = "daily"
		more := len(answers.Routines) < constants.MaxRoutinesPerGoal-1

		routineForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title(fmt.Sprintf("Routine %d", len(answers.Routines)+1)).
					Value(&r.Name).
					Validate(notBlank("routine name")),
				huh.NewInput().
					Title("When? (HH:MM, or morning/afternoon/evening)").
					Value(&r.Schedule).
					Validate(func(s string) error {
						_, err := cli.ParseSchedule(s)
						return err
					}),
				huh.NewInput().
					Title("Which days?").
					Description("daily, or e.g. mon,wed,fri").
					Value(&r.Frequency).
					Validate(func(s string) error {
						_, err := utils.ParseWeekdays(s)
						return err
					}),
			),
		).WithTheme(huh.ThemeDracula())
		if err := routineForm.Run(); err != nil {
			return interrupted(err)
		}
		answers.Routines = append(answers.Routines, r)

		if !more {
			break
		}
		addAnother := false
		confirm := huh.NewConfirm().Title("Add another routine?").Value(&addAnother)
		if err := confirm.Run(); err != nil {
			return interrupted(err)
		}
		if !addAnother {
			break
		}
	}

	return apply(ctx, answers)
}

// apply creates the goal and routines described by answers.
func apply(ctx *cli.Context, answers onboardAnswers) error {
	goal, err := ctx.Tracker.CreateGoal(tracker.GoalInput{
		Name:       answers.GoalName,
		PeriodDays: answers.Period,
		IsPublic:   answers.Public,
	})
	if err != nil {
		return err
	}

	for _, a := range answers.Routines {
		schedule, err := cli.ParseSchedule(a.Schedule)
		if err != nil {
			return err
		}
		frequency, err := utils.ParseWeekdays(a.Frequency)
		if err != nil {
			return err
		}
		if _, err := ctx.Tracker.AddRoutine(tracker.RoutineInput{Name: a.Name, Schedule: schedule, Frequency: frequency}); err != nil {
			return fmt.Errorf("routine %q: %w", a.Name, err)
		}
	}

	ctx.Println(cli.BannerStyle.Render(goal.Name))
	ctx.Printf("%d days, %d routine(s). Day 1 starts %s.\n", answers.Period, len(answers.Routines), goal.StartDate)
	return nil
}

func notBlank(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", what)
		}
		return nil
	}
}

func interrupted(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return errors.New("onboarding cancelled")
	}
	return err
}
