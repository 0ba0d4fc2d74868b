package history

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/julianstephens/flashdo/internal/cli"
)

type CalendarCmd struct {
	Year  int `help:"Year, default the current one."`
	Month int `help:"Month 1-12, default the current one."`
}

func (c *CalendarCmd) Run(ctx *cli.Context) error {
	now, err := ctx.Tracker.Now()
	if err != nil {
		return err
	}
	year, month := now.Year(), now.Month()
	if c.Year != 0 {
		year = c.Year
	}
	if c.Month != 0 {
		if c.Month < 1 || c.Month > 12 {
			return fmt.Errorf("invalid month %d", c.Month)
		}
		month = time.Month(c.Month)
	}

	days, err := ctx.Tracker.CertifiedDays(year, month)
	if err != nil {
		return err
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	ctx.Println(cli.TitleStyle.Render(first.Format("January 2006")))
	ctx.Print(renderMonth(first, days))
	ctx.Printf("%d day(s) certified\n", len(days))
	return nil
}

// renderMonth draws a Sunday-first grid with certified days highlighted.
func renderMonth(first time.Time, certified []int) string {
	var b strings.Builder
	b.WriteString("Su Mo Tu We Th Fr Sa\n")
	b.WriteString(strings.Repeat("   ", int(first.Weekday())))

	last := first.AddDate(0, 1, -1).Day()
	for day := 1; day <= last; day++ {
		cell := fmt.Sprintf("%2d", day)
		if slices.Contains(certified, day) {
			cell = cli.SuccessStyle.Render(cell)
		}
		b.WriteString(cell)
		if time.Weekday((int(first.Weekday())+day-1)%7) == time.Saturday || day == last {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}
