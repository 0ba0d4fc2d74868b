package routines

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/flashdo/internal/cli"
	"github.com/julianstephens/flashdo/internal/media"
	"github.com/julianstephens/flashdo/internal/tracker"
)

type CertifyCmd struct {
	Routine string `arg:"" help:"Routine id, position or name."`
	Media   string `help:"Photo or video proving the routine was done." type:"existingfile"`
	Caption string `help:"Caption shown with the story."`
}

func (c *CertifyCmd) Run(ctx *cli.Context) error {
	routine, err := ctx.ResolveRoutine(c.Routine)
	if err != nil {
		return err
	}

	var res tracker.Result
	if c.Media != "" {
		capture, err := media.ReadCapture(c.Media)
		if err != nil {
			return err
		}
		sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		res, err = ctx.Tracker.CertifyUpload(sigCtx, routine.ID, capture, c.Caption)
		if errors.Is(err, context.Canceled) {
			return errors.New("upload cancelled, nothing was certified")
		}
		if err != nil {
			return err
		}
	} else {
		res, err = ctx.Tracker.Certify(routine.ID, tracker.Proof{Caption: c.Caption})
		if err != nil {
			return err
		}
	}

	switch res.Status {
	case tracker.StatusAccepted:
		msg := "Certified " + routine.Name
		if res.Story.IsLate {
			msg += cli.WarnStyle.Render(" (late)")
		}
		ctx.Printf("%s %s\n", cli.Check(true), msg)
		streak, err := ctx.Tracker.Streak(routine.ID)
		if err != nil {
			return err
		}
		ctx.Printf("  Streak: %d\n", streak)
	case tracker.StatusAlreadyCertified:
		ctx.Printf("%s already certified today at %s\n", routine.Name, res.Certification.Timestamp.Format("15:04"))
	case tracker.StatusOutsideWindow:
		return errors.New(routine.Name + " is outside its certification window")
	}
	return nil
}
