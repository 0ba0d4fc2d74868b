package system

import (
	"fmt"
	"strings"

	"github.com/julianstephens/flashdo/internal/cli"
)

type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	result, err := ctx.Tracker.Validate()
	if err != nil {
		return err
	}
	ctx.Println(strings.TrimSuffix(result.FormatReport(), "\n"))
	if result.HasConflicts() {
		return fmt.Errorf("found %d conflict(s)", len(result.Conflicts))
	}
	return nil
}
