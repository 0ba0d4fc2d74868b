package system

import (
	"time"

	"github.com/julianstephens/flashdo/internal/api"
	"github.com/julianstephens/flashdo/internal/cli"
)

// TokenCmd prints a bearer token for the local user.
type TokenCmd struct {
	TTL    time.Duration `help:"Token lifetime." default:"720h"`
	Secret string        `help:"API signing key; defaults to the one in the OS keyring." env:"FLASHDO_API_SECRET"`
}

func (c *TokenCmd) Run(ctx *cli.Context) error {
	secret, err := cli.APISecret(c.Secret, true)
	if err != nil {
		return err
	}
	userID, err := ctx.Tracker.UserID()
	if err != nil {
		return err
	}
	now, err := ctx.Tracker.Now()
	if err != nil {
		return err
	}
	token, err := api.BuildToken(secret, userID, now, c.TTL)
	if err != nil {
		return err
	}
	ctx.Println(token)
	return nil
}
