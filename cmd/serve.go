package main

import (
	"context"

	"github.com/desertthunder/spotx/internal/tools"
	"github.com/urfave/cli/v3"
)

// Serve exposes the tool surface over stdio until the client disconnects.
// Stdout belongs to the protocol stream, so nothing here may print to it.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	var authn tools.Authenticator
	if r.manager != nil {
		authn = r.manager
	}

	return tools.NewServer(r.spotify, authn, r.logger).Start(ctx)
}
