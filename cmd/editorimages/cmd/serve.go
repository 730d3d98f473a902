package cmd

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/nfrund/editorimages/internal/app"
	"github.com/nfrund/editorimages/internal/config"
	"github.com/nfrund/editorimages/internal/events"
	"github.com/nfrund/editorimages/internal/hub"
	"github.com/nfrund/editorimages/internal/server"
	"github.com/nfrund/editorimages/internal/shell"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve verification links, screen intents and the screen feed over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := do.MustInvoke[*config.Config](container)
		if serveAddr == "" {
			serveAddr = cfg.HTTPAddr
		}

		deps, err := app.ServerDeps(container)
		if err != nil {
			return err
		}
		b, err := app.Bus(container)
		if err != nil {
			return err
		}
		sh, err := do.Invoke[*shell.Shell](container)
		if err != nil {
			return err
		}
		screens := do.MustInvoke[*hub.Hub](container)

		go screens.Run(ctx)
		if err := screens.Forward(ctx, b, events.ScreenChangedEvent.Name()); err != nil {
			return err
		}
		sh.Start(ctx)

		srv := server.New(deps)
		return srv.Start(ctx, serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
