package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/nfrund/editorimages/internal/app"
	"github.com/nfrund/editorimages/internal/config"
	"github.com/nfrund/editorimages/internal/logging"
)

// container is built once per invocation by the root command's pre-run hook.
var container *do.RootScope

var rootCmd = &cobra.Command{
	Use:   "editorimages",
	Short: "Sign in and draw over your photos",
	Long: `editorimages signs you in with an email/password account, waits for the
email address to be confirmed and then lets you draw over photos and save
the result to your library.

Use "editorimages [command] --help" for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		// Logs go to stderr so command output stays clean.
		logging.NewWithWriter(os.Stderr, cfg.LogFormat, cfg.LogLevel)
		container = app.NewContainer(cfg)
		return nil
	},
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if container != nil {
		container.Shutdown()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true
}
