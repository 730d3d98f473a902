package cmd

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/nfrund/editorimages/internal/auth"
	"github.com/nfrund/editorimages/internal/router"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the signed-in account and the screen it opens on",
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := do.Invoke[*auth.Gateway](container)
		if err != nil {
			return err
		}
		r := do.MustInvoke[*router.Router](container)

		screen := r.Start(cmd.Context(), gw)
		out := cmd.OutOrStdout()
		if s := gw.CurrentSession(); s != nil {
			fmt.Fprintf(out, "Account: %s (verified)\n", s.Email)
		} else {
			fmt.Fprintln(out, "Account: signed out")
		}
		fmt.Fprintf(out, "Screen:  %s\n", screen)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
