package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/nfrund/editorimages/internal/app"
	"github.com/nfrund/editorimages/internal/auth"
	"github.com/nfrund/editorimages/internal/config"
	"github.com/nfrund/editorimages/internal/confirmation"
	"github.com/nfrund/editorimages/internal/domain"
	"github.com/nfrund/editorimages/internal/flow"
	"github.com/nfrund/editorimages/internal/i18n"
	"github.com/nfrund/editorimages/internal/router"
)

var (
	authEmail    string
	authPassword string
	authNoWait   bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuthFlow(cmd, flow.ModeLogin)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and confirm its email address",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuthFlow(cmd, flow.ModeRegister)
	},
}

// runAuthFlow drives the login/registration controller with the flag values
// as if they had been typed, then follows it to the screen it navigates to.
func runAuthFlow(cmd *cobra.Command, mode flow.Mode) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	out := cmd.OutOrStdout()

	gw, err := do.Invoke[*auth.Gateway](container)
	if err != nil {
		return err
	}
	r := do.MustInvoke[*router.Router](container)
	tr := do.MustInvoke[*i18n.Translator](container)

	r.Show(domain.ScreenAuth)
	if mode == flow.ModeRegister {
		r.Present(domain.ScreenRegistration)
	}

	nav := newTrackingNavigator(r)
	ctrl := flow.New(mode, gw, nav, tr)

	states := make(chan flow.State, 8)
	ctrl.Observe(func(s flow.State) {
		select {
		case states <- s:
		case <-ctx.Done():
		}
	})

	go ctrl.Run(ctx)

	for _, in := range []flow.Intent{
		flow.EmailChanged{Value: authEmail},
		flow.PasswordChanged{Value: authPassword},
	} {
		if err := ctrl.Send(ctx, in); err != nil {
			return err
		}
	}

	// A disabled submit emits nothing.
	if err := awaitFilledIn(ctx, states); err != nil {
		return err
	}
	if err := ctrl.Send(ctx, flow.SubmitTapped{}); err != nil {
		return err
	}

	alerts := make(chan domain.Alert, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-states:
				if s.Alert != nil {
					alerts <- *s.Alert
					return
				}
			}
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case alert := <-alerts:
		return fmt.Errorf("%s: %s", alert.Title, alert.Message)
	case screen := <-nav.changes:
		cancel()
		switch screen {
		case domain.ScreenEditor:
			fmt.Fprintf(out, "Signed in as %s\n", authEmail)
			return nil
		case domain.ScreenConfirmation:
			if authNoWait {
				fmt.Fprintf(out, "Signed in as %s; the email address still needs confirming\n", authEmail)
				return nil
			}
			return awaitConfirmation(cmd.Context(), out, gw, r)
		default:
			return fmt.Errorf("unexpected screen %s", screen)
		}
	}
}

// awaitFilledIn waits for the state that carries both flag values.
func awaitFilledIn(ctx context.Context, states <-chan flow.State) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-states:
			if s.Email != authEmail || s.Password != authPassword {
				continue
			}
			if !s.SubmitEnabled {
				return errors.New("email and password are required")
			}
			return nil
		}
	}
}

// awaitConfirmation runs the confirmation screen until the email address is
// verified. An interrupt dismisses the screen, which signs the user out.
func awaitConfirmation(ctx context.Context, out io.Writer, gw *auth.Gateway, r *router.Router) error {
	cfg := do.MustInvoke[*config.Config](container)
	b, err := app.Bus(container)
	if err != nil {
		return err
	}

	nav := newTrackingNavigator(r)
	screen := confirmation.New(gw, nav, b, cfg.VerifyPollInterval)

	var announced bool
	screen.Observe(func(s confirmation.State) {
		if s.EmailSent && !announced {
			announced = true
			fmt.Fprintln(out, "A confirmation email is on its way. Waiting for the link to be opened (Ctrl-C to cancel)...")
		}
	})

	// The screen needs a live context to sign out on dismissal.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- screen.Run(runCtx) }()

	select {
	case err := <-done:
		return finishConfirmation(out, nav, err)
	case <-ctx.Done():
		if err := screen.Send(runCtx, confirmation.DismissTapped{}); err != nil {
			return err
		}
		<-done
		return errors.New("email address not confirmed; signed out")
	}
}

func finishConfirmation(out io.Writer, nav *trackingNavigator, err error) error {
	if err != nil {
		return err
	}
	if nav.Current() != domain.ScreenEditor {
		return errors.New("email address not confirmed; signed out")
	}
	fmt.Fprintln(out, "Email address confirmed, you are signed in")
	return nil
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVarP(&authEmail, "email", "e", "", "account email address")
		c.Flags().StringVarP(&authPassword, "password", "p", "", "account password")
		c.Flags().BoolVar(&authNoWait, "no-wait", false, "do not wait for the email address to be confirmed")
		_ = c.MarkFlagRequired("email")
		_ = c.MarkFlagRequired("password")
		rootCmd.AddCommand(c)
	}
}
