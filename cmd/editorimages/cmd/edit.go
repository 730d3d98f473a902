package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nfrund/editorimages/internal/auth"
	"github.com/nfrund/editorimages/internal/domain"
	"github.com/nfrund/editorimages/internal/editor"
	"github.com/nfrund/editorimages/internal/i18n"
	"github.com/nfrund/editorimages/internal/photolib"
	"github.com/nfrund/editorimages/internal/picker"
	"github.com/nfrund/editorimages/internal/router"
)

var (
	editImage   string
	editWatch   string
	editDrawing string
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Combine a photo and a drawing and save the result to the library",
	Long: `edit places a drawing over a photo and saves the flattened image to the
photo library. The photo comes from --image, or from the first image that
appears in the --watch directory. The drawing is a transparent image given
with --drawing.`,
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	gw, err := do.Invoke[*auth.Gateway](container)
	if err != nil {
		return err
	}
	r := do.MustInvoke[*router.Router](container)
	if r.Start(ctx, gw) != domain.ScreenEditor {
		return fmt.Errorf("%w: run \"editorimages login\" first", domain.ErrNotVerified)
	}

	lib, err := do.Invoke[*photolib.Library](container)
	if err != nil {
		return err
	}
	ed := editor.New(lib, do.MustInvoke[*i18n.Translator](container))

	states := make(chan editor.State, 8)
	ed.Observe(func(s editor.State) {
		select {
		case states <- s:
		case <-ctx.Done():
		}
	})
	go ed.Run(ctx)
	<-states

	var photoPicker picker.Picker = picker.NewFilePicker(afero.NewOsFs(), editImage)
	if editWatch != "" {
		photoPicker = picker.NewFolderPicker(editWatch)
		fmt.Fprintf(cmd.OutOrStdout(), "Waiting for an image in %s...\n", editWatch)
	}

	if err := ed.Send(ctx, editor.AddImageTapped{}); err != nil {
		return err
	}
	photo, err := photoPicker.Pick(ctx)
	if err != nil {
		return err
	}
	if photo == nil {
		return domain.ErrNoImage
	}
	drawing, err := picker.NewFilePicker(afero.NewOsFs(), editDrawing).Pick(ctx)
	if err != nil {
		return err
	}
	if drawing == nil {
		return domain.ErrNoDrawing
	}

	for _, in := range []editor.Intent{
		editor.ImagePicked{Image: photo},
		editor.DrawingChanged{Image: drawing},
		editor.SaveTapped{},
	} {
		if err := ed.Send(ctx, in); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-states:
			if s.Saving || (!s.ShowFinishAlert && s.Alert == nil) {
				continue
			}
			if !s.ShowFinishAlert {
				return errors.New(s.Alert.Message)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", s.Alert.Title, s.SavedPath)
			return ed.Send(ctx, editor.FinishOKTapped{})
		}
	}
}

func init() {
	editCmd.Flags().StringVarP(&editImage, "image", "i", "", "photo to draw over")
	editCmd.Flags().StringVarP(&editWatch, "watch", "w", "", "wait for a photo to appear in this directory")
	editCmd.Flags().StringVarP(&editDrawing, "drawing", "d", "", "transparent image holding the drawing")
	editCmd.MarkFlagsMutuallyExclusive("image", "watch")
	editCmd.MarkFlagsOneRequired("image", "watch")
	_ = editCmd.MarkFlagRequired("drawing")
	rootCmd.AddCommand(editCmd)
}
