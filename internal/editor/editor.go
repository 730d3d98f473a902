// Package editor is the image editor screen: pick a photo, draw over it and
// save the result to the photo library.
package editor

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/nfrund/editorimages/internal/domain"
	"github.com/nfrund/editorimages/internal/i18n"
)

// Library receives finished images.
type Library interface {
	Save(ctx context.Context, img image.Image) (string, error)
}

// State is what the editor displays.
type State struct {
	Photo           image.Image
	Drawing         image.Image
	Transform       Transform
	ShowPicker      bool
	Saving          bool
	ShowFinishAlert bool
	SavedPath       string
	Alert           *domain.Alert
}

// Intent is a user action in the editor.
type Intent interface {
	intent()
}

type (
	AddImageTapped struct{}
	// ImagePicked closes the picker. Image is nil when the pick was cancelled.
	ImagePicked    struct{ Image image.Image }
	DrawingChanged struct{ Image image.Image }
	// PhotoTransformed reports the pan and zoom of the photo under the canvas.
	PhotoTransformed struct{ Transform Transform }
	SaveTapped       struct{}
	FinishOKTapped   struct{}
)

func (AddImageTapped) intent()   {}
func (ImagePicked) intent()      {}
func (DrawingChanged) intent()   {}
func (PhotoTransformed) intent() {}
func (SaveTapped) intent()       {}
func (FinishOKTapped) intent()   {}

type saveResult struct {
	path string
	err  error
}

// Editor owns the editor state. Like the auth forms it is driven by a single
// Run loop.
type Editor struct {
	library Library
	tr      *i18n.Translator

	intents   chan Intent
	results   chan saveResult
	observers []func(State)

	state State
}

// New creates an editor that saves into library.
func New(library Library, tr *i18n.Translator) *Editor {
	return &Editor{
		library: library,
		tr:      tr,
		intents: make(chan Intent, 16),
		results: make(chan saveResult, 1),
	}
}

// Observe registers fn to receive every state change. Register before Run.
func (e *Editor) Observe(fn func(State)) {
	e.observers = append(e.observers, fn)
}

// Send queues an intent.
func (e *Editor) Send(ctx context.Context, in Intent) error {
	select {
	case e.intents <- in:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes intents until ctx is cancelled.
func (e *Editor) Run(ctx context.Context) error {
	e.emit()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in := <-e.intents:
			if e.handle(ctx, in) {
				e.emit()
			}
		case res := <-e.results:
			e.finishSave(res)
			e.emit()
		}
	}
}

func (e *Editor) handle(ctx context.Context, in Intent) bool {
	switch in := in.(type) {
	case AddImageTapped:
		e.state.ShowPicker = true
	case ImagePicked:
		e.state.ShowPicker = false
		if in.Image != nil {
			e.state.Photo = in.Image
		}
	case DrawingChanged:
		e.state.Drawing = in.Image
	case PhotoTransformed:
		e.state.Transform = in.Transform
	case SaveTapped:
		if e.state.Drawing == nil || e.state.Saving {
			return false
		}
		e.save(ctx)
	case FinishOKTapped:
		if !e.state.ShowFinishAlert {
			return false
		}
		e.state = State{}
	default:
		return false
	}
	return true
}

func (e *Editor) save(ctx context.Context) {
	flat := Flatten(e.state.Photo, e.state.Drawing, e.state.Transform)
	e.state.Saving = true
	// The canvas starts over once its content has been handed off.
	e.state.Drawing = nil
	e.state.Transform = Transform{}

	go func() {
		path, err := e.library.Save(ctx, flat)
		e.results <- saveResult{path: path, err: err}
	}()
}

func (e *Editor) finishSave(res saveResult) {
	e.state.Saving = false
	if res.err != nil {
		slog.Error("editor: save failed", "error", res.err)
		e.state.Alert = &domain.Alert{Title: e.tr.Text(i18n.GenericErrorTitle), Message: fmt.Sprint(res.err)}
		return
	}
	e.state.SavedPath = res.path
	e.state.ShowFinishAlert = true
	e.state.Alert = &domain.Alert{Title: e.tr.Text(i18n.SavedTitle), Message: e.tr.Text(i18n.SavedMessage)}
}

func (e *Editor) emit() {
	for _, fn := range e.observers {
		fn(e.state)
	}
}
