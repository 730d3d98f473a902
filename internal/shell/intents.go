package shell

import (
	"bytes"
	"fmt"
	"image"

	"github.com/nfrund/editorimages/internal/confirmation"
	"github.com/nfrund/editorimages/internal/domain"
	"github.com/nfrund/editorimages/internal/editor"
	"github.com/nfrund/editorimages/internal/flow"
	"github.com/nfrund/editorimages/internal/picker"
)

// Intent types accepted by Dispatch.
const (
	IntentEmailChanged     = "email_changed"
	IntentPasswordChanged  = "password_changed"
	IntentSubmit           = "submit"
	IntentRegister         = "register"
	IntentAlertDismissed   = "alert_dismissed"
	IntentDismiss          = "dismiss"
	IntentAddImage         = "add_image"
	IntentImagePicked      = "image_picked"
	IntentDrawingChanged   = "drawing_changed"
	IntentPhotoTransformed = "photo_transformed"
	IntentSave             = "save"
	IntentFinishOK         = "finish_ok"
)

// Request is one user action sent by a remote UI. Image carries an encoded
// PNG, JPEG, GIF, BMP or WebP; it is base64 in JSON.
type Request struct {
	Type    string  `json:"type"`
	Value   string  `json:"value,omitempty"`
	Image   []byte  `json:"image,omitempty"`
	OffsetX float64 `json:"offset_x,omitempty"`
	OffsetY float64 `json:"offset_y,omitempty"`
	Scale   float64 `json:"scale,omitempty"`
}

func formIntent(req Request) (flow.Intent, error) {
	switch req.Type {
	case IntentEmailChanged:
		return flow.EmailChanged{Value: req.Value}, nil
	case IntentPasswordChanged:
		return flow.PasswordChanged{Value: req.Value}, nil
	case IntentSubmit:
		return flow.SubmitTapped{}, nil
	case IntentRegister:
		return flow.RegisterTapped{}, nil
	case IntentAlertDismissed:
		return flow.AlertDismissed{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidIntent, req.Type)
}

func editorIntent(req Request) (editor.Intent, error) {
	switch req.Type {
	case IntentAddImage:
		return editor.AddImageTapped{}, nil
	case IntentImagePicked:
		// No image means the pick was cancelled.
		if len(req.Image) == 0 {
			return editor.ImagePicked{}, nil
		}
		img, err := decodeImage(req.Image)
		if err != nil {
			return nil, err
		}
		return editor.ImagePicked{Image: img}, nil
	case IntentDrawingChanged:
		img, err := decodeImage(req.Image)
		if err != nil {
			return nil, err
		}
		return editor.DrawingChanged{Image: img}, nil
	case IntentPhotoTransformed:
		return editor.PhotoTransformed{Transform: editor.Transform{OffsetX: req.OffsetX, OffsetY: req.OffsetY, Scale: req.Scale}}, nil
	case IntentSave:
		return editor.SaveTapped{}, nil
	case IntentFinishOK:
		return editor.FinishOKTapped{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidIntent, req.Type)
}

func decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image is required", ErrInvalidIntent)
	}
	img, err := picker.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIntent, err)
	}
	return img, nil
}

type alertView struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func newAlertView(a *domain.Alert) *alertView {
	if a == nil {
		return nil
	}
	return &alertView{Title: a.Title, Message: a.Message}
}

// FormView is the login or registration form. The password is never echoed.
type FormView struct {
	Mode          string     `json:"mode"`
	Email         string     `json:"email"`
	Phase         string     `json:"phase"`
	SubmitEnabled bool       `json:"submit_enabled"`
	Alert         *alertView `json:"alert,omitempty"`
}

func newFormView(st flow.State) FormView {
	return FormView{
		Mode:          st.Mode.String(),
		Email:         st.Email,
		Phase:         st.Phase.String(),
		SubmitEnabled: st.SubmitEnabled,
		Alert:         newAlertView(st.Alert),
	}
}

// ConfirmationView is the "check your inbox" screen.
type ConfirmationView struct {
	EmailSent bool `json:"email_sent"`
	Checking  bool `json:"checking"`
	Verified  bool `json:"verified"`
}

func newConfirmationView(st confirmation.State) ConfirmationView {
	return ConfirmationView{EmailSent: st.EmailSent, Checking: st.Checking, Verified: st.Verified}
}

// EditorView is the editor without its image data.
type EditorView struct {
	HasPhoto        bool             `json:"has_photo"`
	HasDrawing      bool             `json:"has_drawing"`
	Transform       editor.Transform `json:"transform"`
	ShowPicker      bool             `json:"show_picker"`
	Saving          bool             `json:"saving"`
	ShowFinishAlert bool             `json:"show_finish_alert"`
	SavedPath       string           `json:"saved_path,omitempty"`
	Alert           *alertView       `json:"alert,omitempty"`
}

func newEditorView(st editor.State) EditorView {
	return EditorView{
		HasPhoto:        st.Photo != nil,
		HasDrawing:      st.Drawing != nil,
		Transform:       st.Transform,
		ShowPicker:      st.ShowPicker,
		Saving:          st.Saving,
		ShowFinishAlert: st.ShowFinishAlert,
		SavedPath:       st.SavedPath,
		Alert:           newAlertView(st.Alert),
	}
}
