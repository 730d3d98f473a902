package router

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/nfrund/editorimages/internal/domain"
	"github.com/nfrund/editorimages/internal/events"
	"github.com/nfrund/editorimages/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages []pubsub.Message
}

func (p *recordingPublisher) Publish(_ context.Context, msg pubsub.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) payloads(t *testing.T) []events.ScreenChanged {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.ScreenChanged, 0, len(p.messages))
	for _, m := range p.messages {
		require.Equal(t, events.ScreenChangedEvent.Name(), m.Topic)
		var sc events.ScreenChanged
		require.NoError(t, json.Unmarshal(m.Payload, &sc))
		out = append(out, sc)
	}
	return out
}

type fakeSessions struct {
	session    *domain.Session
	logoutCall int
}

func (f *fakeSessions) CurrentSession() *domain.Session { return f.session }
func (f *fakeSessions) Logout(context.Context) {
	f.logoutCall++
	f.session = nil
}

func TestResolve(t *testing.T) {
	assert.Equal(t, domain.ScreenAuth, Resolve(nil))
	assert.Equal(t, domain.ScreenAuth, Resolve(&domain.Session{EmailVerified: false}))
	assert.Equal(t, domain.ScreenEditor, Resolve(&domain.Session{EmailVerified: true}))
}

func TestRouter_Start(t *testing.T) {
	tests := []struct {
		name       string
		session    *domain.Session
		want       domain.Screen
		wantLogout int
	}{
		{"no session", nil, domain.ScreenAuth, 0},
		{"verified session", &domain.Session{UserID: "u", EmailVerified: true}, domain.ScreenEditor, 0},
		{"unverified session is logged out", &domain.Session{UserID: "u"}, domain.ScreenAuth, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSessions{session: tt.session}
			r := New(nil)

			assert.Equal(t, tt.want, r.Start(context.Background(), src))
			assert.Equal(t, tt.want, r.Current())
			assert.Equal(t, tt.wantLogout, src.logoutCall)
		})
	}
}

func TestRouter_ModalStack(t *testing.T) {
	pub := &recordingPublisher{}
	r := New(pub)

	r.Show(domain.ScreenAuth)
	r.Present(domain.ScreenRegistration)
	r.Present(domain.ScreenConfirmation)
	assert.Equal(t, domain.ScreenConfirmation, r.Current())

	r.Dismiss()
	assert.Equal(t, domain.ScreenRegistration, r.Current())

	r.Show(domain.ScreenEditor)
	assert.Equal(t, domain.ScreenEditor, r.Current())
	r.Dismiss()

	got := pub.payloads(t)
	require.Len(t, got, 5, "dismiss without modals publishes nothing")
	assert.Equal(t, events.ScreenChanged{Root: "auth", Modals: []string{}, Current: "auth"}, got[0])
	assert.Equal(t, []string{"registration", "confirmation"}, got[2].Modals)
	assert.Equal(t, "confirmation", got[2].Current)
	assert.Equal(t, "registration", got[3].Current)
	assert.Equal(t, events.ScreenChanged{Root: "editor", Modals: []string{}, Current: "editor"}, got[4])
}
