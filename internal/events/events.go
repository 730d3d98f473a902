// Package events declares the typed events that cross component boundaries.
package events

import (
	"github.com/nfrund/editorimages/internal/domain"
	"github.com/nfrund/editorimages/internal/pubsub"
)

// EmailVerified carries no data: it only says "someone followed a
// verification link", and listeners re-check the session themselves.
type EmailVerified struct{}

// ScreenChanged is emitted by the router whenever the visible screen changes.
type ScreenChanged struct {
	Root    string   `json:"root"`
	Modals  []string `json:"modals"`
	Current string   `json:"current"`
}

var (
	EmailVerifiedEvent = pubsub.NewEvent[EmailVerified](
		"auth.email.verified",
		"A verification link was opened; listeners should reload the session.",
	)
	ScreenChangedEvent = pubsub.NewEvent[ScreenChanged](
		"router.screen.changed",
		"The router switched the root screen or changed the modal stack.",
	)
)

// NewScreenChanged builds the event payload from router state.
func NewScreenChanged(root domain.Screen, modals []domain.Screen) ScreenChanged {
	names := make([]string, len(modals))
	for i, m := range modals {
		names[i] = m.String()
	}
	current := root
	if len(modals) > 0 {
		current = modals[len(modals)-1]
	}
	return ScreenChanged{Root: root.String(), Modals: names, Current: current.String()}
}

// Topic describes one event on the bus for listings.
type Topic struct {
	Name        string
	Description string
	Example     string
}

var catalog = []Topic{
	{EmailVerifiedEvent.Name(), EmailVerifiedEvent.Description(), `{}`},
	{ScreenChangedEvent.Name(), ScreenChangedEvent.Description(), `{"root":"auth","modals":["confirmation"],"current":"confirmation"}`},
}

// List returns every event the application publishes.
func List() []Topic {
	return append([]Topic(nil), catalog...)
}

// Get looks a topic up by name.
func Get(name string) (Topic, bool) {
	for _, t := range catalog {
		if t.Name == name {
			return t, true
		}
	}
	return Topic{}, false
}
