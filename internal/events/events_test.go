package events

import (
	"encoding/json"
	"testing"

	"github.com/nfrund/editorimages/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewScreenChanged(t *testing.T) {
	ev := NewScreenChanged(domain.ScreenAuth, nil)
	assert.Equal(t, "auth", ev.Current)
	assert.Empty(t, ev.Modals)

	ev = NewScreenChanged(domain.ScreenAuth, []domain.Screen{domain.ScreenRegistration, domain.ScreenConfirmation})
	assert.Equal(t, "auth", ev.Root)
	assert.Equal(t, []string{"registration", "confirmation"}, ev.Modals)
	assert.Equal(t, "confirmation", ev.Current)
}

func TestCatalog(t *testing.T) {
	topics := List()
	assert.Len(t, topics, 2)

	topic, ok := Get(ScreenChangedEvent.Name())
	assert.True(t, ok)
	assert.Equal(t, ScreenChangedEvent.Description(), topic.Description)

	var payload ScreenChanged
	assert.NoError(t, json.Unmarshal([]byte(topic.Example), &payload))
	assert.Equal(t, "confirmation", payload.Current)

	_, ok = Get("missing")
	assert.False(t, ok)
}
