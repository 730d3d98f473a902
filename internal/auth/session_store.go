package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nfrund/editorimages/internal/domain"
	"github.com/nfrund/editorimages/internal/storage"
)

// SessionStore persists the signed-in session between runs.
type SessionStore interface {
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Clear(ctx context.Context) error
}

// DefaultSessionPath is where FileSessionStore keeps the session inside its store.
const DefaultSessionPath = "session.json"

// FileSessionStore keeps the session as a JSON document in a storage.Store.
type FileSessionStore struct {
	store storage.Store
	path  string
}

// NewFileSessionStore creates a FileSessionStore writing to path.
func NewFileSessionStore(store storage.Store, path string) *FileSessionStore {
	if path == "" {
		path = DefaultSessionPath
	}
	return &FileSessionStore{store: store, path: path}
}

// Load returns the persisted session, or nil when there is none.
func (s *FileSessionStore) Load(ctx context.Context) (*domain.Session, error) {
	rc, err := s.store.Open(ctx, s.path)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer rc.Close()

	var session domain.Session
	if err := json.NewDecoder(rc).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

// Save replaces the persisted session.
func (s *FileSessionStore) Save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if _, err := s.store.Save(ctx, s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear forgets the persisted session.
func (s *FileSessionStore) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, s.path)
}
