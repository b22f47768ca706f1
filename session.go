package wallgen

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// Generator is what a Session needs from the Client.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Batch, error)
	TestConnection(ctx context.Context, apiKey string) bool
}

var _ Generator = (*Client)(nil)

// State is a snapshot of everything a front end renders.
type State struct {
	Prompt       string
	Images       []Wallpaper
	Loading      bool
	Error        string
	Selected     *Wallpaper
	SettingsOpen bool
}

// Session holds the state of one interactive front end: the prompt, the
// current batch, the open viewer and the settings panel.
//
// Every submission starts a new epoch. A batch that finishes after a newer
// submission started is dropped, so a slow stale batch can never replace a
// newer one.
type Session struct {
	generator   Generator
	credentials *CredentialStore
	storage     Storage
	logger      *slog.Logger

	mu    sync.Mutex
	state State
	epoch uint64
}

// NewSession creates a Session. credentials and storage may be nil, which
// disables the settings and download actions respectively.
func NewSession(generator Generator, credentials *CredentialStore, storage Storage, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		generator:   generator,
		credentials: credentials,
		storage:     storage,
		logger:      logger,
	}
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Images = slices.Clone(s.state.Images)
	if s.state.Selected != nil {
		selected := *s.state.Selected
		st.Selected = &selected
	}
	return st
}

// Submit generates a new batch for prompt. A blank prompt does nothing.
//
// On failure the user-facing message is stored in State().Error and the
// error is returned. ErrStaleBatch means a newer submission won.
func (s *Session) Submit(ctx context.Context, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return nil
	}

	s.mu.Lock()
	s.state.Prompt = prompt
	s.mu.Unlock()

	return s.run(ctx, prompt)
}

// Regenerate generates a new batch from the prompt of the selected wallpaper.
// The current images stay visible until the new batch arrives.
func (s *Session) Regenerate(ctx context.Context) error {
	s.mu.Lock()
	selected := s.state.Selected
	s.mu.Unlock()

	if selected == nil {
		return ErrNothingSelected
	}

	return s.run(ctx, selected.Prompt)
}

func (s *Session) run(ctx context.Context, prompt string) error {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.state.Loading = true
	s.state.Error = ""
	// Regenerating from the viewer keeps the grid behind it.
	if s.state.Selected == nil {
		s.state.Images = nil
	}
	s.mu.Unlock()

	batch, err := s.generator.Generate(ctx, prompt)

	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		attrs := []any{"epoch", epoch, "current_epoch", s.epoch}
		if batch != nil {
			attrs = append(attrs, "batch_id", batch.ID)
		}
		s.logger.Debug("discarding stale batch", attrs...)
		return ErrStaleBatch
	}

	s.state.Loading = false

	if err != nil {
		s.state.Error = UserMessage(err)
		return err
	}

	s.state.Images = batch.Images
	s.state.Selected = nil
	return nil
}

// Select opens the viewer on the wallpaper with the given id.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.find(id)
	if !ok {
		return ErrImageNotFound
	}
	s.state.Selected = &w
	return nil
}

// CloseViewer closes the viewer.
func (s *Session) CloseViewer() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Selected = nil
}

// Download saves a wallpaper through the session's storage. An empty id means
// the selected wallpaper. No network request is made.
func (s *Session) Download(ctx context.Context, id string) (StorageResult, error) {
	s.mu.Lock()
	var (
		w  Wallpaper
		ok bool
	)
	if id == "" && s.state.Selected != nil {
		w, ok = *s.state.Selected, true
	} else if id != "" {
		w, ok = s.find(id)
	}
	s.mu.Unlock()

	if !ok {
		if id == "" {
			return StorageResult{}, ErrNothingSelected
		}
		return StorageResult{}, ErrImageNotFound
	}

	res, err := SaveWallpaper(ctx, s.storage, w)
	if err != nil {
		return StorageResult{}, err
	}

	s.logger.Info("wallpaper downloaded", "id", w.ID, "location", res.Location, "size", res.Size)
	return res, nil
}

// OpenSettings shows the settings panel.
func (s *Session) OpenSettings() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.SettingsOpen = true
}

// CloseSettings hides the settings panel.
func (s *Session) CloseSettings() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.SettingsOpen = false
}

// StoredKey returns the key currently saved, if any.
func (s *Session) StoredKey() (string, bool) {
	if s.credentials == nil {
		return "", false
	}
	return s.credentials.Load()
}

// SaveKey stores apiKey. Unlike CredentialStore.Save, a blank key is
// rejected rather than treated as a request to clear.
func (s *Session) SaveKey(apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return ErrEmptyKey
	}
	if s.credentials == nil {
		return ErrStorageNotConfigured
	}

	s.credentials.Save(apiKey)
	return nil
}

// ClearKey removes the stored key.
func (s *Session) ClearKey() {
	if s.credentials != nil {
		s.credentials.Clear()
	}
}

// TestKey checks apiKey against the API. A blank key is false without a request.
func (s *Session) TestKey(ctx context.Context, apiKey string) bool {
	if strings.TrimSpace(apiKey) == "" {
		return false
	}
	return s.generator.TestConnection(ctx, apiKey)
}

// find must be called with s.mu held.
func (s *Session) find(id string) (Wallpaper, bool) {
	for _, w := range s.state.Images {
		if w.ID == id {
			return w, true
		}
	}
	return Wallpaper{}, false
}
