package wallgen

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhpenta/wallgen/kvstore"
)

// stubGenerator answers Generate from a function so tests can control timing.
type stubGenerator struct {
	generate func(ctx context.Context, prompt string) (*Batch, error)
	test     func(ctx context.Context, apiKey string) bool
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (*Batch, error) {
	return s.generate(ctx, prompt)
}

func (s *stubGenerator) TestConnection(ctx context.Context, apiKey string) bool {
	if s.test == nil {
		return false
	}
	return s.test(ctx, apiKey)
}

func batchOf(prompt string, ids ...string) *Batch {
	b := &Batch{ID: "batch-" + prompt, Prompt: prompt}
	for _, id := range ids {
		b.Images = append(b.Images, Wallpaper{
			ID:       id,
			Base64:   base64.StdEncoding.EncodeToString([]byte("image-" + id)),
			MIMEType: "image/png",
			Prompt:   prompt,
		})
	}
	return b
}

func TestSession_Submit(t *testing.T) {
	gen := &stubGenerator{generate: func(_ context.Context, prompt string) (*Batch, error) {
		return batchOf(prompt, "1-0", "1-1"), nil
	}}
	s := NewSession(gen, nil, nil, quietLogger())

	require.NoError(t, s.Submit(context.Background(), "castle"))

	st := s.State()
	assert.Equal(t, "castle", st.Prompt)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
	assert.Len(t, st.Images, 2)
}

func TestSession_SubmitBlankIsNoop(t *testing.T) {
	gen := &stubGenerator{generate: func(context.Context, string) (*Batch, error) {
		t.Fatal("generate should not be called")
		return nil, nil
	}}
	s := NewSession(gen, nil, nil, quietLogger())

	assert.NoError(t, s.Submit(context.Background(), "   "))
	assert.Equal(t, State{}, s.State())
}

func TestSession_SubmitErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "missing credential", err: ErrNoCredential, want: UserMessage(ErrNoCredential)},
		{name: "total failure", err: errors.Join(ErrAllAttemptsFailed, errors.New("x")), want: UserMessage(ErrAllAttemptsFailed)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{generate: func(context.Context, string) (*Batch, error) {
				return nil, tt.err
			}}
			s := NewSession(gen, nil, nil, quietLogger())

			err := s.Submit(context.Background(), "castle")
			assert.ErrorIs(t, err, tt.err)

			st := s.State()
			assert.Equal(t, tt.want, st.Error)
			assert.False(t, st.Loading)
			assert.Empty(t, st.Images)
		})
	}

	assert.NotEqual(t, UserMessage(ErrNoCredential), UserMessage(ErrAllAttemptsFailed))
}

func TestSession_StaleBatchIsDiscarded(t *testing.T) {
	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})

	gen := &stubGenerator{generate: func(_ context.Context, prompt string) (*Batch, error) {
		if prompt == "slow" {
			close(slowStarted)
			<-releaseSlow
			return batchOf(prompt, "old-0"), nil
		}
		return batchOf(prompt, "new-0", "new-1"), nil
	}}
	s := NewSession(gen, nil, nil, quietLogger())

	slowErr := make(chan error, 1)
	go func() {
		slowErr <- s.Submit(context.Background(), "slow")
	}()

	<-slowStarted
	require.NoError(t, s.Submit(context.Background(), "fast"))
	close(releaseSlow)

	assert.ErrorIs(t, <-slowErr, ErrStaleBatch)

	st := s.State()
	assert.Equal(t, "fast", st.Prompt)
	require.Len(t, st.Images, 2)
	assert.Equal(t, "new-0", st.Images[0].ID)
	assert.False(t, st.Loading)
}

func TestSession_SelectAndRegenerate(t *testing.T) {
	releaseRegen := make(chan struct{})
	regenStarted := make(chan struct{})

	gen := &stubGenerator{generate: func(_ context.Context, prompt string) (*Batch, error) {
		select {
		case <-regenStarted:
			<-releaseRegen
			return batchOf(prompt, "2-0"), nil
		default:
		}
		return batchOf(prompt, "1-0", "1-1"), nil
	}}
	s := NewSession(gen, nil, nil, quietLogger())

	assert.ErrorIs(t, s.Regenerate(context.Background()), ErrNothingSelected)

	require.NoError(t, s.Submit(context.Background(), "castle"))
	assert.ErrorIs(t, s.Select("missing"), ErrImageNotFound)
	require.NoError(t, s.Select("1-1"))
	require.NotNil(t, s.State().Selected)
	assert.Equal(t, "1-1", s.State().Selected.ID)

	close(regenStarted)
	done := make(chan error, 1)
	go func() { done <- s.Regenerate(context.Background()) }()

	// While regenerating, the old grid stays behind the viewer.
	require.Eventually(t, func() bool { return s.State().Loading }, timeout, tick)
	assert.Len(t, s.State().Images, 2)

	close(releaseRegen)
	require.NoError(t, <-done)

	st := s.State()
	assert.Nil(t, st.Selected, "viewer closes on the new batch")
	require.Len(t, st.Images, 1)
	assert.Equal(t, "castle", st.Images[0].Prompt)
}

func TestSession_Download(t *testing.T) {
	gen := &stubGenerator{generate: func(_ context.Context, prompt string) (*Batch, error) {
		b := batchOf(prompt, "1-0")
		b.Images = append(b.Images, Wallpaper{ID: "1-1", Base64: base64.StdEncoding.EncodeToString([]byte("jpeg")), Prompt: prompt})
		return b, nil
	}}
	dir := t.TempDir()
	s := NewSession(gen, nil, NewLocalStorage(dir), quietLogger())
	require.NoError(t, s.Submit(context.Background(), "castle"))

	_, err := s.Download(context.Background(), "")
	assert.ErrorIs(t, err, ErrNothingSelected)

	res, err := s.Download(context.Background(), "1-0")
	require.NoError(t, err)
	assert.Equal(t, "wallpaper-1-0.png", res.Path)
	data, err := os.ReadFile(filepath.Join(dir, "wallpaper-1-0.png"))
	require.NoError(t, err)
	assert.Equal(t, "image-1-0", string(data))

	require.NoError(t, s.Select("1-1"))
	res, err = s.Download(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "wallpaper-1-1.jpg", res.Path)

	_, err = s.Download(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestSession_DownloadWithoutStorage(t *testing.T) {
	gen := &stubGenerator{generate: func(_ context.Context, prompt string) (*Batch, error) {
		return batchOf(prompt, "1-0"), nil
	}}
	s := NewSession(gen, nil, nil, quietLogger())
	require.NoError(t, s.Submit(context.Background(), "castle"))

	_, err := s.Download(context.Background(), "1-0")
	assert.ErrorIs(t, err, ErrStorageNotConfigured)
}

func TestSession_Settings(t *testing.T) {
	var tested []string
	gen := &stubGenerator{
		generate: func(context.Context, string) (*Batch, error) { return nil, nil },
		test: func(_ context.Context, key string) bool {
			tested = append(tested, key)
			return key == "good"
		},
	}
	creds := NewCredentialStore(kvstore.NewMemoryStore(), quietLogger())
	s := NewSession(gen, creds, nil, quietLogger())

	s.OpenSettings()
	assert.True(t, s.State().SettingsOpen)

	assert.ErrorIs(t, s.SaveKey("  "), ErrEmptyKey)
	_, ok := s.StoredKey()
	assert.False(t, ok)

	assert.False(t, s.TestKey(context.Background(), ""))
	assert.Empty(t, tested, "blank key makes no request")

	assert.True(t, s.TestKey(context.Background(), "good"))
	assert.False(t, s.TestKey(context.Background(), "bad"))

	require.NoError(t, s.SaveKey("good"))
	key, ok := s.StoredKey()
	require.True(t, ok)
	assert.Equal(t, "good", key)

	s.ClearKey()
	_, ok = s.StoredKey()
	assert.False(t, ok)

	s.CloseSettings()
	assert.False(t, s.State().SettingsOpen)
}

func TestSession_StateIsACopy(t *testing.T) {
	gen := &stubGenerator{generate: func(_ context.Context, prompt string) (*Batch, error) {
		return batchOf(prompt, "1-0"), nil
	}}
	s := NewSession(gen, nil, nil, quietLogger())
	require.NoError(t, s.Submit(context.Background(), "castle"))
	require.NoError(t, s.Select("1-0"))

	st := s.State()
	st.Images[0].ID = "mutated"
	st.Selected.ID = "mutated"

	again := s.State()
	assert.Equal(t, "1-0", again.Images[0].ID)
	assert.Equal(t, "1-0", again.Selected.ID)
}
