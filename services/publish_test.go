package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podcastr/podcastr-backend/models"
)

// ====== FAKES ======

type fakeSynth struct {
	gotVoice string
	gotText  string
	calls    int
	audio    []byte
	err      error
}

func (f *fakeSynth) Synthesize(ctx context.Context, voiceType, text string) ([]byte, error) {
	f.calls++
	f.gotVoice = voiceType
	f.gotText = text
	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}

type upload struct {
	path        string
	data        []byte
	contentType string
}

type fakeBlobs struct {
	uploads []upload
	deleted []string
	err     error
}

func (f *fakeBlobs) UploadBytes(objectPath string, data []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, upload{objectPath, data, contentType})
	return "https://cdn.example.com/" + objectPath, nil
}

func (f *fakeBlobs) Delete(objectPath string) error {
	f.deleted = append(f.deleted, objectPath)
	return nil
}

type fakeStore struct {
	inserted []*models.Podcast
	err      error
}

func (f *fakeStore) Insert(ctx context.Context, p *models.Podcast) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, p)
	return nil
}

func newTestWorkflow(synth *fakeSynth, blobs *fakeBlobs, store *fakeStore) *PublishWorkflow {
	w := NewPublishWorkflow(synth, blobs, store)
	w.Now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return w
}

func readyDraft() *Draft {
	return &Draft{
		Title:              "Morning show",
		Description:        "A test episode",
		VoiceType:          "en-US_AllisonV3Voice",
		VoicePrompt:        "Hello   \n   world",
		AudioBlob:          []byte("ID3 fake audio"),
		AudioURL:           "data:audio/mp3;base64,xxxx",
		ThumbnailURL:       "https://cdn.example.com/thumbnails/t.png",
		ThumbnailStorageID: "thumbnails/t.png",
		State:              StateGenerated,
	}
}

var identity = Identity{
	ID:        "u-1",
	Email:     "alice@example.com",
	Name:      "Alice",
	AvatarURL: "https://cdn.example.com/alice.png",
}

// ====== GENERATE ======

func TestGeneratePassesNormalizedPrompt(t *testing.T) {
	synth := &fakeSynth{audio: []byte("ID3 audio bytes")}
	w := newTestWorkflow(synth, &fakeBlobs{}, &fakeStore{})

	d := NewDraft()
	d.VoiceType = "en-US_AllisonV3Voice"
	d.VoicePrompt = "Hello   \n   world"

	err := w.Generate(context.Background(), d)
	require.NoError(t, err)

	assert.Equal(t, "Hello world", synth.gotText)
	assert.Equal(t, "en-US_AllisonV3Voice", synth.gotVoice)
	assert.Equal(t, StateGenerated, d.State)
	assert.Equal(t, []byte("ID3 audio bytes"), d.AudioBlob)
	assert.True(t, strings.HasPrefix(d.AudioURL, "data:audio/mp3;base64,"))
}

func TestGenerateRequiresPromptAndVoice(t *testing.T) {
	synth := &fakeSynth{audio: []byte("ID3")}
	w := newTestWorkflow(synth, &fakeBlobs{}, &fakeStore{})

	cases := []struct {
		name   string
		prompt string
		voice  string
	}{
		{"no prompt", "", "en-US_AllisonV3Voice"},
		{"whitespace only prompt", "  \n\t ", "en-US_AllisonV3Voice"},
		{"no voice", "Hello world", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDraft()
			d.VoicePrompt = tc.prompt
			d.VoiceType = tc.voice

			err := w.Generate(context.Background(), d)
			assert.ErrorIs(t, err, ErrPromptRequired)
			assert.Equal(t, StateIdle, d.State)
			assert.Zero(t, synth.calls)
		})
	}
}

func TestGenerateRejectsUnsupportedVoice(t *testing.T) {
	synth := &fakeSynth{audio: []byte("ID3")}
	w := newTestWorkflow(synth, &fakeBlobs{}, &fakeStore{})

	d := NewDraft()
	d.VoicePrompt = "Hello world"
	d.VoiceType = "fr-FR_NicolasV3Voice"

	err := w.Generate(context.Background(), d)
	assert.ErrorIs(t, err, ErrUnsupportedVoice)
	assert.Zero(t, synth.calls)
}

func TestGenerateFailureReturnsToIdleWithNoAudio(t *testing.T) {
	synth := &fakeSynth{err: errors.New("upstream 500")}
	blobs := &fakeBlobs{}
	w := newTestWorkflow(synth, blobs, &fakeStore{})

	d := NewDraft()
	d.VoicePrompt = "Hello world"
	d.VoiceType = "en-US_AllisonV3Voice"

	err := w.Generate(context.Background(), d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate podcast")

	assert.Equal(t, StateIdle, d.State)
	assert.Nil(t, d.AudioBlob)
	assert.Empty(t, d.AudioURL)
	assert.Equal(t, "Hello world", CleanVoicePrompt(d.VoicePrompt)) // text survives
	assert.Empty(t, blobs.uploads)
}

func TestGenerateBusyGuard(t *testing.T) {
	synth := &fakeSynth{audio: []byte("ID3")}
	w := newTestWorkflow(synth, &fakeBlobs{}, &fakeStore{})

	for _, state := range []DraftState{StateGenerating, StateSaving} {
		d := readyDraft()
		d.State = state
		err := w.Generate(context.Background(), d)
		assert.ErrorIs(t, err, ErrBusy)
	}
	assert.Zero(t, synth.calls)
}

// ====== THUMBNAIL ======

func TestAttachThumbnailLastWriteWins(t *testing.T) {
	blobs := &fakeBlobs{}
	w := newTestWorkflow(&fakeSynth{}, blobs, &fakeStore{})
	d := NewDraft()

	require.NoError(t, w.AttachThumbnail(d, []byte("first"), ".png", "image/png"))
	firstURL := d.ThumbnailURL
	require.NoError(t, w.AttachThumbnail(d, []byte("second"), ".jpg", "image/jpeg"))

	assert.Len(t, blobs.uploads, 2) // earlier upload still completed
	assert.NotEqual(t, firstURL, d.ThumbnailURL)
	assert.True(t, strings.HasPrefix(d.ThumbnailStorageID, "thumbnails/"))
	assert.True(t, strings.HasSuffix(d.ThumbnailStorageID, ".jpg"))
}

func TestUploadThumbnailRejectsEmptyImage(t *testing.T) {
	blobs := &fakeBlobs{}
	w := newTestWorkflow(&fakeSynth{}, blobs, &fakeStore{})
	d := NewDraft()

	err := w.AttachThumbnail(d, nil, ".png", "image/png")
	require.Error(t, err)
	assert.Empty(t, blobs.uploads)
	assert.Empty(t, d.ThumbnailURL)
}

// ====== SAVE ======

func TestSaveRequiresAudioAndThumbnail(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Draft)
	}{
		{"no audio", func(d *Draft) { d.AudioBlob = nil }},
		{"no thumbnail", func(d *Draft) { d.ThumbnailURL = "" }},
		{"neither", func(d *Draft) { d.AudioBlob = nil; d.ThumbnailURL = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			blobs := &fakeBlobs{}
			store := &fakeStore{}
			w := newTestWorkflow(&fakeSynth{}, blobs, store)

			d := readyDraft()
			tc.mutate(d)

			record, err := w.Save(context.Background(), d, identity)
			assert.ErrorIs(t, err, ErrDraftNotReady)
			assert.Nil(t, record)
			// Aborts before touching storage: no upload, no insert
			assert.Empty(t, blobs.uploads)
			assert.Empty(t, store.inserted)
		})
	}
}

func TestSaveRequiresIdentity(t *testing.T) {
	blobs := &fakeBlobs{}
	store := &fakeStore{}
	w := newTestWorkflow(&fakeSynth{}, blobs, store)

	record, err := w.Save(context.Background(), readyDraft(), Identity{})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Nil(t, record)
	assert.Empty(t, blobs.uploads)
	assert.Empty(t, store.inserted)
}

func TestSaveWritesRecordAndResetsDraft(t *testing.T) {
	blobs := &fakeBlobs{}
	store := &fakeStore{}
	w := newTestWorkflow(&fakeSynth{}, blobs, store)

	d := readyDraft()
	record, err := w.Save(context.Background(), d, identity)
	require.NoError(t, err)
	require.NotNil(t, record)

	// Audio lands under the author's folder with a random .mp3 name
	require.Len(t, blobs.uploads, 1)
	up := blobs.uploads[0]
	assert.True(t, strings.HasPrefix(up.path, "podcasts/alice@example.com/"))
	assert.True(t, strings.HasSuffix(up.path, ".mp3"))
	assert.Equal(t, []byte("ID3 fake audio"), up.data)
	assert.Equal(t, "audio/mpeg", up.contentType)

	// Record fields
	require.Len(t, store.inserted, 1)
	assert.Equal(t, "Morning show", record.PodcastTitle)
	assert.Equal(t, "alice@example.com", record.User)
	assert.Equal(t, "alice@example.com", record.AuthorID)
	assert.Equal(t, "Alice", record.Author)
	assert.Equal(t, "Hello world", record.VoicePrompt) // normalized form persisted
	assert.Equal(t, 0, record.Views)
	assert.Equal(t, 0.0, record.AudioDuration)
	assert.Equal(t, up.path, record.AudioStorageID)
	assert.NotEmpty(t, record.AudioURL)

	// Draft collapses back to a fresh Idle with text kept
	assert.Equal(t, StateIdle, d.State)
	assert.Nil(t, d.AudioBlob)
	assert.Empty(t, d.AudioURL)
	assert.Empty(t, d.ThumbnailURL)
	assert.Empty(t, d.ThumbnailStorageID)
	assert.Equal(t, "Morning show", d.Title)
}

func TestSaveFallsBackToUnknownAuthor(t *testing.T) {
	store := &fakeStore{}
	w := newTestWorkflow(&fakeSynth{}, &fakeBlobs{}, store)

	who := identity
	who.Name = ""
	record, err := w.Save(context.Background(), readyDraft(), who)
	require.NoError(t, err)
	assert.Equal(t, "Unknown", record.Author)
}

func TestSequentialSavesGetDistinctIDsAndPaths(t *testing.T) {
	blobs := &fakeBlobs{}
	store := &fakeStore{}
	w := newTestWorkflow(&fakeSynth{}, blobs, store)

	first, err := w.Save(context.Background(), readyDraft(), identity)
	require.NoError(t, err)
	second, err := w.Save(context.Background(), readyDraft(), identity)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.AudioStorageID, second.AudioStorageID)
	require.Len(t, blobs.uploads, 2)
	assert.NotEqual(t, blobs.uploads[0].path, blobs.uploads[1].path)
}

func TestSaveUploadFailureKeepsDraftGenerated(t *testing.T) {
	blobs := &fakeBlobs{err: errors.New("bucket unavailable")}
	store := &fakeStore{}
	w := newTestWorkflow(&fakeSynth{}, blobs, store)

	d := readyDraft()
	record, err := w.Save(context.Background(), d, identity)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save podcast")
	assert.Nil(t, record)
	assert.Empty(t, store.inserted)

	// Draft keeps its media so the user can retry
	assert.Equal(t, StateGenerated, d.State)
	assert.NotNil(t, d.AudioBlob)
	assert.NotEmpty(t, d.ThumbnailURL)
}

func TestSaveInsertFailureKeepsDraftGenerated(t *testing.T) {
	blobs := &fakeBlobs{}
	store := &fakeStore{err: errors.New("db down")}
	w := newTestWorkflow(&fakeSynth{}, blobs, store)

	d := readyDraft()
	record, err := w.Save(context.Background(), d, identity)
	require.Error(t, err)
	assert.Nil(t, record)
	assert.Empty(t, store.inserted)

	assert.Equal(t, StateGenerated, d.State)
	assert.NotNil(t, d.AudioBlob)
	assert.NotEmpty(t, d.ThumbnailURL)
}

func TestSaveBusyGuard(t *testing.T) {
	store := &fakeStore{}
	w := newTestWorkflow(&fakeSynth{}, &fakeBlobs{}, store)

	for _, state := range []DraftState{StateGenerating, StateSaving} {
		d := readyDraft()
		d.State = state
		record, err := w.Save(context.Background(), d, identity)
		assert.ErrorIs(t, err, ErrBusy)
		assert.Nil(t, record)
	}
	assert.Empty(t, store.inserted)
}
