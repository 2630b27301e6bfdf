package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/podcastr/podcastr-backend/models"
)

type DraftState string

const (
	StateIdle       DraftState = "idle"
	StateGenerating DraftState = "generating"
	StateGenerated  DraftState = "generated"
	StateSaving     DraftState = "saving"
	StateSaved      DraftState = "saved"
)

// Draft is the in-memory authoring state. It is owned by a single authoring
// session and discarded once saved; only the record written by Save survives.
type Draft struct {
	Title       string
	Description string
	VoiceType   string
	VoicePrompt string // raw user input; normalized at synthesis time

	AudioBlob []byte
	AudioURL  string // playable handle over AudioBlob

	ThumbnailURL       string
	ThumbnailStorageID string

	State DraftState
}

func NewDraft() *Draft {
	return &Draft{State: StateIdle}
}

// Identity is the authenticated caller, passed explicitly into the workflow
// rather than read from any ambient session state.
type Identity struct {
	ID        string
	Email     string // stable identifier used for ownership attribution
	Name      string
	AvatarURL string
}

// BlobStore is the durable object store. The caller chooses the object path;
// the store returns the durable retrievable URL.
type BlobStore interface {
	UploadBytes(objectPath string, data []byte, contentType string) (string, error)
	Delete(objectPath string) error
}

// PodcastStore writes podcast records. The publish workflow only ever inserts.
type PodcastStore interface {
	Insert(ctx context.Context, p *models.Podcast) error
}

var (
	ErrPromptRequired   = errors.New("please select a voice and enter a prompt")
	ErrUnsupportedVoice = errors.New("unsupported voice type")
	ErrDraftNotReady    = errors.New("please generate audio/thumbnail to save")
	ErrNotAuthenticated = errors.New("user not authenticated")
	ErrBusy             = errors.New("another operation is still in progress")
)

// PublishWorkflow drives the authoring state machine
//
//	Idle → Generating → Generated → Saving → Saved
//
// with Generating → Idle and Saving → Generated on failure. No failure state
// is terminal; each operation may be retried by a new explicit call.
type PublishWorkflow struct {
	TTS   Synthesizer
	Blobs BlobStore
	Store PodcastStore

	Now   func() time.Time
	NewID func() uuid.UUID
}

func NewPublishWorkflow(tts Synthesizer, blobs BlobStore, store PodcastStore) *PublishWorkflow {
	return &PublishWorkflow{
		TTS:   tts,
		Blobs: blobs,
		Store: store,
		Now:   time.Now,
		NewID: uuid.New,
	}
}

// Generate runs normalize → synthesize → assemble on the draft. On failure the
// draft keeps its text fields, carries no audio and returns to Idle; the user
// retries with another explicit call.
func (w *PublishWorkflow) Generate(ctx context.Context, d *Draft) error {
	if d.State == StateGenerating || d.State == StateSaving {
		return ErrBusy
	}

	prompt := CleanVoicePrompt(d.VoicePrompt)
	if prompt == "" || d.VoiceType == "" {
		return ErrPromptRequired
	}
	if !IsSupportedVoice(d.VoiceType) {
		return ErrUnsupportedVoice
	}

	d.State = StateGenerating
	d.AudioBlob = nil
	d.AudioURL = ""

	audio, err := w.TTS.Synthesize(ctx, d.VoiceType, prompt)
	if err != nil {
		d.State = StateIdle
		return fmt.Errorf("failed to generate podcast, please try again: %w", err)
	}

	d.AudioURL, d.AudioBlob = AssembleAudio(audio)
	d.State = StateGenerated
	return nil
}

// AttachThumbnail uploads a user-selected image under thumbnails/ with a fresh
// random identifier and records the resulting URL on the draft. Overlapping
// uploads are last-write-wins: a superseded upload runs to completion and its
// URL is simply overwritten by the newest resolution.
func (w *PublishWorkflow) AttachThumbnail(d *Draft, data []byte, ext, contentType string) error {
	url, objectPath, err := UploadThumbnail(w.Blobs, w.NewID(), data, ext, contentType)
	if err != nil {
		return err
	}
	d.ThumbnailURL = url
	d.ThumbnailStorageID = objectPath
	return nil
}

// UploadThumbnail stores image bytes at thumbnails/<id><ext> and returns the
// public URL plus the object path kept for later deletion.
func UploadThumbnail(blobs BlobStore, id uuid.UUID, data []byte, ext, contentType string) (string, string, error) {
	if len(data) == 0 {
		return "", "", errors.New("error generating thumbnail: empty image")
	}
	objectPath := "thumbnails/" + id.String() + ext
	url, err := blobs.UploadBytes(objectPath, data, contentType)
	if err != nil {
		return "", "", fmt.Errorf("error generating thumbnail: %w", err)
	}
	return url, objectPath, nil
}

// Save publishes the draft: uploads the audio under a fresh random filename
// scoped to the author, then inserts the podcast record. Preconditions are
// checked up front and abort with no partial write. On success the audio and
// thumbnail state is cleared (text fields stay) and the draft is back at Idle,
// ready for a fresh authoring round; on failure everything is kept so the
// user can retry from Generated.
func (w *PublishWorkflow) Save(ctx context.Context, d *Draft, who Identity) (*models.Podcast, error) {
	if d.State == StateGenerating || d.State == StateSaving {
		return nil, ErrBusy
	}
	if len(d.AudioBlob) == 0 || d.ThumbnailURL == "" {
		return nil, ErrDraftNotReady
	}
	if who.Email == "" {
		return nil, ErrNotAuthenticated
	}

	d.State = StateSaving

	fileName := w.NewID().String() + ".mp3"
	audioPath := fmt.Sprintf("podcasts/%s/%s", who.Email, fileName)

	audioURL, err := w.Blobs.UploadBytes(audioPath, d.AudioBlob, "audio/mpeg")
	if err != nil {
		d.State = StateGenerated
		return nil, fmt.Errorf("failed to save podcast: %w", err)
	}

	author := who.Name
	if author == "" {
		author = "Unknown"
	}

	record := &models.Podcast{
		ID:                 w.NewID(),
		User:               who.Email,
		PodcastTitle:       d.Title,
		PodcastDescription: d.Description,
		AudioURL:           audioURL,
		AudioStorageID:     audioPath,
		ImageURL:           d.ThumbnailURL,
		ImageStorageID:     d.ThumbnailStorageID,
		Author:             author,
		AuthorID:           who.Email,
		AuthorImageURL:     who.AvatarURL,
		VoicePrompt:        CleanVoicePrompt(d.VoicePrompt),
		VoiceType:          d.VoiceType,
		AudioDuration:      0,
		Views:              0,
		CreatedAt:          w.Now(),
	}

	if err := w.Store.Insert(ctx, record); err != nil {
		d.State = StateGenerated
		return nil, fmt.Errorf("failed to save podcast: %w", err)
	}

	// Saved collapses straight back to a fresh Idle draft: media state is
	// cleared, entered text survives for the next podcast.
	d.AudioBlob = nil
	d.AudioURL = ""
	d.ThumbnailURL = ""
	d.ThumbnailStorageID = ""
	d.State = StateIdle

	return record, nil
}
