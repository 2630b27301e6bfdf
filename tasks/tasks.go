package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TypeAudioDuration = "podcast:audio_duration"

// Enqueuer is the slice of asynq.Client the API server needs; tests swap in
// a recorder.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type AudioDurationPayload struct {
	PodcastID string
	AudioURL  string
}

// NewAudioDurationTask backfills audio_duration for a freshly published
// podcast. Duration is deliberately not computed on the publish path; records
// are inserted with duration 0 and corrected here.
func NewAudioDurationTask(podcastID, audioURL string) (*asynq.Task, error) {
	payload, err := json.Marshal(AudioDurationPayload{
		PodcastID: podcastID,
		AudioURL:  audioURL,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAudioDuration, payload), nil
}
