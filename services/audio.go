package services

import (
	"encoding/base64"
	"io"
	"net/http"

	tcmp3 "github.com/tcolgate/mp3"
)

// AssembleAudio wraps synthesized MP3 bytes into a draft-playable handle (a
// data: URL the client can feed straight into an audio element) plus the raw
// payload for the later upload. Both refer to the same bytes; no transcoding.
func AssembleAudio(data []byte) (string, []byte) {
	return "data:audio/mp3;base64," + base64.StdEncoding.EncodeToString(data), data
}

// MP3DurationFromURL fetches an MP3 by URL and returns its duration in
// seconds. Used by the background duration task, never on the publish path.
func MP3DurationFromURL(url string) (float64, error) {
	resp, err := http.Get(url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return MP3Duration(resp.Body)
}

func MP3Duration(r io.Reader) (float64, error) {
	var (
		dur     float64
		dec     = tcmp3.NewDecoder(r)
		frame   tcmp3.Frame
		skipped int
	)

	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			if err == io.EOF {
				break
			}
			return 0, err
		}
		dur += frame.Duration().Seconds()
	}

	return dur, nil
}
