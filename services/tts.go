package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// SupportedVoices is the fixed set of synthesis voices the voice picker offers.
var SupportedVoices = []string{
	"en-US_AllisonV3Voice",
	"en-GB_JamesV3Voice",
}

func IsSupportedVoice(voice string) bool {
	for _, v := range SupportedVoices {
		if v == voice {
			return true
		}
	}
	return false
}

// ErrMissingInput signals that synthesize was called without text or voice.
// Callers are expected to validate first; this is the backstop.
var ErrMissingInput = errors.New("text and voice are required")

// Synthesizer converts text plus a voice selection into MP3 audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, voiceType, text string) ([]byte, error)
}

// WatsonTTS calls an IBM Watson-compatible text-to-speech service over HTTP.
// A single attempt either succeeds or the whole operation fails; no retry.
type WatsonTTS struct {
	ServiceURL string
	APIKey     string
	Client     *http.Client
}

func NewWatsonTTSFromEnv() *WatsonTTS {
	return &WatsonTTS{
		ServiceURL: strings.TrimRight(os.Getenv("WATSON_SERVICE_URL"), "/"),
		APIKey:     os.Getenv("WATSON_API_KEY"),
		Client:     &http.Client{},
	}
}

func (w *WatsonTTS) Synthesize(ctx context.Context, voiceType, text string) ([]byte, error) {
	if text == "" || voiceType == "" {
		return nil, ErrMissingInput
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("failed to generate podcast: %v", err)
	}

	reqURL := fmt.Sprintf("%s/v1/synthesize?voice=%s", w.ServiceURL, url.QueryEscape(voiceType))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to generate podcast: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mp3")
	req.SetBasicAuth("apikey", w.APIKey)

	resp, err := w.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to generate podcast: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("failed to generate podcast: synthesis service returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to generate podcast: %v", err)
	}
	if !looksLikeMP3(audio) {
		return nil, errors.New("failed to generate podcast: no audio data received")
	}
	return audio, nil
}

// looksLikeMP3 accepts an ID3 tag or an MPEG frame sync at the start.
func looksLikeMP3(b []byte) bool {
	if len(b) < 3 {
		return false
	}
	if b[0] == 'I' && b[1] == 'D' && b[2] == '3' {
		return true
	}
	return b[0] == 0xFF && b[1]&0xE0 == 0xE0
}

// NewSynthesizerFromEnv picks the synthesis engine. Watson-compatible HTTP is
// the default; TTS_ENGINE=google switches to Google Cloud TTS.
func NewSynthesizerFromEnv() Synthesizer {
	if os.Getenv("TTS_ENGINE") == "google" {
		return NewGoogleTTSFromEnv()
	}
	return NewWatsonTTSFromEnv()
}
