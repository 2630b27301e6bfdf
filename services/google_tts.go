package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

// GoogleTTS synthesizes speech through Google Cloud Text-to-Speech. Long
// prompts are split into chunks below the service's 5000-byte input limit and
// the MP3 segments are concatenated.
type GoogleTTS struct {
	CredentialsFile string
}

func NewGoogleTTSFromEnv() *GoogleTTS {
	return &GoogleTTS{CredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_JSON")}
}

func (g *GoogleTTS) Synthesize(ctx context.Context, voiceType, text string) ([]byte, error) {
	if text == "" || voiceType == "" {
		return nil, ErrMissingInput
	}
	if g.CredentialsFile == "" {
		return nil, errors.New("GOOGLE_CREDENTIALS_JSON environment variable is not set")
	}

	client, err := texttospeech.NewClient(ctx, option.WithCredentialsFile(g.CredentialsFile))
	if err != nil {
		return nil, err
	}
	defer client.Close()

	chunks := splitTextToChunksByByte(text, 4500)
	var allAudio []byte

	for _, chunk := range chunks {
		req := &texttospeechpb.SynthesizeSpeechRequest{
			Input: &texttospeechpb.SynthesisInput{
				InputSource: &texttospeechpb.SynthesisInput_Text{
					Text: chunk,
				},
			},
			Voice: &texttospeechpb.VoiceSelectionParams{
				LanguageCode: languageCodeOf(voiceType),
				Name:         voiceType,
			},
			AudioConfig: &texttospeechpb.AudioConfig{
				AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			},
		}

		resp, err := client.SynthesizeSpeech(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to generate podcast: %v", err)
		}
		allAudio = append(allAudio, resp.AudioContent...)
	}

	return allAudio, nil
}

// languageCodeOf extracts "en-US" from voice names like "en-US_AllisonV3Voice".
func languageCodeOf(voice string) string {
	if idx := strings.Index(voice, "_"); idx > 0 {
		return voice[:idx]
	}
	return "en-US"
}

// splitTextToChunksByByte splits text on a byte budget, preferring sentence
// boundaries and never cutting inside a UTF-8 sequence.
func splitTextToChunksByByte(text string, maxBytes int) []string {
	var chunks []string
	remaining := text

	for len(remaining) > 0 {
		if len(remaining) <= maxBytes {
			chunks = append(chunks, remaining)
			break
		}

		cutPos := maxBytes
		for i := cutPos; i > 0; i-- {
			if remaining[i-1] == '.' || remaining[i-1] == '!' || remaining[i-1] == '?' || remaining[i-1] == '\n' {
				cutPos = i
				break
			}
		}

		for cutPos < len(remaining) && (remaining[cutPos]&0xC0) == 0x80 {
			cutPos++
		}

		chunks = append(chunks, remaining[:cutPos])
		remaining = remaining[cutPos:]
	}

	return chunks
}
