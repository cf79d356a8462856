// Package stt transcribes recorded answers with the Google Cloud
// Speech-to-Text REST API.
package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/interviewer/pkg/audio"
	"github.com/papercomputeco/interviewer/pkg/upstream"
)

const provider = "google-speech"

// Fixed recognition settings for browser MediaRecorder output.
const (
	DefaultBaseURL    = "https://speech.googleapis.com"
	DefaultEncoding   = "WEBM_OPUS"
	DefaultSampleRate = 48000
	DefaultLanguage   = "en-US"
)

// NoTranscription is the text reported when the recognizer returns no
// result segments.
const NoTranscription = "No transcription available"

// Config configures the recognizer client.
type Config struct {
	APIKey     string
	BaseURL    string
	Encoding   string
	SampleRate int
	Language   string
	Timeout    time.Duration
}

// Transcript is the recognizer's answer for one recording.
type Transcript struct {
	Text     string
	Segments int
}

// Empty reports whether the recognizer produced no segments.
func (t Transcript) Empty() bool {
	return t.Segments == 0
}

// String returns the transcript text, or NoTranscription when empty.
func (t Transcript) String() string {
	if t.Empty() || t.Text == "" {
		return NoTranscription
	}
	return t.Text
}

// Client sends recordings to the recognize endpoint.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

type recognitionConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
	Model                      string `json:"model"`
	UseEnhanced                bool   `json:"useEnhanced"`
}

type recognitionAudio struct {
	Content string `json:"content"`
}

type recognizeRequest struct {
	Config recognitionConfig `json:"config"`
	Audio  recognitionAudio  `json:"audio"`
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

func NewClient(config Config, logger *zap.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Encoding == "" {
		config.Encoding = DefaultEncoding
	}
	if config.SampleRate <= 0 {
		config.SampleRate = DefaultSampleRate
	}
	if config.Language == "" {
		config.Language = DefaultLanguage
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Minute
	}

	return &Client{
		config:     config,
		logger:     logger,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Transcribe recognizes recording and joins the first alternative of every
// result segment with spaces.
func (c *Client) Transcribe(ctx context.Context, recording []byte) (Transcript, error) {
	if c.config.APIKey == "" {
		return Transcript{}, fmt.Errorf("transcribing audio: %w", upstream.ErrMissingCredential)
	}

	body, err := json.Marshal(recognizeRequest{
		Config: recognitionConfig{
			Encoding:                   c.config.Encoding,
			SampleRateHertz:            c.config.SampleRate,
			LanguageCode:               c.config.Language,
			EnableAutomaticPunctuation: true,
			Model:                      "default",
			UseEnhanced:                true,
		},
		Audio: recognitionAudio{Content: audio.Encode(recording)},
	})
	if err != nil {
		return Transcript{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/v1/speech:recognize?key=" + url.QueryEscape(c.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Transcript{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("requesting transcription",
		zap.String("encoding", c.config.Encoding),
		zap.Int("audio_bytes", len(recording)),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The request URL carries the key; drop it from the error.
		if urlErr, ok := err.(*url.Error); ok {
			err = urlErr.Err
		}
		return Transcript{}, fmt.Errorf("%s request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Transcript{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Transcript{}, &upstream.Error{Provider: provider, StatusCode: resp.StatusCode, Body: string(data)}
	}

	var result recognizeResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return Transcript{}, fmt.Errorf("unmarshal response: %w", err)
	}

	parts := make([]string, 0, len(result.Results))
	for _, segment := range result.Results {
		if len(segment.Alternatives) == 0 {
			parts = append(parts, "")
			continue
		}
		parts = append(parts, segment.Alternatives[0].Transcript)
	}

	transcript := Transcript{
		Text:     strings.TrimSpace(strings.Join(parts, " ")),
		Segments: len(result.Results),
	}

	c.logger.Debug("transcription received",
		zap.Int("segments", transcript.Segments),
		zap.Int("text_length", len(transcript.Text)),
	)

	return transcript, nil
}
