// Package tts synthesizes interview questions to speech with ElevenLabs.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/interviewer/pkg/audio"
	"github.com/papercomputeco/interviewer/pkg/logger"
	"github.com/papercomputeco/interviewer/pkg/upstream"
)

const provider = "elevenlabs"

// Defaults for the fixed voice configuration.
const (
	DefaultBaseURL         = "https://api.elevenlabs.io"
	DefaultVoiceID         = "ErXwobaYiN019PkySvjV"
	DefaultModelID         = "eleven_multilingual_v2"
	DefaultStability       = 0.5
	DefaultSimilarityBoost = 0.8
)

// ErrEmptyText is returned for empty or whitespace-only input.
var ErrEmptyText = errors.New("text is required and must be a non-empty string")

// Config configures the ElevenLabs client.
type Config struct {
	APIKey  string
	BaseURL string
	VoiceID string
	ModelID string
	Timeout time.Duration
}

// Client converts text to MPEG audio.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

func NewClient(config Config, logger *zap.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.VoiceID == "" {
		config.VoiceID = DefaultVoiceID
	}
	if config.ModelID == "" {
		config.ModelID = DefaultModelID
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

// Synthesize returns the audio bytes for text. Empty text and a missing API
// key fail before any network call.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("synthesizing speech: %w", upstream.ErrMissingCredential)
	}

	body, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: c.config.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       DefaultStability,
			SimilarityBoost: DefaultSimilarityBoost,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s/stream", strings.TrimRight(c.config.BaseURL, "/"), c.config.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", audio.DefaultMIMEType)

	c.logger.Debug("requesting speech synthesis",
		zap.String("voice", c.config.VoiceID),
		zap.String("text_preview", logger.Truncate(text, 50)),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &upstream.Error{Provider: provider, StatusCode: resp.StatusCode, Body: string(data)}
	}

	return data, nil
}
