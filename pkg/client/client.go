// Package client calls the interview server's HTTP endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/interviewer/pkg/api"
	"github.com/papercomputeco/interviewer/pkg/audio"
	"github.com/papercomputeco/interviewer/pkg/upstream"
)

const serverName = "interviewer"

// Turn is an interviewer turn returned by /extract-text.
type Turn struct {
	Question string
	Audio    []byte

	// ResumeText is set only when a document was uploaded.
	ResumeText string

	// NoText is true when the uploaded document had no pages.
	NoText bool
}

// Client talks to one interview server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Client for the server at baseURL.
func New(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     logger,
	}
}

// ExtractResume uploads a PDF résumé and returns the first question.
func (c *Client) ExtractResume(ctx context.Context, filename string, document []byte) (Turn, error) {
	body, contentType, err := buildForm(nil, "file", filename, "application/pdf", document)
	if err != nil {
		return Turn{}, err
	}
	return c.extract(ctx, body, contentType)
}

// NextTurn asks for the next question given the résumé text and history.
func (c *Client) NextTurn(ctx context.Context, resumeText string, history []api.Message) (Turn, error) {
	messages, err := json.Marshal(history)
	if err != nil {
		return Turn{}, fmt.Errorf("marshal history: %w", err)
	}
	fields := map[string]string{"resumeText": resumeText, "messages": string(messages)}

	body, contentType, err := buildForm(fields, "", "", "", nil)
	if err != nil {
		return Turn{}, err
	}
	return c.extract(ctx, body, contentType)
}

func (c *Client) extract(ctx context.Context, body io.Reader, contentType string) (Turn, error) {
	var resp api.ExtractResponse
	if err := c.post(ctx, "/extract-text", contentType, body, &resp); err != nil {
		return Turn{}, err
	}

	turn := Turn{ResumeText: resp.ResumeText}
	if resp.Text == nil {
		turn.NoText = true
		return turn, nil
	}
	turn.Question = *resp.Text

	if resp.Audio != "" {
		data, err := audio.Decode(resp.Audio)
		if err != nil {
			return Turn{}, err
		}
		turn.Audio = data
	}
	return turn, nil
}

// Question streams a question from /openai-gpt and returns the full text.
func (c *Client) Question(ctx context.Context, req api.QuestionRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.send(ctx, "/openai-gpt", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read question stream: %w", err)
	}
	return string(text), nil
}

// Synthesize returns the speech audio for text.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var resp api.SynthesisResponse
	if err := c.post(ctx, "/eleven-labs", "application/json", bytes.NewReader(payload), &resp); err != nil {
		return nil, err
	}
	return audio.Decode(resp.Audio)
}

// Transcribe uploads a WebM/Opus recording and returns its transcript.
func (c *Client) Transcribe(ctx context.Context, filename string, recording []byte) (string, error) {
	body, contentType, err := buildForm(nil, "audio", filename, "audio/webm", recording)
	if err != nil {
		return "", err
	}

	var resp api.TranscriptionResponse
	if err := c.post(ctx, "/google-cloud-stt", contentType, body, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	resp, err := c.send(ctx, path, contentType, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// send performs the request and turns non-2xx answers into *upstream.Error.
func (c *Client) send(ctx context.Context, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	c.logger.Debug("calling interview server", zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)

		message := string(data)
		var apiErr api.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			message = apiErr.Error
		}
		return nil, &upstream.Error{Provider: serverName, StatusCode: resp.StatusCode, Body: message}
	}

	return resp, nil
}

// buildForm writes fields and, when fileField is set, one file part.
func buildForm(fields map[string]string, fileField, filename, fileType string, data []byte) (io.Reader, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	if fileField != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, filename))
		h.Set("Content-Type", fileType)
		part, err := writer.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

// IsStatus reports whether err is a server answer with the given status.
func IsStatus(err error, status int) bool {
	var upErr *upstream.Error
	return errors.As(err, &upErr) && upErr.StatusCode == status
}
