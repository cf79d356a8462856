// Package llm generates interview questions through an OpenAI-compatible
// chat-completion API, streaming the reply back token by token.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/papercomputeco/interviewer/pkg/api"
	"github.com/papercomputeco/interviewer/pkg/logger"
	"github.com/papercomputeco/interviewer/pkg/upstream"
)

const provider = "openai"

// Generator opens question streams against the chat-completion API.
type Generator struct {
	client *openai.Client
	opts   Options
	logger *zap.Logger
}

// NewGenerator creates a Generator. A missing API key is not an error here;
// every Open call fails with upstream.ErrMissingCredential instead.
func NewGenerator(opts Options, logger *zap.Logger) *Generator {
	opts = opts.withDefaults()

	config := openai.DefaultConfig(opts.APIKey)
	config.BaseURL = opts.BaseURL

	return &Generator{
		client: openai.NewClientWithConfig(config),
		opts:   opts,
		logger: logger,
	}
}

// Open starts a streamed completion for the next interview question.
func (g *Generator) Open(ctx context.Context, req api.QuestionRequest) (*Stream, error) {
	if g.opts.APIKey == "" {
		return nil, fmt.Errorf("opening question stream: %w", upstream.ErrMissingCredential)
	}

	messages := BuildMessages(req.ResumeText, req.Messages)

	g.logger.Debug("requesting question stream",
		zap.String("model", g.opts.Model),
		zap.Int("message_count", len(messages)),
		zap.String("resume_preview", logger.Truncate(req.ResumeText, 50)),
	)

	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	stream, err := g.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       g.opts.Model,
		Messages:    messages,
		Stream:      true,
		Temperature: requestTemperature(*g.opts.Temperature),
	})
	if err != nil {
		cancel()
		return nil, translateError(err)
	}

	return &Stream{upstream: stream, cancel: cancel}, nil
}

// go-openai omits a zero temperature from the request, which the API reads
// as its own default.
func requestTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// Question opens a stream and collects it into the full question text.
func (g *Generator) Question(ctx context.Context, req api.QuestionRequest) (string, error) {
	stream, err := g.Open(ctx, req)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
		sb.WriteString(delta)
	}
}

// translateError turns go-openai failures carrying an HTTP status into
// *upstream.Error so the status can be relayed.
func translateError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &upstream.Error{Provider: provider, StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &upstream.Error{Provider: provider, StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}

	return fmt.Errorf("%s request failed: %w", provider, err)
}
