package llm

import (
	"context"
	"errors"
	"io"

	"github.com/sashabaranov/go-openai"
)

// Stream is an open question stream from the chat-completion API.
type Stream struct {
	upstream *openai.ChatCompletionStream
	cancel   context.CancelFunc
}

// Recv returns the next non-empty text delta. It returns io.EOF once the
// model has finished.
func (s *Stream) Recv() (string, error) {
	for {
		resp, err := s.upstream.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", translateError(err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

// Close releases the upstream connection.
func (s *Stream) Close() error {
	defer s.cancel()
	return s.upstream.Close()
}
