package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/interviewer/pkg/api"
	"github.com/papercomputeco/interviewer/pkg/logger"
)

// handleQuestion relays the generated question to the client as plain text,
// one delta at a time.
func (s *Server) handleQuestion(c *fiber.Ctx) error {
	startTime := time.Now()

	var req api.QuestionRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Error("failed to parse request", zap.Error(err))
		return badRequest(c, "invalid request body")
	}

	s.logger.Debug("received question request",
		zap.Int("message_count", len(req.Messages)),
		zap.Int("resume_length", len(req.ResumeText)),
	)

	// The body is written after this handler returns, so the stream must not
	// be bound to the request context.
	ctx := context.Background()
	stream, err := s.generator.Open(ctx, req)
	if err != nil {
		s.metrics.RecordUpstream(ctx, providerOpenAI, err, time.Since(startTime))
		return s.upstreamFailure(c, providerOpenAI, err)
	}

	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set(fiber.HeaderTransferEncoding, "chunked")
	c.Set(fiber.HeaderCacheControl, "no-cache")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer stream.Close()

		var written int
		var streamErr error
		for {
			delta, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				streamErr = err
				s.logger.Error("error reading question stream", zap.Error(err))
				break
			}

			if _, err := w.WriteString(delta); err != nil {
				s.logger.Warn("client went away mid-stream", zap.Error(err))
				break
			}
			if err := w.Flush(); err != nil {
				s.logger.Warn("client went away mid-stream", zap.Error(err))
				break
			}
			written += len(delta)

			s.logger.Debug("streaming chunk", zap.String("content", logger.Truncate(delta, 50)))
		}

		s.metrics.RecordUpstream(ctx, providerOpenAI, streamErr, time.Since(startTime))
		s.logger.Debug("streaming complete",
			zap.Int("bytes", written),
			zap.Duration("duration", time.Since(startTime)),
		)
	}))

	return nil
}
