package server

import (
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/interviewer/pkg/api"
	"github.com/papercomputeco/interviewer/pkg/logger"
)

// handleTranscribe recognizes the multipart "audio" recording.
func (s *Server) handleTranscribe(c *fiber.Ctx) error {
	file, err := c.FormFile("audio")
	if err != nil {
		return badRequest(c, "audio is required")
	}

	contentType := file.Header.Get(fiber.HeaderContentType)
	if !acceptedAudioType(contentType) {
		return badRequest(c, fmt.Sprintf("audio has unsupported content type %q", contentType))
	}

	if file.Size > int64(s.config.MaxAudioBytes) {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(
			api.NewError(fmt.Sprintf("audio exceeds %d bytes", s.config.MaxAudioBytes)),
		)
	}

	recording, err := readFormFile(file)
	if err != nil {
		s.logger.Error("failed to read audio", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(api.NewError("failed to read audio"))
	}

	ctx := c.UserContext()
	start := time.Now()
	transcript, err := s.transcriber.Transcribe(ctx, recording)
	s.metrics.RecordUpstream(ctx, providerGoogle, err, time.Since(start))
	if err != nil {
		return s.upstreamFailure(c, providerGoogle, err)
	}

	s.logger.Debug("transcribed answer",
		zap.Int("segments", transcript.Segments),
		zap.String("text_preview", logger.Truncate(transcript.Text, 50)),
	)

	return c.JSON(api.TranscriptionResponse{
		Status: api.StatusSuccess,
		Text:   transcript.String(),
	})
}

// acceptedAudioType allows audio/*, video/webm (what browsers label WebM
// recordings with), application/octet-stream and an absent type.
func acceptedAudioType(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch {
	case strings.HasPrefix(mediaType, "audio/"):
		return true
	case mediaType == "video/webm", mediaType == "application/octet-stream":
		return true
	default:
		return false
	}
}
