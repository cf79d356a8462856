package server

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/interviewer/pkg/api"
	"github.com/papercomputeco/interviewer/pkg/audio"
	"github.com/papercomputeco/interviewer/pkg/tts"
)

type synthesisRequest struct {
	// Text is decoded loosely so a non-string value is a 400, not a parse error.
	Text any `json:"text"`
}

// handleSynthesize converts {text} into base64 MPEG audio.
func (s *Server) handleSynthesize(c *fiber.Ctx) error {
	var req synthesisRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid request body")
	}

	text, ok := req.Text.(string)
	if !ok || strings.TrimSpace(text) == "" {
		return badRequest(c, tts.ErrEmptyText.Error())
	}

	speech, err := s.speech.Synthesize(c.UserContext(), text)
	if err != nil {
		return s.upstreamFailure(c, providerElevenLabs, err)
	}

	s.logger.Debug("synthesized speech", zap.Int("audio_bytes", len(speech)))

	return c.JSON(api.SynthesisResponse{
		Status: api.StatusSuccess,
		Audio:  audio.Encode(speech),
	})
}
