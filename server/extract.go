package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/interviewer/pkg/api"
	"github.com/papercomputeco/interviewer/pkg/audio"
	"github.com/papercomputeco/interviewer/pkg/interview"
	"github.com/papercomputeco/interviewer/pkg/logger"
	"github.com/papercomputeco/interviewer/pkg/resume"
)

// handleExtract pulls page-one text out of an uploaded résumé and asks the
// first question, or asks the next question for résumé text already known.
func (s *Server) handleExtract(c *fiber.Ctx) error {
	if file, err := c.FormFile("file"); err == nil {
		return s.extractUpload(c, file)
	}

	resumeText := c.FormValue("resumeText")
	if resumeText == "" {
		return badRequest(c, "file or resumeText is required")
	}

	var history []api.Message
	if raw := c.FormValue("messages"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			return badRequest(c, "messages must be a JSON array of {role, content}")
		}
	}

	turn, err := s.orchestrator.NextTurn(c.UserContext(), resumeText, history)
	if err != nil {
		s.logger.Error("failed to produce next turn", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(api.NewError("failed to generate question"))
	}

	return c.JSON(turnResponse(turn, ""))
}

func (s *Server) extractUpload(c *fiber.Ctx, file *multipart.FileHeader) error {
	data, err := readFormFile(file)
	if err != nil {
		s.logger.Error("failed to read upload", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(api.NewError("failed to read file"))
	}

	text, err := resume.ExtractFirstPage(data)
	if errors.Is(err, resume.ErrNoPages) {
		return c.JSON(api.ExtractResponse{Status: api.StatusOK})
	}
	if err != nil {
		s.logger.Error("failed to extract text",
			zap.String("filename", file.Filename),
			zap.Int64("size", file.Size),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(api.NewError("failed to extract text"))
	}

	s.logger.Debug("extracted resume text",
		zap.String("filename", file.Filename),
		zap.String("text_preview", logger.Truncate(text, 80)),
	)

	turn, err := s.orchestrator.NextTurn(c.UserContext(), text, nil)
	if err != nil {
		s.logger.Error("failed to produce first turn", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(api.NewError("failed to generate question"))
	}

	return c.JSON(turnResponse(turn, text))
}

func turnResponse(turn interview.Turn, resumeText string) api.ExtractResponse {
	question := turn.Question
	resp := api.ExtractResponse{
		Status:     api.StatusOK,
		Text:       &question,
		ResumeText: resumeText,
	}
	if len(turn.Audio) > 0 {
		resp.Audio = audio.Encode(turn.Audio)
	}
	return resp
}

func readFormFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
