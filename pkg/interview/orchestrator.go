// Package interview produces the next interviewer turn: a question generated
// from the résumé and history, spoken aloud when there is anything to say.
package interview

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/interviewer/pkg/api"
	"github.com/papercomputeco/interviewer/pkg/llm"
	"github.com/papercomputeco/interviewer/pkg/logger"
)

// QuestionGenerator returns the complete text of the next question.
type QuestionGenerator interface {
	Question(ctx context.Context, req api.QuestionRequest) (string, error)
}

// Synthesizer turns question text into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Turn is one interviewer turn. Audio is nil when the question was empty.
type Turn struct {
	Question string
	Audio    []byte
}

// Orchestrator sequences question generation and speech synthesis.
type Orchestrator struct {
	generator   QuestionGenerator
	synthesizer Synthesizer
	logger      *zap.Logger
}

func NewOrchestrator(generator QuestionGenerator, synthesizer Synthesizer, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		generator:   generator,
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// NextTurn asks for the next question. An empty history is seeded with the
// opening prompt.
func (o *Orchestrator) NextTurn(ctx context.Context, resumeText string, history []api.Message) (Turn, error) {
	if len(history) == 0 {
		history = []api.Message{{Role: api.RoleUser, Content: llm.OpeningPrompt}}
	}

	question, err := o.generator.Question(ctx, api.QuestionRequest{
		Messages:   history,
		ResumeText: resumeText,
	})
	if err != nil {
		return Turn{}, fmt.Errorf("generating question: %w", err)
	}

	turn := Turn{Question: question}
	if strings.TrimSpace(question) == "" {
		o.logger.Warn("generator returned an empty question; skipping synthesis")
		return turn, nil
	}

	audio, err := o.synthesizer.Synthesize(ctx, question)
	if err != nil {
		return Turn{}, fmt.Errorf("synthesizing question: %w", err)
	}
	turn.Audio = audio

	o.logger.Debug("next turn ready",
		zap.String("question_preview", logger.Truncate(question, 50)),
		zap.Int("audio_bytes", len(audio)),
	)

	return turn, nil
}
