package server

import (
	"context"
	"time"

	"github.com/papercomputeco/interviewer/pkg/api"
	"github.com/papercomputeco/interviewer/pkg/llm"
	"github.com/papercomputeco/interviewer/pkg/telemetry"
	"github.com/papercomputeco/interviewer/pkg/tts"
)

// Provider labels used in metrics and logs.
const (
	providerOpenAI     = "openai"
	providerElevenLabs = "elevenlabs"
	providerGoogle     = "google-speech"
)

type meteredGenerator struct {
	generator *llm.Generator
	metrics   *telemetry.Metrics
}

func (m meteredGenerator) Question(ctx context.Context, req api.QuestionRequest) (string, error) {
	start := time.Now()
	question, err := m.generator.Question(ctx, req)
	m.metrics.RecordUpstream(ctx, providerOpenAI, err, time.Since(start))
	return question, err
}

type meteredSynthesizer struct {
	synthesizer *tts.Client
	metrics     *telemetry.Metrics
}

func (m meteredSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	start := time.Now()
	audio, err := m.synthesizer.Synthesize(ctx, text)
	m.metrics.RecordUpstream(ctx, providerElevenLabs, err, time.Since(start))
	return audio, err
}
