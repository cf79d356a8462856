// Package server exposes the interview workflow over HTTP: résumé extraction,
// question generation, speech synthesis and transcription.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/papercomputeco/interviewer/pkg/api"
	"github.com/papercomputeco/interviewer/pkg/interview"
	"github.com/papercomputeco/interviewer/pkg/llm"
	"github.com/papercomputeco/interviewer/pkg/stt"
	"github.com/papercomputeco/interviewer/pkg/telemetry"
	"github.com/papercomputeco/interviewer/pkg/tts"
)

const serviceName = "interviewer"

// DefaultMaxAudioBytes is the largest recording accepted for transcription.
const DefaultMaxAudioBytes = 10 * 1024 * 1024

// minBodyLimit leaves room for a multipart résumé upload.
const minBodyLimit = 16 * 1024 * 1024

// Server fronts the LLM, speech synthesis and speech recognition providers.
// It keeps no interview state between requests.
type Server struct {
	config       Config
	logger       *zap.Logger
	generator    *llm.Generator
	synthesizer  *tts.Client
	speech       meteredSynthesizer
	transcriber  *stt.Client
	orchestrator *interview.Orchestrator
	metrics      *telemetry.Metrics
	app          *fiber.App
}

// New creates a Server with its provider clients and routes.
func New(config Config, logger *zap.Logger) (*Server, error) {
	if config.MaxAudioBytes <= 0 {
		config.MaxAudioBytes = DefaultMaxAudioBytes
	}

	metrics, err := telemetry.New(serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	s := &Server{
		config:  config,
		logger:  logger,
		metrics: metrics,
		generator: llm.NewGenerator(llm.Options{
			APIKey:      config.OpenAI.APIKey,
			BaseURL:     config.OpenAI.BaseURL,
			Model:       config.OpenAI.Model,
			Temperature: &config.OpenAI.Temperature,
			Timeout:     config.UpstreamTimeout,
		}, logger.Named("llm")),
		synthesizer: tts.NewClient(tts.Config{
			APIKey:  config.ElevenLabs.APIKey,
			BaseURL: config.ElevenLabs.BaseURL,
			VoiceID: config.ElevenLabs.VoiceID,
			ModelID: config.ElevenLabs.ModelID,
			Timeout: config.UpstreamTimeout,
		}, logger.Named("tts")),
		transcriber: stt.NewClient(stt.Config{
			APIKey:  config.Google.APIKey,
			BaseURL: config.Google.BaseURL,
			Timeout: config.UpstreamTimeout,
		}, logger.Named("stt")),
	}

	s.speech = meteredSynthesizer{synthesizer: s.synthesizer, metrics: metrics}
	s.orchestrator = interview.NewOrchestrator(
		meteredGenerator{generator: s.generator, metrics: metrics},
		s.speech,
		logger.Named("interview"),
	)

	bodyLimit := config.MaxAudioBytes * 2
	if bodyLimit < minBodyLimit {
		bodyLimit = minBodyLimit
	}

	s.app = fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
		ErrorHandler:          s.handleError,
	})

	s.routes()

	return s, nil
}

func (s *Server) routes() {
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST",
	}))
	s.app.Use(s.requestLogger())

	s.post("/extract-text", s.handleExtract)
	s.post("/openai-gpt", s.handleQuestion)
	s.post("/eleven-labs", s.handleSynthesize)
	s.post("/google-cloud-stt", s.handleTranscribe)

	// Health check
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": api.StatusOK})
	})

	s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
}

// post registers a POST-only route; every other method gets 405.
func (s *Server) post(path string, handler fiber.Handler) {
	s.app.Post(path, handler)
	s.app.All(path, func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAllow, fiber.MethodPost)
		return c.Status(fiber.StatusMethodNotAllowed).JSON(api.NewError("method not allowed"))
	})
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting interview server",
		zap.String("listen", s.config.ListenAddr),
		zap.String("model", s.config.OpenAI.Model),
	)

	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener serves on an existing listener.
func (s *Server) RunWithListener(ln net.Listener) error {
	s.logger.Info("starting interview server", zap.String("listen", ln.Addr().String()))
	return s.app.Listener(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// Close releases resources held by the server.
func (s *Server) Close() error {
	return s.metrics.Shutdown(context.Background())
}

// handleError renders errors that escape handlers (body limit, unknown
// routes, recovered panics) as JSON.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		s.logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
	}

	return c.Status(code).JSON(api.NewError(message))
}
