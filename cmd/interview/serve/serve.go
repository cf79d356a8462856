package servecmder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/interviewer/pkg/logger"
	"github.com/papercomputeco/interviewer/server"
)

const serveLongDesc string = `Run the interview server.

Provider credentials are read from the environment (a .env file in the
working directory is loaded first) or from a YAML config file:
  OPENAI_API_KEY        question generation
  ELEVENLABS_API_KEY    speech synthesis
  GOOGLE_CLOUD_API_KEY  speech recognition

Examples:
  interview serve
  interview serve --listen :8080 --debug
  interview serve --config interviewer.yaml`

const serveShortDesc string = "Run the interview server"

const shutdownTimeout = 10 * time.Second

type serveCommander struct {
	configPath string
	listen     string
	debug      bool
	jsonLogs   bool
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to a YAML config file")
	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (overrides config)")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&cmder.jsonLogs, "json-logs", false, "Log JSON lines instead of console output")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not load .env: %w", err)
	}

	config, err := server.LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	if c.listen != "" {
		config.ListenAddr = c.listen
	}
	if c.debug {
		config.Debug = true
	}

	var opts []logger.Option
	if c.jsonLogs {
		opts = append(opts, logger.WithJSON())
	}
	log := logger.NewLogger(config.Debug, opts...)
	defer log.Sync()

	log.Info("interview server starting",
		zap.String("listen", config.ListenAddr),
		zap.Bool("openai_configured", config.OpenAI.APIKey != ""),
		zap.Bool("elevenlabs_configured", config.ElevenLabs.APIKey != ""),
		zap.Bool("google_configured", config.Google.APIKey != ""),
		zap.Bool("debug", config.Debug),
	)

	s, err := server.New(config, log)
	if err != nil {
		return fmt.Errorf("could not create server: %w", err)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
