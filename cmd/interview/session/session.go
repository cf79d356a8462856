package sessioncmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/interviewer/pkg/client"
	"github.com/papercomputeco/interviewer/pkg/logger"
	"github.com/papercomputeco/interviewer/pkg/session"
)

const sessionLongDesc string = `Run an interview session against a running interview server.

Uploads the résumé, prints each interviewer question and writes its audio
to the output directory. Answer by typing the path of a WebM/Opus
recording; an empty line is ignored and "quit" (or EOF) ends the session.

Examples:
  interview session resume.pdf
  interview session --server http://192.168.1.42:3000 --out ./audio resume.pdf`

const sessionShortDesc string = "Practice an interview from the terminal"

type sessionCommander struct {
	serverURL string
	outputDir string
	debug     bool
}

func NewSessionCmd() *cobra.Command {
	cmder := &sessionCommander{}

	cmd := &cobra.Command{
		Use:   "session <resume.pdf>",
		Short: sessionShortDesc,
		Long:  sessionLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.serverURL, "server", "s", "http://localhost:3000", "Interview server URL")
	cmd.Flags().StringVarP(&cmder.outputDir, "out", "o", ".", "Directory for interviewer audio files")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *sessionCommander) run(ctx context.Context, cmd *cobra.Command, resumePath string) error {
	document, err := os.ReadFile(resumePath)
	if err != nil {
		return fmt.Errorf("could not read résumé: %w", err)
	}
	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}

	log := logger.NewLogger(c.debug, logger.WithOutput(cmd.ErrOrStderr()))
	defer log.Sync()

	controller := session.NewController(client.New(c.serverURL, log), log)
	out := cmd.OutOrStdout()

	greeting, err := controller.Upload(ctx, filepath.Base(resumePath), document)
	if err != nil {
		return err
	}
	if err := c.present(out, len(controller.Turns()), greeting); err != nil {
		return err
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "answer> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" {
			break
		}

		recording, err := os.ReadFile(line)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "could not read recording: %v\n", err)
			continue
		}

		next, err := controller.Answer(ctx, filepath.Base(line), recording)
		turns := controller.Turns()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			if errors.Is(err, session.ErrBusy) {
				continue
			}
			if err := c.present(out, len(turns), turns[len(turns)-1]); err != nil {
				return err
			}
			continue
		}

		fmt.Fprintf(out, "You: %s\n", turns[len(turns)-2].Text)
		if err := c.present(out, len(turns), next); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading answers: %w", err)
	}

	fmt.Fprintf(out, "Session ended after %d turns.\n", len(controller.Turns()))
	return nil
}

// present prints an interviewer turn and saves its audio as turn-<n>.mp3.
func (c *sessionCommander) present(out io.Writer, n int, turn session.Turn) error {
	fmt.Fprintf(out, "Interviewer: %s\n", turn.Text)
	if len(turn.Audio) == 0 {
		return nil
	}

	path := filepath.Join(c.outputDir, fmt.Sprintf("turn-%02d.mp3", n))
	if err := os.WriteFile(path, turn.Audio, 0o644); err != nil {
		return fmt.Errorf("could not write audio: %w", err)
	}
	fmt.Fprintf(out, "  (audio: %s)\n", path)
	return nil
}
