// Package session drives one interview from the candidate's side: upload a
// résumé, then alternate recorded answers with interviewer questions.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/interviewer/pkg/api"
	"github.com/papercomputeco/interviewer/pkg/client"
	"github.com/papercomputeco/interviewer/pkg/logger"
)

const (
	// DefaultGreeting opens the interview when extraction produced no question.
	DefaultGreeting = "Hello, I am Bob the Interviewer. How can I help you?"

	// FallbackText is appended whenever an answer could not be processed.
	FallbackText = "Sorry, couldn't understand your response. Can you try again?"
)

var (
	// ErrBusy is returned while another upload or answer is in flight.
	ErrBusy = errors.New("session is busy with a previous answer")

	ErrNotInterviewing = errors.New("no résumé uploaded yet")
	ErrAlreadyStarted  = errors.New("résumé already uploaded")
)

// State is the controller's position in the interview.
type State int

const (
	AwaitingUpload State = iota
	Interviewing
)

func (s State) String() string {
	switch s {
	case AwaitingUpload:
		return "awaiting-upload"
	case Interviewing:
		return "interviewing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Turn is one entry of the conversation.
type Turn struct {
	ID        uuid.UUID
	Role      string
	Text      string
	Audio     []byte
	Fallback  bool
	Timestamp time.Time
}

// Backend is the subset of the interview server the controller needs.
type Backend interface {
	ExtractResume(ctx context.Context, filename string, document []byte) (client.Turn, error)
	Transcribe(ctx context.Context, filename string, recording []byte) (string, error)
	NextTurn(ctx context.Context, resumeText string, history []api.Message) (client.Turn, error)
}

// Controller holds the state of a single interview. It is safe for
// concurrent use; overlapping operations fail with ErrBusy.
type Controller struct {
	backend Backend
	logger  *zap.Logger

	mu         sync.Mutex
	state      State
	busy       bool
	resumeText string
	turns      []Turn
}

func NewController(backend Backend, logger *zap.Logger) *Controller {
	return &Controller{
		backend: backend,
		logger:  logger,
		state:   AwaitingUpload,
	}
}

// Upload sends the résumé and seeds the conversation with the greeting turn.
func (c *Controller) Upload(ctx context.Context, filename string, document []byte) (Turn, error) {
	c.mu.Lock()
	if c.state != AwaitingUpload {
		c.mu.Unlock()
		return Turn{}, ErrAlreadyStarted
	}
	if c.busy {
		c.mu.Unlock()
		return Turn{}, ErrBusy
	}
	c.busy = true
	c.mu.Unlock()
	defer c.release()

	first, err := c.backend.ExtractResume(ctx, filename, document)
	if err != nil {
		return Turn{}, fmt.Errorf("uploading résumé: %w", err)
	}

	greeting := first.Question
	if first.NoText || greeting == "" {
		greeting = DefaultGreeting
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.resumeText = first.ResumeText
	c.state = Interviewing
	turn := c.appendLocked(api.RoleAssistant, greeting, first.Audio, false)

	c.logger.Info("interview started",
		zap.String("filename", filename),
		zap.Int("resume_length", len(c.resumeText)),
	)
	return turn, nil
}

// Answer submits a recorded answer and returns the interviewer's next turn.
// On failure the fallback turn is appended and the error returned.
func (c *Controller) Answer(ctx context.Context, filename string, recording []byte) (Turn, error) {
	c.mu.Lock()
	if c.state != Interviewing {
		c.mu.Unlock()
		return Turn{}, ErrNotInterviewing
	}
	if c.busy {
		c.mu.Unlock()
		return Turn{}, ErrBusy
	}
	c.busy = true
	resumeText := c.resumeText
	c.mu.Unlock()
	defer c.release()

	text, err := c.backend.Transcribe(ctx, filename, recording)
	if err != nil {
		return Turn{}, c.fail(fmt.Errorf("transcribing answer: %w", err))
	}

	c.mu.Lock()
	c.appendLocked(api.RoleUser, text, recording, false)
	history := c.historyLocked()
	c.mu.Unlock()

	c.logger.Debug("answer transcribed", zap.String("text_preview", logger.Truncate(text, 50)))

	next, err := c.backend.NextTurn(ctx, resumeText, history)
	if err != nil {
		return Turn{}, c.fail(fmt.Errorf("requesting next question: %w", err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appendLocked(api.RoleAssistant, next.Question, next.Audio, false), nil
}

// Turns returns a copy of the conversation so far.
func (c *Controller) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Turn(nil), c.turns...)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) ResumeText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resumeText
}

func (c *Controller) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

func (c *Controller) fail(err error) error {
	c.logger.Warn("answer failed", zap.Error(err))

	c.mu.Lock()
	c.appendLocked(api.RoleAssistant, FallbackText, nil, true)
	c.mu.Unlock()
	return err
}

func (c *Controller) appendLocked(role, text string, audio []byte, fallback bool) Turn {
	turn := Turn{
		ID:        uuid.New(),
		Role:      role,
		Text:      text,
		Audio:     audio,
		Fallback:  fallback,
		Timestamp: time.Now(),
	}
	c.turns = append(c.turns, turn)
	return turn
}

// historyLocked is the conversation as sent to the question generator:
// fallback turns and turns without text are left out.
func (c *Controller) historyLocked() []api.Message {
	history := make([]api.Message, 0, len(c.turns))
	for _, t := range c.turns {
		if t.Fallback || t.Text == "" {
			continue
		}
		history = append(history, api.Message{Role: t.Role, Content: t.Text})
	}
	return history
}
