package session_test

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/interviewer/pkg/api"
	"github.com/papercomputeco/interviewer/pkg/client"
	"github.com/papercomputeco/interviewer/pkg/session"
)

type fakeBackend struct {
	mu sync.Mutex

	first         client.Turn
	extractErr    error
	transcript    string
	transcribeErr error
	next          client.Turn
	nextErr       error

	// block, when set, holds Transcribe until it is closed.
	block   chan struct{}
	entered chan struct{}

	histories   [][]api.Message
	resumeTexts []string
}

func (f *fakeBackend) ExtractResume(context.Context, string, []byte) (client.Turn, error) {
	return f.first, f.extractErr
}

func (f *fakeBackend) Transcribe(context.Context, string, []byte) (string, error) {
	if f.block != nil {
		close(f.entered)
		<-f.block
	}
	return f.transcript, f.transcribeErr
}

func (f *fakeBackend) NextTurn(_ context.Context, resumeText string, history []api.Message) (client.Turn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumeTexts = append(f.resumeTexts, resumeText)
	f.histories = append(f.histories, history)
	return f.next, f.nextErr
}

var _ = Describe("Controller", func() {
	var (
		ctx        context.Context
		backend    *fakeBackend
		controller *session.Controller
	)

	BeforeEach(func() {
		ctx = context.Background()
		backend = &fakeBackend{
			first:      client.Turn{Question: "Tell me about a project you led.", Audio: []byte("q1"), ResumeText: "Experienced backend engineer"},
			transcript: "I led the billing rewrite.",
			next:       client.Turn{Question: "How did you handle disagreement?", Audio: []byte("q2")},
		}
		controller = session.NewController(backend, zap.NewNop())
	})

	It("starts awaiting an upload", func() {
		Expect(controller.State()).To(Equal(session.AwaitingUpload))
		Expect(controller.State().String()).To(Equal("awaiting-upload"))
		Expect(controller.Turns()).To(BeEmpty())
	})

	It("refuses answers before an upload", func() {
		_, err := controller.Answer(ctx, "a.webm", []byte("rec"))
		Expect(err).To(MatchError(session.ErrNotInterviewing))
	})

	Describe("Upload", func() {
		It("stores the résumé text and seeds the greeting", func() {
			turn, err := controller.Upload(ctx, "cv.pdf", []byte("%PDF"))
			Expect(err).NotTo(HaveOccurred())

			Expect(controller.State()).To(Equal(session.Interviewing))
			Expect(controller.ResumeText()).To(Equal("Experienced backend engineer"))
			Expect(turn.Role).To(Equal(api.RoleAssistant))
			Expect(turn.Text).To(Equal("Tell me about a project you led."))
			Expect(turn.Audio).To(Equal([]byte("q1")))
			Expect(controller.Turns()).To(HaveLen(1))
		})

		It("falls back to the default greeting when no question came back", func() {
			backend.first = client.Turn{NoText: true}

			turn, err := controller.Upload(ctx, "blank.pdf", []byte("%PDF"))
			Expect(err).NotTo(HaveOccurred())
			Expect(turn.Text).To(Equal(session.DefaultGreeting))
		})

		It("stays awaiting an upload when extraction fails", func() {
			backend.extractErr = errors.New("500")

			_, err := controller.Upload(ctx, "cv.pdf", []byte("%PDF"))
			Expect(err).To(HaveOccurred())
			Expect(controller.State()).To(Equal(session.AwaitingUpload))
			Expect(controller.Turns()).To(BeEmpty())
		})

		It("only accepts one résumé", func() {
			_, err := controller.Upload(ctx, "cv.pdf", []byte("%PDF"))
			Expect(err).NotTo(HaveOccurred())

			_, err = controller.Upload(ctx, "cv.pdf", []byte("%PDF"))
			Expect(err).To(MatchError(session.ErrAlreadyStarted))
		})
	})

	Describe("Answer", func() {
		BeforeEach(func() {
			_, err := controller.Upload(ctx, "cv.pdf", []byte("%PDF"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("appends the answer and the next question", func() {
			turn, err := controller.Answer(ctx, "a.webm", []byte("rec"))
			Expect(err).NotTo(HaveOccurred())
			Expect(turn.Text).To(Equal("How did you handle disagreement?"))

			turns := controller.Turns()
			Expect(turns).To(HaveLen(3))
			Expect(turns[1].Role).To(Equal(api.RoleUser))
			Expect(turns[1].Text).To(Equal("I led the billing rewrite."))
			Expect(turns[1].Audio).To(Equal([]byte("rec")))
			Expect(turns[2].Audio).To(Equal([]byte("q2")))

			Expect(backend.resumeTexts).To(Equal([]string{"Experienced backend engineer"}))
			Expect(backend.histories[0]).To(Equal([]api.Message{
				{Role: api.RoleAssistant, Content: "Tell me about a project you led."},
				{Role: api.RoleUser, Content: "I led the billing rewrite."},
			}))
		})

		It("gives every turn a distinct id", func() {
			_, err := controller.Answer(ctx, "a.webm", []byte("rec"))
			Expect(err).NotTo(HaveOccurred())

			turns := controller.Turns()
			Expect(turns[0].ID).NotTo(Equal(turns[1].ID))
			Expect(turns[1].ID).NotTo(Equal(turns[2].ID))
		})

		It("appends the fallback turn when transcription fails", func() {
			backend.transcribeErr = errors.New("recognizer down")

			_, err := controller.Answer(ctx, "a.webm", []byte("rec"))
			Expect(err).To(MatchError(ContainSubstring("recognizer down")))

			turns := controller.Turns()
			Expect(turns).To(HaveLen(2))
			Expect(turns[1].Text).To(Equal(session.FallbackText))
			Expect(turns[1].Fallback).To(BeTrue())
			Expect(backend.histories).To(BeEmpty())
		})

		It("leaves fallback turns out of the history sent for the next question", func() {
			backend.nextErr = errors.New("rate limited")
			_, err := controller.Answer(ctx, "a.webm", []byte("rec"))
			Expect(err).To(HaveOccurred())

			backend.nextErr = nil
			backend.transcript = "Second try."
			_, err = controller.Answer(ctx, "b.webm", []byte("rec2"))
			Expect(err).NotTo(HaveOccurred())

			last := backend.histories[len(backend.histories)-1]
			for _, m := range last {
				Expect(m.Content).NotTo(Equal(session.FallbackText))
			}
			Expect(last[len(last)-1].Content).To(Equal("Second try."))
		})

		It("rejects a second answer while one is in flight", func() {
			backend.block = make(chan struct{})
			backend.entered = make(chan struct{})

			done := make(chan error, 1)
			go func() {
				defer GinkgoRecover()
				_, err := controller.Answer(ctx, "a.webm", []byte("rec"))
				done <- err
			}()

			Eventually(backend.entered).Should(BeClosed())
			_, err := controller.Answer(ctx, "b.webm", []byte("rec2"))
			Expect(err).To(MatchError(session.ErrBusy))

			close(backend.block)
			Eventually(done).Should(Receive(BeNil()))
			Expect(controller.Turns()).To(HaveLen(3))
		})
	})
})
