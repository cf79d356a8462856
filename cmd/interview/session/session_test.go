package sessioncmder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/interviewer/server"
)

var _ = Describe("Session Command", func() {
	var (
		tmpDir    string
		providers []*httptest.Server
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "interview-session-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		for _, p := range providers {
			p.Close()
		}
		providers = nil
		os.RemoveAll(tmpDir)
	})

	fakeProvider := func(h http.HandlerFunc) string {
		srv := httptest.NewServer(h)
		providers = append(providers, srv)
		return srv.URL
	}

	startServer := func() (string, func()) {
		openaiURL := fakeProvider(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			data, _ := json.Marshal(map[string]any{
				"id":      "chatcmpl-1",
				"object":  "chat.completion.chunk",
				"choices": []map[string]any{{"index": 0, "delta": map[string]string{"content": "What did you learn?"}}},
			})
			fmt.Fprintf(w, "data: %s\n\ndata: [DONE]\n\n", data)
		})
		elevenURL := fakeProvider(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ID3-mp3"))
		})
		googleURL := fakeProvider(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results":[{"alternatives":[{"transcript":"I learned to write tests"}]}]}`))
		})

		srv, err := server.New(server.Config{
			OpenAI:     server.OpenAIConfig{APIKey: "sk", BaseURL: openaiURL + "/v1", Model: "test-model"},
			ElevenLabs: server.ElevenLabsConfig{APIKey: "xi", BaseURL: elevenURL},
			Google:     server.GoogleConfig{APIKey: "g", BaseURL: googleURL},
		}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())

		go func() {
			_ = srv.RunWithListener(listener)
		}()

		addr := "http://" + listener.Addr().String()
		cleanup := func() {
			_ = srv.Shutdown(context.Background())
			_ = srv.Close()
		}
		return addr, cleanup
	}

	writeResume := func() string {
		doc := fpdf.New("P", "mm", "A4", "")
		doc.SetFont("Helvetica", "", 12)
		doc.AddPage()
		doc.Cell(0, 10, "Experienced backend engineer")
		path := filepath.Join(tmpDir, "resume.pdf")
		Expect(doc.OutputFileAndClose(path)).To(Succeed())
		return path
	}

	runSession := func(serverURL, resumePath, stdin string) (string, string, error) {
		cmd := NewSessionCmd()
		var stdout, stderr bytes.Buffer
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetArgs([]string{"--server", serverURL, "--out", filepath.Join(tmpDir, "audio"), resumePath})
		err := cmd.ExecuteContext(context.Background())
		return stdout.String(), stderr.String(), err
	}

	It("runs an interview from résumé to quit", func() {
		addr, cleanup := startServer()
		defer cleanup()

		recording := filepath.Join(tmpDir, "answer.webm")
		Expect(os.WriteFile(recording, []byte{0x1a, 0x45, 0xdf, 0xa3}, 0o644)).To(Succeed())

		stdout, _, err := runSession(addr, writeResume(), "\n"+recording+"\nquit\n")
		Expect(err).NotTo(HaveOccurred())

		Expect(stdout).To(ContainSubstring("Interviewer: What did you learn?"))
		Expect(stdout).To(ContainSubstring("You: I learned to write tests"))
		Expect(stdout).To(ContainSubstring("Session ended after 3 turns."))

		audio, err := os.ReadFile(filepath.Join(tmpDir, "audio", "turn-01.mp3"))
		Expect(err).NotTo(HaveOccurred())
		Expect(audio).To(Equal([]byte("ID3-mp3")))
		Expect(filepath.Join(tmpDir, "audio", "turn-03.mp3")).To(BeAnExistingFile())
	})

	It("keeps going after an unreadable recording path", func() {
		addr, cleanup := startServer()
		defer cleanup()

		stdout, stderr, err := runSession(addr, writeResume(), filepath.Join(tmpDir, "missing.webm")+"\n")
		Expect(err).NotTo(HaveOccurred())
		Expect(stderr).To(ContainSubstring("could not read recording"))
		Expect(stdout).To(ContainSubstring("Session ended after 1 turns."))
	})

	It("fails when the résumé file does not exist", func() {
		_, _, err := runSession("http://127.0.0.1:1", filepath.Join(tmpDir, "nope.pdf"), "")
		Expect(err).To(MatchError(ContainSubstring("could not read résumé")))
	})
})
