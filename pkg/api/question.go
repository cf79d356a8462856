package api

// QuestionRequest is the body of POST /openai-gpt.
type QuestionRequest struct {
	Messages   []Message `json:"messages"`   // Conversation history, oldest first
	ResumeText string    `json:"resumeText"` // Extracted résumé text
}

// ExtractResponse is the body returned by POST /extract-text. Text is null
// when the uploaded document had no pages.
type ExtractResponse struct {
	Status     string  `json:"status"`
	Text       *string `json:"text"`
	Audio      string  `json:"audio,omitempty"`      // base64 question audio
	ResumeText string  `json:"resumeText,omitempty"` // only set when a file was uploaded
}

// SynthesisResponse is the body returned by POST /eleven-labs.
type SynthesisResponse struct {
	Status string `json:"status"`
	Audio  string `json:"audio"`
}

// TranscriptionResponse is the body returned by POST /google-cloud-stt.
type TranscriptionResponse struct {
	Status string `json:"status"`
	Text   string `json:"text"`
}
