package llm

import "time"

// Default chat-completion settings.
const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-4-1106-preview"
	DefaultTemperature = 0.7
	DefaultTimeout     = 5 * time.Minute
)

// Options configures the question generator.
type Options struct {
	APIKey  string
	BaseURL string // Chat-completion API root, e.g. "https://api.openai.com/v1"
	Model   string

	// Sampling temperature (0.0-2.0). Nil selects DefaultTemperature; an
	// explicit zero is honored.
	Temperature *float32

	// Timeout bounds a whole generation, stream included
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.Temperature == nil {
		t := float32(DefaultTemperature)
		o.Temperature = &t
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}
