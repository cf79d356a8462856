package server

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the interview server configuration. Values come from an optional
// YAML file, then the environment.
type Config struct {
	// Address to listen on (e.g., ":3000")
	ListenAddr string `yaml:"listen" env:"LISTEN_ADDR" env-default:":3000"`

	Debug bool `yaml:"debug" env:"DEBUG"`

	// MaxAudioBytes caps the recording accepted by /google-cloud-stt.
	MaxAudioBytes int `yaml:"max_audio_bytes" env:"MAX_AUDIO_BYTES" env-default:"10485760"`

	// UpstreamTimeout bounds every provider call.
	UpstreamTimeout time.Duration `yaml:"upstream_timeout" env:"UPSTREAM_TIMEOUT" env-default:"5m"`

	OpenAI     OpenAIConfig     `yaml:"openai"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	Google     GoogleConfig     `yaml:"google"`
}

type OpenAIConfig struct {
	APIKey      string  `yaml:"api_key" env:"OPENAI_API_KEY"`
	BaseURL     string  `yaml:"base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model       string  `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4-1106-preview"`
	Temperature float32 `yaml:"temperature" env:"OPENAI_TEMPERATURE" env-default:"0.7"`
}

type ElevenLabsConfig struct {
	APIKey  string `yaml:"api_key" env:"ELEVENLABS_API_KEY"`
	BaseURL string `yaml:"base_url" env:"ELEVENLABS_BASE_URL" env-default:"https://api.elevenlabs.io"`
	VoiceID string `yaml:"voice_id" env:"ELEVENLABS_VOICE_ID" env-default:"ErXwobaYiN019PkySvjV"`
	ModelID string `yaml:"model_id" env:"ELEVENLABS_MODEL_ID" env-default:"eleven_multilingual_v2"`
}

type GoogleConfig struct {
	APIKey  string `yaml:"api_key" env:"GOOGLE_CLOUD_API_KEY"`
	BaseURL string `yaml:"base_url" env:"GOOGLE_SPEECH_BASE_URL" env-default:"https://speech.googleapis.com"`
}

// LoadConfig reads path when it is not empty, then overlays the environment.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	return cfg, nil
}
