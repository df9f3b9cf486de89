package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server      ServerConfig
	DB          DatabaseConfig
	HuggingFace HuggingFaceConfig
	LocalASR    LocalASRConfig
	Geocoder    GeocoderConfig
	Twilio      TwilioConfig
	Pipeline    PipelineConfig
	Logging     LoggingConfig
	Extraction  ExtractionConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Path string
}

type HuggingFaceConfig struct {
	Token              string
	BaseURL            string
	WhisperModel       string
	CaptionModel       string
	EmbeddingModel     string
	SummarizationModel string
	Timeout            time.Duration
}

type LocalASRConfig struct {
	Enabled bool
	URL     string
	Timeout time.Duration
}

type GeocoderConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type TwilioConfig struct {
	AccountSID       string
	AuthToken        string
	FromNumber       string
	AuthorityContact string
	BaseURL          string
	Timeout          time.Duration
}

type PipelineConfig struct {
	CallTimeout time.Duration // per external enrichment call
}

type LoggingConfig struct {
	Level string
}

// ExtractionConfig points at the optional YAML file overriding the built-in
// taxonomy and gazetteer (see lexicon.go).
type ExtractionConfig struct {
	LexiconPath string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/emergency-response.db"),
		},
		HuggingFace: HuggingFaceConfig{
			Token:              getEnv("HF_TOKEN", ""),
			BaseURL:            getEnv("HF_BASE_URL", "https://api-inference.huggingface.co/models"),
			WhisperModel:       getEnv("HF_WHISPER_MODEL", "openai/whisper-large-v3"),
			CaptionModel:       getEnv("HF_CAPTION_MODEL", "Salesforce/blip-image-captioning-large"),
			EmbeddingModel:     getEnv("HF_EMBEDDING_MODEL", "sentence-transformers/all-MiniLM-L6-v2"),
			SummarizationModel: getEnv("HF_SUMMARIZATION_MODEL", "facebook/bart-large-cnn"),
			Timeout:            getEnvDuration("HF_TIMEOUT", 30*time.Second),
		},
		LocalASR: LocalASRConfig{
			Enabled: getEnvBool("LOCAL_ASR_ENABLED", false),
			URL:     getEnv("LOCAL_ASR_URL", "http://localhost:9000/transcribe"),
			Timeout: getEnvDuration("LOCAL_ASR_TIMEOUT", 60*time.Second),
		},
		Geocoder: GeocoderConfig{
			APIKey:  getEnv("OPENCAGE_API_KEY", ""),
			BaseURL: getEnv("OPENCAGE_BASE_URL", "https://api.opencagedata.com/geocode/v1/json"),
			Timeout: getEnvDuration("OPENCAGE_TIMEOUT", 10*time.Second),
		},
		Twilio: TwilioConfig{
			AccountSID:       getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:        getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber:       getEnv("TWILIO_FROM_NUMBER", ""),
			AuthorityContact: getEnv("AUTHORITY_CONTACT", "+919625984260"),
			BaseURL:          getEnv("TWILIO_BASE_URL", "https://api.twilio.com"),
			Timeout:          getEnvDuration("TWILIO_TIMEOUT", 15*time.Second),
		},
		Pipeline: PipelineConfig{
			CallTimeout: getEnvDuration("PIPELINE_CALL_TIMEOUT", 45*time.Second),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Extraction: ExtractionConfig{
			LexiconPath: getEnv("LEXICON_PATH", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Pipeline.CallTimeout < time.Second {
		return fmt.Errorf("pipeline call timeout must be at least 1s")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
