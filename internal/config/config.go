// Package config loads process configuration from the environment, with
// optional .env support for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ServerConfig configures the backend binary.
type ServerConfig struct {
	Port         string
	Owner        string
	Provider     string
	GroqAPIKey   string
	GeminiAPIKey string
	CORSOrigins  string
	AuthSecret   string
	HistoryPath  string
	HistoryKeep  int
}

// Model providers.
const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// AssistantConfig configures the voice assistant binary.
type AssistantConfig struct {
	BackendURL        string
	SessionToken      string
	Locale            string
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	UIPort            string
	Mock              bool
}

// LoadServer reads backend configuration. A missing .env file is fine;
// real environment variables always win.
func LoadServer() ServerConfig {
	godotenv.Load()

	return ServerConfig{
		Port:         getEnv("PORT", "8080"),
		Owner:        getEnv("OWNER_NAME", ""),
		Provider:     getEnv("LYRA_PROVIDER", ProviderGroq),
		GroqAPIKey:   os.Getenv("GROQ_API_KEY"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		CORSOrigins:  os.Getenv("CORS_ALLOWED_ORIGINS"),
		AuthSecret:   os.Getenv("LYRA_AUTH_SECRET"),
		HistoryPath:  getEnv("LYRA_HISTORY_PATH", "data/history.jsonl"),
		HistoryKeep:  getEnvInt("LYRA_HISTORY_KEEP", 0),
	}
}

// LoadAssistant reads assistant configuration.
func LoadAssistant() AssistantConfig {
	godotenv.Load()

	return AssistantConfig{
		BackendURL:        getEnv("LYRA_API_URL", "http://localhost:8080"),
		SessionToken:      os.Getenv("LYRA_SESSION_TOKEN"),
		Locale:            getEnv("LYRA_LOCALE", "en-IN"),
		ElevenLabsAPIKey:  os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsVoiceID: os.Getenv("ELEVENLABS_VOICE_ID"),
		UIPort:            getEnv("LYRA_UI_PORT", "8090"),
		Mock:              getEnvBool("LYRA_MOCK", false),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
