package config

import "os"

// Config holds the application configuration loaded at startup.
// It is passed explicitly into the pieces that need it so tests can
// inject fake settings without touching process state.
type Config struct {
	Port   string
	Gemini GeminiConfig
}

// GeminiConfig carries the settings for calling the Gemini API.
type GeminiConfig struct {
	// APIKey is required for any AI-backed operation. An empty key is a
	// configuration error reported per call, not a startup failure.
	APIKey string
	// Model is the Gemini model identifier; empty means the default model.
	Model string
	// Endpoint overrides the API endpoint. Tests point this at a local
	// fake server; empty means the public Gemini endpoint.
	Endpoint string
}

// Load reads the configuration from environment variables.
func Load() Config {
	return Config{
		Port: getEnv("PORT", "3000"),
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  os.Getenv("GEMINI_MODEL"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
