package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	Port             string
	AppEnv           string
	AllowedOrigins   []string
	LLMProvider      string
	LLMModel         string
	GeminiAPIKey     string
	OpenAIAPIKey     string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	CaregiverNumber  string
	EmergencyNumber  string
	SeedDemoData     bool
	LocalTimezone    *time.Location
}

// Load reads configuration values and prepares defaults where applicable.
func Load() *Config {
	_ = godotenv.Load()

	timezoneName := getenvDefault("LOCAL_TIMEZONE", "Local")
	location, err := time.LoadLocation(timezoneName)
	if err != nil {
		log.Printf("config: invalid LOCAL_TIMEZONE %q, defaulting to system local: %v", timezoneName, err)
		location = time.Local
	}

	return &Config{
		Port:             getenvDefault("PORT", "8080"),
		AppEnv:           getenvDefault("APP_ENV", "development"),
		AllowedOrigins:   []string{getenvDefault("ALLOWED_ORIGIN", "*")},
		LLMProvider:      getenvDefault("LLM_PROVIDER", "gemini"),
		LLMModel:         os.Getenv("LLM_MODEL"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
		CaregiverNumber:  os.Getenv("CAREGIVER_NUMBER"),
		EmergencyNumber:  getenvDefault("EMERGENCY_NUMBER", "911"),
		SeedDemoData:     ParseBoolEnv("SEED_DEMO_DATA", true),
		LocalTimezone:    location,
	}
}

func getenvDefault(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	return value
}

// ParseBoolEnv returns the boolean value for an environment variable or the provided default.
func ParseBoolEnv(key string, def bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return def
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("config: unable to parse %s=%q as bool: %v", key, value, err)
		return def
	}
	return parsed
}
