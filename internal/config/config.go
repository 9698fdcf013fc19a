// Package config provides environment configuration for the reservation assistant.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	Env                string

	// LLM settings
	LLMProvider    string
	LLMModel       string
	LLMTemperature float64
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	AnthropicKey   string
	GeminiAPIKey   string
	ModelTimeout   time.Duration
	MaxToolRounds  int

	// Calendar gateway
	CalendarBackend       string
	CalendarProxyURL      string
	GoogleCalendarID      string
	GoogleCredentialsFile string
	CalendarTimeout       time.Duration
	CalendarLookahead     time.Duration
	ClinicTimezone        string

	// Booking rules
	TitlePolicy         string
	DoctorMatch         string
	DoctorCaseSensitive bool
	EnforceOneHour      bool

	// Clinic reference data
	ClinicName   string
	DentistsFile string

	// Sessions
	SessionStore  string
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration

	// NATS settings (empty URL disables the audit stream)
	NATSURL      string
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string
	NATSToken    string

	// JWT settings (empty secret disables API auth)
	JWTSecret string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real environment wins.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
		Env:                getEnv("ENV", "production"),

		// LLM
		LLMProvider:    strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		LLMModel:       getEnv("LLM_MODEL", ""),
		LLMTemperature: getFloatEnv("LLM_TEMPERATURE", 0.7),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
		AnthropicKey:   getEnv("ANTHROPIC_API_KEY", ""),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		ModelTimeout:   getDurationEnv("MODEL_TIMEOUT", 30*time.Second),
		MaxToolRounds:  getIntEnv("MAX_TOOL_ROUNDS", 6),

		// Calendar
		CalendarBackend:       strings.ToLower(getEnv("CALENDAR_BACKEND", "proxy")),
		CalendarProxyURL:      getEnv("CALENDAR_PROXY_URL", ""),
		GoogleCalendarID:      getEnv("GOOGLE_CALENDAR_ID", "primary"),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		CalendarTimeout:       getDurationEnv("CALENDAR_TIMEOUT", 10*time.Second),
		CalendarLookahead:     getDurationEnv("CALENDAR_LOOKAHEAD", 7*24*time.Hour),
		ClinicTimezone:        getEnv("CLINIC_TIMEZONE", ""),

		// Booking rules
		TitlePolicy:         strings.ToLower(getEnv("TITLE_POLICY", "permissive")),
		DoctorMatch:         strings.ToLower(getEnv("DOCTOR_MATCH", "substring")),
		DoctorCaseSensitive: getBoolEnv("DOCTOR_MATCH_CASE_SENSITIVE", true),
		EnforceOneHour:      getBoolEnv("ENFORCE_ONE_HOUR", true),

		// Clinic
		ClinicName:   getEnv("CLINIC_NAME", "SmileCare Dental Clinic"),
		DentistsFile: getEnv("DENTISTS_FILE", "dentists.json"),

		// Sessions
		SessionStore:  strings.ToLower(getEnv("SESSION_STORE", "memory")),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SessionTTL:    getDurationEnv("SESSION_TTL", 24*time.Hour),

		// NATS
		NATSURL:      getEnv("NATS_URL", ""),
		NATSCAFile:   getEnv("NATS_CA_FILE", ""),
		NATSCertFile: getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:  getEnv("NATS_KEY_FILE", ""),
		NATSToken:    getEnv("NATS_TOKEN", ""),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", ""),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

// Location resolves the clinic timezone, falling back to the process local zone.
func (c *Config) Location() *time.Location {
	if c.ClinicTimezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.ClinicTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
