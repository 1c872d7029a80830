package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey means the upstream credential is absent. Startup
// treats this as fatal: a server that cannot reach its model would fail
// every discovery run, so it refuses to start instead.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

// Load reads the .env file specified by DISSENT_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("DISSENT_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

// Validate checks the parts of the environment the server cannot run
// without. Analytics settings are deliberately not checked here; their
// absence disables the sink and nothing else.
func Validate() error {
	if LLMProvider() == "mock" {
		return nil
	}
	if OpenAIAPIKey() == "" {
		return fmt.Errorf("invalid configuration: %w", ErrMissingAPIKey)
	}
	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		return 3000
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// OpenAIModel returns the chat model both pipeline stages use.
// Defaults to "gpt-4.1" if not set.
func OpenAIModel() string {
	m := os.Getenv("OPENAI_MODEL")
	if m == "" {
		return "gpt-4.1"
	}
	return m
}

// OpenAIBaseURL returns an override for the upstream API base URL.
// Empty means the provider default.
func OpenAIBaseURL() string {
	return os.Getenv("OPENAI_BASE_URL")
}

// LLMProvider returns the configured generative provider.
// Defaults to "openai" if not set.
// Valid values: openai, mock
func LLMProvider() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

func AnalyticsAPIKey() string {
	return os.Getenv("ANALYTICS_API_KEY")
}

func AnalyticsEndpoint() string {
	return os.Getenv("ANALYTICS_ENDPOINT")
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
