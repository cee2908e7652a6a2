package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWKSURL     string
	CORSOrigins string
	TablePrefix string
	// LLM Configuration
	AnthropicAPIKey string
	DefaultModel    string
	// Analysis templates
	TemplatesPath string // Optional YAML file with custom analysis templates
	// Logging
	LogDir string // Optional directory for timestamped log files (stdout only when empty)
	// Debug flags
	Debug bool // Enables DEBUG features like SSE event IDs
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	authURL := getEnv("AUTH_URL", "")

	// Construct JWKS URL from the auth base URL unless overridden
	jwksURL := getEnv("JWKS_URL", authURL+"/auth/v1/.well-known/jwks.json")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWKSURL:     jwksURL,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: tablePrefix,
		// LLM Configuration
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		DefaultModel:    getEnv("DEFAULT_MODEL", "claude-sonnet-4-5-20250929"),
		// Analysis templates
		TemplatesPath: getEnv("ANALYSIS_TEMPLATES_PATH", ""),
		// Logging
		LogDir: getEnv("LOG_DIR", ""),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true" // Enable DEBUG in dev/test by default
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	case "dev":
		return "dev_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
