package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	// Files
	OutputDir    string // managed directory for rendered documents
	TemplatePath string // template used when rendering drafts
	// Renderer process (MCP over stdio)
	RendererCommand string
	RendererArgs    []string
	// Remote storage (Google Drive); disabled when credentials are empty
	GoogleCredentialsFile string
	DriveFolderID         string
	DriveShareDomain      string
	// Sync timings
	LockRetryAttempts int
	LockRetryDelay    time.Duration
	AwaitTimeout      time.Duration
	AwaitInterval     time.Duration
	// LLM Configuration
	AnthropicAPIKey string
	DefaultModel    string
	MaxTokens       int
	MaxToolRounds   int
	// Collaborative editor
	EditorURL       string // document server base URL
	BackendURL      string // URL the document server uses to reach this backend
	EditorJWTSecret string
	EditorLang      string
	// Auth; disabled when empty
	AuthJWKSURL string
	// Logging
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	port := getEnv("PORT", "8080")

	return &Config{
		Port:         port,
		Environment:  env,
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:  tablePrefix,
		OutputDir:    getEnv("OUTPUT_DIR", "output"),
		TemplatePath: getEnv("TEMPLATE_PATH", ""),
		// Renderer
		RendererCommand: getEnv("RENDERER_COMMAND", "word-mcp-server"),
		RendererArgs:    strings.Fields(getEnv("RENDERER_ARGS", "")),
		// Remote storage
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		DriveFolderID:         getEnv("DRIVE_FOLDER_ID", ""),
		DriveShareDomain:      getEnv("DRIVE_SHARE_DOMAIN", ""),
		// Sync
		LockRetryAttempts: getEnvInt("LOCK_RETRY_ATTEMPTS", 3),
		LockRetryDelay:    getEnvDuration("LOCK_RETRY_DELAY", 2*time.Second),
		AwaitTimeout:      getEnvDuration("AWAIT_TIMEOUT", 5*time.Second),
		AwaitInterval:     getEnvDuration("AWAIT_INTERVAL", 500*time.Millisecond),
		// LLM Configuration
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		DefaultModel:    getEnv("DEFAULT_MODEL", "claude-haiku-4-5-20251001"),
		MaxTokens:       getEnvInt("MAX_TOKENS", 8192),
		MaxToolRounds:   getEnvInt("MAX_TOOL_ROUNDS", 10),
		// Editor
		EditorURL:       getEnv("EDITOR_URL", ""),
		BackendURL:      getEnv("BACKEND_URL", "http://localhost:"+port),
		EditorJWTSecret: getEnv("EDITOR_JWT_SECRET", ""),
		EditorLang:      getEnv("EDITOR_LANG", "pt-BR"),
		// Auth
		AuthJWKSURL: getEnv("AUTH_JWKS_URL", ""),
		// Logging
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// RemoteStorageEnabled reports whether Drive credentials are configured.
func (c *Config) RemoteStorageEnabled() bool {
	return c.GoogleCredentialsFile != ""
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

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}
