package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	UploadDir   string
	MaxUploadMB int64
	CORSOrigins []string
	DBDriver    string
	SQLitePath  string
	DatabaseURL string

	APIKey                string
	OpenAIBaseURL         string
	OpenAIChatModel       string
	OpenAITranscribeModel string
	GeminiBaseURL         string
	GeminiModel           string

	HTTPTimeout         time.Duration
	PipelineTimeout     time.Duration
	FileActiveTimeout   time.Duration
	TranslationCacheTTL time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:        envOr("PORT", "8080"),
		Environment: envOr("ENVIRONMENT", "local"),
		LogLevel:    envOr("LOG_LEVEL", "info"),

		UploadDir:   envOr("UPLOAD_DIR", "uploads"),
		MaxUploadMB: int64(envInt("MAX_UPLOAD_MB", 100)),
		CORSOrigins: splitList(envOr("CORS_ORIGINS", "http://localhost:3000")),
		DBDriver:    strings.ToLower(envOr("DB_DRIVER", "sqlite")),
		SQLitePath:  envOr("SQLITE_PATH", "meeting_notes.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		APIKey:                firstNonEmpty(os.Getenv("AI_API_KEY"), os.Getenv("OPENAI_API_KEY"), os.Getenv("GEMINI_API_KEY")),
		OpenAIBaseURL:         envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIChatModel:       envOr("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		OpenAITranscribeModel: envOr("OPENAI_TRANSCRIBE_MODEL", "whisper-1"),
		GeminiBaseURL:         envOr("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiModel:           envOr("GEMINI_MODEL", "gemini-1.5-flash"),

		HTTPTimeout:         seconds("HTTP_TIMEOUT_SEC", 120),
		PipelineTimeout:     seconds("PIPELINE_TIMEOUT_SEC", 300),
		FileActiveTimeout:   seconds("FILE_ACTIVE_TIMEOUT_SEC", 60),
		TranslationCacheTTL: seconds("TRANSLATION_CACHE_TTL_SEC", 600),
	}
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("no AI credential configured: set AI_API_KEY (or OPENAI_API_KEY / GEMINI_API_KEY)")
	}
	switch c.DBDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH must not be empty")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.UploadDir == "" {
		return errors.New("UPLOAD_DIR must not be empty")
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func seconds(k string, def int) time.Duration {
	return time.Duration(envInt(k, def)) * time.Second
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
