package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port             string
	Env              string
	HTTPWriteTimeout time.Duration

	// Database
	DatabaseURL   string
	MigrationsDir string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Gemini AI
	GeminiAPIKey string
	GeminiModel  string

	// Transcription
	TranscriptionProvider string
	AssemblyAIAPIKey      string
	AssemblyAIBaseURL     string
	AssemblyAIPoll        time.Duration

	// Audio
	MediaRoot    string
	FFmpegPath   string
	AudioBitrate string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		Env:              getEnvOrDefault("ENV", "development"),
		HTTPWriteTimeout: getEnvAsDurationOrDefault("HTTP_WRITE_TIMEOUT", 5*time.Minute),

		DatabaseURL:   mustGetEnv("DATABASE_URL"),
		MigrationsDir: getEnvOrDefault("MIGRATIONS_DIR", "migrations"),
		RedisURL:      mustGetEnv("REDIS_URL"),
		JWTSecret:     mustGetEnv("JWT_SECRET"),

		GeminiAPIKey: mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),

		TranscriptionProvider: getEnvOrDefault("TRANSCRIPTION_PROVIDER", "assemblyai"),
		AssemblyAIBaseURL:     getEnvOrDefault("ASSEMBLYAI_BASE_URL", "https://api.assemblyai.com"),
		AssemblyAIPoll:        getEnvAsDurationOrDefault("ASSEMBLYAI_POLL_INTERVAL", 3*time.Second),

		MediaRoot:    getEnvOrDefault("MEDIA_ROOT", "./media"),
		FFmpegPath:   getEnvOrDefault("FFMPEG_PATH", "ffmpeg"),
		AudioBitrate: getEnvOrDefault("AUDIO_BITRATE", "192k"),

		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	switch cfg.TranscriptionProvider {
	case "assemblyai":
		cfg.AssemblyAIAPIKey = mustGetEnv("ASSEMBLYAI_API_KEY")
	case "gemini":
	default:
		panic(fmt.Sprintf("unsupported TRANSCRIPTION_PROVIDER %q (want assemblyai or gemini)", cfg.TranscriptionProvider))
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// getEnvAsDurationOrDefault accepts Go duration strings ("90s", "5m") or a bare
// number of seconds.
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs := getEnvAsIntOrDefault(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}
