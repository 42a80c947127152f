package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	HTTPPort    string
	HTTPSPort   string
	Domains     []string

	DatabaseURL string

	OpenAIAPIKey   string
	ChatModel      string
	EmbeddingModel string
	WhisperModel   string

	DefaultDatasetID    string
	SimilarityThreshold float64
	MaxChunks           int

	CacheTTL           time.Duration
	EmbeddingCacheSize int
	SearchCacheSize    int

	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromNumber  string
	EscalationPhone   string
	FrustrationCutoff float64

	LogDir string
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		HTTPPort:    getEnv("HTTP_PORT", "3001"),
		HTTPSPort:   getEnv("HTTPS_PORT", "443"),
		Domains:     []string{getEnv("DOMAIN", "example.com")},

		DatabaseURL: getEnv("DATABASE_URL", ""),

		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		ChatModel:      getEnv("CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		WhisperModel:   getEnv("WHISPER_MODEL", "whisper-1"),

		DefaultDatasetID:    getEnv("DEFAULT_DATASET_ID", "eaa"),
		SimilarityThreshold: getEnvAsFloat("SIMILARITY_THRESHOLD", 0.75),
		MaxChunks:           getEnvAsInt("MAX_CHUNKS", 5),

		CacheTTL:           time.Duration(getEnvAsInt("CACHE_TTL_MS", 180000)) * time.Millisecond,
		EmbeddingCacheSize: getEnvAsInt("EMBEDDING_CACHE_SIZE", 200),
		SearchCacheSize:    getEnvAsInt("SEARCH_CACHE_SIZE", 300),

		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber:  getEnv("TWILIO_FROM_NUMBER", ""),
		EscalationPhone:   getEnv("ESCALATION_PHONE", ""),
		FrustrationCutoff: getEnvAsFloat("FRUSTRATION_CUTOFF", 0.7),

		LogDir: getEnv("LOG_DIR", "logs"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
