package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Admin     AdminConfig
	GigaChat  GigaChatConfig
	Anthropic AnthropicConfig
	LLM       LLMConfig
	Retrieval RetrievalConfig
	Content   ContentConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

type AdminConfig struct {
	// Bcrypt hash of the admin API key, not the key itself.
	APIKeyHash string
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	InsecureSkipVerify bool
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type LLMConfig struct {
	Provider    string // gigachat or claude
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type RetrievalConfig struct {
	KeywordWeight  float64
	FullTextWeight float64
	TopicWeight    float64
	LanguageWeight float64
	TopN           int
	ContextSize    int
	HighConfidence float64
	FallbackFactor float64
}

type ContentConfig struct {
	FreshnessWindow time.Duration
	RefreshSchedule string
	FeedURLs        []string
	FetchTimeout    time.Duration
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// If no .env file was found we continue with plain environment
	// variables (useful for Docker/K8s).

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	maxTokens, _ := strconv.Atoi(getEnv("LLM_MAX_TOKENS", "600"))
	temperature, _ := strconv.ParseFloat(getEnv("LLM_TEMPERATURE", "0.3"), 64)
	llmTimeout, _ := strconv.Atoi(getEnv("LLM_TIMEOUT_SECONDS", "20"))
	keywordWeight, _ := strconv.ParseFloat(getEnv("RETRIEVAL_KEYWORD_WEIGHT", "0.4"), 64)
	fullTextWeight, _ := strconv.ParseFloat(getEnv("RETRIEVAL_FULLTEXT_WEIGHT", "0.3"), 64)
	topicWeight, _ := strconv.ParseFloat(getEnv("RETRIEVAL_TOPIC_WEIGHT", "0.2"), 64)
	languageWeight, _ := strconv.ParseFloat(getEnv("RETRIEVAL_LANGUAGE_WEIGHT", "0.1"), 64)
	topN, _ := strconv.Atoi(getEnv("RETRIEVAL_TOP_N", "10"))
	contextSize, _ := strconv.Atoi(getEnv("RETRIEVAL_CONTEXT_SIZE", "5"))
	highConfidence, _ := strconv.ParseFloat(getEnv("RETRIEVAL_HIGH_CONFIDENCE", "0.6"), 64)
	fallbackFactor, _ := strconv.ParseFloat(getEnv("RETRIEVAL_FALLBACK_FACTOR", "0.85"), 64)
	freshnessHours, _ := strconv.Atoi(getEnv("CONTENT_FRESHNESS_HOURS", "24"))
	fetchTimeout, _ := strconv.Atoi(getEnv("CONTENT_FETCH_TIMEOUT", "15"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5433"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "campaign_bot"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		Admin: AdminConfig{
			APIKeyHash: getEnv("ADMIN_API_KEY_HASH", ""),
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		Anthropic: AnthropicConfig{
			APIKey: getEnv("ANTHROPIC_API_KEY", ""),
			Model:  getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "gigachat"),
			MaxTokens:   maxTokens,
			Temperature: temperature,
			Timeout:     time.Duration(llmTimeout) * time.Second,
		},
		Retrieval: RetrievalConfig{
			KeywordWeight:  keywordWeight,
			FullTextWeight: fullTextWeight,
			TopicWeight:    topicWeight,
			LanguageWeight: languageWeight,
			TopN:           topN,
			ContextSize:    contextSize,
			HighConfidence: highConfidence,
			FallbackFactor: fallbackFactor,
		},
		Content: ContentConfig{
			FreshnessWindow: time.Duration(freshnessHours) * time.Hour,
			RefreshSchedule: getEnv("CONTENT_REFRESH_SCHEDULE", "@every 6h"),
			FeedURLs:        splitList(getEnv("CONTENT_FEED_URLS", "")),
			FetchTimeout:    time.Duration(fetchTimeout) * time.Second,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
