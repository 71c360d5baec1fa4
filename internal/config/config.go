package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Keys    APIKeys
	Ai      AIConfig
	Ranker  RankerConfig
	Session SessionConfig
	Flow    FlowConfig
	Usage   UsageConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type APIKeys struct {
	GoogleGemini string
	Jina         string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini", "ollama" or "jina"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "gemini" or "ollama"
	LLMModel          string // e.g. "gemini-2.5-flash-lite", "llama3"
	LLMTemperature    float64
	LLMMaxTokens      int
	ChatTurnTopic     string
}

type RankerConfig struct {
	TopicBoost          float64
	ProductBoost        float64
	SubProductBoost     float64
	NationalityBoost    float64
	NationalityPenalty  float64
	CombinedBonus       float64
	LexicalBoost        float64
	AutoAnswerThreshold float64
	ContextThreshold    float64
	TopK                int
}

type SessionConfig struct {
	TimeoutMinutes int
	SweepMinutes   int
}

type FlowConfig struct {
	MinAmount float64
	MinTenure int
	MaxTenure int
}

type UsageConfig struct {
	DailyCallCap int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-2.5-flash-lite"),
			LLMTemperature:    getEnvAsFloat("LLM_TEMPERATURE", 0.3),
			LLMMaxTokens:      getEnvAsInt("LLM_MAX_TOKENS", 500),
			ChatTurnTopic:     getEnv("CHAT_TURN_TOPIC_NAME", "chat.turns"),
		},
		Ranker: RankerConfig{
			TopicBoost:          getEnvAsFloat("RANKER_TOPIC_BOOST", 0.10),
			ProductBoost:        getEnvAsFloat("RANKER_PRODUCT_BOOST", 0.15),
			SubProductBoost:     getEnvAsFloat("RANKER_SUB_PRODUCT_BOOST", 0.20),
			NationalityBoost:    getEnvAsFloat("RANKER_NATIONALITY_BOOST", 0.05),
			NationalityPenalty:  getEnvAsFloat("RANKER_NATIONALITY_PENALTY", 0.12),
			CombinedBonus:       getEnvAsFloat("RANKER_COMBINED_BONUS", 0.05),
			LexicalBoost:        getEnvAsFloat("RANKER_LEXICAL_BOOST", 0.08),
			AutoAnswerThreshold: getEnvAsFloat("RANKER_AUTO_ANSWER_THRESHOLD", 0.85),
			ContextThreshold:    getEnvAsFloat("RANKER_CONTEXT_THRESHOLD", 0.70),
			TopK:                getEnvAsInt("RANKER_TOP_K", 3),
		},
		Session: SessionConfig{
			TimeoutMinutes: getEnvAsInt("SESSION_TIMEOUT_MINUTES", 30),
			SweepMinutes:   getEnvAsInt("SESSION_SWEEP_MINUTES", 5),
		},
		Flow: FlowConfig{
			MinAmount: getEnvAsFloat("EMI_MIN_AMOUNT", 5000),
			MinTenure: getEnvAsInt("EMI_MIN_TENURE_MONTHS", 1),
			MaxTenure: getEnvAsInt("EMI_MAX_TENURE_MONTHS", 48),
		},
		Usage: UsageConfig{
			DailyCallCap: getEnvAsInt("DAILY_CALL_CAP", 1000),
		},
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
