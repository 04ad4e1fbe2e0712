package config

import (
	"log"
	"os"
	"slices"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	AppEnv       string
	IsStaging    bool
	IsProduction bool

	JWTSecret string
	Port      string

	// Ollama-backed AI companion
	OllamaBaseURL string
	OllamaModel   string
	// IsOllamaEnabled is a flag to enable/disable Ollama usage (enum: "1" or "0")
	IsOllamaEnabled bool

	// uploads
	UploadDir       string
	MaxUploadSizeMB int

	// runtime tunables
	RateLimitWindowSeconds int
	RateLimitCapacity      int
	UserConcurrencyLimit   int
	DuplicateWindowSeconds int
	AIRespCacheTTLSeconds  int
	AIRespCacheMaxItems    int
)

// loadAppEnv loads .env only outside production; a production deployment is
// expected to carry real environment variables.
func loadAppEnv() {
	AppEnv = os.Getenv("APP_ENV")

	if AppEnv == "production" {
		return
	}

	if err := godotenv.Load(); err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}
}

func init() {
	loadAppEnv()

	AppEnv = os.Getenv("APP_ENV")
	if !slices.Contains([]string{"staging", "production"}, AppEnv) {
		log.Fatal("environment variable APP_ENV must be 'staging' or 'production'")
	}
	IsStaging = AppEnv == "staging"
	IsProduction = AppEnv == "production"

	OllamaBaseURL = os.Getenv("OLLAMA_BASE_URL")
	if OllamaBaseURL == "" {
		OllamaBaseURL = "http://localhost:11434"
	}
	OllamaModel = os.Getenv("OLLAMA_MODEL")
	if OllamaModel == "" {
		OllamaModel = "llama3.2:3b"
	}
	IsOllamaEnabled = os.Getenv("IS_OLLAMA_ENABLED") == "1"

	JWTSecret = os.Getenv("JWT_SECRET_KEY")
	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "5000"
	}

	UploadDir = os.Getenv("UPLOAD_DIR")
	if UploadDir == "" {
		UploadDir = "./uploads"
	}
	MaxUploadSizeMB = atoiOr(os.Getenv("MAX_UPLOAD_SIZE_MB"), 5)

	RateLimitWindowSeconds = atoiOr(os.Getenv("RATE_LIMIT_WINDOW_SECONDS"), 10)
	RateLimitCapacity = atoiOr(os.Getenv("RATE_LIMIT_CAPACITY"), 5)
	UserConcurrencyLimit = atoiOr(os.Getenv("USER_CONCURRENCY_LIMIT"), 2)
	DuplicateWindowSeconds = atoiOr(os.Getenv("DUPLICATE_WINDOW_SECONDS"), 45)
	AIRespCacheTTLSeconds = atoiOr(os.Getenv("AI_CACHE_TTL_SECONDS"), 600)
	AIRespCacheMaxItems = atoiOr(os.Getenv("AI_CACHE_MAX_ITEMS"), 500)

	if IsProduction && JWTSecret == "" {
		log.Fatal("JWT_SECRET_KEY must be set in production")
	}

	log.Printf("[config] AppEnv=%s IsStaging=%v IsProduction=%v", AppEnv, IsStaging, IsProduction)
	log.Printf("[config] IsOllamaEnabled=%v OllamaBaseURL=%s OllamaModel=%s", IsOllamaEnabled, OllamaBaseURL, OllamaModel)
	log.Printf("[config] RateLimit window=%ds capacity=%d userConc=%d dupWindow=%ds cacheTTL=%ds cacheMax=%d",
		RateLimitWindowSeconds, RateLimitCapacity, UserConcurrencyLimit, DuplicateWindowSeconds, AIRespCacheTTLSeconds, AIRespCacheMaxItems)
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
