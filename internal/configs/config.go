package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DatasetSourceJSON     = "json"
	DatasetSourcePostgres = "postgres"
)

type RESTconfig struct {
	PORT               string
	CORSAllowedOrigins []string
	// запросов к реле в минуту с одного IP
	RecommendRateLimit int
}

type DatasetConfig struct {
	Source      string
	HousesFile  string
	RegionsFile string
	DatabaseURL string
	// пустая строка - без периодической перезагрузки
	RefreshCron string
}

type RecommendConfig struct {
	CandidateLimit int
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type UnsplashConfig struct {
	AccessKey string
	BaseURL   string
	CacheTTL  time.Duration
}

type KakaoConfig struct {
	RESTAPIKey string
	BaseURL    string
}

type RabbitMQConfig struct {
	Enabled bool
	URL     string
}

type StdoutLogConfig struct {
	Level string
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName           string
	Rest              RESTconfig
	Dataset           DatasetConfig
	LifestyleTagsFile string
	Recommend         RecommendConfig
	OpenAI            OpenAIConfig
	Unsplash          UnsplashConfig
	Kakao             KakaoConfig
	HTTPClientTimeout time.Duration
	SessionTTL        time.Duration
	RabbitMQ          RabbitMQConfig
	FluentBit         FluentBitConfig
	StdoutLogger      StdoutLogConfig
}

// LoadConfig загружает конфигурацию из переменных окружения.
// Файл .env необязателен: если его нет, читаем только окружение.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		log.Printf("Info: Could not load .env file (path: %v): %v. Using process environment.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "matjib-service")

	cfg.Rest.PORT = getEnvAsString("PORT", "8080")
	cfg.Rest.CORSAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"})
	cfg.Rest.RecommendRateLimit = getEnvAsInt("RECOMMEND_RATE_LIMIT", 10)

	cfg.Dataset.Source = strings.ToLower(getEnvAsString("DATASET_SOURCE", DatasetSourceJSON))
	switch cfg.Dataset.Source {
	case DatasetSourceJSON:
		cfg.Dataset.HousesFile = getEnvAsString("HOUSES_FILE", "data/houses.json")
		cfg.Dataset.RegionsFile = getEnvAsString("REGIONS_FILE", "data/regions.json")
	case DatasetSourcePostgres:
		cfg.Dataset.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.Dataset.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required when DATASET_SOURCE=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown DATASET_SOURCE %q, expected %q or %q", cfg.Dataset.Source, DatasetSourceJSON, DatasetSourcePostgres)
	}
	cfg.Dataset.RefreshCron = getEnvAsString("DATASET_REFRESH_CRON", "")

	cfg.LifestyleTagsFile = getEnvAsString("LIFESTYLE_TAGS_FILE", "")
	cfg.Recommend.CandidateLimit = getEnvAsInt("RECOMMEND_CANDIDATE_LIMIT", 30)

	cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAI.APIKey == "" {
		log.Println("WARNING: OPENAI_API_KEY is not set. Recommendations will degrade to filtered results.")
	}
	cfg.OpenAI.BaseURL = getEnvAsString("OPENAI_BASE_URL", "https://api.openai.com/v1")
	cfg.OpenAI.Model = getEnvAsString("OPENAI_MODEL", "gpt-4o")

	cfg.Unsplash.AccessKey = os.Getenv("UNSPLASH_ACCESS_KEY")
	cfg.Unsplash.BaseURL = getEnvAsString("UNSPLASH_BASE_URL", "https://api.unsplash.com")
	cfg.Unsplash.CacheTTL = getEnvAsDuration("UNSPLASH_CACHE_TTL", 10*time.Minute)

	cfg.Kakao.RESTAPIKey = os.Getenv("KAKAO_REST_API_KEY")
	cfg.Kakao.BaseURL = getEnvAsString("KAKAO_BASE_URL", "https://dapi.kakao.com")

	cfg.HTTPClientTimeout = getEnvAsDuration("HTTP_CLIENT_TIMEOUT", 30*time.Second)
	cfg.SessionTTL = getEnvAsDuration("SESSION_TTL", 2*time.Hour)

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED=true")
		}
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}

		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt читает переменную окружения как int или возвращает значение по умолчанию.
// Логирует ошибку, если переменная есть, но не может быть преобразована в int
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valDur, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valDur
}

// getEnvAsList - список через запятую, пустые элементы отбрасываются
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
