package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	SQLite      SQLiteConfig
	Redis       RedisConfig
	HuggingFace HuggingFaceConfig
	OpenAI      OpenAIConfig
	Scraper     ScraperConfig
	Pipeline    PipelineConfig
	Logging     LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
	ServiceKeys  []string
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Host        string
	Port        int
	Password    string
	DB          int
	RecordTTLHr int
}

type HuggingFaceConfig struct {
	APIToken         string
	SummarizerModel  string
	ExtremeSumModel  string
	SentimentModel   string
	ZeroShotModel    string
	BaseURL          string
	MaxAttempts      int
	BackoffSec       int
	TimeoutSec       int
}

type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	TimeoutSec  int
}

type ScraperConfig struct {
	ProxyURL       string
	ProxyAPIKey    string
	BaseURL        string
	NumReviewPages int
	TimeoutSec     int
	ParserURL      string
}

type PipelineConfig struct {
	MaxRestaurantReviews int
	ReviewsForProCon     int
	SummaryTokenLimit    int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/procon-engine")

	viper.SetEnvPrefix("PROCON")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8001)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 300)
	viper.SetDefault("server.bodyLimit", 1048576)
	viper.SetDefault("server.serviceKeys", []string{"oogway_test"})

	viper.SetDefault("sqlite.path", "./data/procon.db")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.recordTTLHr", 0)

	viper.SetDefault("huggingface.baseURL", "https://api-inference.huggingface.co/models")
	viper.SetDefault("huggingface.summarizerModel", "sshleifer/distilbart-cnn-12-6")
	viper.SetDefault("huggingface.extremeSumModel", "google/pegasus-xsum")
	viper.SetDefault("huggingface.sentimentModel", "nlptown/bert-base-multilingual-uncased-sentiment")
	viper.SetDefault("huggingface.zeroShotModel", "typeform/distilbert-base-uncased-mnli")
	viper.SetDefault("huggingface.maxAttempts", 4)
	viper.SetDefault("huggingface.backoffSec", 45)
	viper.SetDefault("huggingface.timeoutSec", 60)

	viper.SetDefault("openai.model", "gpt-3.5-turbo-instruct")
	viper.SetDefault("openai.maxTokens", 30)
	viper.SetDefault("openai.temperature", 0.0)
	viper.SetDefault("openai.timeoutSec", 30)

	viper.SetDefault("scraper.proxyURL", "https://app.scrapingbee.com/api/v1/")
	viper.SetDefault("scraper.baseURL", "https://www.amazon.com")
	viper.SetDefault("scraper.numReviewPages", 1)
	viper.SetDefault("scraper.timeoutSec", 60)
	viper.SetDefault("scraper.parserURL", "http://localhost:8002/parse")

	viper.SetDefault("pipeline.maxRestaurantReviews", 10)
	viper.SetDefault("pipeline.reviewsForProCon", 5)
	viper.SetDefault("pipeline.summaryTokenLimit", 800)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
