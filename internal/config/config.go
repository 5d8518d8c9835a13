package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// News sources
	NewsAPIKey       string
	NewsdataAPIKey   string
	TopicsConfigPath string
	NewsLanguage     string
	NewsWindowDays   int
	NewsMaxPages     int
	NewsPageSize     int

	// LLM settings
	LLMProvider    string // "openai" or "gemini"
	OpenAIAPIKey   string
	OpenAIBaseURL  string // optional, for Azure-hosted deployments
	GeminiAPIKey   string
	ScorerStrategy string // "lexical" or "model"
	MaxLLMRequests int    // per-run budget (0 = unlimited)

	// Twitter credentials
	TwitterConsumerKey    string
	TwitterConsumerSecret string
	TwitterAccessToken    string
	TwitterAccessSecret   string

	// Ledger storage
	AzureConnectionString string
	LedgerContainer       string
	LedgerBlobName        string
	LedgerFilePath        string // used when no Azure connection string is set

	// Selection thresholds
	SentimentThreshold  float64
	RelevanceThreshold  float64
	SimilarityThreshold float64

	// Summarizer
	SummaryTargetLength int
	SummaryRetries      int

	// App settings
	ScrapeFullText bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

// Topics holds the domain-specific lists loaded from the YAML config file.
type Topics struct {
	Topics   []string `yaml:"topics"`
	Domains  []string `yaml:"domains"`
	Hashtags string   `yaml:"hashtags"`
	Feeds    []string `yaml:"feeds"`
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		TopicsConfigPath:    "configs/topics.yaml",
		NewsLanguage:        "en",
		NewsWindowDays:      7,
		NewsMaxPages:        5,
		NewsPageSize:        20,
		LLMProvider:         "openai",
		ScorerStrategy:      "model",
		MaxLLMRequests:      40,
		LedgerContainer:     "posted-tweets",
		LedgerBlobName:      "posted_tweets.json",
		LedgerFilePath:      "posted_tweets.json",
		SentimentThreshold:  0.5,
		RelevanceThreshold:  0.5,
		SimilarityThreshold: 0.9,
		SummaryTargetLength: 600,
		SummaryRetries:      3,
		RequestTimeout:      30 * time.Second,
		RetryAttempts:       3,
		RetryDelay:          2 * time.Second,
	}

	// Load from environment
	cfg.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	cfg.NewsdataAPIKey = os.Getenv("NEWSDATA_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	cfg.TwitterConsumerKey = os.Getenv("TWITTER_CONSUMER_KEY")
	cfg.TwitterConsumerSecret = os.Getenv("TWITTER_CONSUMER_SECRET")
	cfg.TwitterAccessToken = os.Getenv("TWITTER_ACCESS_TOKEN")
	cfg.TwitterAccessSecret = os.Getenv("TWITTER_ACCESS_SECRET")

	cfg.AzureConnectionString = os.Getenv("AZURE_STORAGE_CONNECTION_STRING")
	cfg.LedgerContainer = getEnvOrDefault("LEDGER_CONTAINER", cfg.LedgerContainer)
	cfg.LedgerBlobName = getEnvOrDefault("LEDGER_BLOB_NAME", cfg.LedgerBlobName)
	cfg.LedgerFilePath = getEnvOrDefault("LEDGER_FILE_PATH", cfg.LedgerFilePath)

	cfg.TopicsConfigPath = getEnvOrDefault("TOPICS_CONFIG_PATH", cfg.TopicsConfigPath)

	if p := os.Getenv("LLM_PROVIDER"); p != "" {
		cfg.LLMProvider = p
	}
	if s := os.Getenv("SCORER_STRATEGY"); s != "" {
		cfg.ScorerStrategy = s
	}
	cfg.MaxLLMRequests = getEnvIntOrDefault("MAX_LLM_REQUESTS", cfg.MaxLLMRequests)

	cfg.SentimentThreshold = getEnvFloatOrDefault("SENTIMENT_THRESHOLD", cfg.SentimentThreshold)
	cfg.RelevanceThreshold = getEnvFloatOrDefault("RELEVANCE_THRESHOLD", cfg.RelevanceThreshold)
	cfg.SimilarityThreshold = getEnvFloatOrDefault("SIMILARITY_THRESHOLD", cfg.SimilarityThreshold)

	if v := os.Getenv("SUMMARY_TARGET_LENGTH"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.SummaryTargetLength = val
		}
	}
	if v := os.Getenv("SUMMARY_RETRIES"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.SummaryRetries = val
		}
	}

	cfg.NewsMaxPages = getEnvIntOrDefault("NEWS_MAX_PAGES", cfg.NewsMaxPages)
	cfg.NewsPageSize = getEnvIntOrDefault("NEWS_PAGE_SIZE", cfg.NewsPageSize)
	cfg.NewsWindowDays = getEnvIntOrDefault("NEWS_WINDOW_DAYS", cfg.NewsWindowDays)
	if lang := os.Getenv("NEWS_LANGUAGE"); lang != "" {
		cfg.NewsLanguage = lang
	}

	if scrape := os.Getenv("SCRAPE_FULL_TEXT"); scrape == "true" {
		cfg.ScrapeFullText = true
	}

	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	if v := getEnvIntOrDefault("RETRY_DELAY_SECONDS", 0); v > 0 {
		cfg.RetryDelay = time.Duration(v) * time.Second
	}
	if v := getEnvIntOrDefault("REQUEST_TIMEOUT_SECONDS", 0); v > 0 {
		cfg.RequestTimeout = time.Duration(v) * time.Second
	}

	return cfg, cfg.Validate()
}

// LoadTopics reads the topic/domain/hashtag lists from the YAML config file.
func LoadTopics(path string) (*Topics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var t Topics
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&t); err != nil {
		return nil, err
	}
	if len(t.Topics) == 0 {
		return nil, fmt.Errorf("topics config %s has no topics", path)
	}
	return &t, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.NewsAPIKey == "" && c.NewsdataAPIKey == "" {
		return fmt.Errorf("at least one of NEWS_API_KEY or NEWSDATA_API_KEY is required")
	}
	switch c.LLMProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for LLM_PROVIDER=openai")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for LLM_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be 'openai' or 'gemini'")
	}
	if c.ScorerStrategy != "lexical" && c.ScorerStrategy != "model" {
		return fmt.Errorf("SCORER_STRATEGY must be 'lexical' or 'model'")
	}
	if c.TwitterConsumerKey == "" || c.TwitterConsumerSecret == "" ||
		c.TwitterAccessToken == "" || c.TwitterAccessSecret == "" {
		return fmt.Errorf("TWITTER_CONSUMER_KEY, TWITTER_CONSUMER_SECRET, TWITTER_ACCESS_TOKEN and TWITTER_ACCESS_SECRET are required")
	}
	return nil
}
