package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Settings   Settings   `mapstructure:"settings"`
	Clustering Clustering `mapstructure:"clustering"`
	Naming     Naming     `mapstructure:"naming"`
	Embedding  Embedding  `mapstructure:"embedding"`
	Stopwords  Stopwords  `mapstructure:"stopwords"`
	Reddit     Reddit     `mapstructure:"reddit"`
	Feeds      Feeds      `mapstructure:"feeds"`
	Summary    Summary    `mapstructure:"summary"`
	Output     Output     `mapstructure:"output"`
	Logging    Logging    `mapstructure:"logging"`

	// ConfigFile is the file the configuration was read from, if any.
	ConfigFile string `mapstructure:"-"`
}

// Settings holds the user-facing preferences.
type Settings struct {
	PostLimit int    `mapstructure:"post_limit"`
	Theme     string `mapstructure:"theme"`
	Font      string `mapstructure:"font"`
	FontSize  int    `mapstructure:"font_size"`
}

// Clustering selects and tunes the clustering strategy.
type Clustering struct {
	Strategy       string  `mapstructure:"strategy"`
	MinClusterSize int     `mapstructure:"min_cluster_size"`
	Metric         string  `mapstructure:"metric"`
	K              int     `mapstructure:"k"`
	Seed           int64   `mapstructure:"seed"`
	MaxNoiseRatio  float64 `mapstructure:"max_noise_ratio"`
}

// Naming configures cluster naming.
type Naming struct {
	Keyphrase   string `mapstructure:"keyphrase"`
	NoisePolicy string `mapstructure:"noise_policy"`
}

// Embedding configures the sentence embedding provider.
type Embedding struct {
	Provider   string `mapstructure:"provider"`
	Model      string `mapstructure:"model"`
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"api_key"`
	Dimensions int    `mapstructure:"dimensions"`
	CacheSize  int    `mapstructure:"cache_size"`
	Timeout    string `mapstructure:"timeout"`
}

// Stopwords points at an optional directory overriding the embedded lists.
type Stopwords struct {
	Dir string `mapstructure:"dir"`
}

// Reddit holds the Reddit API credentials.
type Reddit struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
	Username     string `mapstructure:"username"`
	UserAgent    string `mapstructure:"user_agent"`
	Timeout      string `mapstructure:"timeout"`
}

// Feeds selects the item source.
type Feeds struct {
	Source    string   `mapstructure:"source"`
	RSS       []string `mapstructure:"rss"`
	File      string   `mapstructure:"file"`
	UserAgent string   `mapstructure:"user_agent"`
	Timeout   string   `mapstructure:"timeout"`
}

// Summary configures item previews.
type Summary struct {
	MaxLength int `mapstructure:"max_length"`
}

// Output holds export configuration.
type Output struct {
	Directory string `mapstructure:"directory"`
}

// Logging holds logger configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Feed source names.
const (
	SourceReddit = "reddit"
	SourceRSS    = "rss"
	SourceFile   = "file"
)

var globalConfig *Config

// Load loads the configuration from defaults, the config file, .env and the
// environment. The first successful load is cached.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.SetConfigName(".clusternews")
	}

	setDefaults(v)

	v.SetEnvPrefix("CLUSTERNEWS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvironmentVariables(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.ConfigFile = v.ConfigFileUsed()

	postProcessConfig(config)

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("settings.post_limit", 50)
	v.SetDefault("settings.theme", "Light")
	v.SetDefault("settings.font", "Arial")
	v.SetDefault("settings.font_size", 10)

	v.SetDefault("clustering.strategy", "auto")
	v.SetDefault("clustering.min_cluster_size", 3)
	v.SetDefault("clustering.metric", "euclidean")
	v.SetDefault("clustering.k", 5)
	v.SetDefault("clustering.seed", 42)
	v.SetDefault("clustering.max_noise_ratio", 1.0)

	v.SetDefault("naming.keyphrase", "neural")
	v.SetDefault("naming.noise_policy", "sentinel")

	v.SetDefault("embedding.provider", "gemini")
	v.SetDefault("embedding.model", "")
	v.SetDefault("embedding.endpoint", "")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.dimensions", 0)
	v.SetDefault("embedding.cache_size", 4096)
	v.SetDefault("embedding.timeout", "30s")

	v.SetDefault("stopwords.dir", "")

	v.SetDefault("reddit.client_id", "")
	v.SetDefault("reddit.client_secret", "")
	v.SetDefault("reddit.refresh_token", "")
	v.SetDefault("reddit.username", "")
	v.SetDefault("reddit.user_agent", "")
	v.SetDefault("reddit.timeout", "30s")

	v.SetDefault("feeds.source", SourceReddit)
	v.SetDefault("feeds.rss", []string{})
	v.SetDefault("feeds.file", "")
	v.SetDefault("feeds.user_agent", "ClusterNews/1.0")
	v.SetDefault("feeds.timeout", "30s")

	v.SetDefault("summary.max_length", 200)

	v.SetDefault("output.directory", "clusters")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// bindEnvironmentVariables maps the conventional unprefixed variables onto
// config keys. Keys already set through CLUSTERNEWS_* keep precedence.
func bindEnvironmentVariables(v *viper.Viper) {
	bindEnvKeys(v, "embedding.api_key", []string{
		"CLUSTERNEWS_EMBEDDING_API_KEY",
		"GEMINI_API_KEY",
		"GOOGLE_API_KEY",
	})
	bindEnvKeys(v, "reddit.client_id", []string{"CLUSTERNEWS_REDDIT_CLIENT_ID", "REDDIT_CLIENT_ID"})
	bindEnvKeys(v, "reddit.client_secret", []string{"CLUSTERNEWS_REDDIT_CLIENT_SECRET", "REDDIT_CLIENT_SECRET"})
	bindEnvKeys(v, "reddit.refresh_token", []string{"CLUSTERNEWS_REDDIT_REFRESH_TOKEN", "REDDIT_REFRESH_TOKEN"})
	bindEnvKeys(v, "reddit.username", []string{"CLUSTERNEWS_REDDIT_USERNAME", "REDDIT_USERNAME"})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(v *viper.Viper, key string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			v.Set(key, value)
			return
		}
	}
}

func postProcessConfig(config *Config) {
	config.Stopwords.Dir = expandPath(config.Stopwords.Dir)
	config.Feeds.File = expandPath(config.Feeds.File)
	config.Output.Directory = expandPath(config.Output.Directory)
	config.Feeds.Source = strings.ToLower(strings.TrimSpace(config.Feeds.Source))

	// a single comma-separated value from the environment
	if len(config.Feeds.RSS) == 1 && strings.Contains(config.Feeds.RSS[0], ",") {
		var urls []string
		for _, u := range strings.Split(config.Feeds.RSS[0], ",") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
		config.Feeds.RSS = urls
	}
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures the values are usable
func validateConfig(config *Config) error {
	var errors []string

	if config.Settings.PostLimit < 1 {
		errors = append(errors, fmt.Sprintf("settings.post_limit must be at least 1, got %d", config.Settings.PostLimit))
	}
	if config.Settings.FontSize < 1 {
		errors = append(errors, fmt.Sprintf("settings.font_size must be at least 1, got %d", config.Settings.FontSize))
	}

	switch strings.ToLower(config.Clustering.Strategy) {
	case "auto", "hdbscan", "density", "embedding", "kmeans", "bow", "bag-of-words":
	default:
		errors = append(errors, fmt.Sprintf("Unknown clustering strategy: %s. Supported: auto, hdbscan, kmeans", config.Clustering.Strategy))
	}
	if config.Clustering.MinClusterSize < 1 {
		errors = append(errors, "clustering.min_cluster_size must be at least 1")
	}
	if config.Clustering.K < 1 {
		errors = append(errors, "clustering.k must be at least 1")
	}
	if config.Clustering.MaxNoiseRatio <= 0 || config.Clustering.MaxNoiseRatio > 1 {
		errors = append(errors, "clustering.max_noise_ratio must be greater than 0 and at most 1")
	}

	switch config.Naming.Keyphrase {
	case "neural", "rake":
	default:
		errors = append(errors, fmt.Sprintf("Unknown keyphrase extractor: %s. Supported: neural, rake", config.Naming.Keyphrase))
	}
	switch config.Naming.NoisePolicy {
	case "sentinel", "omit":
	default:
		errors = append(errors, fmt.Sprintf("Unknown noise policy: %s. Supported: sentinel, omit", config.Naming.NoisePolicy))
	}

	switch config.Embedding.Provider {
	case "gemini", "hashing":
	case "http":
		if config.Embedding.Endpoint == "" {
			errors = append(errors, "embedding.endpoint is required for the http provider")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown embedding provider: %s. Supported: gemini, http, hashing", config.Embedding.Provider))
	}

	switch config.Feeds.Source {
	case SourceReddit:
		r := config.Reddit
		if r.RefreshToken != "" && (r.ClientID == "" || r.ClientSecret == "") {
			errors = append(errors, "Reddit refresh token requires client id and secret. Set REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET")
		}
	case SourceRSS:
		if len(config.Feeds.RSS) == 0 {
			errors = append(errors, "feeds.rss must list at least one feed URL for the rss source")
		}
	case SourceFile:
		if config.Feeds.File == "" {
			errors = append(errors, "feeds.file is required for the file source")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown feed source: %s. Supported: reddit, rss, file", config.Feeds.Source))
	}

	if config.Summary.MaxLength < 1 {
		errors = append(errors, "summary.max_length must be at least 1")
	}

	durations := map[string]string{
		"embedding.timeout": config.Embedding.Timeout,
		"reddit.timeout":    config.Reddit.Timeout,
		"feeds.timeout":     config.Feeds.Timeout,
	}
	for key, d := range durations {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			errors = append(errors, fmt.Sprintf("invalid duration for %s: %s", key, d))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Duration parses a validated duration value, returning fallback when empty.
func Duration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || value == "" {
		return fallback
	}
	return d
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
}
