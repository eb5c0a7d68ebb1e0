// Package config provides configuration loading and validation for the service and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Defaults
const (
	DefaultPort                       = "8080"
	DefaultMaxUploadBytes       int64 = 5 << 20
	DefaultRecommendTimeout           = 5 * time.Second
	DefaultRecommendMaxSkills         = 10
	DefaultRecommendPerSkill          = 3
	DefaultRecommendMaxTotal          = 15
	DefaultRecommendConcurrency       = 4
	DefaultCacheTTL                   = 6 * time.Hour
	DefaultCoursePlatform             = "Course Catalog"
	DefaultCatalogRPS                 = 1.0
	DefaultLogFormat                  = "text"
	DefaultLogLevel                   = "info"
)

// Duration is a time.Duration that reads "5s" style strings from JSON.
type Duration time.Duration

// UnmarshalJSON accepts a Go duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("duration must be a string or number of seconds")
	}
	*d = Duration(time.Duration(seconds * float64(time.Second)))
	return nil
}

// MarshalJSON writes the duration as a Go duration string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config is the service configuration. It is read from the environment and
// may be overlaid with a JSON file.
type Config struct {
	// Server
	Port           string `json:"port,omitempty"`
	UploadDir      string `json:"upload_dir,omitempty"`       // Temp directory for uploads; OS default when empty
	MaxUploadBytes int64  `json:"max_upload_bytes,omitempty"` // Largest accepted resume upload

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL; job routes are disabled when empty
	RedisURL    string `json:"redis_url,omitempty"`    // Course cache; disabled when empty

	// Auth
	JWTSecret          string `json:"jwt_secret,omitempty"`
	JWTExpirationHours int    `json:"jwt_expiration_hours,omitempty"`

	// Recommendation sources
	YouTubeAPIKey      string  `json:"youtube_api_key,omitempty"`
	GoogleSearchAPIKey string  `json:"google_search_api_key,omitempty"`
	GoogleSearchCX     string  `json:"google_search_cx,omitempty"`
	CourseCatalogURL   string  `json:"course_catalog_url,omitempty"` // Search page URL containing {query}
	CoursePlatform     string  `json:"course_platform,omitempty"`
	CatalogRPS         float64 `json:"catalog_rps,omitempty"`
	UseBrowser         bool    `json:"use_browser,omitempty"` // Render catalog pages in headless Chrome when static HTML has no results

	// Recommendation limits
	RecommendTimeout     Duration `json:"recommendation_timeout,omitempty"`
	RecommendMaxSkills   int      `json:"recommendation_max_skills,omitempty"`
	RecommendPerSkill    int      `json:"recommendation_per_skill,omitempty"`
	RecommendMaxTotal    int      `json:"recommendation_max_total,omitempty"`
	RecommendConcurrency int      `json:"recommendation_concurrency,omitempty"`
	CacheTTL             Duration `json:"recommendation_cache_ttl,omitempty"`

	// Extraction
	VocabularyPath string `json:"skills_vocabulary_path,omitempty"` // Overrides the embedded vocabulary

	// Diagnostics
	Debug     bool   `json:"debug,omitempty"` // Include error details in 500 responses
	LogFormat string `json:"log_format,omitempty"`
	LogLevel  string `json:"log_level,omitempty"`
}

// Defaults returns a Config with every optional value set to its default.
func Defaults() Config {
	return Config{
		Port:                 DefaultPort,
		MaxUploadBytes:       DefaultMaxUploadBytes,
		JWTExpirationHours:   24,
		CoursePlatform:       DefaultCoursePlatform,
		CatalogRPS:           DefaultCatalogRPS,
		RecommendTimeout:     Duration(DefaultRecommendTimeout),
		RecommendMaxSkills:   DefaultRecommendMaxSkills,
		RecommendPerSkill:    DefaultRecommendPerSkill,
		RecommendMaxTotal:    DefaultRecommendMaxTotal,
		RecommendConcurrency: DefaultRecommendConcurrency,
		CacheTTL:             Duration(DefaultCacheTTL),
		LogFormat:            DefaultLogFormat,
		LogLevel:             DefaultLogLevel,
	}
}

// FromEnv builds a Config from environment variables on top of Defaults.
// Malformed numeric, boolean or duration values are reported as errors.
func FromEnv() (*Config, error) {
	cfg := Defaults()
	env := envReader{}

	env.str("PORT", &cfg.Port)
	env.str("UPLOAD_DIR", &cfg.UploadDir)
	env.int64("MAX_UPLOAD_BYTES", &cfg.MaxUploadBytes)
	env.str("DATABASE_URL", &cfg.DatabaseURL)
	env.str("REDIS_URL", &cfg.RedisURL)
	env.str("JWT_SECRET", &cfg.JWTSecret)
	env.int("JWT_EXPIRATION_HOURS", &cfg.JWTExpirationHours)
	env.str("YOUTUBE_API_KEY", &cfg.YouTubeAPIKey)
	env.str("GOOGLE_SEARCH_API_KEY", &cfg.GoogleSearchAPIKey)
	env.str("GOOGLE_SEARCH_CX", &cfg.GoogleSearchCX)
	env.str("COURSE_CATALOG_URL", &cfg.CourseCatalogURL)
	env.str("COURSE_PLATFORM", &cfg.CoursePlatform)
	env.float("COURSE_CATALOG_RPS", &cfg.CatalogRPS)
	env.bool("USE_BROWSER", &cfg.UseBrowser)
	env.duration("RECOMMENDATION_TIMEOUT", &cfg.RecommendTimeout)
	env.int("RECOMMENDATION_MAX_SKILLS", &cfg.RecommendMaxSkills)
	env.int("RECOMMENDATION_PER_SKILL", &cfg.RecommendPerSkill)
	env.int("RECOMMENDATION_MAX_TOTAL", &cfg.RecommendMaxTotal)
	env.int("RECOMMENDATION_CONCURRENCY", &cfg.RecommendConcurrency)
	env.duration("RECOMMENDATION_CACHE_TTL", &cfg.CacheTTL)
	env.str("SKILLS_VOCABULARY_PATH", &cfg.VocabularyPath)
	env.bool("DEBUG", &cfg.Debug)
	env.str("LOG_FORMAT", &cfg.LogFormat)
	env.str("LOG_LEVEL", &cfg.LogLevel)

	if len(env.errs) > 0 {
		return nil, fmt.Errorf("config error: %s", strings.Join(env.errs, "; "))
	}
	return &cfg, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("config error: 'port' must be numeric, got %q", c.Port)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config error: 'max_upload_bytes' must be positive")
	}

	if c.DatabaseURL != "" && c.JWTSecret == "" {
		return fmt.Errorf("config error: 'jwt_secret' is required when 'database_url' is set")
	}
	if c.JWTExpirationHours < 1 {
		return fmt.Errorf("config error: 'jwt_expiration_hours' must be at least 1")
	}

	if c.GoogleSearchAPIKey != "" && c.GoogleSearchCX == "" {
		return fmt.Errorf("config error: 'google_search_cx' is required with 'google_search_api_key'")
	}
	if c.CourseCatalogURL != "" {
		u, err := url.Parse(strings.ReplaceAll(c.CourseCatalogURL, "{query}", "q"))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config error: 'course_catalog_url' must be an absolute http(s) URL")
		}
		if !strings.Contains(c.CourseCatalogURL, "{query}") {
			return fmt.Errorf("config error: 'course_catalog_url' must contain {query}")
		}
	}
	if c.CatalogRPS < 0 {
		return fmt.Errorf("config error: 'catalog_rps' must be non-negative")
	}

	if c.RecommendTimeout <= 0 {
		return fmt.Errorf("config error: 'recommendation_timeout' must be positive")
	}
	for _, f := range []struct {
		name  string
		value int
	}{
		{"recommendation_max_skills", c.RecommendMaxSkills},
		{"recommendation_per_skill", c.RecommendPerSkill},
		{"recommendation_max_total", c.RecommendMaxTotal},
		{"recommendation_concurrency", c.RecommendConcurrency},
	} {
		if f.value < 1 {
			return fmt.Errorf("config error: '%s' must be at least 1", f.name)
		}
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("config error: 'recommendation_cache_ttl' must be non-negative")
	}

	if c.VocabularyPath != "" {
		if _, err := os.Stat(c.VocabularyPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: vocabulary file not found: %s", c.VocabularyPath)
		}
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config error: 'log_format' must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
// A config file loaded with LoadConfig is merged over the environment this way.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	for _, f := range []struct{ dst, src *string }{
		{&result.Port, &defaults.Port},
		{&result.UploadDir, &defaults.UploadDir},
		{&result.DatabaseURL, &defaults.DatabaseURL},
		{&result.RedisURL, &defaults.RedisURL},
		{&result.JWTSecret, &defaults.JWTSecret},
		{&result.YouTubeAPIKey, &defaults.YouTubeAPIKey},
		{&result.GoogleSearchAPIKey, &defaults.GoogleSearchAPIKey},
		{&result.GoogleSearchCX, &defaults.GoogleSearchCX},
		{&result.CourseCatalogURL, &defaults.CourseCatalogURL},
		{&result.CoursePlatform, &defaults.CoursePlatform},
		{&result.VocabularyPath, &defaults.VocabularyPath},
		{&result.LogFormat, &defaults.LogFormat},
		{&result.LogLevel, &defaults.LogLevel},
	} {
		if *f.dst == "" {
			*f.dst = *f.src
		}
	}

	// Int fields: use default if zero
	for _, f := range []struct{ dst, src *int }{
		{&result.JWTExpirationHours, &defaults.JWTExpirationHours},
		{&result.RecommendMaxSkills, &defaults.RecommendMaxSkills},
		{&result.RecommendPerSkill, &defaults.RecommendPerSkill},
		{&result.RecommendMaxTotal, &defaults.RecommendMaxTotal},
		{&result.RecommendConcurrency, &defaults.RecommendConcurrency},
	} {
		if *f.dst == 0 {
			*f.dst = *f.src
		}
	}

	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if result.CatalogRPS == 0 {
		result.CatalogRPS = defaults.CatalogRPS
	}
	if result.RecommendTimeout == 0 {
		result.RecommendTimeout = defaults.RecommendTimeout
	}
	if result.CacheTTL == 0 {
		result.CacheTTL = defaults.CacheTTL
	}

	// Bool fields: true in either source wins
	result.UseBrowser = result.UseBrowser || defaults.UseBrowser
	result.Debug = result.Debug || defaults.Debug

	return result
}

// JWT returns the token configuration.
func (c *Config) JWT() (*JWTConfig, error) {
	jwt := &JWTConfig{Secret: c.JWTSecret, ExpirationHours: c.JWTExpirationHours}
	if err := jwt.normalize(); err != nil {
		return nil, err
	}
	return jwt, nil
}

type envReader struct {
	errs []string
}

func (r *envReader) str(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func (r *envReader) int(key string, dst *int) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("invalid %s: %q", key, v))
		return
	}
	*dst = n
}

func (r *envReader) int64(key string, dst *int64) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("invalid %s: %q", key, v))
		return
	}
	*dst = n
}

func (r *envReader) float(key string, dst *float64) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("invalid %s: %q", key, v))
		return
	}
	*dst = f
}

func (r *envReader) bool(key string, dst *bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("invalid %s: %q", key, v))
		return
	}
	*dst = b
}

// duration accepts "5s" style values or a bare number of seconds.
func (r *envReader) duration(key string, dst *Duration) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = Duration(time.Duration(secs * float64(time.Second)))
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("invalid %s: %q", key, v))
		return
	}
	*dst = Duration(d)
}
