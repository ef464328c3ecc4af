package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	CORS      CORSConfig
	Providers ProvidersConfig
	OpenAI    OpenAIConfig
	Ollama    OllamaConfig
	VLLM      VLLMConfig
	Whisper   WhisperConfig
	Cache     CacheConfig
	Session   SessionConfig
	DB        DBConfig
	Limits    LimitsConfig
	Archive   ArchiveConfig
	Email     EmailConfig
	Admin     AdminConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProvidersConfig holds the ordered extraction chains.
type ProvidersConfig struct {
	Priority       []string      `mapstructure:"priority"`
	AudioPriority  []string      `mapstructure:"audio_priority"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
}

// OpenAIConfig configures the cloud text and audio extractors.
type OpenAIConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	Model         string        `mapstructure:"model"`
	FallbackModel string        `mapstructure:"fallback_model"`
	AudioModel    string        `mapstructure:"audio_model"`
	Temperature   float64       `mapstructure:"temperature"`
	MaxTokens     int           `mapstructure:"max_tokens"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// OllamaConfig configures the local LLM extractor.
type OllamaConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Model         string        `mapstructure:"model"`
	FallbackModel string        `mapstructure:"fallback_model"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ProbeTTL      time.Duration `mapstructure:"probe_ttl"`
}

// VLLMConfig configures the local OpenAI-compatible multimodal server.
type VLLMConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// WhisperConfig configures the whisper.cpp transcription server.
type WhisperConfig struct {
	URL      string        `mapstructure:"url"`
	Language string        `mapstructure:"language"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// CacheConfig configures the learned pattern cache.
type CacheConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	File        string  `mapstructure:"file"`
	MaxPatterns int     `mapstructure:"max_patterns"`
	Similarity  float64 `mapstructure:"similarity"`
}

// SessionConfig configures session identity and the form state store.
type SessionConfig struct {
	Store      string        `mapstructure:"store"`
	TTL        time.Duration `mapstructure:"ttl"`
	Secret     string        `mapstructure:"secret"`
	Issuer     string        `mapstructure:"issuer"`
	CookieName string        `mapstructure:"cookie_name"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// DBConfig holds PostgreSQL and SQLite connection settings.
type DBConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	Name       string `mapstructure:"name"`
	SSLMode    string `mapstructure:"sslmode"`
	MaxOpen    int    `mapstructure:"max_open"`
	MaxIdle    int    `mapstructure:"max_idle"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LimitsConfig bounds request sizes and rates.
type LimitsConfig struct {
	MaxInputLength int     `mapstructure:"max_input_length"`
	MaxAudioBytes  int64   `mapstructure:"max_audio_bytes"`
	RatePerSecond  float64 `mapstructure:"rate_per_second"`
	Burst          int     `mapstructure:"burst"`
}

// ArchiveConfig holds S3 settings for archiving uploaded audio.
type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// EmailConfig holds confirmation email settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// AdminConfig protects the submissions endpoints.
type AdminConfig struct {
	TokenHash string `mapstructure:"token_hash"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads configuration from environment variables with the VOXFORM_ prefix
// and an optional YAML file named by VOXFORM_CONFIG_FILE.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VOXFORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if file := os.Getenv("VOXFORM_CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	for key, env := range envBindings() {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set PORT. Use it unless VOXFORM_SERVER_PORT is explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("VOXFORM_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{AllowedOrigins: splitList(v.GetString("cors.allowed_origins"))}

	cfg.Providers = ProvidersConfig{
		Priority:       splitList(strings.ToLower(v.GetString("providers.priority"))),
		AudioPriority:  splitList(strings.ToLower(v.GetString("providers.audio_priority"))),
		AttemptTimeout: v.GetDuration("providers.attempt_timeout"),
	}

	// The conventional OPENAI_API_KEY is honoured when no prefixed key is set.
	apiKey := v.GetString("openai.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.OpenAI = OpenAIConfig{
		APIKey:        apiKey,
		BaseURL:       v.GetString("openai.base_url"),
		Model:         v.GetString("openai.model"),
		FallbackModel: v.GetString("openai.fallback_model"),
		AudioModel:    v.GetString("openai.audio_model"),
		Temperature:   v.GetFloat64("openai.temperature"),
		MaxTokens:     v.GetInt("openai.max_tokens"),
		Timeout:       v.GetDuration("openai.timeout"),
	}
	cfg.Ollama = OllamaConfig{
		BaseURL:       strings.TrimRight(v.GetString("ollama.base_url"), "/"),
		Model:         v.GetString("ollama.model"),
		FallbackModel: v.GetString("ollama.fallback_model"),
		Timeout:       v.GetDuration("ollama.timeout"),
		ProbeTTL:      v.GetDuration("ollama.probe_ttl"),
	}
	cfg.VLLM = VLLMConfig{
		BaseURL: strings.TrimRight(v.GetString("vllm.base_url"), "/"),
		Model:   v.GetString("vllm.model"),
		Timeout: v.GetDuration("vllm.timeout"),
	}
	cfg.Whisper = WhisperConfig{
		URL:      strings.TrimRight(v.GetString("whisper.url"), "/"),
		Language: v.GetString("whisper.language"),
		Timeout:  v.GetDuration("whisper.timeout"),
	}
	cfg.Cache = CacheConfig{
		Enabled:     v.GetBool("cache.enabled"),
		File:        v.GetString("cache.file"),
		MaxPatterns: v.GetInt("cache.max_patterns"),
		Similarity:  v.GetFloat64("cache.similarity"),
	}
	cfg.Session = SessionConfig{
		Store:      strings.ToLower(v.GetString("session.store")),
		TTL:        v.GetDuration("session.ttl"),
		Secret:     v.GetString("session.secret"),
		Issuer:     v.GetString("session.issuer"),
		CookieName: v.GetString("session.cookie_name"),
		TokenTTL:   v.GetDuration("session.token_ttl"),
	}
	cfg.DB = DBConfig{
		Host:       v.GetString("db.host"),
		Port:       v.GetInt("db.port"),
		User:       v.GetString("db.user"),
		Password:   v.GetString("db.password"),
		Name:       v.GetString("db.name"),
		SSLMode:    v.GetString("db.sslmode"),
		MaxOpen:    v.GetInt("db.max_open"),
		MaxIdle:    v.GetInt("db.max_idle"),
		SQLitePath: v.GetString("db.sqlite_path"),
	}
	cfg.Limits = LimitsConfig{
		MaxInputLength: v.GetInt("limits.max_input_length"),
		MaxAudioBytes:  v.GetInt64("limits.max_audio_bytes"),
		RatePerSecond:  v.GetFloat64("limits.rate_per_second"),
		Burst:          v.GetInt("limits.burst"),
	}
	cfg.Archive = ArchiveConfig{
		Enabled:   v.GetBool("archive.enabled"),
		Region:    v.GetString("archive.region"),
		Bucket:    v.GetString("archive.bucket"),
		Endpoint:  v.GetString("archive.endpoint"),
		AccessKey: v.GetString("archive.access_key"),
		SecretKey: v.GetString("archive.secret_key"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}
	cfg.Admin = AdminConfig{TokenHash: v.GetString("admin.token_hash")}
	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("metrics.enabled")}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5000,http://127.0.0.1:5000")

	// Extraction chains
	v.SetDefault("providers.priority", "demo,ollama,openai")
	v.SetDefault("providers.audio_priority", "openai_audio,whisper,vllm")
	v.SetDefault("providers.attempt_timeout", "35s")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.fallback_model", "gpt-3.5-turbo")
	v.SetDefault("openai.audio_model", "gpt-4o-audio-preview")
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.max_tokens", 150)
	v.SetDefault("openai.timeout", "15s")

	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.model", "gpt-oss:20b")
	v.SetDefault("ollama.fallback_model", "")
	v.SetDefault("ollama.timeout", "15s")
	v.SetDefault("ollama.probe_ttl", "30s")

	v.SetDefault("vllm.base_url", "http://localhost:8000")
	v.SetDefault("vllm.model", "Qwen/Qwen2-Audio-7B-Instruct")
	v.SetDefault("vllm.timeout", "60s")

	v.SetDefault("whisper.url", "http://localhost:8081")
	v.SetDefault("whisper.language", "en")
	v.SetDefault("whisper.timeout", "30s")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.file", "")
	v.SetDefault("cache.max_patterns", 1000)
	v.SetDefault("cache.similarity", 0.6)

	// Session defaults
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.secret", "change-me-in-production")
	v.SetDefault("session.issuer", "voxform")
	v.SetDefault("session.cookie_name", "voxform_session")
	v.SetDefault("session.token_ttl", "24h")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "voxform")
	v.SetDefault("db.password", "voxform_secret")
	v.SetDefault("db.name", "voxform_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.sqlite_path", "voxform.db")

	v.SetDefault("limits.max_input_length", 2000)
	v.SetDefault("limits.max_audio_bytes", 10<<20)
	v.SetDefault("limits.rate_per_second", 5)
	v.SetDefault("limits.burst", 10)

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.bucket", "voxform-audio")
	v.SetDefault("archive.endpoint", "")

	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@voxform.local")
	v.SetDefault("email.from_name", "Voxform")

	v.SetDefault("admin.token_hash", "")
	v.SetDefault("metrics.enabled", true)
}

// envBindings binds nested keys explicitly so values from the environment win over the file.
func envBindings() map[string]string {
	keys := []string{
		"server.port", "server.read_timeout", "server.write_timeout", "server.environment",
		"log.level", "log.format",
		"cors.allowed_origins",
		"providers.priority", "providers.audio_priority", "providers.attempt_timeout",
		"openai.api_key", "openai.base_url", "openai.model", "openai.fallback_model",
		"openai.audio_model", "openai.temperature", "openai.max_tokens", "openai.timeout",
		"ollama.base_url", "ollama.model", "ollama.fallback_model", "ollama.timeout", "ollama.probe_ttl",
		"vllm.base_url", "vllm.model", "vllm.timeout",
		"whisper.url", "whisper.language", "whisper.timeout",
		"cache.enabled", "cache.file", "cache.max_patterns", "cache.similarity",
		"session.store", "session.ttl", "session.secret", "session.issuer",
		"session.cookie_name", "session.token_ttl",
		"db.host", "db.port", "db.user", "db.password", "db.name", "db.sslmode",
		"db.max_open", "db.max_idle", "db.sqlite_path",
		"limits.max_input_length", "limits.max_audio_bytes", "limits.rate_per_second", "limits.burst",
		"archive.enabled", "archive.region", "archive.bucket", "archive.endpoint",
		"archive.access_key", "archive.secret_key",
		"email.provider", "email.region", "email.from_address", "email.from_name",
		"admin.token_hash",
		"metrics.enabled",
	}
	bindings := make(map[string]string, len(keys))
	for _, k := range keys {
		bindings[k] = "VOXFORM_" + strings.ToUpper(strings.ReplaceAll(k, ".", "_"))
	}
	return bindings
}

func (c *Config) validate() error {
	if len(c.Providers.Priority) == 0 {
		return fmt.Errorf("providers.priority must name at least one provider")
	}
	switch c.Session.Store {
	case "memory", "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown session store: %s", c.Session.Store)
	}
	if c.Limits.MaxInputLength <= 0 {
		return fmt.Errorf("limits.max_input_length must be positive")
	}
	return nil
}

// splitList parses a comma-separated value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
