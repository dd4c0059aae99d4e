// Package config loads MoodWeather settings with koanf. Sources are layered
// from lowest to highest precedence: defaults, an optional config file, the
// .env file, legacy unprefixed environment variables, MOODWEATHER_*
// variables and finally command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix marks variables that map onto config keys: MOODWEATHER_SERVER_PORT
// sets server.port.
const EnvPrefix = "MOODWEATHER_"

const (
	MusicAuto       = "auto"
	MusicSpotify    = "spotify"
	MusicSoundCloud = "soundcloud"
	MusicNone       = "none"

	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageNone     = "none"
)

type Config struct {
	Server      ServerConfig      `koanf:"server"`
	CORS        CORSConfig        `koanf:"cors"`
	Log         LogConfig         `koanf:"log"`
	HTTP        HTTPConfig        `koanf:"http"`
	OpenWeather OpenWeatherConfig `koanf:"openweather"`
	HuggingFace HuggingFaceConfig `koanf:"huggingface"`
	Ollama      OllamaConfig      `koanf:"ollama"`
	Spotify     SpotifyConfig     `koanf:"spotify"`
	SoundCloud  SoundCloudConfig  `koanf:"soundcloud"`
	Music       MusicConfig       `koanf:"music"`
	Storage     StorageConfig     `koanf:"storage"`
	Worker      WorkerConfig      `koanf:"worker"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type CORSConfig struct {
	AllowedOrigin string `koanf:"allowed_origin"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type HTTPConfig struct {
	Timeout   time.Duration `koanf:"timeout"`
	UserAgent string        `koanf:"user_agent"`
}

type OpenWeatherConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	GeoURL  string `koanf:"geo_url"`
	Units   string `koanf:"units"`
	Lang    string `koanf:"lang"`
}

type HuggingFaceConfig struct {
	Token      string        `koanf:"token"`
	Model      string        `koanf:"model"`
	BaseURL    string        `koanf:"base_url"`
	MaxRetries int           `koanf:"max_retries"`
	RetryDelay time.Duration `koanf:"retry_delay"`
	Timeout    time.Duration `koanf:"timeout"`
}

// OllamaConfig enables the local fallback generator when Host is set.
type OllamaConfig struct {
	Host  string `koanf:"host"`
	Model string `koanf:"model"`
}

type SpotifyConfig struct {
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	BaseURL      string        `koanf:"base_url"`
	TokenURL     string        `koanf:"token_url"`
	Market       string        `koanf:"market"`
	MaxRetries   int           `koanf:"max_retries"`
	RetryBackoff time.Duration `koanf:"retry_backoff"`
}

type SoundCloudConfig struct {
	ClientID string `koanf:"client_id"`
	BaseURL  string `koanf:"base_url"`
}

type MusicConfig struct {
	Provider string `koanf:"provider"`
}

type StorageConfig struct {
	Driver      string `koanf:"driver"`
	SQLitePath  string `koanf:"sqlite_path"`
	PostgresURL string `koanf:"postgres_url"`
}

type WorkerConfig struct {
	Count     int `koanf:"count"`
	QueueSize int `koanf:"queue_size"`
}

// Options selects the sources Load reads besides defaults and environment.
type Options struct {
	// Flags are applied last. Only flags the user changed override.
	Flags *pflag.FlagSet
	// ConfigFile is parsed by extension: yaml, yml, json, toml or env.
	ConfigFile string
	// EnvFile is loaded into the process environment when it exists.
	EnvFile string
}

var defaults = map[string]any{
	"server.host":             "0.0.0.0",
	"server.port":             5000,
	"server.shutdown_timeout": "10s",
	"cors.allowed_origin":     "*",
	"log.level":               "info",
	"log.format":              "json",
	"http.timeout":            "15s",
	"http.user_agent":         "MoodWeather/1.0",
	"openweather.base_url":    "https://api.openweathermap.org/data/2.5",
	"openweather.geo_url":     "https://api.openweathermap.org/geo/1.0",
	"openweather.units":       "metric",
	"openweather.lang":        "es",
	"huggingface.model":       "gpt2",
	"huggingface.base_url":    "https://api-inference.huggingface.co/models",
	"huggingface.max_retries": 2,
	"huggingface.retry_delay": "1200ms",
	"huggingface.timeout":     "20s",
	"ollama.model":            "llama3.2",
	"spotify.base_url":        "https://api.spotify.com/v1",
	"spotify.token_url":       "https://accounts.spotify.com/api/token",
	"spotify.market":          "US",
	"spotify.max_retries":     3,
	"spotify.retry_backoff":   "500ms",
	"soundcloud.base_url":     "https://api-v2.soundcloud.com",
	"music.provider":          MusicAuto,
	"storage.driver":          StorageSQLite,
	"storage.sqlite_path":     "moodweather.db",
	"worker.count":            2,
	"worker.queue_size":       64,
}

type alias struct {
	env  string
	key  string
	unit string
}

// legacyEnv maps the unprefixed variables older deployments export. Earlier
// entries win when two variables target the same key.
var legacyEnv = []alias{
	{env: "PORT", key: "server.port"},
	{env: "HOST", key: "server.host"},
	{env: "CORS_ALLOWED_ORIGIN", key: "cors.allowed_origin"},
	{env: "LOG_LEVEL", key: "log.level"},
	{env: "LOG_FORMAT", key: "log.format"},
	{env: "OPENWEATHER_API_KEY", key: "openweather.api_key"},
	{env: "OPENWEATHER_KEY", key: "openweather.api_key"},
	{env: "HF_TOKEN", key: "huggingface.token"},
	{env: "HUGGINGFACE_API_TOKEN", key: "huggingface.token"},
	{env: "HF_MODEL", key: "huggingface.model"},
	{env: "OLLAMA_HOST", key: "ollama.host"},
	{env: "OLLAMA_MODEL", key: "ollama.model"},
	{env: "SPOTIFY_CLIENT_ID", key: "spotify.client_id"},
	{env: "SPOTIFY_CLIENT_SECRET", key: "spotify.client_secret"},
	{env: "SPOTIFY_MAX_RETRIES", key: "spotify.max_retries"},
	{env: "SPOTIFY_RETRY_BACKOFF_MS", key: "spotify.retry_backoff", unit: "ms"},
	{env: "SOUNDCLOUD_CLIENT_ID", key: "soundcloud.client_id"},
	{env: "DATABASE_URL", key: "storage.postgres_url"},
}

// flagKeys maps CLI flag names onto config keys.
var flagKeys = map[string]string{
	"host":           "server.host",
	"port":           "server.port",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"music-provider": "music.provider",
	"storage":        "storage.driver",
	"sqlite-path":    "storage.sqlite_path",
	"postgres-url":   "storage.postgres_url",
	"cors-origin":    "cors.allowed_origin",
}

// RegisterFlags adds the overridable settings to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("host", "0.0.0.0", "address to listen on")
	flags.Int("port", 5000, "port to listen on")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "json", "log format (json, text)")
	flags.String("music-provider", MusicAuto, "music catalog (auto, spotify, soundcloud, none)")
	flags.String("storage", StorageSQLite, "mood history storage (sqlite, postgres, none)")
	flags.String("sqlite-path", "moodweather.db", "SQLite database file")
	flags.String("postgres-url", "", "PostgreSQL connection URL")
	flags.String("cors-origin", "*", "allowed CORS origin")
}

// Load layers every source and validates the result.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("config: set default %s: %w", key, err)
		}
	}

	if opts.ConfigFile != "" {
		parser, err := parserForFile(opts.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := k.Load(file.Provider(opts.ConfigFile), parser); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", opts.ConfigFile, err)
		}
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", opts.EnvFile, err)
		}
	}

	if err := loadLegacyEnv(k); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	if opts.Flags != nil {
		provider := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("config: load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns MOODWEATHER_OPENWEATHER_API_KEY into openweather.api_key.
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}

func loadLegacyEnv(k *koanf.Koanf) error {
	seen := map[string]bool{}
	for _, a := range legacyEnv {
		if seen[a.key] {
			continue
		}
		val := strings.TrimSpace(os.Getenv(a.env))
		if val == "" {
			continue
		}
		if a.unit != "" {
			if _, err := strconv.Atoi(val); err != nil {
				return fmt.Errorf("config: %s must be an integer: %w", a.env, err)
			}
			val += a.unit
		}
		if err := k.Set(a.key, val); err != nil {
			return fmt.Errorf("config: set %s: %w", a.key, err)
		}
		seen[a.key] = true
	}
	return nil
}

func parserForFile(path string) (koanf.Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	case ".env":
		return dotenv.Parser(), nil
	default:
		return nil, fmt.Errorf("unknown file extension: %q", ext)
	}
}

func (c *Config) normalize() {
	c.Music.Provider = strings.ToLower(strings.TrimSpace(c.Music.Provider))
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be between 1 and 65535")
	}
	if c.Server.ShutdownTimeout <= 0 {
		problems = append(problems, "server.shutdown_timeout must be positive")
	}
	if c.HTTP.Timeout <= 0 {
		problems = append(problems, "http.timeout must be positive")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, "log.level must be one of: debug, info, warn, error")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		problems = append(problems, "log.format must be one of: json, text")
	}

	switch c.Music.Provider {
	case MusicAuto, MusicNone:
	case MusicSpotify:
		if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
			problems = append(problems, "music.provider spotify requires SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET")
		}
	case MusicSoundCloud:
		if c.SoundCloud.ClientID == "" {
			problems = append(problems, "music.provider soundcloud requires SOUNDCLOUD_CLIENT_ID")
		}
	default:
		problems = append(problems, "music.provider must be one of: auto, spotify, soundcloud, none")
	}
	if c.Spotify.MaxRetries < 0 {
		problems = append(problems, "spotify.max_retries must not be negative")
	}
	if c.HuggingFace.MaxRetries < 0 {
		problems = append(problems, "huggingface.max_retries must not be negative")
	}

	switch c.Storage.Driver {
	case StorageNone:
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			problems = append(problems, "storage.sqlite_path is required for sqlite storage")
		}
	case StoragePostgres:
		if c.Storage.PostgresURL == "" {
			problems = append(problems, "storage.postgres_url (or DATABASE_URL) is required for postgres storage")
		}
	default:
		problems = append(problems, "storage.driver must be one of: sqlite, postgres, none")
	}

	if c.Worker.Count < 1 {
		problems = append(problems, "worker.count must be at least 1")
	}
	if c.Worker.QueueSize < 1 {
		problems = append(problems, "worker.queue_size must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// MusicProvider resolves "auto" to the first catalog with credentials.
func (c *Config) MusicProvider() string {
	if c.Music.Provider != MusicAuto {
		return c.Music.Provider
	}
	switch {
	case c.Spotify.ClientID != "" && c.Spotify.ClientSecret != "":
		return MusicSpotify
	case c.SoundCloud.ClientID != "":
		return MusicSoundCloud
	default:
		return MusicNone
	}
}
