package core

import (
	"time"
)

const (
	// DefaultServerPort is the default HTTP port for the web surface
	DefaultServerPort = 8080
	// DefaultMaxOutputTokens caps the text generation response length
	DefaultMaxOutputTokens = 300
	// DefaultSessionTTL is how long an idle browser session stays valid
	DefaultSessionTTL = 24 * time.Hour
	// DefaultSessionPurgeInterval is how often expired sessions are purged
	DefaultSessionPurgeInterval = 10 * time.Minute
	// DefaultSessionCacheSize bounds the in-memory session read cache
	DefaultSessionCacheSize = 1024
	// DefaultLedgerCapacity bounds the number of remembered playlist submissions
	DefaultLedgerCapacity = 10000
	// DefaultLedgerFalsePositiveRate is the Bloom filter false positive rate of the ledger
	DefaultLedgerFalsePositiveRate = 0.001
	// DefaultRequestsPerMinute caps recommendation and playlist requests per user; 0 is unlimited
	DefaultRequestsPerMinute = 0
	// DefaultLanguage is the UI language
	DefaultLanguage = "en"
)

type Config struct {
	Spotify SpotifyConfig
	LLM     LLMConfig
	Server  ServerConfig
	Session SessionConfig
	Log     LogConfig
	App     AppConfig
}

type SpotifyConfig struct {
	ClientID        string
	ClientSecret    string
	RedirectURL     string
	PublicPlaylists bool
}

type LLMConfig struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SessionConfig selects and tunes the browser session backend.
type SessionConfig struct {
	Backend       string // sqlite or redis
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Secret        string
	CookieName    string
	SecureCookie  bool
	TTL           time.Duration
	PurgeInterval time.Duration
	CacheSize     int
}

type LogConfig struct {
	Level  string
	Format string
}

type AppConfig struct {
	Language                   string
	CompensateFailedWrites     bool
	RejectDuplicateSubmissions bool
	LedgerCapacity             int
	LedgerFalsePositiveRate    float64
	RequestsPerMinute          int // 0 disables throttling
}

func DefaultConfig() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			RedirectURL:     "http://127.0.0.1:8080/callback",
			PublicPlaylists: true,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "",
			MaxTokens: DefaultMaxOutputTokens,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         DefaultServerPort,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
		Session: SessionConfig{
			Backend:       "sqlite",
			SQLitePath:    "./musicmem_sessions.db",
			RedisAddr:     "localhost:6379",
			CookieName:    "musicmem_session",
			TTL:           DefaultSessionTTL,
			PurgeInterval: DefaultSessionPurgeInterval,
			CacheSize:     DefaultSessionCacheSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		App: AppConfig{
			Language:                DefaultLanguage,
			CompensateFailedWrites:  true,
			LedgerCapacity:          DefaultLedgerCapacity,
			LedgerFalsePositiveRate: DefaultLedgerFalsePositiveRate,
			RequestsPerMinute:       DefaultRequestsPerMinute,
		},
	}
}
