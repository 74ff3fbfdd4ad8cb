// Package main provides the MusicMem web application entry point.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"musicmem/internal/core"
	"musicmem/internal/flood"
	httpserver "musicmem/internal/http"
	"musicmem/internal/i18n"
	"musicmem/internal/llm"
	"musicmem/internal/session"
	"musicmem/internal/spotify"
	"musicmem/internal/store"
)

const (
	defaultServerHost = "0.0.0.0"
	envPrefix         = "MUSICMEM"
	sessionSecretLen  = 32

	// startupPurgeTimeout bounds the purge of sessions left over from the last run
	startupPurgeTimeout = 5 * time.Second
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "musicmem",
	Short: "MusicMem - personal Spotify playlists for memory care",
	Long: `MusicMem is a web service that builds Spotify playlists for seniors from the music of their
youth. A caregiver logs in with Spotify, describes the listener's taste, picks from songs
suggested by a language model and saves them as a playlist.`,
	RunE: runMusicMem,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := core.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "config file (default is .env)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "json", "log format (json, console)")
	flags.String("spotify-client-id", "", "Spotify client ID")
	flags.String("spotify-client-secret", "", "Spotify client secret")
	flags.String("spotify-redirect-url", "", "Spotify OAuth redirect URL (default derived from server host and port)")
	flags.Bool("spotify-public-playlists", defaults.Spotify.PublicPlaylists, "Create playlists as public")
	flags.String("llm-provider", defaults.LLM.Provider, "LLM provider (openai, anthropic, ollama, none)")
	flags.String("llm-model", "", "LLM model name")
	flags.String("llm-api-key", "", "LLM API key")
	flags.String("llm-base-url", "", "LLM API base URL")
	flags.Int("llm-max-tokens", core.DefaultMaxOutputTokens, "Maximum output tokens per song list")
	flags.String("server-host", defaultServerHost, "HTTP server host")
	flags.Int("server-port", core.DefaultServerPort, "HTTP server port")
	flags.Duration("server-read-timeout", defaults.Server.ReadTimeout, "HTTP read timeout")
	flags.Duration("server-write-timeout", defaults.Server.WriteTimeout, "HTTP write timeout")
	flags.String("session-backend", defaults.Session.Backend, "Session store (sqlite, redis)")
	flags.String("session-sqlite-path", defaults.Session.SQLitePath, "SQLite session database path")
	flags.String("session-redis-addr", defaults.Session.RedisAddr, "Redis address for sessions")
	flags.String("session-redis-password", "", "Redis password")
	flags.Int("session-redis-db", 0, "Redis database number")
	flags.String("session-secret", "", "Secret used to sign session cookies (random per start if empty)")
	flags.String("session-cookie-name", defaults.Session.CookieName, "Session cookie name")
	flags.Bool("session-secure-cookie", false, "Mark session cookies Secure (enable behind HTTPS)")
	flags.Duration("session-ttl", core.DefaultSessionTTL, "Session lifetime")
	flags.Duration("session-purge-interval", core.DefaultSessionPurgeInterval, "Interval between expired session purges")
	flags.Int("session-cache-size", core.DefaultSessionCacheSize, "Number of sessions kept in the read cache")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	flags.String("language", i18n.DefaultLanguage, fmt.Sprintf("UI language (%s)", supportedLangs))
	flags.Bool("app-compensate-failed-writes", defaults.App.CompensateFailedWrites,
		"Remove a new playlist again when its tracks could not be added")
	flags.Bool("app-reject-duplicate-submissions", defaults.App.RejectDuplicateSubmissions,
		"Reject a playlist submission identical to an earlier one")
	flags.Int("app-ledger-capacity", core.DefaultLedgerCapacity, "Number of submissions remembered for duplicate detection")
	flags.Float64("app-ledger-false-positive-rate", core.DefaultLedgerFalsePositiveRate,
		"Bloom filter false positive rate of the submission ledger")
	flags.Int("app-requests-per-minute", core.DefaultRequestsPerMinute,
		"Recommendation and playlist requests allowed per user and minute (0 disables)")
	flags.Bool("generate-env-example", false, "Generate .env.example file from current configuration and exit")

	if err := viper.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level, config.Log.Format)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureServer(cfg)
	configureSpotify(cfg)
	configureLLM(cfg)
	configureSession(cfg)
	configureApp(cfg)

	return cfg
}

func configureServer(cfg *core.Config) {
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
	cfg.Server.ReadTimeout = viper.GetDuration("server-read-timeout")
	cfg.Server.WriteTimeout = viper.GetDuration("server-write-timeout")
	cfg.Log.Level = viper.GetString("log-level")
	cfg.Log.Format = viper.GetString("log-format")
}

func configureSpotify(cfg *core.Config) {
	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")
	cfg.Spotify.PublicPlaylists = viper.GetBool("spotify-public-playlists")
	cfg.Spotify.RedirectURL = viper.GetString("spotify-redirect-url")

	// The callback has to reach the browser's machine, not the bind address
	if cfg.Spotify.RedirectURL == "" {
		serverHost := cfg.Server.Host
		if serverHost == defaultServerHost {
			serverHost = "127.0.0.1"
		}
		cfg.Spotify.RedirectURL = fmt.Sprintf("http://%s:%d/callback", serverHost, cfg.Server.Port)
	}
}

func configureLLM(cfg *core.Config) {
	cfg.LLM.Provider = viper.GetString("llm-provider")
	cfg.LLM.Model = viper.GetString("llm-model")
	cfg.LLM.APIKey = viper.GetString("llm-api-key")
	cfg.LLM.BaseURL = viper.GetString("llm-base-url")
	cfg.LLM.MaxTokens = viper.GetInt("llm-max-tokens")
	if cfg.LLM.MaxTokens <= 0 {
		cfg.LLM.MaxTokens = core.DefaultMaxOutputTokens
	}
}

func configureSession(cfg *core.Config) {
	cfg.Session.Backend = viper.GetString("session-backend")
	cfg.Session.SQLitePath = viper.GetString("session-sqlite-path")
	cfg.Session.RedisAddr = viper.GetString("session-redis-addr")
	cfg.Session.RedisPassword = viper.GetString("session-redis-password")
	cfg.Session.RedisDB = viper.GetInt("session-redis-db")
	cfg.Session.Secret = viper.GetString("session-secret")
	cfg.Session.CookieName = viper.GetString("session-cookie-name")
	cfg.Session.SecureCookie = viper.GetBool("session-secure-cookie")

	cfg.Session.TTL = viper.GetDuration("session-ttl")
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = core.DefaultSessionTTL
	}
	cfg.Session.PurgeInterval = viper.GetDuration("session-purge-interval")
	if cfg.Session.PurgeInterval <= 0 {
		cfg.Session.PurgeInterval = core.DefaultSessionPurgeInterval
	}
	cfg.Session.CacheSize = viper.GetInt("session-cache-size")
	if cfg.Session.CacheSize <= 0 {
		cfg.Session.CacheSize = core.DefaultSessionCacheSize
	}
}

func configureApp(cfg *core.Config) {
	cfg.App.CompensateFailedWrites = viper.GetBool("app-compensate-failed-writes")
	cfg.App.RejectDuplicateSubmissions = viper.GetBool("app-reject-duplicate-submissions")

	cfg.App.LedgerCapacity = viper.GetInt("app-ledger-capacity")
	if cfg.App.LedgerCapacity <= 0 {
		cfg.App.LedgerCapacity = core.DefaultLedgerCapacity
	}
	cfg.App.LedgerFalsePositiveRate = viper.GetFloat64("app-ledger-false-positive-rate")
	if cfg.App.LedgerFalsePositiveRate <= 0 || cfg.App.LedgerFalsePositiveRate >= 1 {
		cfg.App.LedgerFalsePositiveRate = core.DefaultLedgerFalsePositiveRate
	}

	cfg.App.RequestsPerMinute = viper.GetInt("app-requests-per-minute")
	if cfg.App.RequestsPerMinute < 0 {
		cfg.App.RequestsPerMinute = 0
	}

	cfg.App.Language = viper.GetString("language")
	if cfg.App.Language == "" {
		cfg.App.Language = i18n.DefaultLanguage
	}

	if !i18n.IsSupported(cfg.App.Language) {
		fmt.Fprintf(os.Stderr, "Warning: Unsupported language '%s', falling back to '%s'. Supported languages: %s\n",
			cfg.App.Language, i18n.DefaultLanguage, strings.Join(i18n.GetSupportedLanguages(), ", "))
		cfg.App.Language = i18n.DefaultLanguage
	}
}

func buildLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runMusicMem(cmd *cobra.Command, _ []string) error {
	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting MusicMem",
		zap.String("llm_provider", config.LLM.Provider),
		zap.String("session_backend", config.Session.Backend),
		zap.String("redirect_url", config.Spotify.RedirectURL),
		zap.String("language", config.App.Language))

	if err := validateConfig(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if config.Session.Secret == "" {
		secret, err := randomSecret()
		if err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		config.Session.Secret = secret
		logger.Warn("No session secret configured; sessions will not survive a restart")
	}

	svcs, err := initializeServices()
	if err != nil {
		return err
	}
	defer svcs.close()

	return runServices(ctx, svcs)
}

type services struct {
	httpServer *httpserver.Server
	sessions   *session.Manager
	store      session.Store
	limiter    *flood.Floodgate
}

func (s *services) close() {
	if err := s.store.Close(); err != nil {
		logger.Debug("Failed to close session store", zap.Error(err))
	}
}

func initializeServices() (*services, error) {
	textGenerator, err := llm.NewProvider(&config.LLM, logger.Named("llm"))
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	sessionStore, err := session.NewStore(&config.Session, logger.Named("session"))
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	cookies := session.NewCookies(config.Session.CookieName, config.Session.Secret,
		config.Session.SecureCookie, config.Session.TTL)
	sessions := session.NewManager(sessionStore, cookies, config.Session.TTL, logger.Named("session"))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := httpserver.NewMetrics(registry)

	ledger := store.NewLedger(config.App.LedgerCapacity, config.App.LedgerFalsePositiveRate)
	metrics.RegisterLedgerSize(registry, ledger.Size)

	pipeline := core.NewPipeline(config, textGenerator, metrics.ObserveLedger(ledger), logger.Named("pipeline"))

	var limiter *flood.Floodgate
	if config.App.RequestsPerMinute > 0 {
		limiter = flood.New(config.App.RequestsPerMinute)
	}

	httpServer := httpserver.NewServer(&config.Server, httpserver.Dependencies{
		Pipeline:  pipeline,
		Auth:      spotify.NewAuthenticator(&config.Spotify, logger.Named("spotify")),
		Sessions:  sessions,
		Localizer: i18n.NewLocalizer(config.App.Language),
		Metrics:   metrics,
		Gatherer:  registry,
		Limiter:   limiter,
	}, logger.Named("http"))

	return &services{
		httpServer: httpServer,
		sessions:   sessions,
		store:      sessionStore,
		limiter:    limiter,
	}, nil
}

func runServices(ctx context.Context, svcs *services) error {
	purgeCtx, cancel := context.WithTimeout(ctx, startupPurgeTimeout)
	if n, err := svcs.sessions.Purge(purgeCtx); err != nil {
		logger.Warn("Startup session purge failed", zap.Error(err))
	} else if n > 0 {
		logger.Info("Purged expired sessions", zap.Int("count", n))
	}
	cancel()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svcs.httpServer.Start(gCtx)
	})

	g.Go(func() error {
		return svcs.sessions.RunPurger(gCtx, config.Session.PurgeInterval)
	})

	if svcs.limiter != nil {
		g.Go(func() error {
			return svcs.limiter.Run(gCtx)
		})
	}

	logger.Info("MusicMem started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("MusicMem stopped with error", zap.Error(err))
		return err
	}

	logger.Info("MusicMem stopped gracefully")
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, sessionSecretLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

const noneProvider = "none"

func validateConfig(cfg *core.Config) error {
	if err := validateSpotifyConfig(cfg); err != nil {
		return err
	}

	if err := validateLLMConfig(cfg); err != nil {
		return err
	}

	return validateSessionConfig(cfg)
}

func validateSpotifyConfig(cfg *core.Config) error {
	if cfg.Spotify.ClientID == "" {
		return fmt.Errorf("spotify client ID is required")
	}

	if cfg.Spotify.ClientSecret == "" {
		return fmt.Errorf("spotify client secret is required")
	}

	return nil
}

func validateLLMConfig(cfg *core.Config) error {
	if cfg.LLM.Provider == noneProvider || cfg.LLM.Provider == "" {
		return fmt.Errorf("an LLM provider is required to suggest songs")
	}
	if cfg.LLM.APIKey == "" && cfg.LLM.Provider != "ollama" {
		return fmt.Errorf("LLM API key is required for provider: %s", cfg.LLM.Provider)
	}
	return nil
}

func validateSessionConfig(cfg *core.Config) error {
	switch cfg.Session.Backend {
	case "sqlite":
		if cfg.Session.SQLitePath == "" {
			return fmt.Errorf("session sqlite path is required")
		}
	case "redis":
		if cfg.Session.RedisAddr == "" {
			return fmt.Errorf("session redis address is required")
		}
	default:
		return fmt.Errorf("unsupported session backend: %s", cfg.Session.Backend)
	}
	return nil
}

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd)

	if err := os.WriteFile(".env.example", []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Println("✅ Successfully generated .env.example file")
	return nil
}

type envSection struct {
	title string
	flags []string
}

var envSections = []envSection{
	{"Spotify", []string{"spotify-client-id", "spotify-client-secret", "spotify-redirect-url", "spotify-public-playlists"}},
	{"LLM", []string{"llm-provider", "llm-model", "llm-api-key", "llm-base-url", "llm-max-tokens"}},
	{"Server", []string{"server-host", "server-port", "server-read-timeout", "server-write-timeout"}},
	{"Sessions", []string{
		"session-backend", "session-sqlite-path", "session-redis-addr", "session-redis-password",
		"session-redis-db", "session-secret", "session-cookie-name", "session-secure-cookie",
		"session-ttl", "session-purge-interval", "session-cache-size",
	}},
	{"Application", []string{
		"language", "app-compensate-failed-writes", "app-reject-duplicate-submissions",
		"app-ledger-capacity", "app-ledger-false-positive-rate", "app-requests-per-minute",
	}},
	{"Logging", []string{"log-level", "log-format"}},
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	content.WriteString("# =============================================================================\n")
	content.WriteString("# MusicMem Configuration\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	fmt.Fprintf(&content, "# Format: %s_<SECTION>_<SETTING>=value\n", envPrefix)
	content.WriteString("# CLI equivalent: --<section>-<setting>\n")
	content.WriteString("#\n")

	for _, section := range envSections {
		content.WriteString("\n# -----------------------------------------------------------------------------\n")
		fmt.Fprintf(&content, "# %s\n", section.title)
		content.WriteString("# -----------------------------------------------------------------------------\n")

		for _, name := range section.flags {
			if f := cmd.PersistentFlags().Lookup(name); f != nil {
				writeEnvEntry(&content, f)
			}
		}
	}

	return content.String()
}

func writeEnvEntry(content *strings.Builder, f *pflag.Flag) {
	fmt.Fprintf(content, "# %s\n", f.Usage)
	value := f.DefValue
	if f.Value.Type() == "string" && strings.Contains(value, " ") {
		value = fmt.Sprintf("%q", value)
	}
	fmt.Fprintf(content, "%s=%s\n", flagToEnvVar(f.Name), value)
}

func flagToEnvVar(flagName string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}
