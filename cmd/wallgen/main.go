package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mhpenta/wallgen"
	"github.com/mhpenta/wallgen/config"
	"github.com/mhpenta/wallgen/kvstore"
	"github.com/mhpenta/wallgen/provider/gemini"
	"github.com/mhpenta/wallgen/ratelimiter"
)

var (
	// Global flags
	configPath string
	logLevel   string
	model      string

	// Built by PersistentPreRunE
	app *application
)

// application is everything a command needs, wired from the config.
type application struct {
	cfg         *config.Config
	logger      *slog.Logger
	store       *kvstore.FileStore
	credentials *wallgen.CredentialStore
	client      *wallgen.Client
	storage     *wallgen.LocalStorage
}

var rootCmd = &cobra.Command{
	Use:   "wallgen",
	Short: "Generate phone wallpapers from a text prompt",
	Long: `wallgen sends a prompt to Gemini four times in parallel and saves
the vertical 9:16 wallpapers that come back.

The API key is read from the stored key (see "wallgen key set"), then
GEMINI_API_KEY or API_KEY.

Run without arguments to start an interactive session.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApplication()
		if err != nil {
			return err
		}
		app = a
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/wallgen/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "model: nano-banana-1 or nano-banana-2")

	rootCmd.AddCommand(generateCmd, keyCmd, samplesCmd, interactiveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newApplication() (*application, error) {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err == nil {
			path = p
		}
	}

	cfg, err := config.Load(path, ".env")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if model != "" {
		cfg.Model = model
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	store := kvstore.NewFileStore(cfg.StorePath)
	credentials := wallgen.NewCredentialStore(store, logger)

	genConfig := wallgen.DefaultConfig()
	genConfig.Model = wallgen.Model(cfg.Model)
	genConfig.Size = wallgen.ImageSize(cfg.Size)
	if cfg.SafetyThreshold != "" {
		settings, err := wallgen.SafetySettingsAt(wallgen.SafetyThreshold(cfg.SafetyThreshold))
		if err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		genConfig.SafetySettings = settings
	}

	limiter := newLimiter(cfg)
	if limiter != nil {
		genConfig.WaitOnRateLimit = true
		genConfig.MaxWaitDuration = cfg.Timeout
	}

	opts := []wallgen.ClientOption{
		wallgen.WithLogger(logger),
		wallgen.WithCredentialStore(credentials),
		wallgen.WithEnvAPIKey(cfg.APIKey),
		wallgen.WithGenerateConfig(genConfig),
		wallgen.WithAttemptTimeout(cfg.AttemptTimeout),
	}
	if limiter != nil {
		opts = append(opts, wallgen.WithRateLimiter(genConfig.Model, limiter))
	}

	logger.Debug("configuration loaded",
		"config", path,
		"store", cfg.StorePath,
		"output", cfg.OutputDir,
		"model", cfg.Model,
	)

	return &application{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		credentials: credentials,
		client:      wallgen.NewClient(newGeneratorFactory(cfg), opts...),
		storage:     wallgen.NewLocalStorage(cfg.OutputDir),
	}, nil
}

// newGeneratorFactory binds every generator to the configured endpoint.
func newGeneratorFactory(cfg *config.Config) wallgen.GeneratorFactory {
	var opts []gemini.Option
	if cfg.BaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(cfg.BaseURL))
	}
	return gemini.FactoryWith(opts...)
}

// newLimiter returns nil when the config sets no limits. Explicit per-minute
// values take precedence over the model's published limits.
func newLimiter(cfg *config.Config) ratelimiter.Limiter {
	rpm, tpm := cfg.RequestsPerMinute, cfg.TokensPerMinute

	if rpm <= 0 && tpm <= 0 {
		if !cfg.PublishedRateLimits {
			return nil
		}
		limits, ok := gemini.RateLimitsFor(wallgen.Model(cfg.Model))
		if !ok {
			return nil
		}
		if !cfg.SmoothRateLimit {
			return ratelimiter.NewFromLimits(ratelimiter.RateLimits{
				TokensPerMinute:   limits.TokensPerMinute,
				RequestsPerMinute: limits.RequestsPerMinute,
				TokensPerDay:      limits.TokensPerDay,
			})
		}
		rpm = limits.RequestsPerMinute
	}

	if cfg.SmoothRateLimit {
		return ratelimiter.NewSmooth(rpm, wallgen.Attempts)
	}
	return ratelimiter.New(tpm, rpm)
}

// withTimeout bounds one generation by the configured timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, app.cfg.Timeout)
}
