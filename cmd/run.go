package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/lastgram/lastgram/internal/bot"
	"github.com/lastgram/lastgram/internal/config"
	"github.com/lastgram/lastgram/internal/images"
	"github.com/lastgram/lastgram/internal/store"
	"github.com/lastgram/lastgram/internal/worker"
	"github.com/lastgram/lastgram/pkg/lastfm"
)

var (
	runLogFile  string
	runLogLevel string
	runDataDir  string
)

// workerCount bounds concurrent catalog lookups and group-report fan-out.
const workerCount = 4

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the Telegram bot",
	Long: `Run the Telegram bot.

The bot will:
- Long-poll Telegram for updates and answer every supported command
- Query Last.fm for now-playing, recent and top-chart data
- Resolve cover art through the Spotify catalog, falling back to Last.fm artwork
- Keep saved usernames and group listeners in a local SQLite database
- Handle graceful shutdown on SIGINT/SIGTERM

The bot runs in the foreground and logs to stderr by default.
Use the --log-file flag to log to a file.`,
	RunE: runBot,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "Log file path (default: stderr)")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "", "Data directory for the bot database (default: ~/.local/share/lastgram)")
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := setupLogger(runLogFile, runLogLevel)

	logger.Info().
		Str("version", version).
		Msg("Starting lastgram")

	tz, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	// Determine data directory
	dataDir := runDataDir
	if dataDir == "" {
		dataDir = cfg.DataDir
	}
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share", "lastgram")
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	logger.Info().Str("data_dir", dataDir).Msg("Using data directory")

	st, err := store.Open(filepath.Join(dataDir, "lastgram.db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	lfm, err := lastfm.NewClient(lastfm.Config{
		APIKey:    cfg.LastFM.APIKey,
		APISecret: cfg.LastFM.APISecret,
		Logger:    lastfmLogger{logger: logger},
	})
	if err != nil {
		return fmt.Errorf("failed to create Last.fm client: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool := worker.NewPool(workerCount)
	defer pool.Close()

	// Client-credentials flow: the bot only reads public catalog data.
	auth := &clientcredentials.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	catalog := spotify.New(auth.Client(ctx))
	resolver := images.NewResolver(catalog, pool, logger)

	if err := resolver.Probe(ctx); err != nil {
		return fmt.Errorf("spotify connectivity check failed: %w", err)
	}
	logger.Info().Msg("Connected to the Spotify catalog")

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	logger.Info().Str("bot", api.Self.UserName).Msg("Authorized on Telegram")

	b := bot.New(bot.Config{
		API:      api,
		LastFM:   lfm,
		Resolver: resolver,
		Store:    st,
		Pool:     pool,
		Location: tz,
		Logger:   logger,
	})

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	updates := api.GetUpdatesChan(updateCfg)

	if err := b.Run(ctx, updates); err != nil && err != context.Canceled {
		return fmt.Errorf("bot error: %w", err)
	}

	logger.Info().Msg("Bot stopped")
	return nil
}

// lastfmLogger adapts zerolog to the lastfm client's debug logger.
type lastfmLogger struct {
	logger zerolog.Logger
}

func (l lastfmLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

// setupLogger creates a logger with the specified configuration
func setupLogger(logFile, logLevel string) zerolog.Logger {
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	var output *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			output = os.Stderr
		} else {
			output = f
		}
	} else {
		output = os.Stderr
	}

	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Use pretty console output if logging to stderr
	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger
}
