// Package bot implements the Telegram front end: command dispatch,
// argument parsing, response composition and the per-chat listening
// report.
package bot

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/lastgram/lastgram/internal/images"
	"github.com/lastgram/lastgram/internal/store"
	"github.com/lastgram/lastgram/internal/worker"
	"github.com/lastgram/lastgram/pkg/lastfm"
)

// Sender is the slice of the Telegram client the bot consumes.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ImageResolver resolves display artwork for replies.
type ImageResolver interface {
	Resolve(ctx context.Context, artist, item string, kind images.Kind) string
}

// Config holds the bot's dependencies.
type Config struct {
	API      Sender
	LastFM   *lastfm.Client
	Resolver ImageResolver
	Store    *store.Store
	Pool     *worker.Pool
	Location *time.Location // time zone for reply timestamps
	Logger   zerolog.Logger
}

// Bot routes inbound commands to their handlers.
type Bot struct {
	api      Sender
	lastfm   *lastfm.Client
	resolver ImageResolver
	store    *store.Store
	pool     *worker.Pool
	tz       *time.Location
	logger   zerolog.Logger

	commands map[string]handlerFunc
}

type handlerFunc func(ctx context.Context, msg *tgbotapi.Message) error

// New creates a Bot from cfg.
func New(cfg Config) *Bot {
	tz := cfg.Location
	if tz == nil {
		tz = time.UTC
	}

	b := &Bot{
		api:      cfg.API,
		lastfm:   cfg.LastFM,
		resolver: cfg.Resolver,
		store:    cfg.Store,
		pool:     cfg.Pool,
		tz:       tz,
		logger:   cfg.Logger.With().Str("component", "bot").Logger(),
	}

	b.commands = map[string]handlerFunc{
		"start":      b.handleStart,
		"help":       b.handleHelp,
		"set":        b.handleSet,
		"np":         b.handleNowPlaying,
		"recent":     b.handleRecent,
		"topartists": b.handleTopArtists,
		"topalbums":  b.handleTopAlbums,
		"toptracks":  b.handleTopTracks,
		"artist":     b.handleArtist,
		"album":      b.handleAlbum,
		"track":      b.handleTrack,
		"join":       b.handleJoin,
		"listening":  b.handleListening,
	}

	return b
}

// Run consumes updates until ctx is cancelled or the channel closes.
// Each message is handled on its own goroutine; commands are not
// ordered relative to one another.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	b.logger.Info().Msg("Update loop started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.HandleMessage(ctx, update.Message)
		}
	}
}

// HandleMessage processes a single inbound message. Nothing escapes to
// the dispatch loop: handler errors are translated into user-facing
// replies and panics are logged.
func (b *Bot) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Msg("Recovered from handler panic")
		}
	}()

	if msg.From == nil {
		return
	}

	if !msg.IsCommand() {
		if msg.Text != "" {
			b.replyPlain(msg, "I only respond to commands. Use /help.")
		}
		return
	}

	name := msg.Command()
	handler, ok := b.commands[name]
	if !ok {
		b.replyPlain(msg, "Sorry, I didn't understand that. Use /help.")
		return
	}

	b.runCommand(ctx, name, msg, handler)
}

// splitArgs returns the whitespace-delimited command arguments.
func splitArgs(msg *tgbotapi.Message) []string {
	return strings.Fields(msg.CommandArguments())
}

// savedUsername returns the caller's stored Last.fm username, or ""
// when none is saved or the lookup fails.
func (b *Bot) savedUsername(ctx context.Context, userID int64) string {
	username, err := b.store.Prefs().Username(ctx, userID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to load saved username")
		return ""
	}
	return username
}
