package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lastgram/lastgram/internal/store"
	"github.com/lastgram/lastgram/pkg/lastfm"
)

func (b *Bot) handleJoin(ctx context.Context, msg *tgbotapi.Message) error {
	saved := b.savedUsername(ctx, msg.From.ID)
	if saved == "" {
		return b.replyMarkdown(msg, "Save your Last.fm username with `/set [username]` first, then /join again.")
	}

	listener := store.Listener{
		UserID:      msg.From.ID,
		Username:    saved,
		DisplayName: msg.From.FirstName,
		Handle:      msg.From.UserName,
	}
	if err := b.store.Groups().Upsert(ctx, msg.Chat.ID, listener); err != nil {
		return fmt.Errorf("registering listener: %w", err)
	}

	b.logger.Info().
		Int64("chat_id", msg.Chat.ID).
		Int64("user_id", msg.From.ID).
		Str("username", saved).
		Msg("Listener joined group")
	return b.replyMarkdown(msg, fmt.Sprintf(
		"✅ *%s* joined group listening as %s.\nUse /listening to see what everyone is playing.",
		msg.From.FirstName, saved,
	))
}

func (b *Bot) handleListening(ctx context.Context, msg *tgbotapi.Message) error {
	listeners, err := b.store.Groups().List(ctx, msg.Chat.ID)
	if err != nil {
		return fmt.Errorf("loading listeners: %w", err)
	}
	if len(listeners) == 0 {
		return b.replyMarkdown(msg, "Nobody has joined group listening in this chat yet. Use /join to opt in.")
	}

	// One now-playing lookup per listener, fanned out over the worker
	// pool. Results land in a fixed slice so the report preserves join
	// order regardless of completion order.
	lines := make([]string, len(listeners))
	var wg sync.WaitGroup
	for i, l := range listeners {
		i, l := i, l
		wg.Add(1)
		b.pool.Submit(func() {
			defer wg.Done()
			lines[i] = b.listeningLine(ctx, l)
		})
	}
	wg.Wait()

	var report []string
	for _, line := range lines {
		if line != "" {
			report = append(report, line)
		}
	}
	if len(report) == 0 {
		return b.replyMarkdown(msg, "😴 Nobody is listening to anything right now.")
	}

	return b.replyMarkdown(msg, "🎧 *Now listening:*\n\n"+strings.Join(report, "\n"))
}

// listeningLine renders one listener's report line. Stale accounts get
// an inline not-found note; other lookup failures and idle listeners
// are omitted from the report.
func (b *Bot) listeningLine(ctx context.Context, l store.Listener) string {
	np, err := b.lastfm.User().NowPlaying(ctx, l.Username)
	switch {
	case err != nil && lastfm.NotFound(err) == lastfm.NotFoundUser:
		return fmt.Sprintf("• *%s*: Last.fm user '%s' not found", l.DisplayName, l.Username)
	case err != nil:
		b.logger.Warn().Err(err).Str("username", l.Username).Msg("Listening lookup failed")
		return ""
	case np == nil:
		return ""
	default:
		return fmt.Sprintf("• *%s*: %s - %s", l.DisplayName, np.Artist, np.Track)
	}
}
