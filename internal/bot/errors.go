package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lastgram/lastgram/pkg/lastfm"
)

// runCommand invokes handler and translates any error into a
// user-facing reply. Not-found conditions get specific messages naming
// what was missing; everything else is logged with the command name and
// answered with a generic apology.
func (b *Bot) runCommand(ctx context.Context, name string, msg *tgbotapi.Message, handler handlerFunc) {
	err := handler(ctx, msg)
	if err == nil {
		return
	}

	args := splitArgs(msg)
	query := strings.Join(args, " ")

	switch lastfm.NotFound(err) {
	case lastfm.NotFoundUser:
		username, _ := parseUserAndPeriod(args, b.savedUsername(ctx, msg.From.ID))
		b.replyPlain(msg, fmt.Sprintf("❌ Couldn't find user '%s' on Last.fm.", username))
		return
	case lastfm.NotFoundArtist:
		b.replyPlain(msg, fmt.Sprintf("❌ Couldn't find artist '%s'.", query))
		return
	case lastfm.NotFoundAlbum, lastfm.NotFoundTrack:
		b.replyPlain(msg, fmt.Sprintf("❌ Couldn't find: '%s'.\nRemember the format: Artist - Item", query))
		return
	}

	var apiErr *lastfm.Error
	if errors.As(err, &apiErr) {
		b.logger.Error().Err(err).Str("command", name).Int("code", apiErr.Code).Msg("Last.fm API error")
		b.replyPlain(msg, fmt.Sprintf("A Last.fm error occurred: %s", apiErr.Message))
		return
	}

	b.logger.Error().Err(err).Str("command", name).Msg("Command failed")
	b.replyPlain(msg, "An unexpected error occurred. Please try again later.")
}
