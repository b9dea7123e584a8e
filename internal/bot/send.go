package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	// textLimit is Telegram's hard ceiling on message text length.
	textLimit = 4096

	// truncationMarker is appended to captions cut down to fit.
	// Marker plus headroom total 25 characters.
	truncationMarker = "\n\n... [message truncated]"
)

// replyWithPhotoOrText delivers caption to msg's chat, preferring a
// photo with the caption attached.
//
// Fallback chain: photo send failures (typically an overlong caption)
// fall through to plain text; a text send rejected for length is
// truncated and resent; anything else is logged and answered with a
// generic formatting error. This method never fails upward.
func (b *Bot) replyWithPhotoOrText(msg *tgbotapi.Message, imageURL, caption string) {
	if imageURL != "" {
		photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileURL(imageURL))
		photo.Caption = caption
		photo.ParseMode = tgbotapi.ModeMarkdown

		if _, err := b.api.Send(photo); err == nil {
			return
		} else {
			b.logger.Warn().Err(err).Msg("Photo send failed, falling back to text")
		}
	}

	err := b.replyMarkdown(msg, caption)
	if err == nil {
		return
	}

	if strings.Contains(strings.ToLower(err.Error()), "message is too long") {
		b.logger.Warn().Int("length", len([]rune(caption))).Msg("Reply exceeded the text limit, truncating")

		runes := []rune(caption)
		if len(runes) > textLimit-25 {
			runes = runes[:textLimit-25]
		}
		if err := b.replyMarkdown(msg, string(runes)+truncationMarker); err != nil {
			b.logger.Error().Err(err).Msg("Truncated reply failed")
		}
		return
	}

	b.logger.Error().Err(err).Msg("Text reply failed")
	b.replyPlain(msg, "Something went wrong formatting this reply.")
}

// replyMarkdown sends a Markdown-formatted text reply.
func (b *Bot) replyMarkdown(msg *tgbotapi.Message, text string) error {
	m := tgbotapi.NewMessage(msg.Chat.ID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(m)
	return err
}

// replyPlain sends an unformatted text reply, logging any failure.
func (b *Bot) replyPlain(msg *tgbotapi.Message, text string) {
	m := tgbotapi.NewMessage(msg.Chat.ID, text)
	if _, err := b.api.Send(m); err != nil {
		b.logger.Error().Err(err).Msg("Reply failed")
	}
}
