package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lastgram/lastgram/internal/images"
	"github.com/lastgram/lastgram/pkg/lastfm"
)

// countPrinter renders large playcounts with thousands separators.
var countPrinter = message.NewPrinter(language.English)

const playedAtFormat = "02/01 15:04"

// recentLimit is how many plays /recent asks for and announces.
const recentLimit = 10

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	text := fmt.Sprintf(
		"Hi, %s! 👋\n\n"+
			"I'm a Last.fm bot. Save your Last.fm username with:\n"+
			"`/set your_username`\n\n"+
			"Your username is kept across restarts. Use /help to see every command.",
		msg.From.FirstName,
	)
	return b.replyMarkdown(msg, text)
}

func (b *Bot) handleHelp(ctx context.Context, msg *tgbotapi.Message) error {
	text := "*Available commands:*\n\n" +
		"`/set [username]` - Save your Last.fm username\n" +
		"`/np [username]` - Show the current track\n" +
		"`/recent [username]` - Show the last 10 tracks\n" +
		"`/topartists [username] [period]` - Top 10 artists\n" +
		"`/topalbums [username] [period]` - Top 10 albums\n" +
		"`/toptracks [username] [period]` - Top 10 tracks\n" +
		"`/artist [artist name]` - Artist info\n" +
		"`/album [artist] - [album name]` - Album info\n" +
		"`/track [artist] - [track name]` - Track info\n" +
		"`/join` - Join this chat's group listening\n" +
		"`/listening` - What everyone in the group is playing\n\n" +
		"Periods: `7day` (default), `1month`, `3month`, `6month`, `12month`, `overall`."
	return b.replyMarkdown(msg, text)
}

func (b *Bot) handleSet(ctx context.Context, msg *tgbotapi.Message) error {
	args := splitArgs(msg)
	if len(args) == 0 {
		return b.replyMarkdown(msg, "Please provide your Last.fm username.\nExample: `/set RjDj`")
	}

	username := strings.Join(args, " ")
	if err := b.store.Prefs().SetUsername(ctx, msg.From.ID, username); err != nil {
		return fmt.Errorf("saving username: %w", err)
	}

	b.logger.Info().Int64("user_id", msg.From.ID).Str("username", username).Msg("Saved Last.fm username")
	return b.replyMarkdown(msg, fmt.Sprintf("✅ Last.fm username saved as: %s", username))
}

func (b *Bot) handleNowPlaying(ctx context.Context, msg *tgbotapi.Message) error {
	args := splitArgs(msg)
	username, _ := parseUserAndPeriod(args, b.savedUsername(ctx, msg.From.ID))
	if username == "" {
		return b.replyMarkdown(msg, "Save your Last.fm username with `/set [username]`, or ask about someone with `/np [username]`.")
	}
	display := b.displayName(msg, args, username)

	np, err := b.lastfm.User().NowPlaying(ctx, username)
	if err != nil {
		return err
	}
	if np == nil {
		return b.replyMarkdown(msg, fmt.Sprintf("🎧 *%s* is not listening to anything right now.", display))
	}

	// Per-user scrobble count for the playing track. Missing tracks are
	// tolerated here: an unscrobbled or misspelled catalog entry should
	// not blank the whole reply.
	scrobbles := 0
	if info, err := b.lastfm.Track().Info(ctx, np.Artist, np.Track, username); err != nil {
		if lastfm.NotFound(err) == lastfm.NotFoundNone {
			return err
		}
		b.logger.Debug().Err(err).Str("track", np.Track).Msg("No catalog entry for playing track")
	} else {
		scrobbles = info.UserPlaycount
	}

	imageURL := b.resolver.Resolve(ctx, np.Artist, np.Track, images.KindTrack)

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎧 *%s* is listening to:\n\n", display)
	fmt.Fprintf(&sb, "🎵 *Track:* %s\n", np.Track)
	fmt.Fprintf(&sb, "🎤 *Artist:* %s\n", np.Artist)
	if np.Album != "" {
		fmt.Fprintf(&sb, "💿 *Album:* %s\n", np.Album)
		if imageURL == "" {
			imageURL = images.Fallback(np.Images)
		}
	}
	fmt.Fprintf(&sb, "\n📈 *Scrobbles:* %s", countPrinter.Sprintf("%d", scrobbles))

	b.replyWithPhotoOrText(msg, imageURL, sb.String())
	return nil
}

func (b *Bot) handleRecent(ctx context.Context, msg *tgbotapi.Message) error {
	args := splitArgs(msg)
	username, _ := parseUserAndPeriod(args, b.savedUsername(ctx, msg.From.ID))
	if username == "" {
		return b.replyMarkdown(msg, "Save your Last.fm username with `/set [username]`, or ask about someone with `/recent [username]`.")
	}
	display := b.displayName(msg, args, username)

	tracks, err := b.lastfm.User().RecentTracks(ctx, username, recentLimit)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return b.replyMarkdown(msg, fmt.Sprintf("*%s* hasn't listened to any tracks.", display))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📄 *Last %d tracks for %s:*\n\n", recentLimit, display)
	for _, t := range tracks {
		fmt.Fprintf(&sb, "• `%s`: *%s* - %s\n", t.PlayedAt.In(b.tz).Format(playedAtFormat), t.Artist, t.Track)
	}

	return b.replyMarkdown(msg, sb.String())
}

func (b *Bot) handleTopArtists(ctx context.Context, msg *tgbotapi.Message) error {
	return b.handleTop(ctx, msg, topArtists)
}

func (b *Bot) handleTopAlbums(ctx context.Context, msg *tgbotapi.Message) error {
	return b.handleTop(ctx, msg, topAlbums)
}

func (b *Bot) handleTopTracks(ctx context.Context, msg *tgbotapi.Message) error {
	return b.handleTop(ctx, msg, topTracks)
}

type topKind int

const (
	topArtists topKind = iota
	topAlbums
	topTracks
)

func (k topKind) label() string {
	switch k {
	case topArtists:
		return "artists"
	case topAlbums:
		return "albums"
	default:
		return "tracks"
	}
}

func (k topKind) icon() string {
	switch k {
	case topArtists:
		return "🏆"
	case topAlbums:
		return "📀"
	default:
		return "🎵"
	}
}

// handleTop implements the three top-N commands, which differ only in
// the Last.fm call and the per-line rendering.
func (b *Bot) handleTop(ctx context.Context, msg *tgbotapi.Message, kind topKind) error {
	args := splitArgs(msg)
	username, period := parseUserAndPeriod(args, b.savedUsername(ctx, msg.From.ID))
	if username == "" {
		return b.replyMarkdown(msg, fmt.Sprintf(
			"Save your Last.fm username with `/set [username]`, or ask about someone with `/top%s [username] [period]`.",
			kind.label(),
		))
	}
	display := b.displayName(msg, args, username)

	var (
		entries []lastfm.TopEntry
		err     error
	)
	switch kind {
	case topArtists:
		entries, err = b.lastfm.User().TopArtists(ctx, username, period, 10)
	case topAlbums:
		entries, err = b.lastfm.User().TopAlbums(ctx, username, period, 10)
	default:
		entries, err = b.lastfm.User().TopTracks(ctx, username, period, 10)
	}
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return b.replyMarkdown(msg, fmt.Sprintf("*%s* has no top %s for period '%s'.", display, kind.label(), period))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s *Top %d %s for %s* (%s):\n\n", kind.icon(), len(entries), kind.label(), display, period)
	for _, e := range entries {
		if kind == topArtists {
			fmt.Fprintf(&sb, "*%d.* %s `(%d scrobbles)`\n", e.Rank, e.Name, e.Playcount)
		} else {
			fmt.Fprintf(&sb, "*%d.* %s - *%s* `(%d scrobbles)`\n", e.Rank, e.Artist, e.Name, e.Playcount)
		}
	}

	return b.replyMarkdown(msg, sb.String())
}

func (b *Bot) handleArtist(ctx context.Context, msg *tgbotapi.Message) error {
	args := splitArgs(msg)
	if len(args) == 0 {
		return b.replyMarkdown(msg, "Please provide an artist name.\nFormat: `/artist [artist name]`")
	}
	saved := b.savedUsername(ctx, msg.From.ID)
	if saved == "" {
		return b.replyMarkdown(msg, "Save your Last.fm username with `/set [username]` first.")
	}

	name := strings.Join(args, " ")
	info, err := b.lastfm.Artist().Info(ctx, name)
	if err != nil {
		return err
	}

	// The caller's own playcount for this artist. Last.fm has no direct
	// per-user artist count, so scan the overall top-artists chart;
	// anything outside the top 50 reads as zero.
	scrobbles := 0
	tops, err := b.lastfm.User().TopArtists(ctx, saved, lastfm.PeriodOverall, 50)
	if err != nil {
		return err
	}
	for _, e := range tops {
		if strings.EqualFold(e.Name, info.Name) {
			scrobbles = e.Playcount
			break
		}
	}

	tags, err := b.lastfm.Artist().TopTags(ctx, info.Name, 5)
	if err != nil {
		return err
	}
	tagLine := "No tags found"
	if len(tags) > 0 {
		names := make([]string, len(tags))
		for i, t := range tags {
			names[i] = t.Name
		}
		tagLine = strings.Join(names, ", ")
	}

	imageURL := b.resolver.Resolve(ctx, info.Name, "", images.KindArtist)
	if imageURL == "" {
		imageURL = images.Fallback(info.Images)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎤 *%s*\n\n", info.Name)
	fmt.Fprintf(&sb, "📈 *Your scrobbles:* %s\n", countPrinter.Sprintf("%d", scrobbles))
	fmt.Fprintf(&sb, "🏷️ *Tags:* %s", tagLine)

	b.replyWithPhotoOrText(msg, imageURL, sb.String())
	return nil
}

func (b *Bot) handleAlbum(ctx context.Context, msg *tgbotapi.Message) error {
	artist, album, ok := parseArtistItem(splitArgs(msg))
	if !ok {
		return b.replyMarkdown(msg, "Please use the format: `/album [artist] - [album name]`")
	}

	info, err := b.lastfm.Album().Info(ctx, artist, album)
	if err != nil {
		return err
	}

	imageURL := b.resolver.Resolve(ctx, info.Artist, info.Title, images.KindAlbum)
	if imageURL == "" {
		imageURL = images.Fallback(info.Images)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "💿 *%s*\n", info.Title)
	fmt.Fprintf(&sb, "🎤 *Artist:* %s\n\n", info.Artist)
	fmt.Fprintf(&sb, "📈 *Scrobbles (all users):* %s", countPrinter.Sprintf("%d", info.Playcount))

	b.replyWithPhotoOrText(msg, imageURL, sb.String())
	return nil
}

func (b *Bot) handleTrack(ctx context.Context, msg *tgbotapi.Message) error {
	artist, track, ok := parseArtistItem(splitArgs(msg))
	if !ok {
		return b.replyMarkdown(msg, "Please use the format: `/track [artist] - [track name]`")
	}

	info, err := b.lastfm.Track().Info(ctx, artist, track, "")
	if err != nil {
		return err
	}

	imageURL := b.resolver.Resolve(ctx, info.Artist, info.Title, images.KindTrack)

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎵 *%s*\n", info.Title)
	fmt.Fprintf(&sb, "🎤 *Artist:* %s\n", info.Artist)
	if info.Album != nil {
		fmt.Fprintf(&sb, "💿 *Album:* %s\n", info.Album.Title)
		if imageURL == "" {
			imageURL = images.Fallback(info.Album.Images)
		}
	}
	fmt.Fprintf(&sb, "\n📈 *Scrobbles (all users):* %s\n", countPrinter.Sprintf("%d", info.Playcount))
	fmt.Fprintf(&sb, "👥 *Listeners:* %s", countPrinter.Sprintf("%d", info.Listeners))

	b.replyWithPhotoOrText(msg, imageURL, sb.String())
	return nil
}

// displayName picks how a reply refers to its subject: the caller's
// Telegram first name when they asked about themselves, the Last.fm
// username when they named someone else.
func (b *Bot) displayName(msg *tgbotapi.Message, args []string, username string) string {
	if namesExplicitUser(args) {
		return username
	}
	if msg.From.FirstName != "" {
		return msg.From.FirstName
	}
	return username
}
