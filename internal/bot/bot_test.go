package bot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/lastgram/lastgram/internal/images"
	"github.com/lastgram/lastgram/internal/store"
	"github.com/lastgram/lastgram/internal/worker"
	"github.com/lastgram/lastgram/pkg/lastfm"
)

// fakeSender records every successfully sent Chattable. An optional
// fail hook lets tests reject individual sends.
type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
	fail func(c tgbotapi.Chattable) error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		if err := f.fail(c); err != nil {
			return tgbotapi.Message{}, err
		}
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) texts(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.PhotoConfig:
			out = append(out, m.Caption)
		default:
			t.Fatalf("unexpected chattable type %T", c)
		}
	}
	return out
}

func (f *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	texts := f.texts(t)
	if len(texts) == 0 {
		t.Fatal("no messages sent")
	}
	return texts[len(texts)-1]
}

type stubResolver struct {
	url string
}

func (s stubResolver) Resolve(ctx context.Context, artist, item string, kind images.Kind) string {
	return s.url
}

func okXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><lfm status="ok">` + body + `</lfm>`
}

func failXML(code int, message string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?><lfm status="failed"><error code="%d">%s</error></lfm>`, code, message)
}

// newTestBot wires a Bot against an in-process Last.fm server, a
// temp-dir store and a no-op image resolver.
func newTestBot(t *testing.T, sender *fakeSender, lfmHandler http.HandlerFunc) *Bot {
	t.Helper()

	srv := httptest.NewServer(lfmHandler)
	t.Cleanup(srv.Close)

	client, err := lastfm.NewClient(lastfm.Config{
		APIKey:    "test-key",
		APISecret: "test-secret",
		BaseURL:   srv.URL,
	})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	st, err := store.Open(filepath.Join(t.TempDir(), "bot.db"))
	if err != nil {
		t.Fatalf("store.Open() error: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	pool := worker.NewPool(2)
	t.Cleanup(pool.Close)

	return New(Config{
		API:      sender,
		LastFM:   client,
		Resolver: stubResolver{},
		Store:    st,
		Pool:     pool,
		Location: time.UTC,
		Logger:   zerolog.Nop(),
	})
}

// command builds an inbound Telegram message, attaching the
// bot_command entity when text starts with a slash.
func command(text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: 42, FirstName: "Ana", UserName: "ana"},
		Chat:      &tgbotapi.Chat{ID: 100},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		length := len(text)
		if i := strings.Index(text, " "); i >= 0 {
			length = i
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	}
	return msg
}

func TestUnknownCommandReply(t *testing.T) {
	sender := &fakeSender{}
	b := newTestBot(t, sender, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected Last.fm call")
	})

	b.HandleMessage(context.Background(), command("/frobnicate"))

	if got := sender.lastText(t); !strings.Contains(got, "didn't understand") {
		t.Errorf("reply = %q, want unknown-command text", got)
	}
}

func TestNonCommandTextReply(t *testing.T) {
	sender := &fakeSender{}
	b := newTestBot(t, sender, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected Last.fm call")
	})

	b.HandleMessage(context.Background(), command("hello there"))

	if got := sender.lastText(t); !strings.Contains(got, "only respond to commands") {
		t.Errorf("reply = %q, want catch-all text", got)
	}
}

func TestSetSavesUsername(t *testing.T) {
	sender := &fakeSender{}
	b := newTestBot(t, sender, nil)

	b.HandleMessage(context.Background(), command("/set RjDj"))

	if got := sender.lastText(t); !strings.Contains(got, "saved as: RjDj") {
		t.Errorf("reply = %q, want confirmation", got)
	}
	saved, err := b.store.Prefs().Username(context.Background(), 42)
	if err != nil {
		t.Fatalf("Username() error: %v", err)
	}
	if saved != "RjDj" {
		t.Errorf("stored username = %q, want RjDj", saved)
	}
}

func TestSetWithoutArgumentPrompts(t *testing.T) {
	sender := &fakeSender{}
	b := newTestBot(t, sender, nil)

	b.HandleMessage(context.Background(), command("/set"))

	if got := sender.lastText(t); !strings.Contains(got, "provide your Last.fm username") {
		t.Errorf("reply = %q, want usage text", got)
	}
}

func TestNowPlayingWithoutUsernamePrompts(t *testing.T) {
	sender := &fakeSender{}
	b := newTestBot(t, sender, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected Last.fm call")
	})

	b.HandleMessage(context.Background(), command("/np"))

	if got := sender.lastText(t); !strings.Contains(got, "/set") {
		t.Errorf("reply = %q, want prompt to save a username", got)
	}
}

func TestNowPlayingComposesReply(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		switch r.FormValue("method") {
		case "user.getRecentTracks":
			fmt.Fprint(w, okXML(`<recenttracks user="rjdj"><track nowplaying="true"><artist>Pink Floyd</artist><name>Money</name><album>The Dark Side of the Moon</album></track></recenttracks>`))
		case "track.getInfo":
			fmt.Fprint(w, okXML(`<track><name>Money</name><artist><name>Pink Floyd</name></artist><listeners>100</listeners><playcount>5000</playcount><userplaycount>1234</userplaycount></track>`))
		default:
			t.Errorf("unexpected method %q", r.FormValue("method"))
		}
	}
	sender := &fakeSender{}
	b := newTestBot(t, sender, handler)

	b.HandleMessage(context.Background(), command("/np rjdj"))

	got := sender.lastText(t)
	for _, want := range []string{"*rjdj* is listening to", "*Track:* Money", "*Artist:* Pink Floyd", "*Album:* The Dark Side of the Moon", "*Scrobbles:* 1,234"} {
		if !strings.Contains(got, want) {
			t.Errorf("reply %q missing %q", got, want)
		}
	}
}

func TestNowPlayingUsesFirstNameForSelf(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		switch r.FormValue("method") {
		case "user.getRecentTracks":
			fmt.Fprint(w, okXML(`<recenttracks><track nowplaying="true"><artist>Björk</artist><name>Army of Me</name><album></album></track></recenttracks>`))
		case "track.getInfo":
			fmt.Fprint(w, okXML(`<track><name>Army of Me</name><artist><name>Björk</name></artist><playcount>1</playcount><listeners>1</listeners><userplaycount>3</userplaycount></track>`))
		}
	}
	sender := &fakeSender{}
	b := newTestBot(t, sender, handler)
	if err := b.store.Prefs().SetUsername(context.Background(), 42, "rjdj"); err != nil {
		t.Fatal(err)
	}

	b.HandleMessage(context.Background(), command("/np"))

	if got := sender.lastText(t); !strings.Contains(got, "*Ana* is listening to") {
		t.Errorf("reply = %q, want caller's first name", got)
	}
}

func TestNowPlayingIdle(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, okXML(`<recenttracks><track><artist>Old</artist><name>Play</name><date uts="1700000000">x</date></track></recenttracks>`))
	}
	sender := &fakeSender{}
	b := newTestBot(t, sender, handler)

	b.HandleMessage(context.Background(), command("/np rjdj"))

	if got := sender.lastText(t); !strings.Contains(got, "not listening to anything right now") {
		t.Errorf("reply = %q, want idle message", got)
	}
}

func TestRecentFormatsHistory(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, okXML(`<recenttracks>`+
			`<track><artist>Pink Floyd</artist><name>Money</name><date uts="86400">x</date></track>`+
			`<track><artist>Björk</artist><name>Jóga</name><date uts="90000">x</date></track>`+
			`</recenttracks>`))
	}
	sender := &fakeSender{}
	b := newTestBot(t, sender, handler)

	b.HandleMessage(context.Background(), command("/recent rjdj"))

	got := sender.lastText(t)
	if !strings.Contains(got, "Last 10 tracks for rjdj") {
		t.Errorf("reply %q missing header", got)
	}
	// uts 86400 is 1970-01-02 00:00 UTC. Artist comes first, bolded.
	if !strings.Contains(got, "• `02/01 00:00`: *Pink Floyd* - Money") {
		t.Errorf("reply %q missing formatted line", got)
	}
	if !strings.Contains(got, "• `02/01 01:00`: *Björk* - Jóga") {
		t.Errorf("reply %q missing second line", got)
	}
}

func TestTopArtistsRendersRankedList(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if got := r.FormValue("period"); got != "overall" {
			t.Errorf("period = %q, want overall", got)
		}
		fmt.Fprint(w, okXML(`<topartists>`+
			`<artist rank="1"><name>Pink Floyd</name><playcount>3000</playcount></artist>`+
			`<artist rank="2"><name>Björk</name><playcount>2000</playcount></artist>`+
			`</topartists>`))
	}
	sender := &fakeSender{}
	b := newTestBot(t, sender, handler)

	b.HandleMessage(context.Background(), command("/topartists rjdj overall"))

	got := sender.lastText(t)
	if !strings.Contains(got, "Top 2 artists for rjdj* (overall)") {
		t.Errorf("reply %q missing header", got)
	}
	if !strings.Contains(got, "*1.* Pink Floyd `(3000 scrobbles)`") {
		t.Errorf("reply %q missing ranked line", got)
	}
}

func TestTopAlbumsEmptyPeriod(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, okXML(`<topalbums></topalbums>`))
	}
	sender := &fakeSender{}
	b := newTestBot(t, sender, handler)

	b.HandleMessage(context.Background(), command("/topalbums rjdj 3month"))

	if got := sender.lastText(t); !strings.Contains(got, "has no top albums for period '3month'") {
		t.Errorf("reply = %q, want empty-period message", got)
	}
}

func TestArtistRequiresSavedUsername(t *testing.T) {
	sender := &fakeSender{}
	b := newTestBot(t, sender, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected Last.fm call")
	})

	b.HandleMessage(context.Background(), command("/artist Pink Floyd"))

	if got := sender.lastText(t); !strings.Contains(got, "/set") {
		t.Errorf("reply = %q, want prompt to save a username", got)
	}
}

func TestArtistScansOwnTopChart(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		switch r.FormValue("method") {
		case "artist.getInfo":
			fmt.Fprint(w, okXML(`<artist><name>Pink Floyd</name><stats><listeners>1</listeners><playcount>2</playcount></stats></artist>`))
		case "user.getTopArtists":
			if got := r.FormValue("limit"); got != "50" {
				t.Errorf("limit = %q, want 50", got)
			}
			fmt.Fprint(w, okXML(`<topartists>`+
				`<artist rank="1"><name>Björk</name><playcount>9000</playcount></artist>`+
				`<artist rank="2"><name>pink floyd</name><playcount>4321</playcount></artist>`+
				`</topartists>`))
		case "artist.getTopTags":
			fmt.Fprint(w, okXML(`<toptags><tag><name>progressive rock</name><count>100</count></tag><tag><name>rock</name><count>90</count></tag></toptags>`))
		default:
			t.Errorf("unexpected method %q", r.FormValue("method"))
		}
	}
	sender := &fakeSender{}
	b := newTestBot(t, sender, handler)
	if err := b.store.Prefs().SetUsername(context.Background(), 42, "rjdj"); err != nil {
		t.Fatal(err)
	}

	b.HandleMessage(context.Background(), command("/artist Pink Floyd"))

	got := sender.lastText(t)
	if !strings.Contains(got, "*Your scrobbles:* 4,321") {
		t.Errorf("reply %q missing case-insensitive chart match", got)
	}
	if !strings.Contains(got, "*Tags:* progressive rock, rock") {
		t.Errorf("reply %q missing tags", got)
	}
}

func TestArtistOutsideChartReadsZero(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		switch r.FormValue("method") {
		case "artist.getInfo":
			fmt.Fprint(w, okXML(`<artist><name>Obscure Act</name></artist>`))
		case "user.getTopArtists":
			fmt.Fprint(w, okXML(`<topartists><artist rank="1"><name>Björk</name><playcount>10</playcount></artist></topartists>`))
		case "artist.getTopTags":
			fmt.Fprint(w, okXML(`<toptags></toptags>`))
		}
	}
	sender := &fakeSender{}
	b := newTestBot(t, sender, handler)
	if err := b.store.Prefs().SetUsername(context.Background(), 42, "rjdj"); err != nil {
		t.Fatal(err)
	}

	b.HandleMessage(context.Background(), command("/artist Obscure Act"))

	got := sender.lastText(t)
	if !strings.Contains(got, "*Your scrobbles:* 0") {
		t.Errorf("reply %q, want zero scrobbles", got)
	}
	if !strings.Contains(got, "*Tags:* No tags found") {
		t.Errorf("reply %q, want no-tags fallback", got)
	}
}

func TestAlbumInfoReply(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if got := r.FormValue("album"); got != "The Wall" {
			t.Errorf("album param = %q, want The Wall", got)
		}
		fmt.Fprint(w, okXML(`<album><name>The Wall</name><artist>Pink Floyd</artist><listeners>500</listeners><playcount>1234567</playcount></album>`))
	}
	sender := &fakeSender{}
	b := newTestBot(t, sender, handler)

	b.HandleMessage(context.Background(), command("/album Pink Floyd - The Wall"))

	got := sender.lastText(t)
	if !strings.Contains(got, "💿 *The Wall*") || !strings.Contains(got, "*Scrobbles (all users):* 1,234,567") {
		t.Errorf("reply = %q, want album info with separators", got)
	}
}

func TestAlbumBadFormatPrompts(t *testing.T) {
	sender := &fakeSender{}
	b := newTestBot(t, sender, nil)

	b.HandleMessage(context.Background(), command("/album The Wall"))

	if got := sender.lastText(t); !strings.Contains(got, "`/album [artist] - [album name]`") {
		t.Errorf("reply = %q, want format help", got)
	}
}

func TestTrackInfoReply(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if got := r.FormValue("username"); got != "" {
			t.Errorf("username param = %q, want empty for global lookup", got)
		}
		fmt.Fprint(w, okXML(`<track><name>Money</name><listeners>77000</listeners><playcount>900000</playcount><artist><name>Pink Floyd</name></artist><album><title>The Dark Side of the Moon</title></album></track>`))
	}
	sender := &fakeSender{}
	b := newTestBot(t, sender, handler)

	b.HandleMessage(context.Background(), command("/track Pink Floyd - Money"))

	got := sender.lastText(t)
	for _, want := range []string{"🎵 *Money*", "*Album:* The Dark Side of the Moon", "*Scrobbles (all users):* 900,000", "*Listeners:* 77,000"} {
		if !strings.Contains(got, want) {
			t.Errorf("reply %q missing %q", got, want)
		}
	}
}

func TestUserNotFoundTranslated(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, failXML(6, "User not found"))
	}
	sender := &fakeSender{}
	b := newTestBot(t, sender, handler)

	b.HandleMessage(context.Background(), command("/recent ghost"))

	if got := sender.lastText(t); got != "❌ Couldn't find user 'ghost' on Last.fm." {
		t.Errorf("reply = %q, want user-not-found message", got)
	}
}

func TestArtistNotFoundTranslated(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, failXML(6, "Artist not found"))
	}
	sender := &fakeSender{}
	b := newTestBot(t, sender, handler)
	if err := b.store.Prefs().SetUsername(context.Background(), 42, "rjdj"); err != nil {
		t.Fatal(err)
	}

	b.HandleMessage(context.Background(), command("/artist Nobody Here"))

	if got := sender.lastText(t); got != "❌ Couldn't find artist 'Nobody Here'." {
		t.Errorf("reply = %q, want artist-not-found message", got)
	}
}

func TestAlbumNotFoundMentionsFormat(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, failXML(6, "Album not found"))
	}
	sender := &fakeSender{}
	b := newTestBot(t, sender, handler)

	b.HandleMessage(context.Background(), command("/album Foo - Bar"))

	got := sender.lastText(t)
	if !strings.Contains(got, "Couldn't find: 'Foo - Bar'") || !strings.Contains(got, "Artist - Item") {
		t.Errorf("reply = %q, want not-found with format reminder", got)
	}
}

func TestUnexpectedErrorApology(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}
	sender := &fakeSender{}
	b := newTestBot(t, sender, handler)

	b.HandleMessage(context.Background(), command("/recent rjdj"))

	if got := sender.lastText(t); !strings.Contains(got, "unexpected error") {
		t.Errorf("reply = %q, want generic apology", got)
	}
}

func TestAPIErrorSurfacesMessage(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, failXML(11, "Service Offline - This service is temporarily offline"))
	}
	sender := &fakeSender{}
	b := newTestBot(t, sender, handler)

	b.HandleMessage(context.Background(), command("/recent rjdj"))

	if got := sender.lastText(t); !strings.Contains(got, "A Last.fm error occurred: Service Offline") {
		t.Errorf("reply = %q, want API error message", got)
	}
}
