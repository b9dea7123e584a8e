package bot

import (
	"strings"

	"github.com/lastgram/lastgram/pkg/lastfm"
)

// parseUserAndPeriod extracts a target username and reporting period
// from command arguments.
//
// If the last argument matches the period enumeration it is consumed
// as the period; any remaining arguments are joined with spaces and
// override the saved username. With no arguments the saved username is
// used, which may be empty.
func parseUserAndPeriod(args []string, saved string) (string, lastfm.Period) {
	username := saved
	period := lastfm.DefaultPeriod

	if len(args) > 0 {
		if p, ok := lastfm.ParsePeriod(args[len(args)-1]); ok {
			period = p
			args = args[:len(args)-1]
		}
		if len(args) > 0 {
			username = strings.Join(args, " ")
		}
	}

	return username, period
}

// namesExplicitUser reports whether args contain a username once the
// optional trailing period token is stripped. Replies attribute
// results to the caller's display name only when they asked about
// themselves.
func namesExplicitUser(args []string) bool {
	if len(args) == 0 {
		return false
	}
	if _, ok := lastfm.ParsePeriod(args[len(args)-1]); ok {
		return len(args) > 1
	}
	return true
}

// parseArtistItem splits an "Artist - Item" query on the first
// occurrence of " - ". Both halves are trimmed. Absence of the
// delimiter is a parse failure, not an empty result.
func parseArtistItem(args []string) (artist, item string, ok bool) {
	query := strings.Join(args, " ")
	idx := strings.Index(query, " - ")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(query[:idx]), strings.TrimSpace(query[idx+3:]), true
}
