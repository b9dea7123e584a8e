// Package images resolves display artwork for tracks, albums and
// artists, preferring Spotify search results and falling back to
// Last.fm's own artwork tiers.
package images

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/zmb3/spotify/v2"

	"github.com/lastgram/lastgram/internal/worker"
	"github.com/lastgram/lastgram/pkg/lastfm"
)

// Kind tags what entity an artwork lookup is for.
type Kind string

const (
	KindTrack  Kind = "track"
	KindAlbum  Kind = "album"
	KindArtist Kind = "artist"
)

// searcher is the slice of the Spotify client the resolver consumes.
type searcher interface {
	Search(ctx context.Context, query string, t spotify.SearchType, opts ...spotify.RequestOption) (*spotify.SearchResult, error)
}

// Resolver looks up artwork URLs. Lookups never fail: any error is
// logged and reported as "no image", leaving the caller free to fall
// back to Last.fm artwork.
type Resolver struct {
	catalog searcher
	pool    *worker.Pool
	logger  zerolog.Logger
}

// NewResolver creates a Resolver that runs catalog searches on pool.
func NewResolver(catalog searcher, pool *worker.Pool, logger zerolog.Logger) *Resolver {
	return &Resolver{
		catalog: catalog,
		pool:    pool,
		logger:  logger.With().Str("component", "images").Logger(),
	}
}

// Resolve returns an artwork URL for the named entity, or "" when none
// could be found. The blocking catalog search runs on the worker pool
// so it does not stall other in-flight commands.
func (r *Resolver) Resolve(ctx context.Context, artist, item string, kind Kind) string {
	var url string
	r.pool.Do(func() {
		url = r.search(ctx, artist, item, kind)
	})

	if url == "" {
		r.logger.Debug().
			Str("artist", artist).
			Str("item", item).
			Str("kind", string(kind)).
			Msg("No catalog image found")
	}
	return url
}

// Probe issues a minimal search to verify catalog connectivity.
// Used at startup, where a failure is fatal.
func (r *Resolver) Probe(ctx context.Context) error {
	if _, err := r.catalog.Search(ctx, "test", spotify.SearchTypeTrack, spotify.Limit(1)); err != nil {
		return fmt.Errorf("catalog probe failed: %w", err)
	}
	return nil
}

func (r *Resolver) search(ctx context.Context, artist, item string, kind Kind) string {
	query := fmt.Sprintf("artist:%q %s:%q", artist, kind, item)

	var searchType spotify.SearchType
	switch kind {
	case KindTrack:
		searchType = spotify.SearchTypeTrack
	case KindAlbum:
		searchType = spotify.SearchTypeAlbum
	case KindArtist:
		query = fmt.Sprintf("artist:%q", artist)
		searchType = spotify.SearchTypeArtist
	default:
		return ""
	}

	result, err := r.catalog.Search(ctx, query, searchType, spotify.Limit(1))
	if err != nil {
		r.logger.Warn().Err(err).Str("query", query).Msg("Catalog search failed")
		return ""
	}

	switch kind {
	case KindTrack:
		// A track's display image is its containing release's cover.
		if result.Tracks != nil && len(result.Tracks.Tracks) > 0 {
			return firstImage(result.Tracks.Tracks[0].Album.Images)
		}
	case KindAlbum:
		if result.Albums != nil && len(result.Albums.Albums) > 0 {
			return firstImage(result.Albums.Albums[0].Images)
		}
	case KindArtist:
		if result.Artists != nil && len(result.Artists.Artists) > 0 {
			return firstImage(result.Artists.Artists[0].Images)
		}
	}
	return ""
}

// firstImage returns the first image URL; Spotify orders images
// largest first.
func firstImage(images []spotify.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

// Fallback returns the best available Last.fm artwork URL, trying the
// three largest tiers in decreasing order. Returns "" when no tier has
// a usable URL.
func Fallback(images []lastfm.Image) string {
	tiers := []string{lastfm.SizeMega, lastfm.SizeExtraLarge, lastfm.SizeLarge}
	for _, tier := range tiers {
		for _, img := range images {
			if img.Size == tier && img.URL != "" {
				return img.URL
			}
		}
	}
	return ""
}
