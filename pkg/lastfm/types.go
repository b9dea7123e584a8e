package lastfm

import (
	"time"
)

// Artwork size tiers used by the Last.fm API, largest first.
const (
	SizeMega       = "mega"
	SizeExtraLarge = "extralarge"
	SizeLarge      = "large"
	SizeMedium     = "medium"
	SizeSmall      = "small"
)

// Image is a single artwork URL at a named size tier.
type Image struct {
	Size string
	URL  string
}

// NowPlaying is the track a user is currently listening to.
type NowPlaying struct {
	Artist string
	Track  string
	Album  string // Empty if Last.fm has no album for the play
	Images []Image
}

// RecentTrack is a single entry of a user's listening history.
type RecentTrack struct {
	Artist   string
	Track    string
	Album    string
	PlayedAt time.Time
	Images   []Image
}

// TopEntry is one ranked entry of a top-artists/albums/tracks list.
//
// Artist is empty for top-artist entries, where Name already holds
// the artist name.
type TopEntry struct {
	Rank      int
	Name      string
	Artist    string
	Playcount int
}

// Tag is a single Last.fm tag with its weight.
type Tag struct {
	Name  string
	Count int
}

// ArtistInfo is global metadata for an artist.
type ArtistInfo struct {
	Name      string
	Playcount int
	Listeners int
	Summary   string
	Images    []Image
}

// AlbumInfo is global metadata for an album.
type AlbumInfo struct {
	Artist    string
	Title     string
	Playcount int
	Listeners int
	Images    []Image
}

// TrackAlbum is the album a track belongs to, as reported by track.getInfo.
type TrackAlbum struct {
	Title  string
	Images []Image
}

// TrackInfo is global metadata for a track, plus the per-user playcount
// when the lookup was scoped to a username.
type TrackInfo struct {
	Artist        string
	Title         string
	Playcount     int
	Listeners     int
	UserPlaycount int
	Album         *TrackAlbum // nil when Last.fm knows no album for the track
}
