package lastfm

import (
	"context"
	"fmt"
	"strconv"
)

// ArtistService provides artist metadata queries.
type ArtistService struct {
	client *Client
}

// AlbumService provides album metadata queries.
type AlbumService struct {
	client *Client
}

// TrackService provides track metadata queries.
type TrackService struct {
	client *Client
}

// artistInfoResponse represents the XML response from artist.getInfo.
type artistInfoResponse struct {
	Name   string     `xml:"artist>name"`
	Images []imageXML `xml:"artist>image"`
	Stats  struct {
		Listeners string `xml:"listeners"`
		Playcount string `xml:"playcount"`
	} `xml:"artist>stats"`
	Bio struct {
		Summary string `xml:"summary"`
	} `xml:"artist>bio"`
}

// Info returns global metadata for the named artist.
func (s *ArtistService) Info(ctx context.Context, artist string) (*ArtistInfo, error) {
	params := map[string]string{
		"artist": artist,
	}

	resp, err := s.client.call(ctx, "artist.getInfo", params)
	if err != nil {
		return nil, err
	}

	var parsed artistInfoResponse
	if err := unmarshalWrapped(resp, &parsed); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse artist info response: %w", err)
	}

	playcount, _ := strconv.Atoi(parsed.Stats.Playcount)
	listeners, _ := strconv.Atoi(parsed.Stats.Listeners)

	return &ArtistInfo{
		Name:      parsed.Name,
		Playcount: playcount,
		Listeners: listeners,
		Summary:   parsed.Bio.Summary,
		Images:    toImages(parsed.Images),
	}, nil
}

// topTagsResponse represents the XML response from artist.getTopTags.
type topTagsResponse struct {
	Tags []struct {
		Name  string `xml:"name"`
		Count string `xml:"count"`
	} `xml:"toptags>tag"`
}

// TopTags returns up to limit tags for the artist, most applied first.
// The API method has no limit parameter, so the list is cut client-side.
func (s *ArtistService) TopTags(ctx context.Context, artist string, limit int) ([]Tag, error) {
	params := map[string]string{
		"artist": artist,
	}

	resp, err := s.client.call(ctx, "artist.getTopTags", params)
	if err != nil {
		return nil, err
	}

	var parsed topTagsResponse
	if err := unmarshalWrapped(resp, &parsed); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse top tags response: %w", err)
	}

	tags := make([]Tag, 0, limit)
	for _, t := range parsed.Tags {
		count, _ := strconv.Atoi(t.Count)
		tags = append(tags, Tag{Name: t.Name, Count: count})
		if len(tags) == limit {
			break
		}
	}

	return tags, nil
}

// albumInfoResponse represents the XML response from album.getInfo.
type albumInfoResponse struct {
	Name      string     `xml:"album>name"`
	Artist    string     `xml:"album>artist"`
	Listeners string     `xml:"album>listeners"`
	Playcount string     `xml:"album>playcount"`
	Images    []imageXML `xml:"album>image"`
}

// Info returns global metadata for the named album.
func (s *AlbumService) Info(ctx context.Context, artist, album string) (*AlbumInfo, error) {
	params := map[string]string{
		"artist": artist,
		"album":  album,
	}

	resp, err := s.client.call(ctx, "album.getInfo", params)
	if err != nil {
		return nil, err
	}

	var parsed albumInfoResponse
	if err := unmarshalWrapped(resp, &parsed); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse album info response: %w", err)
	}

	playcount, _ := strconv.Atoi(parsed.Playcount)
	listeners, _ := strconv.Atoi(parsed.Listeners)

	return &AlbumInfo{
		Artist:    parsed.Artist,
		Title:     parsed.Name,
		Playcount: playcount,
		Listeners: listeners,
		Images:    toImages(parsed.Images),
	}, nil
}

// trackInfoResponse represents the XML response from track.getInfo.
type trackInfoResponse struct {
	Name      string `xml:"track>name"`
	Listeners string `xml:"track>listeners"`
	Playcount string `xml:"track>playcount"`
	Artist    struct {
		Name string `xml:"name"`
	} `xml:"track>artist"`
	Album *struct {
		Title  string     `xml:"title"`
		Images []imageXML `xml:"image"`
	} `xml:"track>album"`
	UserPlaycount string `xml:"track>userplaycount"`
}

// Info returns global metadata for the named track. When user is
// non-empty the response additionally carries that user's playcount
// for the track.
func (s *TrackService) Info(ctx context.Context, artist, track, user string) (*TrackInfo, error) {
	params := map[string]string{
		"artist": artist,
		"track":  track,
	}
	if user != "" {
		params["username"] = user
	}

	resp, err := s.client.call(ctx, "track.getInfo", params)
	if err != nil {
		return nil, err
	}

	var parsed trackInfoResponse
	if err := unmarshalWrapped(resp, &parsed); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse track info response: %w", err)
	}

	playcount, _ := strconv.Atoi(parsed.Playcount)
	listeners, _ := strconv.Atoi(parsed.Listeners)
	userPlaycount, _ := strconv.Atoi(parsed.UserPlaycount)

	info := &TrackInfo{
		Artist:        parsed.Artist.Name,
		Title:         parsed.Name,
		Playcount:     playcount,
		Listeners:     listeners,
		UserPlaycount: userPlaycount,
	}
	if parsed.Album != nil {
		info.Album = &TrackAlbum{
			Title:  parsed.Album.Title,
			Images: toImages(parsed.Album.Images),
		}
	}

	return info, nil
}
