package lastfm

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"
)

// UserService provides queries scoped to a Last.fm user.
type UserService struct {
	client *Client
}

// imageXML is the wire form of an artwork entry.
type imageXML struct {
	Size string `xml:"size,attr"`
	URL  string `xml:",chardata"`
}

func toImages(in []imageXML) []Image {
	if len(in) == 0 {
		return nil
	}
	out := make([]Image, len(in))
	for i, img := range in {
		out[i] = Image{Size: img.Size, URL: img.URL}
	}
	return out
}

// recentTracksResponse represents the XML response from user.getRecentTracks.
type recentTracksResponse struct {
	Tracks []struct {
		NowPlaying string     `xml:"nowplaying,attr"`
		Artist     string     `xml:"artist"`
		Name       string     `xml:"name"`
		Album      string     `xml:"album"`
		Images     []imageXML `xml:"image"`
		Date       struct {
			UTS string `xml:"uts,attr"`
		} `xml:"date"`
	} `xml:"recenttracks>track"`
}

// NowPlaying returns the track user is currently listening to, or nil
// if Last.fm reports no current play.
func (s *UserService) NowPlaying(ctx context.Context, user string) (*NowPlaying, error) {
	params := map[string]string{
		"user":  user,
		"limit": "1",
	}

	resp, err := s.client.call(ctx, "user.getRecentTracks", params)
	if err != nil {
		return nil, err
	}

	var parsed recentTracksResponse
	if err := unmarshalWrapped(resp, &parsed); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse recent tracks response: %w", err)
	}

	if len(parsed.Tracks) == 0 || parsed.Tracks[0].NowPlaying != "true" {
		return nil, nil
	}

	t := parsed.Tracks[0]
	return &NowPlaying{
		Artist: t.Artist,
		Track:  t.Name,
		Album:  t.Album,
		Images: toImages(t.Images),
	}, nil
}

// RecentTracks returns up to limit completed plays, most recent first.
// The in-progress track, if any, is not included.
func (s *UserService) RecentTracks(ctx context.Context, user string, limit int) ([]RecentTrack, error) {
	params := map[string]string{
		"user":  user,
		"limit": strconv.Itoa(limit),
	}

	resp, err := s.client.call(ctx, "user.getRecentTracks", params)
	if err != nil {
		return nil, err
	}

	var parsed recentTracksResponse
	if err := unmarshalWrapped(resp, &parsed); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse recent tracks response: %w", err)
	}

	var tracks []RecentTrack
	for _, t := range parsed.Tracks {
		// A now-playing entry has no timestamp and is not a completed play.
		if t.NowPlaying == "true" || t.Date.UTS == "" {
			continue
		}
		uts, err := strconv.ParseInt(t.Date.UTS, 10, 64)
		if err != nil {
			continue
		}
		tracks = append(tracks, RecentTrack{
			Artist:   t.Artist,
			Track:    t.Name,
			Album:    t.Album,
			PlayedAt: time.Unix(uts, 0).UTC(),
			Images:   toImages(t.Images),
		})
		if len(tracks) == limit {
			break
		}
	}

	return tracks, nil
}

// topListResponse covers user.getTopArtists, user.getTopAlbums and
// user.getTopTracks, which share one shape modulo element names.
type topListResponse struct {
	Artists []topItemXML `xml:"topartists>artist"`
	Albums  []topItemXML `xml:"topalbums>album"`
	Tracks  []topItemXML `xml:"toptracks>track"`
}

type topItemXML struct {
	Rank      string `xml:"rank,attr"`
	Name      string `xml:"name"`
	Playcount string `xml:"playcount"`
	Artist    struct {
		Name string `xml:"name"`
	} `xml:"artist"`
}

// TopArtists returns the user's top artists for the period.
func (s *UserService) TopArtists(ctx context.Context, user string, period Period, limit int) ([]TopEntry, error) {
	return s.topList(ctx, "user.getTopArtists", user, period, limit)
}

// TopAlbums returns the user's top albums for the period.
func (s *UserService) TopAlbums(ctx context.Context, user string, period Period, limit int) ([]TopEntry, error) {
	return s.topList(ctx, "user.getTopAlbums", user, period, limit)
}

// TopTracks returns the user's top tracks for the period.
func (s *UserService) TopTracks(ctx context.Context, user string, period Period, limit int) ([]TopEntry, error) {
	return s.topList(ctx, "user.getTopTracks", user, period, limit)
}

func (s *UserService) topList(ctx context.Context, method, user string, period Period, limit int) ([]TopEntry, error) {
	params := map[string]string{
		"user":   user,
		"period": string(period),
		"limit":  strconv.Itoa(limit),
	}

	resp, err := s.client.call(ctx, method, params)
	if err != nil {
		return nil, err
	}

	var parsed topListResponse
	if err := unmarshalWrapped(resp, &parsed); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse top list response: %w", err)
	}

	items := parsed.Artists
	if len(parsed.Albums) > 0 {
		items = parsed.Albums
	}
	if len(parsed.Tracks) > 0 {
		items = parsed.Tracks
	}

	entries := make([]TopEntry, 0, len(items))
	for i, item := range items {
		rank, err := strconv.Atoi(item.Rank)
		if err != nil {
			rank = i + 1
		}
		playcount, _ := strconv.Atoi(item.Playcount)
		entries = append(entries, TopEntry{
			Rank:      rank,
			Name:      item.Name,
			Artist:    item.Artist.Name,
			Playcount: playcount,
		})
	}

	return entries, nil
}

// unmarshalWrapped decodes inner response XML by wrapping it in a root
// element so the standard decoder accepts it.
func unmarshalWrapped(data []byte, v interface{}) error {
	wrapped := []byte("<root>" + string(data) + "</root>")
	return xml.Unmarshal(wrapped, v)
}
