// Package lastfm provides a read-only client for the Last.fm API 2.0.
//
// This package implements the subset of the Last.fm API that lastgram
// needs: user listening history, top lists, and artist/album/track
// metadata. It is designed to be usable as a standalone SDK.
//
// Example usage:
//
//	import "github.com/lastgram/lastgram/pkg/lastfm"
//
//	client, err := lastfm.NewClient(lastfm.Config{
//	    APIKey:    "your-api-key",
//	    APISecret: "your-api-secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	np, err := client.User().NowPlaying(ctx, "RjDj")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if np != nil {
//	    fmt.Println(np.Artist, "-", np.Track)
//	}
//
// API errors are returned as *Error values carrying the Last.fm error
// code and message. Use NotFound to classify missing-entity errors.
package lastfm
