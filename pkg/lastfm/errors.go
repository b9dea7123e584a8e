package lastfm

import (
	"errors"
	"fmt"
	"strings"
)

// Error represents a Last.fm API error.
//
// The Error type provides structured error information including
// the Last.fm error code and message.
type Error struct {
	Code    int    // Last.fm error code
	Message string // Error message from Last.fm
}

// Error returns the error message.
func (e *Error) Error() string {
	return fmt.Sprintf("lastfm: error %d: %s", e.Code, e.Message)
}

// Is checks if the target error is a Last.fm error.
//
// This allows errors.Is() to work with *Error types.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Common Last.fm error codes.
const (
	ErrCodeInvalidService       = 2
	ErrCodeInvalidMethod        = 3
	ErrCodeAuthenticationFailed = 4
	ErrCodeInvalidFormat        = 5
	ErrCodeInvalidParameters    = 6
	ErrCodeInvalidResourceSpec  = 7
	ErrCodeOperationFailed      = 8
	ErrCodeInvalidSessionKey    = 9
	ErrCodeInvalidAPIKey        = 10
	ErrCodeServiceOffline       = 11
	ErrCodeSubscribersOnly      = 12
	ErrCodeInvalidSignature     = 13
	ErrCodeUnauthorizedToken    = 14
	ErrCodeExpiredToken         = 15
	ErrCodeTempUnavailable      = 16
	ErrCodeRateLimitExceeded    = 29
)

// NotFoundKind identifies which entity a missing-entity error refers to.
type NotFoundKind int

const (
	NotFoundNone NotFoundKind = iota
	NotFoundUser
	NotFoundArtist
	NotFoundAlbum
	NotFoundTrack
)

// NotFound classifies err as a missing-entity error.
//
// Last.fm signals missing users, artists, albums and tracks with error
// code 6 and a human-readable message naming the entity kind. The kind
// is recovered by substring match on the lowercased message, matching
// the wording the API has used for years. Returns NotFoundNone for any
// other error, including nil.
func NotFound(err error) NotFoundKind {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return NotFoundNone
	}

	msg := strings.ToLower(apiErr.Message)
	switch {
	case strings.Contains(msg, "user not found"):
		return NotFoundUser
	case strings.Contains(msg, "artist not found"):
		return NotFoundArtist
	case strings.Contains(msg, "album not found"):
		return NotFoundAlbum
	case strings.Contains(msg, "track not found"):
		return NotFoundTrack
	}
	return NotFoundNone
}
