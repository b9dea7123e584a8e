package lastfm

import (
	"fmt"
	"net/http"
)

// Config holds client configuration.
type Config struct {
	APIKey     string       // Required: Last.fm API key
	APISecret  string       // Required: Last.fm API secret
	HTTPClient *http.Client // Optional: HTTP client (defaults to http.DefaultClient)
	BaseURL    string       // Optional: Base URL for API (defaults to Last.fm API, used for testing)
	Logger     Logger       // Optional: Logger interface for debug logging
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Client is the main entry point for Last.fm API operations.
type Client struct {
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	baseURL    string
	logger     Logger

	user   *UserService
	artist *ArtistService
	album  *AlbumService
	track  *TrackService
}

const (
	// DefaultBaseURL is the default Last.fm API endpoint.
	DefaultBaseURL = "https://ws.audioscrobbler.com/2.0/"
)

// NewClient creates a new Last.fm API client.
//
// Returns an error if required configuration (APIKey, APISecret) is missing.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("lastfm: APIKey is required")
	}
	if cfg.APISecret == "" {
		return nil, fmt.Errorf("lastfm: APISecret is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     cfg.Logger,
	}

	c.user = &UserService{client: c}
	c.artist = &ArtistService{client: c}
	c.album = &AlbumService{client: c}
	c.track = &TrackService{client: c}

	return c, nil
}

// User returns the service for user-scoped queries.
func (c *Client) User() *UserService {
	return c.user
}

// Artist returns the service for artist metadata queries.
func (c *Client) Artist() *ArtistService {
	return c.artist
}

// Album returns the service for album metadata queries.
func (c *Client) Album() *AlbumService {
	return c.album
}

// Track returns the service for track metadata queries.
func (c *Client) Track() *TrackService {
	return c.track
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
