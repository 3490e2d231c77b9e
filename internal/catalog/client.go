// Package catalog fetches the published mod catalog and keeps the current
// snapshot of it.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/steviee/ytinu/internal/model"
)

const (
	// DefaultURL is the published catalog document.
	DefaultURL = "https://raw.githubusercontent.com/ytinu-mods/meta/master/meta.json"

	// DefaultGameModsURL is the directory holding one <game>.json per game.
	DefaultGameModsURL = "https://raw.githubusercontent.com/ytinu-mods/meta/master/games/"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxSize caps a single catalog document.
	DefaultMaxSize int64 = 8 << 20

	// DefaultRateLimit is the number of requests allowed per minute.
	DefaultRateLimit = 60

	// UserAgent is the user agent string sent with catalog requests.
	UserAgent = "ytinu/dev (https://github.com/steviee/ytinu)"
)

// Fetcher retrieves catalog documents.
type Fetcher interface {
	FetchMetadata(ctx context.Context) (*model.Metadata, error)
	FetchGameMods(ctx context.Context, gameID string) (map[string]model.Mod, error)
}

// Config holds client configuration.
type Config struct {
	URL         string
	GameModsURL string
	Timeout     time.Duration
	UserAgent   string
	MaxSize     int64
	// RateLimit is requests per minute.
	RateLimit int
	// AppVersion is compared against the catalog version to set Metadata.Update.
	AppVersion string
}

// Client is a catalog HTTP client.
type Client struct {
	url         string
	gameModsURL string
	maxSize     int64
	appVersion  string
	http        *resty.Client
	rateLimiter *RateLimiter
}

var _ Fetcher = (*Client)(nil)

// NewClient creates a new catalog client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = &Config{}
	}
	cfg := *config

	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.GameModsURL == "" {
		cfg.GameModsURL = DefaultGameModsURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = UserAgent
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}

	zap.S().Debugw("Creating catalog client",
		zap.String("url", cfg.URL),
		zap.String("game_mods_url", cfg.GameModsURL),
		zap.Duration("timeout", cfg.Timeout))

	c := &Client{
		url:         cfg.URL,
		gameModsURL: cfg.GameModsURL,
		maxSize:     cfg.MaxSize,
		appVersion:  cfg.AppVersion,
		rateLimiter: NewRateLimiter(cfg.RateLimit, time.Minute),
	}

	c.http = resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json").
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			if err := c.rateLimiter.Wait(req.Context()); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}
			return nil
		})

	return c
}

// GameModsURL returns the document URL listing the mods of gameID.
func (c *Client) GameModsURL(gameID string) string {
	return strings.TrimSuffix(c.gameModsURL, "/") + "/" + gameID + ".json"
}

// FetchMetadata downloads and parses the catalog document.
func (c *Client) FetchMetadata(ctx context.Context) (*model.Metadata, error) {
	data, err := c.Fetch(ctx, c.url)
	if err != nil {
		return nil, err
	}

	meta, err := model.ParseCatalog(data, c.appVersion)
	if err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	zap.S().Debugw("Catalog fetched",
		zap.String("version", meta.Version),
		zap.Int("games", len(meta.Games)),
		zap.Int("mods", len(meta.Mods)),
		zap.Bool("update", meta.Update))

	return meta, nil
}

// FetchGameMods downloads and parses the mod listing of one game.
func (c *Client) FetchGameMods(ctx context.Context, gameID string) (map[string]model.Mod, error) {
	if gameID == "" || strings.ContainsAny(gameID, "/\\?#") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGameID, gameID)
	}

	data, err := c.Fetch(ctx, c.GameModsURL(gameID))
	if err != nil {
		return nil, err
	}

	mods, err := model.ParseGameMods(data)
	if err != nil {
		return nil, fmt.Errorf("parse mods of game %s: %w", gameID, err)
	}
	return mods, nil
}

// Fetch performs a rate limited GET of url and returns the body, which is
// capped at the configured maximum size.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	zap.S().Debugw("Catalog request", zap.String("url", url))

	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	body := resp.RawBody()
	if body == nil {
		return nil, NewAPIError(resp.StatusCode(), resp.Status(), url)
	}
	defer func() {
		_ = body.Close()
	}()

	c.rateLimiter.UpdateFromHeaders(resp.Header())

	if err := checkResponse(resp, url); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(body, c.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(data)) > c.maxSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrResponseTooLarge, url, c.maxSize)
	}

	return data, nil
}

// checkResponse maps a non-2xx response onto the package errors.
func checkResponse(resp *resty.Response, url string) error {
	code := resp.StatusCode()
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrCatalogNotFound, url)
	case code == http.StatusTooManyRequests:
		return ErrRateLimitExceeded
	default:
		return NewAPIError(code, resp.Status(), url)
	}
}
