// Package quickerstat extracts profile data and shared-action statistics
// from GetQuicker user pages.
//
// The site gates user pages behind a same-origin navigation check: requests
// arriving from the share portal succeed while direct requests answer 404.
// Every fetch made by this package carries the share-portal referer, so no
// login is needed for public pages; cookie options exist for sessions that
// have one.
package quickerstat

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/quickerstat/pkg/httpcache"
	"github.com/codeGROOVE-dev/quickerstat/pkg/quicker"
	"github.com/codeGROOVE-dev/quickerstat/pkg/record"
	"github.com/codeGROOVE-dev/quickerstat/pkg/stats"
)

// Result types, re-exported so callers rarely need the inner packages.
type (
	Profile     = record.Profile
	Action      = record.Action
	AuthorRef   = record.AuthorRef
	Summary     = stats.Summary
	AuthorStats = stats.AuthorStats
)

// Sentinel errors surfaced by extraction.
var (
	ErrProfileNotFound = record.ErrProfileNotFound
	ErrNoFields        = record.ErrNoFields
	ErrNoTable         = record.ErrNoTable
)

// UserReport bundles everything extracted for one user.
type UserReport struct {
	Profile *record.Profile `json:"profile"`
	Actions []record.Action `json:"actions"`
	Stats   stats.Summary   `json:"stats"`
}

// Option configures an extraction run.
type Option func(*config)

type config struct {
	logger         *slog.Logger
	cache          httpcache.Cacher
	cookies        map[string]string
	baseURL        string
	debugDir       string
	maxPages       int
	browserCookies bool
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithHTTPCache sets the HTTP response cache.
func WithHTTPCache(cache httpcache.Cacher) Option {
	return func(c *config) { c.cache = cache }
}

// WithCookies sets explicit session cookie values.
func WithCookies(cookies map[string]string) Option {
	return func(c *config) { c.cookies = cookies }
}

// WithBrowserCookies enables reading session cookies from browser stores.
func WithBrowserCookies() Option {
	return func(c *config) { c.browserCookies = true }
}

// WithMaxPages caps how many action pages are walked per user.
func WithMaxPages(n int) Option {
	return func(c *config) { c.maxPages = n }
}

// WithBaseURL overrides the site root (tests).
func WithBaseURL(baseURL string) Option {
	return func(c *config) { c.baseURL = baseURL }
}

// WithDebugDir persists every fetched page as HTML under dir.
func WithDebugDir(dir string) Option {
	return func(c *config) { c.debugDir = dir }
}

func newConfig(opts ...Option) *config {
	cfg := &config{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *config) clientOptions() []quicker.Option {
	options := []quicker.Option{quicker.WithLogger(c.logger)}
	if c.cache != nil {
		options = append(options, quicker.WithHTTPCache(c.cache))
	}
	if len(c.cookies) > 0 {
		options = append(options, quicker.WithCookies(c.cookies))
	}
	if c.browserCookies {
		options = append(options, quicker.WithBrowserCookies())
	}
	if c.baseURL != "" {
		options = append(options, quicker.WithBaseURL(c.baseURL))
	}
	if c.maxPages > 0 {
		options = append(options, quicker.WithMaxPages(c.maxPages))
	}
	if c.debugDir != "" {
		options = append(options, quicker.WithDebugDir(c.debugDir))
	}
	return options
}

// Match reports whether the URL points at a GetQuicker user page.
func Match(url string) bool { return quicker.Match(url) }

// AuthRequired reports whether fetching needs a session. User pages open
// with the share-portal referer alone, so it is always false.
func AuthRequired() bool { return quicker.AuthRequired() }

// ExtractUserID normalizes a bare id or a user page URL to the dashed id
// form the site uses ("113342-").
func ExtractUserID(input string) (string, error) { return quicker.ExtractUserID(input) }

// UserStats runs the full pipeline for one user: profile fields, every
// action page, aggregate figures. Extraction shortfalls are logged and the
// report still carries whatever was recovered; only an unreachable first
// page is an error.
func UserStats(ctx context.Context, idOrURL string, opts ...Option) (*UserReport, error) {
	cfg := newConfig(opts...)
	id, err := quicker.ExtractUserID(idOrURL)
	if err != nil {
		return nil, err
	}
	client, err := quicker.New(ctx, cfg.clientOptions()...)
	if err != nil {
		return nil, err
	}

	profile, err := client.FetchProfile(ctx, id)
	if err != nil {
		if !errors.Is(err, record.ErrNoFields) {
			return nil, err
		}
		cfg.logger.WarnContext(ctx, "profile extraction came up empty, continuing", "user", id)
	}

	report := &UserReport{Profile: profile}

	actions, pages, err := client.Actions(ctx, id)
	if err != nil {
		cfg.logger.WarnContext(ctx, "actions extraction failed, keeping profile only",
			"user", id, "error", err)
	}
	report.Actions = actions
	report.Stats = stats.Summarize(actions, pages)
	return report, nil
}

// FetchProfile retrieves only the profile fields for one user. A profile
// with no resolvable fields comes back with ErrNoFields and is still usable.
func FetchProfile(ctx context.Context, idOrURL string, opts ...Option) (*record.Profile, error) {
	cfg := newConfig(opts...)
	id, err := quicker.ExtractUserID(idOrURL)
	if err != nil {
		return nil, err
	}
	client, err := quicker.New(ctx, cfg.clientOptions()...)
	if err != nil {
		return nil, err
	}
	return client.FetchProfile(ctx, id)
}

// RecommendedAuthors lists the authors featured on the share portal's
// recommended page, deduplicated in listing order.
func RecommendedAuthors(ctx context.Context, opts ...Option) ([]record.AuthorRef, error) {
	cfg := newConfig(opts...)
	client, err := quicker.New(ctx, cfg.clientOptions()...)
	if err != nil {
		return nil, err
	}
	return client.RecommendedAuthors(ctx)
}

// RecommendedAuthorStats walks the recommended listing and collects action
// statistics for each author, one at a time. A failing author fills Err on
// its row and the walk keeps going.
func RecommendedAuthorStats(ctx context.Context, opts ...Option) ([]stats.AuthorStats, error) {
	cfg := newConfig(opts...)
	client, err := quicker.New(ctx, cfg.clientOptions()...)
	if err != nil {
		return nil, err
	}

	authors, err := client.RecommendedAuthors(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]stats.AuthorStats, 0, len(authors))
	for _, author := range authors {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		row := stats.AuthorStats{
			UserID:      author.UserID,
			Name:        author.Name,
			ProfileURL:  author.URL,
			ExtractedAt: time.Now().UTC().Format(time.RFC3339),
		}
		actions, pages, err := client.Actions(ctx, author.UserID)
		if err != nil {
			cfg.logger.WarnContext(ctx, "author stats failed, recording the error",
				"user", author.UserID, "error", err)
			row.Err = err.Error()
			results = append(results, row)
			continue
		}
		row.Summary = stats.Summarize(actions, pages)
		results = append(results, row)
	}
	return results, nil
}
