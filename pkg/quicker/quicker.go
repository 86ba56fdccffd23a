// Package quicker fetches GetQuicker (getquicker.net) user profile and
// shared-action data.
//
// Profile pages sit behind a same-origin navigation check: requests must
// carry a Referer pointing at the share portal or the server answers 404.
// Every fetch in this package sends that header.
package quicker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/quickerstat/pkg/auth"
	"github.com/codeGROOVE-dev/quickerstat/pkg/httpcache"
	"github.com/codeGROOVE-dev/quickerstat/pkg/record"
)

const (
	// DefaultBaseURL is the production site root.
	DefaultBaseURL = "https://getquicker.net"

	// Referer satisfies the share-page navigation check. Without it the
	// server answers 404 for user pages.
	Referer = DefaultBaseURL + "/Share"

	// DefaultMaxPages bounds action pagination against runaway tables.
	DefaultMaxPages = 100
)

var userPathPattern = regexp.MustCompile(`(?i)getquicker\.net/User/`)

// Match returns true if the URL is a GetQuicker user page URL.
func Match(urlStr string) bool {
	return userPathPattern.MatchString(urlStr)
}

// AuthRequired returns false: the referer header alone unlocks user pages.
func AuthRequired() bool { return false }

// ExtractUserID returns the user id from a bare id ("113342-") or a user
// page URL. Name-slug URLs ("/User/113342/Cea") normalize to the dashed
// numeric form ("113342-").
func ExtractUserID(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", errors.New("empty user id")
	}
	if !strings.HasPrefix(strings.ToLower(s), "http") {
		return s, nil
	}

	id := idFromPath(s)
	if id == "" {
		return "", fmt.Errorf("could not extract user id from URL: %s", input)
	}
	return id, nil
}

// idFromPath extracts a user id from a URL or path containing /User/.
func idFromPath(s string) string {
	var id string
	switch {
	case strings.Contains(s, "/User/Actions/"):
		id = s[strings.Index(s, "/User/Actions/")+len("/User/Actions/"):]
	case strings.Contains(s, "/User/"):
		id = s[strings.Index(s, "/User/")+len("/User/"):]
	default:
		return ""
	}
	if i := strings.IndexAny(id, "?#"); i >= 0 {
		id = id[:i]
	}
	id = strings.TrimSuffix(id, "/")
	// Name-slug form: the segment before the slash is the numeric id,
	// which the site writes with a trailing dash.
	if num, _, found := strings.Cut(id, "/"); found {
		id = num + "-"
	}
	return id
}

// Client handles GetQuicker requests.
type Client struct {
	httpClient    *http.Client
	cache         httpcache.Cacher
	logger        *slog.Logger
	baseURL       string
	debugDir      string
	maxPages      int
	authenticated bool
}

// Option configures a Client.
type Option func(*config)

type config struct {
	cache          httpcache.Cacher
	cookies        map[string]string
	logger         *slog.Logger
	baseURL        string
	debugDir       string
	maxPages       int
	browserCookies bool
}

// WithHTTPCache sets the HTTP cache.
func WithHTTPCache(httpCache httpcache.Cacher) Option {
	return func(c *config) { c.cache = httpCache }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithCookies sets explicit session cookie values.
func WithCookies(cookies map[string]string) Option {
	return func(c *config) { c.cookies = cookies }
}

// WithBrowserCookies enables reading session cookies from browser stores.
func WithBrowserCookies() Option {
	return func(c *config) { c.browserCookies = true }
}

// WithBaseURL overrides the site root (tests).
func WithBaseURL(baseURL string) Option {
	return func(c *config) { c.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithMaxPages overrides the pagination cap.
func WithMaxPages(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithDebugDir persists every fetched page as HTML under dir for inspection.
func WithDebugDir(dir string) Option {
	return func(c *config) { c.debugDir = dir }
}

// New creates a GetQuicker client.
// Cookie sources are checked in order: WithCookies > environment > browser.
// Cookies are optional; user pages open with the referer header alone.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &config{
		logger:   slog.Default(),
		baseURL:  DefaultBaseURL,
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var sources []auth.Source
	if len(cfg.cookies) > 0 {
		sources = append(sources, auth.NewStaticSource(cfg.cookies))
	}
	sources = append(sources, auth.EnvSource{})
	if cfg.browserCookies {
		sources = append(sources, auth.NewBrowserSource(cfg.logger))
	}

	cookies, err := auth.ChainSources(ctx, sources...)
	if err != nil {
		return nil, fmt.Errorf("cookie retrieval failed: %w", err)
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}
	authenticated := false
	if len(cookies) > 0 {
		jar, err := auth.NewCookieJar(auth.Domain, cookies)
		if err != nil {
			return nil, fmt.Errorf("cookie jar creation failed: %w", err)
		}
		httpClient.Jar = jar
		authenticated = true
		cfg.logger.InfoContext(ctx, "using session cookies", "cookie_count", len(cookies))
	}

	if cfg.debugDir != "" {
		if err := os.MkdirAll(cfg.debugDir, 0o750); err != nil {
			return nil, fmt.Errorf("create debug directory: %w", err)
		}
	}

	cache := cfg.cache
	if cache == nil {
		cache = httpcache.NewNull()
	}

	return &Client{
		httpClient:    httpClient,
		cache:         cache,
		logger:        cfg.logger,
		baseURL:       cfg.baseURL,
		debugDir:      cfg.debugDir,
		maxPages:      cfg.maxPages,
		authenticated: authenticated,
	}, nil
}

// userURL returns the actions page URL for a user. The same page carries
// the profile header, so profile extraction reads it too.
func (c *Client) userURL(userID string) string {
	return c.baseURL + "/User/Actions/" + url.PathEscape(userID)
}

// fetchPage retrieves one page with the referer and browser headers set.
// Status errors surface as *httpcache.HTTPError.
func (c *Client) fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", httpcache.UserAgent)
	req.Header.Set("Referer", Referer)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	body, err := httpcache.FetchURLWithValidator(ctx, c.cache, c.httpClient, req, c.logger, looksComplete)
	if err != nil {
		return nil, err
	}

	c.saveDebugHTML(pageURL, body)
	return body, nil
}

// fetchUserPage retrieves a user page. A 404 maps to
// record.ErrProfileNotFound: that status is what the server answers both
// for unknown users and for requests missing the referer. Listing pages
// go through fetchPage directly and keep the raw status error.
func (c *Client) fetchUserPage(ctx context.Context, pageURL string) ([]byte, error) {
	body, err := c.fetchPage(ctx, pageURL)
	if err != nil {
		var httpErr *httpcache.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", record.ErrProfileNotFound, pageURL)
		}
		return nil, err
	}
	return body, nil
}

// looksComplete rejects truncated responses from the response cache.
func looksComplete(body []byte) bool {
	return bytes.Contains(body, []byte("</html"))
}

// FetchProfile retrieves a user profile.
// When no field can be extracted the returned profile is still valid
// (zero-valued) and the error is record.ErrNoFields; callers may continue
// with the empty record.
func (c *Client) FetchProfile(ctx context.Context, userID string) (*record.Profile, error) {
	pageURL := c.userURL(userID)
	c.logger.InfoContext(ctx, "fetching profile", "url", pageURL, "user", userID)

	body, err := c.fetchUserPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	p := parseProfile(body)
	p.UserID = userID
	p.URL = pageURL
	p.Authenticated = c.authenticated

	if p.Empty() {
		c.logger.WarnContext(ctx, "no profile fields extracted", "user", userID)
		return p, record.ErrNoFields
	}
	return p, nil
}

func (c *Client) saveDebugHTML(rawURL string, body []byte) {
	if c.debugDir == "" {
		return
	}
	path := filepath.Join(c.debugDir, debugFileName(rawURL))
	if err := os.WriteFile(path, body, 0o600); err != nil {
		c.logger.Warn("failed to save page HTML", "path", path, "error", err)
		return
	}
	c.logger.Debug("saved page HTML", "path", path)
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

func debugFileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "page.html"
	}
	name := strings.Trim(u.Path, "/")
	if u.RawQuery != "" {
		name += "_" + u.RawQuery
	}
	name = unsafeFileChars.ReplaceAllString(name, "_")
	if name == "" {
		name = "page"
	}
	return name + ".html"
}

// collapseSpace normalizes runs of whitespace to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
