package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultAuthURL = "https://accounts.spotify.com/api/token"
	defaultAPIURL  = "https://api.spotify.com/v1"

	// Transient failures against the metadata host are common, so every
	// authenticated call gets exactly one retry after a short fixed pause.
	retryPause = 500 * time.Millisecond

	albumPageLimit    = 50
	playlistPageLimit = 100
)

// Config holds catalog client configuration. Values are passed in explicitly;
// the client never reads ambient state.
type Config struct {
	ClientID     string
	ClientSecret string
	Market       string // region parameter for artist-scoped reads

	// Overridable for tests.
	AuthURL string
	APIURL  string

	HTTPClient *http.Client

	// In-run page cache. Zero values disable caching.
	CacheMaxSize int
	CacheTTL     int // seconds
}

// Client authenticates against the metadata API and performs paginated reads.
type Client struct {
	cfg   Config
	http  *http.Client
	cache *TTLCache

	mu    sync.Mutex
	token *Token
}

// NewClient creates a catalog client.
func NewClient(cfg Config) *Client {
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultAuthURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.Market == "" {
		cfg.Market = "US"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	var cache *TTLCache
	if cfg.CacheMaxSize > 0 && cfg.CacheTTL > 0 {
		cache = NewTTLCache(cfg.CacheMaxSize, cfg.CacheTTL)
	}

	return &Client{cfg: cfg, http: httpClient, cache: cache}
}

// Authenticate performs the client-credentials exchange and caches the token
// for subsequent calls. Safe for concurrent use.
func (c *Client) Authenticate(ctx context.Context) (*Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.Valid() {
		return c.token, nil
	}

	var token *Token
	op := func() error {
		t, err := c.exchangeCredentials(ctx)
		if err != nil {
			return err
		}
		token = t
		return nil
	}
	if err := retryOnce(ctx, op); err != nil {
		return nil, err
	}

	c.token = token
	return token, nil
}

// exchangeCredentials performs one token exchange attempt.
func (c *Client) exchangeCredentials(ctx context.Context) (*Token, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AuthError{Status: resp.StatusCode, Message: upstreamMessage(body)}
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &MalformedResponseError{Original: err}
	}
	if parsed.AccessToken == "" {
		return nil, &AuthError{Status: resp.StatusCode, Message: "token response missing access_token"}
	}

	return &Token{
		AccessToken: parsed.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(parsed.ExpiresIn) * time.Second),
	}, nil
}

// FetchPage performs one paginated read for the given entity. The cursor is
// opaque to callers: empty requests the first page, any other value is the
// Next cursor from a previous page.
func (c *Client) FetchPage(ctx context.Context, kind Kind, id, cursor string) (*CatalogPage, error) {
	requestURL := cursor
	if requestURL == "" {
		requestURL = c.firstPageURL(kind, id)
	}

	if c.cache != nil {
		if cached := c.cache.Get(requestURL); cached != nil {
			if page, ok := cached.(*CatalogPage); ok {
				return page, nil
			}
		}
	}

	// Authenticate carries its own retry; keeping it outside the page retry
	// holds the whole call to one retry per failure mode.
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	var page *CatalogPage
	op := func() error {
		p, err := c.fetchPageOnce(ctx, kind, requestURL, token)
		if err != nil {
			return err
		}
		page = p
		return nil
	}
	if err := retryOnce(ctx, op); err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(requestURL, page)
	}
	return page, nil
}

// firstPageURL builds the kind-specific first-page endpoint.
func (c *Client) firstPageURL(kind Kind, id string) string {
	base := c.cfg.APIURL
	switch kind {
	case KindTrack:
		return fmt.Sprintf("%s/tracks/%s", base, id)
	case KindAlbum:
		return fmt.Sprintf("%s/albums/%s?limit=%d", base, id, albumPageLimit)
	case KindPlaylist:
		return fmt.Sprintf("%s/playlists/%s/tracks?limit=%d", base, id, playlistPageLimit)
	case KindArtistTop:
		return fmt.Sprintf("%s/artists/%s/top-tracks?market=%s", base, id, url.QueryEscape(c.cfg.Market))
	default:
		return fmt.Sprintf("%s/tracks/%s", base, id)
	}
}

// fetchPageOnce performs one authenticated GET and folds the raw body into a
// CatalogPage. This is the only place untyped JSON traversal happens.
func (c *Client) fetchPageOnce(ctx context.Context, kind Kind, requestURL string, token *Token) (*CatalogPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build page request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read page response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &CatalogError{Status: resp.StatusCode, Message: upstreamMessage(body)}
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &MalformedResponseError{Original: err}
	}

	return pageFromRaw(kind, raw), nil
}

// pageFromRaw extracts items, cursor, and collection-level metadata from one
// decoded response body. Shapes differ per kind:
//   - track: the body is the single item
//   - album: the body carries name/images plus an embedded tracks paging
//     object on the first page, and is a bare paging object afterwards
//   - playlist: a paging object of wrapped track items
//   - artist top tracks: a one-shot "tracks" array, never paginated
func pageFromRaw(kind Kind, raw map[string]any) *CatalogPage {
	page := &CatalogPage{}

	switch kind {
	case KindTrack:
		page.Items = []map[string]any{raw}
	case KindArtistTop:
		page.Items = rawItemList(raw["tracks"])
	case KindAlbum:
		paging, ok := raw["tracks"].(map[string]any)
		if !ok {
			// Subsequent album pages are plain paging objects.
			paging = raw
		} else {
			page.Meta = map[string]any{
				"name":   raw["name"],
				"images": raw["images"],
			}
		}
		page.Items = rawItemList(paging["items"])
		page.Next = rawString(paging["next"])
	default: // KindPlaylist
		page.Items = rawItemList(raw["items"])
		page.Next = rawString(raw["next"])
	}

	return page
}

func rawItemList(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	items := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		if m, ok := entry.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}

func rawString(v any) string {
	s, _ := v.(string)
	return s
}

// upstreamMessage digs the error message out of a JSON error body. Returns
// empty when the body is not parseable, so callers fall back to the status.
func upstreamMessage(body []byte) string {
	var wrapper struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return ""
	}
	switch v := wrapper.Error.(type) {
	case string:
		return v
	case map[string]any:
		return rawString(v["message"])
	default:
		return ""
	}
}

// retryOnce runs op, retrying exactly once after a short fixed pause.
func retryOnce(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(retryPause), 1), ctx)
	return backoff.Retry(op, policy)
}
