package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://openlibrary.org"
	DefaultCoversURL = "https://covers.openlibrary.org/b/id"

	searchFields = "key,title,author_name,first_publish_year,cover_i,isbn,edition_count,has_fulltext"
)

// ErrUnexpectedStatus is returned for non-200 responses.
var ErrUnexpectedStatus = errors.New("openlibrary: unexpected status")

type Options struct {
	BaseURL    string
	CoversURL  string
	UserAgent  string
	RPS        int
	MaxRetries int
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	coversURL  string
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.CoversURL == "" {
		opts.CoversURL = DefaultCoversURL
	}
	if opts.RPS <= 0 {
		opts.RPS = 5
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		httpClient: hc,
		userAgent:  opts.UserAgent,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		coversURL:  strings.TrimRight(opts.CoversURL, "/"),
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(opts.RPS)), 1),
		maxRetries: opts.MaxRetries,
		backoff:    time.Second,
	}
}

// Doc is one search.json hit restricted to the requested fields.
type Doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorNames      []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	CoverID          int      `json:"cover_i"`
	ISBN             []string `json:"isbn"`
	EditionCount     int      `json:"edition_count"`
	HasFulltext      bool     `json:"has_fulltext"`
}

// SearchResponse matches search.json
type SearchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []Doc `json:"docs"`
}

// SearchByTitle queries search.json by title with pagination.
func (c *Client) SearchByTitle(ctx context.Context, title string, limit, offset int) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("title", title)
	q.Set("fields", searchFields)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var res SearchResponse
	if err := c.get(ctx, c.baseURL+"/search.json?"+q.Encode(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CoverURL returns the medium cover image URL, or "" when coverID is unset.
func (c *Client) CoverURL(coverID int) string {
	if coverID <= 0 {
		return ""
	}
	return fmt.Sprintf("%s/%d-M.jpg", c.coversURL, coverID)
}

func (c *Client) get(ctx context.Context, u string, target any) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1s, 2s, 4s...
			wait := c.backoff * time.Duration(1<<uint(i-1))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		retry, err := c.do(ctx, u, target)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) do(ctx context.Context, u string, target any) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500, err
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return false, fmt.Errorf("openlibrary: decode: %w", err)
	}
	return false, nil
}
