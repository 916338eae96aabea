package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"product-sync/internal/contextutil"
)

const (
	// PageSize is the number of products requested per page (the API maximum).
	PageSize = 250
	// PageDelay is the pause after each page response before the next request.
	PageDelay = 500 * time.Millisecond

	// HeaderAccessToken carries the Admin API access token.
	HeaderAccessToken = "X-Shopify-Access-Token"
	// HeaderLink carries the pagination cursor.
	HeaderLink = "Link"
)

// ErrorPolicy decides what FetchAll does when a page request returns a
// non-success status.
type ErrorPolicy string

const (
	// PolicyPartial stops paginating and returns what was collected so far without error.
	PolicyPartial ErrorPolicy = "partial"
	// PolicyFail returns a *StatusError.
	PolicyFail ErrorPolicy = "fail"
)

// StatusError is returned for a non-200 response under PolicyFail.
type StatusError struct {
	StatusCode int
	Body       string
	Fetched    int // products collected before the failing page
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("shopify returned status %d after %d products: %s", e.StatusCode, e.Fetched, e.Body)
}

// Client fetches the product catalog from the Shopify Admin REST API.
type Client struct {
	BaseURL     string
	AccessToken string
	Policy      ErrorPolicy
	client      *http.Client
	pageDelay   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.client = c
	}
}

// WithErrorPolicy sets how non-success responses are handled.
func WithErrorPolicy(p ErrorPolicy) Option {
	return func(cl *Client) {
		cl.Policy = p
	}
}

// WithPageDelay overrides the pause between pages. Zero disables it.
func WithPageDelay(d time.Duration) Option {
	return func(cl *Client) {
		cl.pageDelay = d
	}
}

// NewClient creates a client for the given store domain and API version.
// store is usually "name.myshopify.com"; a value that already has a scheme is used as-is.
func NewClient(store, apiVersion, accessToken string, opts ...Option) *Client {
	base := strings.TrimRight(store, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	c := &Client{
		BaseURL:     fmt.Sprintf("%s/admin/api/%s/products.json", base, apiVersion),
		AccessToken: accessToken,
		Policy:      PolicyPartial,
		client:      http.DefaultClient,
		pageDelay:   PageDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pause blocks for the full page delay measured from now, regardless of how
// long the previous request took. The limiter's only token is spent up front
// so Wait reserves one whole interval.
func (c *Client) pause(ctx context.Context) error {
	if c.pageDelay <= 0 {
		return nil
	}
	limiter := rate.NewLimiter(rate.Every(c.pageDelay), 1)
	limiter.Allow()
	return limiter.Wait(ctx)
}

// FetchAll follows the page_info cursor until the API stops returning a
// rel="next" link. There is no retry and no bound on the number of pages.
func (c *Client) FetchAll(ctx context.Context) ([]Product, error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "fetching products from shopify", "url", c.BaseURL)

	var products []Product
	pageInfo := ""
	pages := 0

	for {
		page, next, err := c.fetchPage(ctx, pageInfo)
		if err != nil {
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				statusErr.Fetched = len(products)
				logger.ErrorContext(ctx, "shopify returned non-success status",
					"status", statusErr.StatusCode, "body", statusErr.Body, "page", pages+1)
				if c.Policy == PolicyFail {
					return nil, statusErr
				}
				logger.WarnContext(ctx, "returning partial product list", "fetched", len(products))
				return products, nil
			}
			return nil, err
		}

		pages++
		products = append(products, page...)
		logger.DebugContext(ctx, "fetched product page", "page", pages, "count", len(page), "total", len(products))

		if next == "" {
			break
		}
		pageInfo = next

		if err := c.pause(ctx); err != nil {
			return nil, fmt.Errorf("failed waiting between pages: %w", err)
		}
	}

	logger.InfoContext(ctx, "fetched products from shopify", "count", len(products), "pages", pages)
	return products, nil
}

// fetchPage requests one page and returns its products and the next cursor.
func (c *Client) fetchPage(ctx context.Context, pageInfo string) ([]Product, string, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(PageSize))
	if pageInfo != "" {
		params.Set("page_info", pageInfo)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(HeaderAccessToken, c.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, "", &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var body productsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, "", fmt.Errorf("failed to decode products: %w", err)
	}

	return body.Products, ParseNextPageInfo(resp.Header.Get(HeaderLink)), nil
}
