// Package confluence provides a client for the Confluence Cloud REST
// API v2: pages, blog posts, spaces, labels, content properties,
// attachments and footer comments, plus the composed workflows the
// operator commands are built on.
package confluence

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	// DefaultTimeout bounds a single API request.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRetries caps retry attempts for transient failures.
	DefaultMaxRetries = 3
	// pageLimit is the per-request page size for list endpoints.
	pageLimit = 25
)

// Config holds the settings needed to talk to a Confluence site.
type Config struct {
	// Domain is the site domain, e.g. "example.atlassian.net".
	Domain string
	// Email is the account the API token belongs to.
	Email string
	// APIToken authenticates requests together with Email.
	APIToken string
	// BaseURL overrides the derived API root. Used by tests.
	BaseURL string
	// Timeout bounds a single request. Zero means DefaultTimeout.
	Timeout time.Duration
	// MaxRetries caps retries for rate limits and transient errors.
	// Zero means DefaultMaxRetries.
	MaxRetries int
	// Logger receives request diagnostics. Optional.
	Logger glog.Logger
}

// Validate checks that the required connection settings are present.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Domain, validation.Required),
		validation.Field(&c.Email, validation.Required),
		validation.Field(&c.APIToken, validation.Required),
		validation.Field(&c.MaxRetries, validation.Min(0)),
	)
}

// Client is a Confluence Cloud API v2 client. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	siteURL    string
	authHeader string
	httpClient *http.Client
	maxRetries int
	// backoffBase scales retry delays. Tests shrink it.
	backoffBase time.Duration
	logger      glog.Logger
}

// New creates a Confluence client from the given configuration.
// Missing credentials are a configuration error surfaced before any
// request is made.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid confluence configuration").
			WithTextCode(configInvalidCode)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://" + strings.TrimSuffix(cfg.Domain, "/") + "/wiki/api/v2"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}

	logger := cfg.Logger
	if logger == nil {
		logger = glog.NewLogger(glog.WithLevel(glog.Error))
	}

	credentials := cfg.Email + ":" + cfg.APIToken

	baseURL = strings.TrimSuffix(baseURL, "/")

	return &Client{
		baseURL:     baseURL,
		siteURL:     strings.TrimSuffix(baseURL, "/api/v2"),
		authHeader:  "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials)),
		httpClient:  &http.Client{Timeout: timeout},
		maxRetries:  maxRetries,
		backoffBase: time.Second,
		logger:      logger,
	}, nil
}

// resolve maps an API path to a full URL. Paths under /rest/ belong
// to the v1 API, which still serves labels and attachment uploads.
func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "/rest/") {
		return c.siteURL + path
	}
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}

// do performs one API request with rate-limit handling and
// exponential backoff for transient failures. 4xx responses other
// than 429 are surfaced immediately with the response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	endpoint := c.resolve(path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "failed to encode request body").
				WithTextCode(requestInvalidCode)
		}
		payload = data
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "failed to build request").
				WithTextCode(requestInvalidCode)
		}
		req.Header.Set("Authorization", c.authHeader)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Warn("request failed, retrying", "method", method, "path", path, "attempt", attempt, "error", err)
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			delay := retryAfter(resp)
			c.logger.Warn("rate limited, waiting", "retry_after", delay)
			lastErr = apiError(resp.StatusCode, data)
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue

		case resp.StatusCode >= 500:
			lastErr = apiError(resp.StatusCode, data)
			c.logger.Warn("server error, retrying", "status", resp.StatusCode, "path", path, "attempt", attempt)
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, err
			}
			continue

		case resp.StatusCode >= 400:
			return nil, apiError(resp.StatusCode, data)

		default:
			return data, nil
		}
	}

	return nil, goerrors.Wrap(lastErr, goerrors.CategoryExternal,
		fmt.Sprintf("request failed after %d attempts", c.maxRetries+1)).
		WithTextCode(retriesExhaustedCode)
}

// doMultipart uploads a file as multipart form data. The JSON content
// type is replaced by the form boundary for this request only.
func (c *Client) doMultipart(ctx context.Context, path, fileName string, file io.Reader, fields map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "failed to write form field").
				WithTextCode(requestInvalidCode)
		}
	}

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "failed to create form file").
			WithTextCode(requestInvalidCode)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "failed to copy file content").
			WithTextCode(requestInvalidCode)
	}
	if err := writer.Close(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "failed to finish multipart body").
			WithTextCode(requestInvalidCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(path), &buf)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "failed to build request").
			WithTextCode(requestInvalidCode)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Atlassian-Token", "no-check")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "upload request failed").
			WithTextCode(requestFailedCode)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "failed to read upload response").
			WithTextCode(requestFailedCode)
	}
	if resp.StatusCode >= 400 {
		return nil, apiError(resp.StatusCode, data)
	}
	return data, nil
}

// listResponse is the envelope shared by all list endpoints.
type listResponse struct {
	Results []json.RawMessage `json:"results"`
	Links   struct {
		Next string `json:"next"`
	} `json:"_links"`
}

// paginate walks a list endpoint following the next-page link until
// the results are exhausted or limit items have been collected. A
// limit of zero means all items.
func (c *Client) paginate(ctx context.Context, path string, query url.Values, limit int) ([]json.RawMessage, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("limit", strconv.Itoa(pageLimit))

	var items []json.RawMessage
	for {
		data, err := c.do(ctx, http.MethodGet, path, query, nil)
		if err != nil {
			return nil, err
		}

		var page listResponse
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "failed to decode list response").
				WithTextCode(requestFailedCode)
		}

		items = append(items, page.Results...)
		if limit > 0 && len(items) >= limit {
			return items[:limit], nil
		}
		if page.Links.Next == "" {
			return items, nil
		}

		next, err := url.Parse(page.Links.Next)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "invalid next-page link").
				WithTextCode(requestFailedCode)
		}
		query = next.Query()
		query.Set("limit", strconv.Itoa(pageLimit))
	}
}

// decodeList unmarshals paginated raw results into a typed slice.
func decodeList[T any](raw []json.RawMessage) ([]T, error) {
	items := make([]T, 0, len(raw))
	for _, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "failed to decode list item").
				WithTextCode(requestFailedCode)
		}
		items = append(items, item)
	}
	return items, nil
}

// retryAfter reads the server-supplied delay for a 429 response,
// falling back to one minute when the header is missing or invalid.
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return time.Minute
}

// backoff sleeps 2^attempt times the base delay, honoring context
// cancellation.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	return sleep(ctx, time.Duration(1<<attempt)*c.backoffBase)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
