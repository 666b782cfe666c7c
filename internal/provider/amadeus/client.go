package amadeus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Domenick1991/triprex/config"
	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/Domenick1991/triprex/internal/metrics"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const Name = "amadeus"

var ErrNotConfigured = errors.New("amadeus credentials are not configured")

// APIError is a non-2xx answer from the Amadeus API.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("amadeus: %d %s", e.Status, e.Detail)
}

// Unwrap classifies server-side failures as provider outages.
func (e *APIError) Unwrap() error {
	if e.Status >= http.StatusInternalServerError || e.Status == http.StatusTooManyRequests {
		return domain.ErrProviderUnavailable
	}
	return nil
}

// Client talks to the Amadeus self-service APIs. Access tokens are fetched
// with the client credentials grant and refreshed by the oauth2 transport.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxResults int
	configured bool
	logger     *zap.Logger
}

func NewClient(cfg config.AmadeusConfig, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     baseURL + "/v1/security/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
	httpClient := cc.Client(tokenCtx)
	httpClient.Timeout = timeout

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		maxResults: maxResults,
		configured: cfg.ClientID != "" && cfg.ClientSecret != "",
		logger:     logger,
	}
}

func (c *Client) Name() string { return Name }

func (c *Client) Configured() bool { return c.configured }

// CheckConnection performs a cheap authenticated lookup.
func (c *Client) CheckConnection(ctx context.Context) error {
	q := url.Values{}
	q.Set("keyword", "LON")
	q.Set("subType", "CITY")
	_, err := c.do(ctx, "check_connection", http.MethodGet, "/v1/reference-data/locations", q, nil)
	return err
}

func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, body any) (gjson.Result, error) {
	if !c.configured {
		return gjson.Result{}, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, ErrNotConfigured)
	}

	started := time.Now()
	res, err := c.doRequest(ctx, method, path, query, body)
	metrics.ObserveProvider(Name, operation, started, err)
	if err != nil {
		c.logger.Warn("amadeus request failed",
			zap.String("operation", operation),
			zap.Duration("took", time.Since(started)),
			zap.Error(err),
		)
	}
	return res, err
}

func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any) (gjson.Result, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return gjson.Result{}, ctxErr
		}
		return gjson.Result{}, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return gjson.Result{}, &APIError{Status: resp.StatusCode, Detail: errorDetail(data, resp.Status)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return gjson.Result{}, nil
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, errors.New("amadeus: invalid json response")
	}
	return gjson.ParseBytes(data), nil
}

// errorDetail pulls the first error description out of an Amadeus error document.
func errorDetail(body []byte, fallback string) string {
	doc := gjson.ParseBytes(body)
	for _, path := range []string{"errors.0.detail", "errors.0.title", "error_description"} {
		if v := doc.Get(path).String(); v != "" {
			return v
		}
	}
	return fallback
}
