// Package sheets fetches spreadsheet values from the Google Sheets API
// using service-account credentials.
package sheets

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://sheets.googleapis.com/v4"
	scopeReadonly  = "https://www.googleapis.com/auth/spreadsheets.readonly"
)

// ErrMissingCredentials is returned when neither a key file nor an
// email/private-key pair is configured. The serve layer maps it to a
// distinct error payload so it is never confused with empty sheet data.
var ErrMissingCredentials = eris.New("sheets: missing credentials")

// Client reads value ranges from a spreadsheet.
type Client interface {
	Values(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
}

// Credentials configures service-account auth. KeyFile points at a
// service-account JSON file and takes precedence; otherwise ClientEmail
// and PrivateKey are used directly (the private key may carry literal
// `\n` sequences, as it does when injected via environment).
type Credentials struct {
	KeyFile     string
	ClientEmail string
	PrivateKey  string
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the authenticated http.Client. When set, no
// credentials are required.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithLimiter overrides the default request rate limiter.
func WithLimiter(lim *rate.Limiter) Option {
	return func(c *httpClient) {
		c.limiter = lim
	}
}

type httpClient struct {
	baseURL    string
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries int
}

// NewClient builds a Sheets client. Unless an http.Client is injected,
// credentials are exchanged for an OAuth2-authenticated client up front
// so credential problems surface before the first fetch.
func NewClient(ctx context.Context, creds Credentials, opts ...Option) (Client, error) {
	c := &httpClient{
		baseURL:    defaultBaseURL,
		limiter:    rate.NewLimiter(5, 5),
		maxRetries: 3,
	}
	for _, o := range opts {
		o(c)
	}

	if c.http == nil {
		cfg, err := jwtConfig(creds)
		if err != nil {
			return nil, err
		}
		c.http = cfg.Client(ctx)
		c.http.Timeout = 30 * time.Second
	}
	return c, nil
}

func jwtConfig(creds Credentials) (*jwt.Config, error) {
	if creds.KeyFile != "" {
		data, err := os.ReadFile(creds.KeyFile)
		if err != nil {
			return nil, eris.Wrap(err, "sheets: read key file")
		}
		cfg, err := google.JWTConfigFromJSON(data, scopeReadonly)
		if err != nil {
			return nil, eris.Wrap(err, "sheets: parse key file")
		}
		return cfg, nil
	}
	if creds.ClientEmail == "" || creds.PrivateKey == "" {
		return nil, ErrMissingCredentials
	}
	key := strings.ReplaceAll(creds.PrivateKey, `\n`, "\n")
	return &jwt.Config{
		Email:      creds.ClientEmail,
		PrivateKey: []byte(key),
		Scopes:     []string{scopeReadonly},
		TokenURL:   google.JWTTokenURL,
	}, nil
}

// valueRange mirrors the values.get response. Cells arrive as strings
// under the default FORMATTED_VALUE rendering, but unformatted numeric
// cells are converted defensively.
type valueRange struct {
	Values [][]any `json:"values"`
}

// Values fetches one value range. An empty range yields nil rows, not an
// error: "no data" and "fetch failure" stay distinguishable upstream.
func (c *httpClient) Values(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	if spreadsheetID == "" {
		return nil, eris.New("sheets: spreadsheet id is required")
	}
	endpoint := c.baseURL + "/spreadsheets/" + url.PathEscape(spreadsheetID) +
		"/values/" + url.PathEscape(readRange)

	body, err := c.getWithRetry(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var vr valueRange
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, eris.Wrap(err, "sheets: decode response")
	}

	rows := make([][]string, len(vr.Values))
	for i, cells := range vr.Values {
		row := make([]string, len(cells))
		for j, cell := range cells {
			row[j] = cellString(cell)
		}
		rows[i] = row
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows, nil
}

func (c *httpClient) getWithRetry(ctx context.Context, endpoint string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "sheets: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, eris.Wrap(err, "sheets: create request")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			zap.L().Warn("sheets request failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("sheets: api returned %d", resp.StatusCode)
			zap.L().Warn("sheets api error, retrying",
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			_ = resp.Body.Close()
			return nil, eris.Errorf("sheets: api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, eris.Wrap(err, "sheets: read response")
		}
		return body, nil
	}
	return nil, eris.Wrap(lastErr, "sheets: all retries exhausted")
}

func backoff(ctx context.Context, attempt int) {
	d := time.Duration(float64(time.Second) * math.Pow(2, float64(attempt)))
	if d > 15*time.Second {
		d = 15 * time.Second
	}
	d += time.Duration(rand.Int63n(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func cellString(cell any) string {
	switch v := cell.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
