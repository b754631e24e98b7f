package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const calculatePath = "/api/calculate/"

// DefaultTimeout bounds one calculation round trip.
const DefaultTimeout = 30 * time.Second

type Options struct {
	BaseURL string
	Timeout time.Duration

	// Optional OAuth2 client credentials for the calculation service.
	ClientID     string
	ClientSecret string
	TokenURL     string

	// HTTPClient overrides the transport; Timeout still applies.
	HTTPClient *http.Client
}

// Client talks to the external calculation service over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	if opts.ClientID != "" && opts.TokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, hc)
		hc = cc.Client(ctx)
	} else {
		copied := *hc
		hc = &copied
	}
	hc.Timeout = timeout

	return &Client{
		endpoint: strings.TrimRight(opts.BaseURL, "/") + calculatePath,
		http:     hc,
	}
}

// Calculate posts the request and decodes the settlement. Any non-2xx status
// is an error.
func (c *Client) Calculate(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "partypay/1.0 (+https://github.com/susu3304/partypay)")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("calculation service returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	result.Normalize()
	return &result, nil
}
