// Package eta is a client for the tax authority's invoicing API: token
// exchange, document search and raw document retrieval.
package eta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"etasync/internal/config"
)

var log = logrus.StandardLogger().WithField("component", "eta")

// maxErrorBody bounds how much of a failed response body ends up in errors.
const maxErrorBody = 512

// Client talks to the authority's identity and invoicing endpoints.
// It is safe for concurrent use by multiple goroutines.
type Client struct {
	httpClient   *http.Client
	authURL      string
	apiURL       string
	clientID     string
	clientSecret string
	scope        string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the traced default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New validates cfg and builds a Client. Requests are traced through otelhttp
// and bounded by cfg.HTTPTimeout.
func New(cfg config.ETAConfig, opts ...Option) (*Client, error) {
	if cfg.AuthURL == "" || cfg.APIURL == "" {
		return nil, fmt.Errorf("eta auth and api urls are required")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("eta client credentials are required")
	}
	scope := cfg.Scope
	if scope == "" {
		scope = "InvoicingAPI"
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout:   cfg.HTTPTimeout(),
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		authURL:      cfg.AuthURL,
		apiURL:       strings.TrimRight(cfg.APIURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		scope:        scope,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token performs the client-credentials grant and returns the bearer token.
// Every failure other than ctx ending is an *AuthenticationError; no retry
// is attempted.
func (c *Client) Token(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("scope", c.scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &AuthenticationError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &AuthenticationError{Err: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", &AuthenticationError{StatusCode: resp.StatusCode, Err: errors.New(readSnippet(resp.Body))}
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", &AuthenticationError{Err: fmt.Errorf("decode token response: %w", err)}
	}
	if tok.AccessToken == "" {
		return "", &AuthenticationError{Err: errors.New("token response has no access_token")}
	}

	log.WithField("expires_in", tok.ExpiresIn).Debug("obtained access token")
	return tok.AccessToken, nil
}

func (c *Client) get(ctx context.Context, token, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	return c.httpClient.Do(req)
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(b))
}
