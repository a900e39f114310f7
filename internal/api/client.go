package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"patchnotes/internal/infra"
)

// ErrMissingBaseURL indicates the client was configured without a backend URL.
var ErrMissingBaseURL = errors.New("api: base url is required")

// Options configures the PatchNotes API client.
type Options struct {
	BaseURL        string
	AccessToken    string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client is the authenticated HTTP client the rest of the application rides
// on. It joins paths onto the backend base URL, speaks JSON both ways,
// attaches the current bearer token to every request, and transparently
// retries a request exactly once after refreshing the token on a 401.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
	tokens     *TokenStore
}

// TokenStore holds the current access token. The refresh credential itself is
// a cookie managed by the http.Client's jar, mirroring the backend's refresh
// flow.
type TokenStore struct {
	mu    sync.Mutex
	token string
}

// Set replaces the current access token.
func (s *TokenStore) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Get returns the current access token, possibly empty.
func (s *TokenStore) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// APIError is a non-2xx response from the backend with its decoded error
// envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return e.Message
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		// The refresh credential is a cookie, so the default client needs
		// a jar to carry it between calls.
		jar, _ := cookiejar.New(nil)
		httpClient = &http.Client{Timeout: timeout, Jar: jar}
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	tokens := &TokenStore{}
	tokens.Set(strings.TrimSpace(opts.AccessToken))
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
		tokens:     tokens,
	}, nil
}

// Tokens exposes the token store so hosts can seed or inspect credentials.
func (c *Client) Tokens() *TokenStore { return c.tokens }

// Get issues a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body and decodes the response into
// out. A nil in sends an empty JSON object.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	body := []byte("{}")
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		body = encoded
	}
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	resp, raw, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Debug().Str("path", path).Msg("api: unauthorized, refreshing token")
		if err := c.refresh(ctx); err != nil {
			return err
		}
		resp, raw, err = c.send(ctx, method, path, body)
		if err != nil {
			return err
		}
	}
	if resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Get(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("api: read response: %w", err)
	}
	return resp, raw, nil
}

// refresh exchanges the refresh cookie for a fresh access token and stores it
// for subsequent requests.
func (c *Client) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", strings.NewReader("{}"))
	if err != nil {
		return fmt.Errorf("api: build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: refresh token: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: read refresh response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, raw)
	}
	var decoded refreshResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("api: decode refresh response: %w", err)
	}
	if decoded.AccessToken == "" {
		return errors.New("api: refresh response missing access token")
	}
	c.tokens.Set(decoded.AccessToken)
	return nil
}

func decodeError(status int, raw []byte) error {
	apiErr := &APIError{StatusCode: status}
	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil {
		switch {
		case envelope.Error.Message != "":
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		case envelope.Message != "":
			apiErr.Message = envelope.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}
