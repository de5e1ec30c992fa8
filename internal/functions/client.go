// Package functions invokes named backend functions over HTTP, the way the
// web client calls its edge functions.
package functions

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aarambhveda/counselor/pkg/logger"
	"github.com/bytedance/sonic"
)

// TokenFunction is the backend function that mints a signed conversation URL
const TokenFunction = "elevenlabs-conversation-token"

// FunctionError is a non-2xx answer from a backend function
type FunctionError struct {
	Status  int
	Message string
}

func (e *FunctionError) Error() string {
	return e.Message
}

// Client calls functions under {base}/functions/v1/
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a functions client
func NewClient(baseURL, anonKey string, timeout time.Duration, logger *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("functions"),
	}
}

// Invoke POSTs body (may be nil) to the named function and decodes the JSON answer into out
func (c *Client) Invoke(ctx context.Context, name string, body any, out any) error {
	payload := []byte("{}")
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", name, err)
		}
		payload = data
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/functions/v1/"+name, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.anonKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
		req.Header.Set("apikey", c.anonKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoking %s: %w", name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading %s response: %w", name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fe := &FunctionError{Status: resp.StatusCode, Message: errorMessage(data)}
		if fe.Message == "" {
			fe.Message = fmt.Sprintf("%s returned %s", name, resp.Status)
		}
		c.logger.Warn("Function call failed",
			logger.String("function", name),
			logger.Int("status", resp.StatusCode),
			logger.String("message", fe.Message))
		return fe
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", name, err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := sonic.Unmarshal(body, &e); err != nil {
		return ""
	}
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// SignedURLSource fetches a fresh signed conversation URL per call attempt
type SignedURLSource struct {
	client *Client
}

// NewSignedURLSource wraps a functions client
func NewSignedURLSource(client *Client) *SignedURLSource {
	return &SignedURLSource{client: client}
}

// FetchSignedURL invokes the token function. A success body without signed_url
// yields an empty URL, which the call controller reports as a missing credential.
func (s *SignedURLSource) FetchSignedURL(ctx context.Context) (string, error) {
	var out struct {
		SignedURL string `json:"signed_url"`
	}
	if err := s.client.Invoke(ctx, TokenFunction, nil, &out); err != nil {
		return "", err
	}
	if out.SignedURL == "" {
		s.client.logger.Warn("Token function answered without a signed URL")
	}
	return out.SignedURL, nil
}
