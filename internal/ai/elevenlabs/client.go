package elevenlabs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aarambhveda/counselor/pkg/logger"
	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
)

const signedURLPath = "/v1/convai/conversation/get_signed_url"

// ErrEmptySignedURL is returned when the provider answers without a URL
var ErrEmptySignedURL = errors.New("provider returned an empty signed url")

// Client talks to the ElevenLabs REST API on behalf of the backend
type Client struct {
	apiKey     string
	agentID    string
	baseURL    string // Stored without trailing slash
	timeout    time.Duration
	httpClient *fasthttp.Client
	logger     *logger.Logger
}

// NewClient creates a new ElevenLabs client
func NewClient(apiKey, agentID, baseURL string, timeout time.Duration, logger *logger.Logger) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = "https://api.elevenlabs.io"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		apiKey:  apiKey,
		agentID: agentID,
		baseURL: base,
		timeout: timeout,
		httpClient: &fasthttp.Client{
			Name:                "aarambh-counselor",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 30 * time.Second,
		},
		logger: logger.Named("elevenlabs"),
	}
}

type signedURLResponse struct {
	SignedURL string `json:"signed_url"`
}

// IssueSignedURL asks the provider for a fresh signed conversation URL for the configured agent.
// The URL is single use and is never cached.
func (c *Client) IssueSignedURL(ctx context.Context) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("ElevenLabs API key is required")
	}
	if c.agentID == "" {
		return "", fmt.Errorf("ElevenLabs agent id is required")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()

	req.SetRequestURI(c.baseURL + signedURLPath + "?agent_id=" + url.QueryEscape(c.agentID))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	errC := make(chan error, 1)
	go func() {
		errC <- c.httpClient.DoDeadline(req, resp, deadline)
	}()
	select {
	case <-ctx.Done():
		// The request still owns req/resp; release them once it returns
		go func() {
			<-errC
			fasthttp.ReleaseRequest(req)
			fasthttp.ReleaseResponse(resp)
		}()
		return "", ctx.Err()
	case err := <-errC:
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)
		if err != nil {
			return "", fmt.Errorf("performing signed url request: %w", err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Warn("Signed URL request rejected",
			logger.Int("status", resp.StatusCode()),
			logger.String("body", truncate(string(resp.Body()), 256)))
		return "", fmt.Errorf("failed to get signed url: status %d, body: %s", resp.StatusCode(), truncate(string(resp.Body()), 256))
	}

	var result signedURLResponse
	if err := sonic.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("decoding signed url response: %w", err)
	}
	if result.SignedURL == "" {
		return "", ErrEmptySignedURL
	}

	c.logger.Debug("Issued signed conversation url", logger.String("agent_id", c.agentID))
	return result.SignedURL, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
