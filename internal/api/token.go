package api

import (
	"errors"
	"net"
	"net/http"

	"github.com/aarambhveda/counselor/internal/ai"
	"github.com/aarambhveda/counselor/pkg/logger"
)

var errProviderUnavailable = errors.New("voice agent is not configured")

// TokenResponse is the body returned by the conversation token function
type TokenResponse struct {
	SignedURL string `json:"signed_url,omitempty"`
	Error     string `json:"error,omitempty"`
}

// TokenHandler mints a signed conversation URL for the voice widget
type TokenHandler struct {
	provider  ai.SignedURLProvider
	issuances IssuanceStore
	limiter   *clientLimiter
	logger    *logger.Logger
}

// NewTokenHandler creates the conversation token handler. issuances may be nil.
func NewTokenHandler(provider ai.SignedURLProvider, issuances IssuanceStore, limiter *clientLimiter, logger *logger.Logger) *TokenHandler {
	return &TokenHandler{
		provider:  provider,
		issuances: issuances,
		limiter:   limiter,
		logger:    logger.Named("token-handler"),
	}
}

func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	client := clientAddr(r)

	if !h.limiter.Allow(client) {
		h.logger.Warn("Token request rate limited", logger.String("client", client))
		w.Header().Set("Retry-After", "60")
		writeJSON(w, http.StatusTooManyRequests, TokenResponse{Error: "Too many requests"}, h.logger)
		return
	}

	var (
		signedURL string
		err       error
	)
	if h.provider == nil {
		err = errProviderUnavailable
	} else {
		signedURL, err = h.provider.IssueSignedURL(r.Context())
	}

	if h.issuances != nil {
		if _, recErr := h.issuances.Record(r.Context(), client, err); recErr != nil {
			h.logger.Warn("Failed to record token issuance", logger.Error(recErr))
		}
	}

	if err != nil {
		h.logger.Error("Failed to issue signed URL", logger.String("client", client), logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, TokenResponse{Error: err.Error()}, h.logger)
		return
	}

	h.logger.Info("Issued signed URL", logger.String("client", client))
	writeJSON(w, http.StatusOK, TokenResponse{SignedURL: signedURL}, h.logger)
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
