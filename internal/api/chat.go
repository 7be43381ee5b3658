package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"foliochat/internal/logging"
)

// AskQuestion sends one visitor question to a portfolio's chatbot and
// returns the full answer text. The backend answers synchronously;
// there is no partial delivery at this layer.
//
// Failure modes callers should classify with errors.As on *StatusError:
// 429 means the portfolio's chat quota is exhausted, anything else
// (including transport errors and context deadline expiry) is a
// generic failure.
func (c *Client) AskQuestion(ctx context.Context, portfolioURL, message, visitorName string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("message required")
	}

	var chatResp ChatResponse
	path := "/api/chat/" + url.PathEscape(portfolioURL)
	err := c.doJSON(ctx, http.MethodPost, path, ChatRequest{
		PortfolioURL: portfolioURL,
		Message:      message,
		VisitorName:  visitorName,
	}, &chatResp)
	if err != nil {
		return "", err
	}

	logging.APIDebug("chat answer for %s: %d chars", portfolioURL, len(chatResp.Response))
	return chatResp.Response, nil
}
