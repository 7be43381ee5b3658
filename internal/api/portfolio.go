package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"foliochat/internal/logging"

	"github.com/google/uuid"
)

// LookupPortfolio fetches the public view of a portfolio by its custom
// URL. Inactive and unknown portfolios both come back as a 404
// StatusError; callers cannot distinguish the two, which is the
// backend's privacy stance.
func (c *Client) LookupPortfolio(ctx context.Context, customURL string) (*PortfolioPublic, error) {
	var portfolio PortfolioPublic
	path := "/api/public/" + url.PathEscape(customURL)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &portfolio); err != nil {
		return nil, err
	}
	return &portfolio, nil
}

// ListPortfolios returns all portfolios owned by the current account.
func (c *Client) ListPortfolios(ctx context.Context) ([]Portfolio, error) {
	var portfolios []Portfolio
	if err := c.doJSON(ctx, http.MethodGet, "/api/portfolios", nil, &portfolios); err != nil {
		return nil, err
	}
	return portfolios, nil
}

// GetPortfolio returns one owned portfolio by ID.
func (c *Client) GetPortfolio(ctx context.Context, portfolioID string) (*Portfolio, error) {
	var portfolio Portfolio
	path := "/api/portfolios/" + url.PathEscape(portfolioID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &portfolio); err != nil {
		return nil, err
	}
	return &portfolio, nil
}

// CreatePortfolio uploads a new portfolio with its resume and details
// documents. The backend starts chatbot processing in the background;
// the portfolio answers visitors once processing completes.
func (c *Client) CreatePortfolio(ctx context.Context, name, customURL, resumePath, detailsPath string) (*CreatePortfolioResponse, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	c.throttle()

	requestID := uuid.NewString()
	rlog := logging.WithRequestID(logging.CategoryAPI, requestID)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("name", name); err != nil {
		return nil, fmt.Errorf("failed to write form field: %w", err)
	}
	if err := writer.WriteField("custom_url", customURL); err != nil {
		return nil, fmt.Errorf("failed to write form field: %w", err)
	}

	for field, path := range map[string]string{"resume": resumePath, "details": detailsPath} {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s file: %w", field, err)
		}
		part, err := writer.CreateFormFile(field, filepath.Base(path))
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to create %s part: %w", field, err)
		}
		if _, err := io.Copy(part, file); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to copy %s file: %w", field, err)
		}
		file.Close()
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/portfolios/create", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Request-ID", requestID)
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rlog.Info("uploading portfolio %q (url=%s)", name, customURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		rlog.Error("portfolio upload transport error: %v", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := newStatusError(resp.StatusCode, body)
		rlog.Warn("portfolio upload -> %d: %s", statusErr.StatusCode, statusErr.Detail)
		return nil, statusErr
	}

	var created CreatePortfolioResponse
	if err := unmarshalResponse(body, &created); err != nil {
		return nil, err
	}

	logging.API("created portfolio %s (url=%s)", created.PortfolioID, created.CustomURL)
	return &created, nil
}

// UpdatePortfolio changes fields on an owned portfolio. The backend
// reads these as query parameters.
func (c *Client) UpdatePortfolio(ctx context.Context, portfolioID string, params UpdatePortfolioParams) error {
	values := url.Values{}
	if params.Name != nil {
		values.Set("name", *params.Name)
	}
	if params.CustomDomain != nil {
		values.Set("custom_domain", *params.CustomDomain)
	}
	if params.IsActive != nil {
		values.Set("is_active", strconv.FormatBool(*params.IsActive))
	}

	path := "/api/portfolios/" + url.PathEscape(portfolioID)
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var ack MessageResponse
	return c.doJSON(ctx, http.MethodPut, path, nil, &ack)
}

// DeletePortfolio removes an owned portfolio, its uploaded documents,
// and its chatbot index.
func (c *Client) DeletePortfolio(ctx context.Context, portfolioID string) error {
	path := "/api/portfolios/" + url.PathEscape(portfolioID)
	var ack MessageResponse
	return c.doJSON(ctx, http.MethodDelete, path, nil, &ack)
}

// GetAnalytics returns visitor chat stats for one owned portfolio.
func (c *Client) GetAnalytics(ctx context.Context, portfolioID string) (*AnalyticsResponse, error) {
	var analytics AnalyticsResponse
	path := "/api/portfolios/" + url.PathEscape(portfolioID) + "/analytics"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &analytics); err != nil {
		return nil, err
	}
	return &analytics, nil
}
