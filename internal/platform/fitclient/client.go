package fitclient

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

	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/domain/model"

	log "github.com/sirupsen/logrus"
)

// Client talks JSON to the fitting service that wraps the starfit library.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type checkStarRequest struct {
	Filename string `json:"filename"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// CheckStar asks the service to load a star file. A 422 answer means the file
// is unreadable and yields a *model.StarDataError.
func (c *Client) CheckStar(ctx context.Context, path string) error {
	err := c.post(ctx, "/star/check", checkStarRequest{Filename: path}, nil)
	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.status == http.StatusUnprocessableEntity {
		return &model.StarDataError{Path: path, Reason: apiErr.message}
	}
	return err
}

func (c *Client) Fit(ctx context.Context, req model.FitRequest) (*model.FitResult, error) {
	var result model.FitResult
	if err := c.post(ctx, "/fit", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Plot(ctx context.Context, resultID string, req model.PlotRequest) (*model.Plot, error) {
	var plot model.Plot
	if err := c.post(ctx, "/results/"+url.PathEscape(resultID)+"/plot", req, &plot); err != nil {
		return nil, err
	}
	return &plot, nil
}

type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("fit service returned %d: %s", e.status, e.message)
}

func (e *apiError) Unwrap() error {
	if e.status == http.StatusServiceUnavailable {
		return common.ErrServiceUnavailable
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return common.Errorf("failed to marshal fit service request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return common.Errorf("failed to build fit service request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return common.Errorf("fit service %s: %v: %w", path, err, common.ErrServiceUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var e errorResponse
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		log.WithFields(log.Fields{"path": path, "status": resp.StatusCode}).Warn("Fit service request failed")
		return &apiError{status: resp.StatusCode, message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return common.Errorf("failed to decode fit service response from %s: %w", path, err)
	}
	return nil
}
