// Package backend is the HTTP client for the release-management
// service. It pushes submitted task dates to the service's planning
// endpoint in the wire shape the service expects.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Ahmad-Qasm/RM-client/internal/session"
)

// taskDateRequest is the wire shape of one task-date save. ID is the
// task's catalog id; the service keys its rows on it. The date travels
// in RFC 1123 GMT form ("Fri, 29 Jan 2021 00:00:00 GMT"), which is what
// the service's date column parser accepts.
type taskDateRequest struct {
	ID           int    `json:"id"`
	Task         string `json:"task"`
	Date         string `json:"date"`
	TimeEstimate int64  `json:"timeEstimate"`
	OrderID      int64  `json:"orderId"`
}

// submissionTokenHeader correlates the saves of one submission without
// widening the request body the service parses.
const submissionTokenHeader = "X-Submission-Token"

// Client talks to the release-management service.
// Implements session.Saver.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the service at baseURL.
// A nil httpClient falls back to http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// SaveTaskDate posts one task date to the service.
// Any non-2xx response is an error; the response body is folded into
// the message for diagnosis.
func (c *Client) SaveTaskDate(ctx context.Context, td session.TaskDate) error {
	endpoint, err := url.JoinPath(c.baseURL, "new-taskdate")
	if err != nil {
		return fmt.Errorf("build endpoint URL: %w", err)
	}

	body, err := json.Marshal(taskDateRequest{
		ID:           td.CatalogID,
		Task:         td.Name,
		Date:         td.Due.UTC().Format(rfc1123GMT),
		TimeEstimate: td.Minutes,
		OrderID:      td.OrderID,
	})
	if err != nil {
		return fmt.Errorf("encode task date: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(submissionTokenHeader, td.SubmissionToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post task date: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Warn("backend rejected task date",
			"task", td.CatalogID,
			"status", resp.StatusCode,
		)
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	return nil
}

// rfc1123GMT matches time.RFC1123 with the zone fixed to GMT, the form
// JavaScript's toUTCString emits and the service stores verbatim.
const rfc1123GMT = "Mon, 02 Jan 2006 15:04:05 GMT"

var _ session.Saver = (*Client)(nil)
