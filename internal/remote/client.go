// Package remote provides a client for a running aidboard HTTP server.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/server"
)

const (
	requestTimeout = 10 * time.Second
	maxBodySize    = 8 << 20 // 8 MB
)

var (
	// ErrBadRequest indicates the server rejected a parameter.
	ErrBadRequest = errors.New("remote: bad request")
	// ErrNotFound indicates an unknown program, missing extract, or unknown route.
	ErrNotFound = errors.New("remote: not found")
	// ErrUnavailable indicates the server could not load its extracts.
	ErrUnavailable = errors.New("remote: unavailable")
)

// Client queries the aidboard JSON API.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for addr, either host:port or a full URL.
// Returns nil if addr is empty.
func NewClient(addr string) *Client {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return &Client{
		base: strings.TrimRight(addr, "/"),
		http: &http.Client{},
	}
}

// Status returns the server's runtime status.
func (c *Client) Status(ctx context.Context) (*server.Status, error) {
	var st server.Status
	if err := c.get(ctx, "/v1/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Events returns the recent file-change events kept by the server.
func (c *Client) Events(ctx context.Context) ([]server.Event, error) {
	var events []server.Event
	if err := c.get(ctx, "/v1/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Clusters lists a program's clusters, restricted to years when given.
func (c *Client) Clusters(ctx context.Context, p model.Program, years ...int) (*ClusterList, error) {
	var list ClusterList
	path := "/v1/programs/" + url.PathEscape(string(p)) + "/clusters"
	if err := c.get(ctx, path, yearQuery(years), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ClusterSummary fetches the summary table and drill-down of one cluster.
func (c *Client) ClusterSummary(ctx context.Context, p model.Program, id int, years ...int) (*ClusterSummary, error) {
	var cs ClusterSummary
	path := fmt.Sprintf("/v1/programs/%s/clusters/%d/summary", url.PathEscape(string(p)), id)
	if err := c.get(ctx, path, yearQuery(years), &cs); err != nil {
		return nil, err
	}
	return &cs, nil
}

func yearQuery(years []int) url.Values {
	if len(years) == 0 {
		return nil
	}
	q := url.Values{}
	for _, y := range years {
		q.Add("year", strconv.Itoa(y))
	}
	return q
}

// get performs a GET request and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("remote: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "aidboard/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("remote: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(body, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("remote: parsing %s: %w", path, err)
	}
	return nil
}
