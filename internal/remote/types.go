package remote

import (
	"fmt"

	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/profile"
)

// ClusterInfo is one cluster of a program as listed by the server.
type ClusterInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Records int    `json:"records"`
}

// ClusterList is the response of GET /v1/programs/{program}/clusters.
type ClusterList struct {
	Program     model.Program `json:"program"`
	Explanation string        `json:"explanation"`
	Clusters    []ClusterInfo `json:"clusters"`
}

// ClusterSummary is the response of
// GET /v1/programs/{program}/clusters/{id}/summary.
type ClusterSummary struct {
	Program     model.Program  `json:"program"`
	Cluster     int            `json:"cluster"`
	Name        string         `json:"name"`
	Explanation string         `json:"explanation"`
	Summary     profile.Table  `json:"summary"`
	Detail      profile.Detail `json:"detail"`
}

// APIError is a non-2xx response carrying the server's error body.
type APIError struct {
	StatusCode int
	Message    string        `json:"error"`
	Program    model.Program `json:"program"`
}

func (e *APIError) Error() string {
	if e.Program != "" {
		return fmt.Sprintf("remote: %s (%s, status %d)", e.Message, e.Program, e.StatusCode)
	}
	return fmt.Sprintf("remote: %s (status %d)", e.Message, e.StatusCode)
}

// Unwrap maps status codes onto the package sentinels.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 400:
		return ErrBadRequest
	case 404:
		return ErrNotFound
	case 503:
		return ErrUnavailable
	}
	return nil
}
