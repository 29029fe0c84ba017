package recorder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sectionpulse/api/models"
)

// HTTPSubmitter posts records as JSON to the ingest endpoint.
type HTTPSubmitter struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTPSubmitter(endpoint string) *HTTPSubmitter {
	return &HTTPSubmitter{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSubmitter) Submit(ctx context.Context, record models.SessionRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode session record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build ingest request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send session record: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ingest endpoint responded with status %d", resp.StatusCode)
	}
	return nil
}
