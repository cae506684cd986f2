package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lessonlink/internal/config"
)

// HTTPSource lists meetings and users from the provider's REST API.
type HTTPSource struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPSource builds a source from the loaded provider configuration.
func NewHTTPSource(cfg config.Source) *HTTPSource {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.APIToken,
		client:  &http.Client{Timeout: timeout},
	}
}

type meetingsPage struct {
	Meetings []MeetingCandidate `json:"meetings"`
}

type usersPage struct {
	Users []UserCandidate `json:"users"`
}

// ListMeetings fetches one page of the meeting listing.
func (s *HTTPSource) ListMeetings(ctx context.Context, page, pageSize int) ([]MeetingCandidate, error) {
	var body meetingsPage
	if err := s.get(ctx, "/meetings", page, pageSize, &body); err != nil {
		return nil, err
	}
	return body.Meetings, nil
}

// ListUsers fetches one page of the user listing.
func (s *HTTPSource) ListUsers(ctx context.Context, page, pageSize int) ([]UserCandidate, error) {
	var body usersPage
	if err := s.get(ctx, "/users", page, pageSize, &body); err != nil {
		return nil, err
	}
	return body.Users, nil
}

func (s *HTTPSource) get(ctx context.Context, path string, page, pageSize int, out any) error {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(pageSize))
	endpoint := s.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
