// Package clockify implements ports.ClockifyClient against the Clockify
// API v1.
package clockify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jordanamos/clockify-invoice/internal/domain"
)

// WireTimeFormat is the fixed UTC timestamp convention of the Clockify API.
const WireTimeFormat = "2006-01-02T15:04:05Z"

// Client implements ports.ClockifyClient. Authentication is a static API key
// attached to every request. No retries are performed at this layer.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *slog.Logger
}

func NewClient(baseURL, apiKey string, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.clockify.me/api/v1"
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// GetUser fetches the current user. GET /user
func (c *Client) GetUser(ctx context.Context) (domain.User, error) {
	var raw rawUser
	if err := c.get(ctx, "/user", nil, &raw); err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:               raw.ID,
		Name:             raw.Name,
		Email:            raw.Email,
		DefaultWorkspace: raw.DefaultWorkspace,
		ActiveWorkspace:  raw.ActiveWorkspace,
		TimeZone:         raw.Settings.TimeZone,
	}, nil
}

// GetWorkspaces fetches all workspaces visible to the key. GET /workspaces
func (c *Client) GetWorkspaces(ctx context.Context) ([]domain.Workspace, error) {
	var raw []rawWorkspace
	if err := c.get(ctx, "/workspaces", nil, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Workspace, 0, len(raw))
	for _, w := range raw {
		out = append(out, domain.Workspace{ID: w.ID, Name: w.Name})
	}
	return out, nil
}

// GetTimeEntries fetches time entries for a workspace/user pair, optionally
// bounded by [since, until]. Bounds are sent in the API's fixed UTC format.
// GET /workspaces/{workspace}/user/{user}/time-entries
func (c *Client) GetTimeEntries(ctx context.Context, workspaceID, userID string, since, until *time.Time) ([]domain.TimeEntry, error) {
	path := fmt.Sprintf("/workspaces/%s/user/%s/time-entries", workspaceID, userID)
	query := url.Values{}
	if since != nil {
		query.Set("start", since.UTC().Format(WireTimeFormat))
	}
	if until != nil {
		query.Set("end", until.UTC().Format(WireTimeFormat))
	}
	var raw []rawTimeEntry
	if err := c.get(ctx, path, query, &raw); err != nil {
		return nil, err
	}

	out := make([]domain.TimeEntry, 0, len(raw))
	for _, r := range raw {
		start, err := time.Parse(WireTimeFormat, r.TimeInterval.Start)
		if err != nil {
			return nil, &ProtocolError{Err: fmt.Errorf("time entry %s: bad start %q: %w", r.ID, r.TimeInterval.Start, err)}
		}
		var endPtr *time.Time
		if r.TimeInterval.End != nil {
			end, err := time.Parse(WireTimeFormat, *r.TimeInterval.End)
			if err != nil {
				return nil, &ProtocolError{Err: fmt.Errorf("time entry %s: bad end %q: %w", r.ID, *r.TimeInterval.End, err)}
			}
			endPtr = &end
		}
		out = append(out, domain.TimeEntry{
			ID:          r.ID,
			Start:       start,
			End:         endPtr,
			Description: r.Description,
			UserID:      r.UserID,
			WorkspaceID: r.WorkspaceID,
		})
	}
	return out, nil
}

// get performs one GET round trip and decodes the JSON response into v.
func (c *Client) get(ctx context.Context, path string, query url.Values, v any) error {
	if c.apiKey == "" {
		return ErrCredentialMissing
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &RequestError{Status: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &ProtocolError{Err: err}
	}
	c.log.Debug("clockify request", slog.String("path", path), slog.Int("status", resp.StatusCode))
	return nil
}

// rawUser mirrors the JSON from GET /user.
type rawUser struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	DefaultWorkspace string `json:"defaultWorkspace"`
	ActiveWorkspace  string `json:"activeWorkspace"`
	Settings         struct {
		TimeZone string `json:"timeZone"`
	} `json:"settings"`
}

type rawWorkspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// rawTimeEntry mirrors the JSON from the time-entries endpoint. The interval
// carries a reported duration too, but it is deliberately not mapped: the
// synchronizer recomputes durations from start and end.
type rawTimeEntry struct {
	ID           string `json:"id"`
	Description  string `json:"description"`
	UserID       string `json:"userId"`
	WorkspaceID  string `json:"workspaceId"`
	TimeInterval struct {
		Start string  `json:"start"`
		End   *string `json:"end"`
	} `json:"timeInterval"`
}
