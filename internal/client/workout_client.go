package client

import (
	"context"
	"fitcoach/platform/internal/domain"
	"net/http"
	"net/url"
	"time"
)

// WorkoutClient talks to the workout service. It satisfies
// service.WorkoutGateway.
type WorkoutClient struct {
	baseClient
}

// NewWorkoutClient creates a client for the workout service at baseURL.
func NewWorkoutClient(baseURL string) *WorkoutClient {
	return &WorkoutClient{baseClient: newBaseClient(baseURL)}
}

func (c *WorkoutClient) LastSessionUpdate(ctx context.Context, token, memberUID string) (*time.Time, error) {
	path := "/api/v1/last-session-update/" + url.PathEscape(memberUID)

	var out struct {
		LastSessionUpdate *time.Time `json:"last_session_update"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out.LastSessionUpdate, nil
}

func (c *WorkoutClient) SessionCounts(ctx context.Context, token, memberUID string, start, end time.Time) (*domain.SessionCounts, error) {
	query := url.Values{}
	query.Set("start_date", start.Format(time.RFC3339))
	query.Set("end_date", end.Format(time.RFC3339))
	path := "/api/v1/session-counts/" + url.PathEscape(memberUID) + "?" + query.Encode()

	var counts domain.SessionCounts
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &counts); err != nil {
		return nil, err
	}
	return &counts, nil
}
