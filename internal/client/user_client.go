package client

import (
	"context"
	"errors"
	"fitcoach/platform/internal/domain"
	"fmt"
	"net/http"
	"net/url"
)

// UserClient talks to the user service. It satisfies both
// service.UserGateway and service.ProfileGateway.
type UserClient struct {
	baseClient
}

// NewUserClient creates a client for the user service at baseURL.
func NewUserClient(baseURL string) *UserClient {
	return &UserClient{baseClient: newBaseClient(baseURL)}
}

// CheckMapping asks whether an accepted trainer/member mapping exists.
// A 404 from the peer means the pair is simply not mapped.
func (c *UserClient) CheckMapping(ctx context.Context, token, trainerUID, memberUID string) (bool, error) {
	path := fmt.Sprintf("/api/v1/check-trainer-member-mapping/%s/%s",
		url.PathEscape(trainerUID), url.PathEscape(memberUID))

	var out struct {
		Exists bool `json:"exists"`
	}
	err := c.doJSON(ctx, http.MethodGet, path, token, nil, &out)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return out.Exists, nil
}

// AdjustSessions applies delta to the pair's credit balance. The token
// must belong to the trainer side; the peer enforces that.
func (c *UserClient) AdjustSessions(ctx context.Context, token, trainerUID, memberUID string, delta int) (int, error) {
	path := fmt.Sprintf("/api/v1/trainer-member-mapping/%s/update-sessions", url.PathEscape(memberUID))

	body := map[string]int{"sessions_to_add": delta}
	var out struct {
		RemainingSessions int `json:"remaining_sessions"`
	}
	if err := c.doJSON(ctx, http.MethodPatch, path, token, body, &out); err != nil {
		return 0, err
	}
	return out.RemainingSessions, nil
}

func (c *UserClient) TrainerByUID(ctx context.Context, token, uid string) (*domain.Trainer, error) {
	var trainer domain.Trainer
	path := "/api/v1/trainers/byuid/" + url.PathEscape(uid)
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &trainer); err != nil {
		return nil, err
	}
	return &trainer, nil
}

func (c *UserClient) MemberByUID(ctx context.Context, token, uid string) (*domain.Member, error) {
	var member domain.Member
	path := "/api/v1/members/byuid/" + url.PathEscape(uid)
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &member); err != nil {
		return nil, err
	}
	return &member, nil
}
