package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apperrors "gatherctl/pkg/errors"
	"gatherctl/pkg/model"
)

type EventClient struct {
	httpClient *HttpClient
}

func NewEventClient(baseURL string, timeout time.Duration, tokens TokenSource) *EventClient {
	return &EventClient{
		httpClient: NewHttpClient(baseURL, timeout, tokens),
	}
}

func (c *EventClient) List(ctx context.Context, page, size int) (*model.Page[model.Event], error) {
	path := fmt.Sprintf("/event?page=%d&size=%d", page, size)
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}

	var events model.Page[model.Event]
	if err := resp.DecodeJSON(&events); err != nil {
		return nil, decodeError("event list", err)
	}
	return &events, nil
}

func (c *EventClient) Get(ctx context.Context, id int) (*model.Event, error) {
	resp, err := c.httpClient.GET(ctx, fmt.Sprintf("/event/%d", id))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.NotFound("Event").WithStatus(resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}

	var event model.Event
	if err := resp.DecodeJSON(&event); err != nil {
		return nil, decodeError("event", err)
	}
	return &event, nil
}
