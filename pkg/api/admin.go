package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"gatherctl/pkg/model"
)

// AdminClient covers the management surface. Every call requires an admin
// session; the service answers 403 for standard accounts, which surfaces as
// OPERATION_FAILED here because the admission gate is supposed to stop these
// calls before they are made.
type AdminClient struct {
	httpClient *HttpClient
}

func NewAdminClient(baseURL string, timeout time.Duration, tokens TokenSource) *AdminClient {
	return &AdminClient{
		httpClient: NewHttpClient(baseURL, timeout, tokens),
	}
}

type EventRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	EventDate   string   `json:"eventDate"`
	Price       float64  `json:"price"`
	Venue       string   `json:"venue"`
	Category    string   `json:"category"`
	Capacity    int      `json:"capacity"`
	Tags        []string `json:"tags"`
}

func (c *AdminClient) CreateEvent(ctx context.Context, req EventRequest) (*model.Event, error) {
	resp, err := c.httpClient.POST(ctx, "/admin/event", req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errorFromResponse(resp)
	}

	var event model.Event
	if err := resp.DecodeJSON(&event); err != nil {
		return nil, decodeError("event", err)
	}
	return &event, nil
}

func (c *AdminClient) UpdateEvent(ctx context.Context, id int, req EventRequest) (*model.Event, error) {
	resp, err := c.httpClient.PUT(ctx, fmt.Sprintf("/admin/event/%d/update", id), req)
	if err != nil {
		return nil, err
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

// CanDeleteEvent asks whether an event still has live bookings attached. The
// admin UI checks this before offering deletion.
func (c *AdminClient) CanDeleteEvent(ctx context.Context, id int) (bool, error) {
	resp, err := c.httpClient.GET(ctx, fmt.Sprintf("/admin/event/%d/can-delete", id))
	if err != nil {
		return false, err
	}
	if resp.StatusCode != http.StatusOK {
		return false, errorFromResponse(resp)
	}

	var result struct {
		CanDelete bool `json:"canDelete"`
	}
	if err := resp.DecodeJSON(&result); err != nil {
		return false, decodeError("can-delete response", err)
	}
	return result.CanDelete, nil
}

func (c *AdminClient) DeleteEvent(ctx context.Context, id int) error {
	resp, err := c.httpClient.DELETE(ctx, fmt.Sprintf("/admin/event/%d", id))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}
	return nil
}

func (c *AdminClient) UploadEventPhoto(ctx context.Context, eventID int, fileName string, photo io.Reader) error {
	path := fmt.Sprintf("/admin/event/%d/photo", eventID)
	resp, err := c.httpClient.POSTMultipart(ctx, path, "file", fileName, photo)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}
	return nil
}

func (c *AdminClient) SearchUsers(ctx context.Context, query string, page, size int) (*model.Page[model.User], error) {
	path := fmt.Sprintf("/admin/users?query=%s&page=%d&size=%d", url.QueryEscape(query), page, size)
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}

	var users model.Page[model.User]
	if err := resp.DecodeJSON(&users); err != nil {
		return nil, decodeError("user list", err)
	}
	return &users, nil
}

func (c *AdminClient) SetUserRole(ctx context.Context, userID int, isAdmin bool) error {
	body := map[string]bool{"isAdmin": isAdmin}
	resp, err := c.httpClient.PUT(ctx, fmt.Sprintf("/admin/users/%d/role", userID), body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}
	return nil
}

func (c *AdminClient) ListTags(ctx context.Context) ([]model.Tag, error) {
	resp, err := c.httpClient.GET(ctx, "/admin/tags")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}

	var tags []model.Tag
	if err := resp.DecodeJSON(&tags); err != nil {
		return nil, decodeError("tag list", err)
	}
	return tags, nil
}

func (c *AdminClient) CreateTag(ctx context.Context, name string) (*model.Tag, error) {
	resp, err := c.httpClient.POST(ctx, "/admin/tags", map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errorFromResponse(resp)
	}

	var tag model.Tag
	if err := resp.DecodeJSON(&tag); err != nil {
		return nil, decodeError("tag", err)
	}
	return &tag, nil
}
