package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"gatherctl/pkg/model"
)

type ProfileClient struct {
	httpClient *HttpClient
}

func NewProfileClient(baseURL string, timeout time.Duration, tokens TokenSource) *ProfileClient {
	return &ProfileClient{
		httpClient: NewHttpClient(baseURL, timeout, tokens),
	}
}

func (c *ProfileClient) Get(ctx context.Context) (*model.Profile, error) {
	resp, err := c.httpClient.GET(ctx, "/user/profile")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}

	var profile model.Profile
	if err := resp.DecodeJSON(&profile); err != nil {
		return nil, decodeError("profile", err)
	}
	return &profile, nil
}

type ProfileUpdate struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (c *ProfileClient) Update(ctx context.Context, update ProfileUpdate) (*model.Profile, error) {
	resp, err := c.httpClient.PUT(ctx, "/user/profile", update)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}

	var profile model.Profile
	if err := resp.DecodeJSON(&profile); err != nil {
		return nil, decodeError("profile", err)
	}
	return &profile, nil
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (c *ProfileClient) ChangePassword(ctx context.Context, change PasswordChange) error {
	resp, err := c.httpClient.PUT(ctx, "/user/change-password", change)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}
	return nil
}

// UploadPhoto sends the profile picture as a multipart form. Returns the URL
// the service stored it under.
func (c *ProfileClient) UploadPhoto(ctx context.Context, fileName string, photo io.Reader) (string, error) {
	resp, err := c.httpClient.POSTMultipart(ctx, "/user/profile/photo", "file", fileName, photo)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", errorFromResponse(resp)
	}

	var result struct {
		PhotoURL string `json:"photoUrl"`
	}
	if err := resp.DecodeJSON(&result); err != nil {
		return "", decodeError("photo response", err)
	}
	return result.PhotoURL, nil
}
