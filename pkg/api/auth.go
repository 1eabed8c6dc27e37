package api

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

type AuthClient struct {
	httpClient *HttpClient
}

// NewAuthClient builds a client for the /auth endpoints. They are the only
// ones callable without a session, so no token source is attached.
func NewAuthClient(baseURL string, timeout time.Duration) *AuthClient {
	return &AuthClient{
		httpClient: NewHttpClient(baseURL, timeout, Anonymous),
	}
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	IsAdmin      bool   `json:"isAdmin"`
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
}

type Registration struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Gender    string `json:"gender"`
	BirthDate string `json:"birthDate"`
}

func (c *AuthClient) Authenticate(ctx context.Context, creds Credentials) (*AuthResult, error) {
	resp, err := c.httpClient.POST(ctx, "/auth/authenticate", creds)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}

	var result AuthResult
	if err := resp.DecodeJSON(&result); err != nil {
		return nil, decodeError("authentication response", err)
	}
	return &result, nil
}

func (c *AuthClient) Register(ctx context.Context, reg Registration) error {
	resp, err := c.httpClient.POST(ctx, "/auth/register", reg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}
	return nil
}

// Refresh trades the refresh token for a fresh bearer token. The refresh
// protocol itself (rotation, revocation) is the server's business.
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	body := map[string]string{"refreshToken": refreshToken}
	resp, err := c.httpClient.POST(ctx, "/auth/refresh-token", body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}

	var result AuthResult
	if err := resp.DecodeJSON(&result); err != nil {
		return nil, decodeError("refresh response", err)
	}
	return &result, nil
}

func (c *AuthClient) ActivateAccount(ctx context.Context, token string) error {
	resp, err := c.httpClient.GET(ctx, "/auth/activate-account?token="+url.QueryEscape(token))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}
	return nil
}

func (c *AuthClient) ForgotPassword(ctx context.Context, email string) error {
	resp, err := c.httpClient.POST(ctx, "/auth/forgot-password", map[string]string{"email": email})
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}
	return nil
}

func (c *AuthClient) ResetPassword(ctx context.Context, token, newPassword string) error {
	path := "/auth/reset-password?token=" + url.QueryEscape(token)
	resp, err := c.httpClient.POST(ctx, path, map[string]string{"password": newPassword})
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}
	return nil
}
