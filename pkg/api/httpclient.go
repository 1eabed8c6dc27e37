// Package api holds the typed clients for the remote EpicGather service. All
// HTTP status handling lives here: callers above this package only ever see
// the error taxonomy from pkg/errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	apperrors "gatherctl/pkg/errors"
)

// TokenSource supplies the bearer credential for authenticated calls. An
// empty string means the request goes out anonymous.
type TokenSource interface {
	Token() string
}

type anonymous struct{}

func (anonymous) Token() string { return "" }

// Anonymous is a TokenSource that never attaches a credential.
var Anonymous TokenSource = anonymous{}

type HttpClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
}

func NewHttpClient(baseURL string, timeout time.Duration, tokens TokenSource) *HttpClient {
	if tokens == nil {
		tokens = Anonymous
	}
	return &HttpClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		Tokens: tokens,
	}
}

type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

func (c *HttpClient) GET(ctx context.Context, path string) (*Response, error) {
	return c.request(ctx, http.MethodGet, path, nil)
}

func (c *HttpClient) POST(ctx context.Context, path string, body any) (*Response, error) {
	return c.request(ctx, http.MethodPost, path, body)
}

func (c *HttpClient) PUT(ctx context.Context, path string, body any) (*Response, error) {
	return c.request(ctx, http.MethodPut, path, body)
}

func (c *HttpClient) DELETE(ctx context.Context, path string) (*Response, error) {
	return c.request(ctx, http.MethodDelete, path, nil)
}

func (c *HttpClient) request(ctx context.Context, method, path string, body any) (*Response, error) {
	var reqBody io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	contentType := ""
	if body != nil {
		contentType = "application/json"
	}
	return c.do(ctx, method, path, reqBody, contentType)
}

// POSTMultipart uploads a single file field, used by the photo endpoints.
func (c *HttpClient) POSTMultipart(ctx context.Context, path, fieldName, fileName string, file io.Reader) (*Response, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, &buf, writer.FormDataContentType())
}

func (c *HttpClient) do(ctx context.Context, method, path string, reqBody io.Reader, contentType string) (*Response, error) {
	url := c.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.Tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, apperrors.OperationFailed("No response from server. Please try again later", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.OperationFailed("", fmt.Errorf("failed to read response body: %w", err))
	}

	return &Response{
		Response: resp,
		Body:     respBody,
	}, nil
}

// remoteMessage digs the human-readable message out of an error response
// body. The service wraps errors as {"message": ..., "code": ...}, but some
// proxies answer with other shapes, so every field is optional.
func remoteMessage(resp *Response) string {
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Code    string `json:"code"`
	}
	if err := resp.DecodeJSON(&errResp); err != nil {
		return ""
	}

	if errResp.Message != "" {
		return errResp.Message
	}
	if errResp.Error != "" {
		return errResp.Error
	}
	return errResp.Code
}

func decodeError(what string, err error) error {
	return apperrors.OperationFailed("", fmt.Errorf("could not decode %s: %w", what, err))
}

// errorFromResponse maps non-2xx outcomes onto the taxonomy. Endpoint
// specific cases (booking conflicts) are handled by the typed clients before
// falling back to this.
func errorFromResponse(resp *Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.AuthExpired().WithStatus(resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound("Resource").WithStatus(resp.StatusCode)
	case resp.StatusCode >= 400:
		return apperrors.OperationFailed(remoteMessage(resp), nil).WithStatus(resp.StatusCode)
	default:
		return nil
	}
}
