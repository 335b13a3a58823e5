// Package client is a typed Go client for the alumni API plus the
// application-state Store that front ends build on.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/STAYCALM1234/mabest-alum/internal/dto"
)

// APIError a non-2xx reply, carrying the envelope's code and message
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return e.Message
}

// IsCode reports whether err is an *APIError with the given business code
func IsCode(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to /api/v1. It holds the bearer token of the current session.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken starts the client with an existing session token
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a Client for the server at baseURL (e.g. "http://localhost:8080")
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current bearer token, empty when signed out
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ── Auth ──

// Session resolves the current principal; without a token the server answers role "none"
func (c *Client) Session(ctx context.Context) (*dto.SessionResponse, error) {
	var out dto.SessionResponse
	if err := c.doJSON(ctx, http.MethodGet, "/auth/session", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login signs in and keeps the returned token
func (c *Client) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	c.setToken(out.AccessToken)
	return &out, nil
}

// Logout revokes the session server-side. The local token is dropped even when the call fails.
func (c *Client) Logout(ctx context.Context) error {
	if c.Token() == "" {
		return nil
	}
	err := c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.setToken("")
	return err
}

// RegisterAlumni creates a pending alumni account
func (c *Client) RegisterAlumni(ctx context.Context, req dto.RegisterAlumniRequest) (*dto.RegisterResponse, error) {
	var out dto.RegisterResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterAdmin creates an administrator account
func (c *Client) RegisterAdmin(ctx context.Context, req dto.RegisterAdminRequest) (*dto.RegisterResponse, error) {
	var out dto.RegisterResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/admin-register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Courses lists the course catalogue
func (c *Client) Courses(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.doJSON(ctx, http.MethodGet, "/courses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ── Approval ──

// ListProfiles admin dashboard list; empty filters mean all
func (c *Client) ListProfiles(ctx context.Context, status, keyword string) (*dto.ProfileListResponse, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if keyword != "" {
		q.Set("keyword", keyword)
	}
	path := "/admin/profiles"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out dto.ProfileListResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetApproval approves or rejects one profile and returns the updated row
func (c *Client) SetApproval(ctx context.Context, id string, approved bool) (*dto.AlumniResponse, error) {
	var out dto.AlumniResponse
	body := dto.SetApprovalRequest{Approved: &approved}
	if err := c.doJSON(ctx, http.MethodPatch, "/admin/profiles/"+url.PathEscape(id)+"/approval", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportProfiles downloads the profile spreadsheet
func (c *Client) ExportProfiles(ctx context.Context) ([]byte, string, error) {
	resp, err := c.send(ctx, http.MethodGet, "/admin/profiles/export", nil, "")
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, "", decodeError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read export: %w", err)
	}

	filename := "alumni.xlsx"
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if name := params["filename"]; name != "" {
			filename = name
		}
	}
	return data, filename, nil
}

// ── Gallery ──

// Images lists all gallery images, newest first
func (c *Client) Images(ctx context.Context) ([]dto.GalleryImageResponse, error) {
	var out []dto.GalleryImageResponse
	if err := c.doJSON(ctx, http.MethodGet, "/gallery", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyImages lists the caller's uploads
func (c *Client) MyImages(ctx context.Context) ([]dto.GalleryImageResponse, error) {
	var out []dto.GalleryImageResponse
	if err := c.doJSON(ctx, http.MethodGet, "/gallery/mine", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadImage posts one image as multipart/form-data
func (c *Client) UploadImage(ctx context.Context, filename, contentType string, r io.Reader, caption string) (*dto.GalleryImageResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if err := mw.WriteField("caption", caption); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, http.MethodPost, "/gallery", &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out dto.GalleryImageResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveImage deletes one of the caller's images
func (c *Client) RemoveImage(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/gallery/"+url.PathEscape(id), nil, nil)
}

// ── transport ──

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	resp, err := c.send(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(resp, out)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1"+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func decode(resp *http.Response, out any) error {
	if resp.StatusCode/100 != 2 {
		return decodeError(resp)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Code != 0 {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err == nil {
		apiErr.Code = env.Code
		apiErr.Message = env.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
