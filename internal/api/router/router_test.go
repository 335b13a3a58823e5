package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/STAYCALM1234/mabest-alum/config"
	"github.com/STAYCALM1234/mabest-alum/internal/api/handler"
	"github.com/STAYCALM1234/mabest-alum/internal/dto"
	"github.com/STAYCALM1234/mabest-alum/internal/service"
	"github.com/STAYCALM1234/mabest-alum/pkg/jwt"
	"github.com/STAYCALM1234/mabest-alum/pkg/response"
)

// ── stub services: every principal resolves to the role in stubSession ──

type stubSession struct{ role string }

func (s *stubSession) Resolve(_ context.Context, email string) (*service.Principal, error) {
	return &service.Principal{Role: s.role, Email: email}, nil
}
func (s *stubSession) Classify(_ context.Context, email string) (*service.Principal, error) {
	return &service.Principal{Role: s.role, Email: email}, nil
}
func (s *stubSession) Current(_ context.Context, _ string) (*dto.SessionResponse, error) {
	return &dto.SessionResponse{Role: s.role}, nil
}
func (s *stubSession) Login(_ context.Context, _ *dto.LoginRequest) (*dto.LoginResponse, error) {
	return &dto.LoginResponse{Role: s.role}, nil
}
func (s *stubSession) Logout(_ context.Context, _ string, _ time.Time) error { return nil }

type stubRegistration struct{}

func (stubRegistration) RegisterAlumni(_ context.Context, _ *dto.RegisterAlumniRequest) (*dto.RegisterResponse, error) {
	return &dto.RegisterResponse{}, nil
}
func (stubRegistration) RegisterAdmin(_ context.Context, _ *dto.RegisterAdminRequest) (*dto.RegisterResponse, error) {
	return &dto.RegisterResponse{}, nil
}
func (stubRegistration) Courses() []string { return []string{"Law"} }

type stubApproval struct{}

func (stubApproval) ListProfiles(_ context.Context, _ *dto.ProfileListRequest) (*dto.ProfileListResponse, error) {
	return &dto.ProfileListResponse{}, nil
}
func (stubApproval) SetApproval(_ context.Context, id string, approved bool) (*dto.AlumniResponse, error) {
	return &dto.AlumniResponse{ID: id, Approved: &approved}, nil
}
func (stubApproval) ExportProfiles(_ context.Context) (*bytes.Buffer, string, error) {
	return bytes.NewBufferString("x"), "a.xlsx", nil
}

type stubGallery struct{}

func (stubGallery) List(_ context.Context) ([]dto.GalleryImageResponse, error) {
	return []dto.GalleryImageResponse{}, nil
}
func (stubGallery) ListByUploader(_ context.Context, _ string) ([]dto.GalleryImageResponse, error) {
	return []dto.GalleryImageResponse{}, nil
}
func (stubGallery) Upload(_ context.Context, _ *service.UploadInput) (*dto.GalleryImageResponse, error) {
	return &dto.GalleryImageResponse{}, nil
}
func (stubGallery) Remove(_ context.Context, _, _ string) error { return nil }

func newEngine(role string, files http.FileSystem) (*gin.Engine, *jwt.Manager) {
	cfg := &config.Config{
		Server: config.ServerConfig{MaxBodyBytes: 1 << 20},
		Auth:   config.AuthConfig{JWTSecret: "router-test-secret", SessionTTL: time.Hour},
	}
	mgr := jwt.NewManager(&cfg.Auth)
	sess := &stubSession{role: role}
	h := &handler.Handler{
		Auth:     handler.NewAuthHandler(sess, stubRegistration{}),
		Approval: handler.NewApprovalHandler(stubApproval{}),
		Gallery:  handler.NewGalleryHandler(stubGallery{}),
	}
	return Setup(cfg, h, Deps{JWT: mgr, Resolver: sess, Files: files}, zap.NewNop()), mgr
}

func call(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(`{"approved":true}`))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicRoutes(t *testing.T) {
	r, _ := newEngine(dto.RoleNone, nil)

	for _, path := range []string{"/health", "/api/v1/gallery", "/api/v1/courses", "/api/v1/auth/session"} {
		if w := call(r, "GET", path, ""); w.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, w.Code)
		}
	}
}

func TestRouter_SessionWithoutTokenIsNone(t *testing.T) {
	r, _ := newEngine(dto.RoleAdmin, nil)

	w := call(r, "GET", "/api/v1/auth/session", "")
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	data, _ := resp.Data.(map[string]interface{})
	if data["role"] != dto.RoleNone {
		t.Errorf("expected role none without a token, got %v", data["role"])
	}
}

func TestRouter_RoleGates(t *testing.T) {
	cases := []struct {
		role   string
		method string
		path   string
		want   int
	}{
		{dto.RoleUser, "GET", "/api/v1/gallery/mine", http.StatusOK},
		{dto.RoleNone, "GET", "/api/v1/gallery/mine", http.StatusForbidden},
		{dto.RoleAdmin, "DELETE", "/api/v1/gallery/img-1", http.StatusForbidden},
		{dto.RoleAdmin, "GET", "/api/v1/admin/profiles", http.StatusOK},
		{dto.RoleAdmin, "PATCH", "/api/v1/admin/profiles/p1/approval", http.StatusOK},
		{dto.RoleUser, "GET", "/api/v1/admin/profiles", http.StatusForbidden},
		{dto.RoleNone, "PATCH", "/api/v1/admin/profiles/p1/approval", http.StatusForbidden},
	}
	for _, tc := range cases {
		r, mgr := newEngine(tc.role, nil)
		token, _, _ := mgr.GenerateSessionToken("u1", "a@x.com")

		if w := call(r, tc.method, tc.path, token); w.Code != tc.want {
			t.Errorf("%s %s as %s: expected %d, got %d", tc.method, tc.path, tc.role, tc.want, w.Code)
		}
	}
}

func TestRouter_PrivateRoutesNeedToken(t *testing.T) {
	r, _ := newEngine(dto.RoleAdmin, nil)

	for _, path := range []string{"/api/v1/gallery/mine", "/api/v1/admin/profiles"} {
		if w := call(r, "GET", path, ""); w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s: expected 401, got %d", path, w.Code)
		}
	}
	if w := call(r, "POST", "/api/v1/auth/logout", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("logout without token: expected 401, got %d", w.Code)
	}
}

func TestRouter_ServesLocalFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/u1/a.png", []byte("png"), 0o644)

	r, _ := newEngine(dto.RoleNone, afero.NewHttpFs(fs))
	w := call(r, "GET", "/files/u1/a.png", "")
	if w.Code != http.StatusOK || w.Body.String() != "png" {
		t.Errorf("expected stored file, got %d %q", w.Code, w.Body.String())
	}
}
