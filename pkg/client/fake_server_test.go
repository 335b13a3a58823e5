package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/STAYCALM1234/mabest-alum/internal/dto"
)

func boolPtr(b bool) *bool { return &b }

type fakeLogin struct {
	password string
	token    string
	role     string
	session  dto.SessionResponse
	// a non-zero failStatus rejects the login with failCode
	failStatus int
	failCode   int
	failMsg    string
}

type uploadSeen struct {
	filename    string
	contentType string
	caption     string
	size        int
}

// fakeAPI mimics the server's routes and response envelope
type fakeAPI struct {
	t *testing.T

	mu        sync.Mutex
	requests  int
	listCalls int
	logins    map[string]fakeLogin // email|type
	sessions  map[string]dto.SessionResponse
	revoked   []string
	profiles  []dto.AlumniResponse
	images    []dto.GalleryImageResponse
	uploads   []uploadSeen
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{
		t:        t,
		logins:   make(map[string]fakeLogin),
		sessions: make(map[string]dto.SessionResponse),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/auth/session", f.session)
	mux.HandleFunc("POST /api/v1/auth/login", f.login)
	mux.HandleFunc("POST /api/v1/auth/logout", f.logout)
	mux.HandleFunc("POST /api/v1/auth/register", f.register)
	mux.HandleFunc("POST /api/v1/auth/admin-register", f.register)
	mux.HandleFunc("GET /api/v1/admin/profiles", f.listProfiles)
	mux.HandleFunc("PATCH /api/v1/admin/profiles/{id}/approval", f.setApproval)
	mux.HandleFunc("GET /api/v1/gallery", f.listImages)
	mux.HandleFunc("POST /api/v1/gallery", f.upload)
	mux.HandleFunc("DELETE /api/v1/gallery/{id}", f.removeImage)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests++
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAPI) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func writeEnvelope(w http.ResponseWriter, status, code int, msg string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{"code": code, "message": msg}
	if data != nil {
		body["data"] = data
	}
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, data any) { writeEnvelope(w, http.StatusOK, 0, "success", data) }

func (f *fakeAPI) bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func (f *fakeAPI) session(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sess, found := f.sessions[f.bearer(r)]; found {
		writeOK(w, sess)
		return
	}
	writeOK(w, dto.SessionResponse{Role: dto.RoleNone})
}

func (f *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, 10001, "bad request", nil)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	l, found := f.logins[req.Email+"|"+req.Type]
	if !found || l.password != req.Password {
		writeEnvelope(w, http.StatusUnauthorized, 11001, "invalid email or password", nil)
		return
	}
	if l.failStatus != 0 {
		writeEnvelope(w, l.failStatus, l.failCode, l.failMsg, nil)
		return
	}
	f.sessions[l.token] = l.session
	writeOK(w, dto.LoginResponse{AccessToken: l.token, ExpiresIn: 3600, Role: l.role, Session: l.session})
}

func (f *fakeAPI) logout(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := f.bearer(r)
	delete(f.sessions, token)
	f.revoked = append(f.revoked, token)
	writeOK(w, nil)
}

func (f *fakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body["email"] == "taken@x.com" {
		writeEnvelope(w, http.StatusConflict, 12004, "email already registered", nil)
		return
	}
	status := "pending"
	if strings.HasSuffix(r.URL.Path, "admin-register") {
		status = "active"
	}
	writeEnvelope(w, http.StatusCreated, 0, "success", dto.RegisterResponse{ID: "new-id", Email: body["email"], Status: status})
}

func (f *fakeAPI) listProfiles(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	writeOK(w, dto.ProfileListResponse{Profiles: f.profiles})
}

func (f *fakeAPI) setApproval(w http.ResponseWriter, r *http.Request) {
	var req dto.SetApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Approved == nil {
		writeEnvelope(w, http.StatusBadRequest, 10001, "approved must be true or false", nil)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.profiles {
		if f.profiles[i].ID == r.PathValue("id") {
			f.profiles[i].Approved = boolPtr(*req.Approved)
			f.profiles[i].Status = "rejected"
			if *req.Approved {
				f.profiles[i].Status = "approved"
			}
			writeOK(w, f.profiles[i])
			return
		}
	}
	writeEnvelope(w, http.StatusNotFound, 13001, "profile not found", nil)
}

func (f *fakeAPI) listImages(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeOK(w, f.images)
}

func (f *fakeAPI) upload(w http.ResponseWriter, r *http.Request) {
	file, fh, err := r.FormFile("file")
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, 14006, "please choose a file to upload", nil)
		return
	}
	defer file.Close()
	data, _ := io.ReadAll(file)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, uploadSeen{
		filename:    fh.Filename,
		contentType: fh.Header.Get("Content-Type"),
		caption:     r.FormValue("caption"),
		size:        len(data),
	})

	sess := f.sessions[f.bearer(r)]
	img := dto.GalleryImageResponse{
		ID:         "img-new",
		URL:        "https://cdn.test/gallery/" + fh.Filename,
		Caption:    r.FormValue("caption"),
		UploadedBy: sess.Profile.Email,
		UploadedAt: time.Now(),
	}
	f.images = append([]dto.GalleryImageResponse{img}, f.images...)
	writeEnvelope(w, http.StatusCreated, 0, "success", img)
}

func (f *fakeAPI) removeImage(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.images {
		if f.images[i].ID == r.PathValue("id") {
			f.images = append(f.images[:i], f.images[i+1:]...)
			writeOK(w, nil)
			return
		}
	}
	writeEnvelope(w, http.StatusNotFound, 14004, "image not found", nil)
}
