package client

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/STAYCALM1234/mabest-alum/internal/dto"
	"github.com/STAYCALM1234/mabest-alum/pkg/storage"
)

// Checks the Store runs before any request is sent
var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrCaptionRequired  = errors.New("please add a caption")
	ErrNotSignedIn      = errors.New("sign in as an approved alumni to manage photos")
)

// Store is the application state shared by a front end: the resolved
// principal, the administrator's profile list and the gallery cache.
// Resolution runs on Load and on every explicit Login; there is no background refresh.
type Store struct {
	api       *Client
	maxUpload int64

	mu      sync.RWMutex
	loading bool
	session dto.SessionResponse
	images  []dto.GalleryImageResponse
}

// NewStore creates a Store in the loading state
func NewStore(api *Client) *Store {
	return &Store{
		api:       api,
		maxUpload: storage.DefaultMaxImageBytes,
		loading:   true,
		session:   dto.SessionResponse{Role: dto.RoleNone},
	}
}

// Load resolves the session once. Any failure resolves to role "none".
func (s *Store) Load(ctx context.Context) error {
	s.setLoading()

	sess, err := s.api.Session(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.session = dto.SessionResponse{Role: dto.RoleNone}
		return err
	}
	s.session = *sess
	return nil
}

// Loading is true until the current resolution completes
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Role current classification: "admin", "user" or "none"
func (s *Store) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Role
}

// Principal a copy of the resolved session
func (s *Store) Principal() dto.SessionResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.session
	p.Applications = append([]dto.AlumniResponse(nil), s.session.Applications...)
	return p
}

// Login signs in with the given login type and adopts the resolved principal.
// On failure the previous principal and its token are kept, so the Store
// never reports a role the client's credentials disagree with.
func (s *Store) Login(ctx context.Context, email, password, loginType string) (string, error) {
	s.setLoading()

	resp, err := s.api.Login(ctx, dto.LoginRequest{Email: email, Password: password, Type: loginType})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		return s.session.Role, err
	}
	s.session = resp.Session
	s.session.Role = resp.Role
	return resp.Role, nil
}

// Logout revokes the session and clears the principal even when revocation fails
func (s *Store) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)

	s.mu.Lock()
	s.session = dto.SessionResponse{Role: dto.RoleNone}
	s.mu.Unlock()
	return err
}

// RegisterAlumni registers a pending alumni. The caller is not signed in;
// a successful result leads to the pending-verification page.
func (s *Store) RegisterAlumni(ctx context.Context, req dto.RegisterAlumniRequest) (*dto.RegisterResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	return s.api.RegisterAlumni(ctx, req)
}

// RegisterAdmin registers an administrator; the setup key is checked by the server
func (s *Store) RegisterAdmin(ctx context.Context, req dto.RegisterAdminRequest) (*dto.RegisterResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	return s.api.RegisterAdmin(ctx, req)
}

// ── Approval ──

// Applications the cached profile list, prefetched for administrators
func (s *Store) Applications() []dto.AlumniResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]dto.AlumniResponse(nil), s.session.Applications...)
}

// RefreshApplications reloads the profile list
func (s *Store) RefreshApplications(ctx context.Context) error {
	list, err := s.api.ListProfiles(ctx, "", "")
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.session.Applications = list.Profiles
	s.mu.Unlock()
	return nil
}

// SetApproval updates one profile and patches the cached row by id without reloading
func (s *Store) SetApproval(ctx context.Context, id string, approved bool) error {
	updated, err := s.api.SetApproval(ctx, id, approved)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.session.Applications {
		if s.session.Applications[i].ID == id {
			s.session.Applications[i].Approved = updated.Approved
			s.session.Applications[i].Status = updated.Status
			break
		}
	}
	return nil
}

// ── Gallery ──

// RefreshImages reloads the gallery cache
func (s *Store) RefreshImages(ctx context.Context) error {
	list, err := s.api.Images(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.images = list
	s.mu.Unlock()
	return nil
}

// Images the cached gallery, newest first
func (s *Store) Images() []dto.GalleryImageResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]dto.GalleryImageResponse(nil), s.images...)
}

// MyImages the cached images uploaded by the signed-in alumni
func (s *Store) MyImages() []dto.GalleryImageResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email := s.ownerEmail()
	if email == "" {
		return nil
	}
	var mine []dto.GalleryImageResponse
	for _, img := range s.images {
		if strings.EqualFold(img.UploadedBy, email) {
			mine = append(mine, img)
		}
	}
	return mine
}

// CanDelete reports whether delete should be offered for img
func (s *Store) CanDelete(img dto.GalleryImageResponse) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email := s.ownerEmail()
	return email != "" && strings.EqualFold(img.UploadedBy, email)
}

// Upload validates type, size and caption locally, uploads, then refreshes the gallery
func (s *Store) Upload(ctx context.Context, filename, contentType string, size int64, r io.Reader, caption string) (*dto.GalleryImageResponse, error) {
	if err := storage.ValidateImage(contentType, size, s.maxUpload); err != nil {
		return nil, err
	}
	if strings.TrimSpace(caption) == "" {
		return nil, ErrCaptionRequired
	}
	if s.Role() != dto.RoleUser {
		return nil, ErrNotSignedIn
	}

	img, err := s.api.UploadImage(ctx, filename, contentType, r, caption)
	if err != nil {
		return nil, err
	}

	if err := s.RefreshImages(ctx); err != nil {
		s.mu.Lock()
		s.images = append([]dto.GalleryImageResponse{*img}, s.images...)
		s.mu.Unlock()
	}
	return img, nil
}

// RemoveImage deletes an image and drops it from the cache
func (s *Store) RemoveImage(ctx context.Context, id string) error {
	if err := s.api.RemoveImage(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.images {
		if s.images[i].ID == id {
			s.images = append(s.images[:i], s.images[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) setLoading() {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
}

// ownerEmail requires s.mu held
func (s *Store) ownerEmail() string {
	if s.session.Role != dto.RoleUser || s.session.Profile == nil {
		return ""
	}
	return s.session.Profile.Email
}
