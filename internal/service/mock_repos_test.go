package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/STAYCALM1234/mabest-alum/config"
	"github.com/STAYCALM1234/mabest-alum/internal/model"
	"github.com/STAYCALM1234/mabest-alum/internal/repository"
	"github.com/STAYCALM1234/mabest-alum/pkg/events"
	"github.com/STAYCALM1234/mabest-alum/pkg/jwt"
)

var errBackend = errors.New("backend unavailable")

// testClock hands out strictly increasing timestamps so ordering is deterministic
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

// ── Mock CredentialRepository ──

type mockCredentialRepo struct {
	creds     map[string]*model.Credential // key: email
	createErr error
	deleted   []string
}

func newMockCredentialRepo() *mockCredentialRepo {
	return &mockCredentialRepo{creds: make(map[string]*model.Credential)}
}

func (m *mockCredentialRepo) Create(_ context.Context, cred *model.Credential) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.creds[cred.Email]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.creds[cred.Email] = cred
	return nil
}

func (m *mockCredentialRepo) GetByEmail(_ context.Context, email string) (*model.Credential, error) {
	if c, ok := m.creds[email]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCredentialRepo) Delete(_ context.Context, id string) error {
	for email, c := range m.creds {
		if c.CredentialID == id {
			delete(m.creds, email)
		}
	}
	m.deleted = append(m.deleted, id)
	return nil
}

// ── Mock AdminRepository ──

type mockAdminRepo struct {
	admins    map[string]*model.Admin // key: email
	clock     *testClock
	createErr error
}

func newMockAdminRepo(clock *testClock) *mockAdminRepo {
	return &mockAdminRepo{admins: make(map[string]*model.Admin), clock: clock}
}

func (m *mockAdminRepo) Create(_ context.Context, admin *model.Admin) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.admins[admin.Email]; ok {
		return gorm.ErrDuplicatedKey
	}
	admin.CreatedAt = m.clock.Now()
	m.admins[admin.Email] = admin
	return nil
}

func (m *mockAdminRepo) GetByEmail(_ context.Context, email string) (*model.Admin, error) {
	if a, ok := m.admins[email]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock AlumniRepository ──

type mockAlumniRepo struct {
	rows      map[string]*model.Alumni // key: alumni_id
	clock     *testClock
	createErr error
	listErr   error
	updates   int
}

func newMockAlumniRepo(clock *testClock) *mockAlumniRepo {
	return &mockAlumniRepo{rows: make(map[string]*model.Alumni), clock: clock}
}

func (m *mockAlumniRepo) Create(_ context.Context, a *model.Alumni) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, row := range m.rows {
		if row.Email == a.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	a.CreatedAt = m.clock.Now()
	a.UpdatedAt = a.CreatedAt
	m.rows[a.AlumniID] = a
	return nil
}

// errUUIDSyntax mirrors Postgres rejecting a malformed uuid literal
var errUUIDSyntax = errors.New(`ERROR: invalid input syntax for type uuid (SQLSTATE 22P02)`)

func checkUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errUUIDSyntax
	}
	return nil
}

func (m *mockAlumniRepo) GetByID(_ context.Context, id string) (*model.Alumni, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}
	if a, ok := m.rows[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAlumniRepo) GetByEmail(_ context.Context, email string) (*model.Alumni, error) {
	for _, a := range m.rows {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAlumniRepo) List(_ context.Context) ([]model.Alumni, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]model.Alumni, 0, len(m.rows))
	for _, a := range m.rows {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockAlumniRepo) SetApproval(_ context.Context, id string, approved bool) error {
	if err := checkUUID(id); err != nil {
		return err
	}
	a, ok := m.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v := approved
	a.Approved = &v
	m.updates++
	return nil
}

// ── Mock GalleryRepository ──

type mockGalleryRepo struct {
	rows      map[string]*model.GalleryImage
	createErr error
}

func newMockGalleryRepo() *mockGalleryRepo {
	return &mockGalleryRepo{rows: make(map[string]*model.GalleryImage)}
}

func (m *mockGalleryRepo) Create(_ context.Context, img *model.GalleryImage) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.rows[img.ImageID] = img
	return nil
}

func (m *mockGalleryRepo) GetByID(_ context.Context, id string) (*model.GalleryImage, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}
	if img, ok := m.rows[id]; ok {
		return img, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGalleryRepo) List(_ context.Context) ([]model.GalleryImage, error) {
	out := make([]model.GalleryImage, 0, len(m.rows))
	for _, img := range m.rows {
		out = append(out, *img)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (m *mockGalleryRepo) ListByUploader(ctx context.Context, email string) ([]model.GalleryImage, error) {
	all, _ := m.List(ctx)
	out := make([]model.GalleryImage, 0, len(all))
	for _, img := range all {
		if img.UploadedBy == email {
			out = append(out, img)
		}
	}
	return out, nil
}

func (m *mockGalleryRepo) Delete(_ context.Context, id string) error {
	if err := checkUUID(id); err != nil {
		return err
	}
	if _, ok := m.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.rows, id)
	return nil
}

// ── Mock ObjectStore ──

type mockObjectStore struct {
	objects map[string][]byte
	puts    int
	deleted []string
	putErr  error
	urlErr  error
}

func newMockObjectStore() *mockObjectStore {
	return &mockObjectStore{objects: make(map[string][]byte)}
}

func (m *mockObjectStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	m.objects[key] = buf.Bytes()
	return nil
}

func (m *mockObjectStore) PublicURL(_ context.Context, key string) (string, error) {
	if m.urlErr != nil {
		return "", m.urlErr
	}
	return "https://cdn.test/gallery/" + key, nil
}

func (m *mockObjectStore) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

// ── Mock Publisher / TokenRevoker ──

type mockPublisher struct {
	events []events.ApprovalEvent
	err    error
}

func (m *mockPublisher) PublishApproval(_ context.Context, evt events.ApprovalEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, evt)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

type mockRevoker struct {
	revoked map[string]time.Duration
}

func newMockRevoker() *mockRevoker {
	return &mockRevoker{revoked: make(map[string]time.Duration)}
}

func (m *mockRevoker) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.revoked[jti] = ttl
	return nil
}

// ── Fixture ──

type fixture struct {
	cfg       *config.Config
	jwtMgr    *jwt.Manager
	creds     *mockCredentialRepo
	admins    *mockAdminRepo
	alumni    *mockAlumniRepo
	gallery   *mockGalleryRepo
	store     *mockObjectStore
	publisher *mockPublisher
	revoker   *mockRevoker
	svc       *Service
}

const testSetupKey = "ALUMNI-SETUP-2026"

func newFixture() *fixture {
	clock := newTestClock()
	f := &fixture{
		cfg: &config.Config{
			Auth: config.AuthConfig{
				JWTSecret:     "test-secret-at-least-16",
				SessionTTL:    time.Hour,
				AdminSetupKey: testSetupKey,
				BcryptCost:    4, // bcrypt.MinCost
			},
			Storage: config.StorageConfig{MaxUploadBytes: 5 << 20},
		},
		creds:     newMockCredentialRepo(),
		admins:    newMockAdminRepo(clock),
		alumni:    newMockAlumniRepo(clock),
		gallery:   newMockGalleryRepo(),
		store:     newMockObjectStore(),
		publisher: &mockPublisher{},
		revoker:   newMockRevoker(),
	}
	f.jwtMgr = jwt.NewManager(&f.cfg.Auth)

	repo := &repository.Repository{
		Credential: f.creds,
		Admin:      f.admins,
		Alumni:     f.alumni,
		Gallery:    f.gallery,
	}
	f.svc = NewService(f.cfg, repo, f.jwtMgr, f.revoker, f.store, f.publisher, zap.NewNop())
	f.svc.Gallery.(*galleryService).now = clock.Now
	return f
}
