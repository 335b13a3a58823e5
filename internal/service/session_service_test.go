package service

import (
	"context"
	"errors"
	"testing"

	"github.com/STAYCALM1234/mabest-alum/internal/dto"
	"github.com/STAYCALM1234/mabest-alum/internal/model"
)

// ── helpers ──

func registerAlumni(t *testing.T, f *fixture, email string) string {
	t.Helper()
	resp, err := f.svc.Registration.RegisterAlumni(context.Background(), &dto.RegisterAlumniRequest{
		Name:            "Alumni " + email,
		Email:           email,
		Phone:           "+254700000000",
		Course:          "Engineering",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	if err != nil {
		t.Fatalf("RegisterAlumni(%s) failed: %v", email, err)
	}
	return resp.ID
}

func registerAdmin(t *testing.T, f *fixture, email string) string {
	t.Helper()
	resp, err := f.svc.Registration.RegisterAdmin(context.Background(), &dto.RegisterAdminRequest{
		Username:        "admin",
		Email:           email,
		Password:        "secret1",
		ConfirmPassword: "secret1",
		SetupKey:        testSetupKey,
	})
	if err != nil {
		t.Fatalf("RegisterAdmin(%s) failed: %v", email, err)
	}
	return resp.ID
}

func approve(t *testing.T, f *fixture, id string, approved bool) {
	t.Helper()
	if _, err := f.svc.Approval.SetApproval(context.Background(), id, approved); err != nil {
		t.Fatalf("SetApproval(%s, %v) failed: %v", id, approved, err)
	}
}

// ── Resolve ──

func TestSessionService_Resolve_None(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	registerAlumni(t, f, "pending@x.com")
	rejectedID := registerAlumni(t, f, "rejected@x.com")
	approve(t, f, rejectedID, false)
	_, _ = f.svc.Auth.SignUp(ctx, "noprofile@x.com", "secret1")

	for _, email := range []string{"", "pending@x.com", "rejected@x.com", "noprofile@x.com", "ghost@x.com"} {
		p, err := f.svc.Session.Resolve(ctx, email)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", email, err)
		}
		if p.Role != dto.RoleNone {
			t.Errorf("Resolve(%q): expected role none, got %s", email, p.Role)
		}
		if p.Alumni != nil || p.Admin != nil {
			t.Errorf("Resolve(%q): no profile should be exposed", email)
		}
	}
}

func TestSessionService_Resolve_ApprovedAlumni(t *testing.T) {
	f := newFixture()
	id := registerAlumni(t, f, "a@x.com")
	approve(t, f, id, true)

	p, err := f.svc.Session.Resolve(context.Background(), "A@x.com")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if p.Role != dto.RoleUser {
		t.Fatalf("expected role user, got %s", p.Role)
	}
	if p.Alumni == nil || p.Alumni.AlumniID != id {
		t.Errorf("expected profile %s, got %+v", id, p.Alumni)
	}
	if p.Applications != nil {
		t.Error("alumni principals should not carry the application list")
	}
}

func TestSessionService_Resolve_AdminPrefetchesProfiles(t *testing.T) {
	f := newFixture()
	first := registerAlumni(t, f, "first@x.com")
	second := registerAlumni(t, f, "second@x.com")
	registerAdmin(t, f, "admin@x.com")

	p, err := f.svc.Session.Resolve(context.Background(), "admin@x.com")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if p.Role != dto.RoleAdmin || p.Admin == nil {
		t.Fatalf("expected admin principal, got %+v", p)
	}
	if len(p.Applications) != 2 {
		t.Fatalf("expected 2 prefetched profiles, got %d", len(p.Applications))
	}
	if p.Applications[0].AlumniID != second || p.Applications[1].AlumniID != first {
		t.Error("profiles should be ordered newest first")
	}
}

func TestSessionService_Classify_SkipsPrefetch(t *testing.T) {
	f := newFixture()
	registerAlumni(t, f, "first@x.com")
	registerAdmin(t, f, "admin@x.com")
	f.alumni.listErr = errBackend

	p, err := f.svc.Session.Classify(context.Background(), "Admin@x.com")
	if err != nil {
		t.Fatalf("Classify must not list profiles, got %v", err)
	}
	if p.Role != dto.RoleAdmin || p.Admin == nil {
		t.Fatalf("expected admin principal, got %+v", p)
	}
	if p.Applications != nil {
		t.Errorf("Classify should not prefetch, got %d profiles", len(p.Applications))
	}
}

func TestSessionService_Classify_UnapprovedIsNone(t *testing.T) {
	f := newFixture()
	registerAlumni(t, f, "pending@x.com")

	p, err := f.svc.Session.Classify(context.Background(), "pending@x.com")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if p.Role != dto.RoleNone {
		t.Errorf("pending profile should classify as none, got %s", p.Role)
	}
}

func TestSessionService_Resolve_BackendError(t *testing.T) {
	f := newFixture()
	registerAdmin(t, f, "admin@x.com")
	f.alumni.listErr = errBackend

	_, err := f.svc.Session.Resolve(context.Background(), "admin@x.com")
	if !errors.Is(err, errBackend) {
		t.Errorf("expected backend error to surface, got %v", err)
	}
}

// ── Login ──

func TestSessionService_Login_AlumniRequiresApproval(t *testing.T) {
	yes, no := true, false
	cases := []struct {
		name     string
		approved *bool
		profile  bool
		ok       bool
	}{
		{"approved", &yes, true, true},
		{"pending", nil, true, false},
		{"rejected", &no, true, false},
		{"no profile", nil, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			if tc.profile {
				id := registerAlumni(t, f, "a@x.com")
				if tc.approved != nil {
					approve(t, f, id, *tc.approved)
				}
			} else {
				_, _ = f.svc.Auth.SignUp(ctx, "a@x.com", "secret1")
			}

			resp, err := f.svc.Session.Login(ctx, &dto.LoginRequest{
				Email: "a@x.com", Password: "secret1", Type: dto.LoginTypeAlumni,
			})

			if tc.ok {
				if err != nil {
					t.Fatalf("expected login to succeed, got %v", err)
				}
				if resp.Role != dto.RoleUser || resp.AccessToken == "" {
					t.Errorf("unexpected response %+v", resp)
				}
				if len(f.revoker.revoked) != 0 {
					t.Error("a successful login must not be signed out")
				}
				return
			}

			if !errors.Is(err, ErrNotApproved) {
				t.Fatalf("expected ErrNotApproved, got %v", err)
			}
			if len(f.revoker.revoked) != 1 {
				t.Errorf("the session should be signed back out, revoked=%d", len(f.revoker.revoked))
			}
		})
	}
}

func TestSessionService_Login_Admin(t *testing.T) {
	f := newFixture()
	registerAdmin(t, f, "admin@x.com")
	registerAlumni(t, f, "a@x.com")

	resp, err := f.svc.Session.Login(context.Background(), &dto.LoginRequest{
		Email: "admin@x.com", Password: "secret1", Type: dto.LoginTypeAdmin,
	})
	if err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	if resp.Role != dto.RoleAdmin {
		t.Errorf("expected role admin, got %s", resp.Role)
	}
	if resp.Session.Admin == nil || resp.Session.Admin.Email != "admin@x.com" {
		t.Errorf("expected admin profile in session, got %+v", resp.Session.Admin)
	}
	if len(resp.Session.Applications) != 1 {
		t.Errorf("expected 1 application, got %d", len(resp.Session.Applications))
	}
	if _, err := f.jwtMgr.ParseToken(resp.AccessToken); err != nil {
		t.Errorf("access token should parse: %v", err)
	}
}

func TestSessionService_Login_NonAdminAsAdmin(t *testing.T) {
	f := newFixture()
	id := registerAlumni(t, f, "a@x.com")
	approve(t, f, id, true)

	_, err := f.svc.Session.Login(context.Background(), &dto.LoginRequest{
		Email: "a@x.com", Password: "secret1", Type: dto.LoginTypeAdmin,
	})
	if !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	if len(f.revoker.revoked) != 1 {
		t.Error("the session should be signed back out")
	}
}

func TestSessionService_Login_WrongPassword(t *testing.T) {
	f := newFixture()
	registerAdmin(t, f, "admin@x.com")

	_, err := f.svc.Session.Login(context.Background(), &dto.LoginRequest{
		Email: "admin@x.com", Password: "nope", Type: dto.LoginTypeAdmin,
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(f.revoker.revoked) != 0 {
		t.Error("no session was issued, nothing to sign out")
	}
}

func TestSessionService_Login_UnknownType(t *testing.T) {
	f := newFixture()
	registerAdmin(t, f, "admin@x.com")

	_, err := f.svc.Session.Login(context.Background(), &dto.LoginRequest{
		Email: "admin@x.com", Password: "secret1", Type: "root",
	})
	if !errors.Is(err, ErrInvalidLoginType) {
		t.Fatalf("expected ErrInvalidLoginType, got %v", err)
	}
}

func TestSessionService_RegisterApproveLogin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	id := registerAlumni(t, f, "a@x.com")
	row, _ := f.alumni.GetByID(ctx, id)
	if row.Status() != model.ApprovalPending || row.Course != "Engineering" {
		t.Fatalf("expected pending Engineering profile, got %s/%s", row.Status(), row.Course)
	}

	approve(t, f, id, true)

	resp, err := f.svc.Session.Login(ctx, &dto.LoginRequest{
		Email: "a@x.com", Password: "secret1", Type: dto.LoginTypeAlumni,
	})
	if err != nil {
		t.Fatalf("login after approval failed: %v", err)
	}
	if resp.Role != dto.RoleUser {
		t.Errorf("expected role user, got %s", resp.Role)
	}
	if resp.Session.Profile == nil || resp.Session.Profile.Status != model.ApprovalApproved {
		t.Errorf("expected approved profile in session, got %+v", resp.Session.Profile)
	}
}

func TestSessionService_Logout(t *testing.T) {
	f := newFixture()
	id := registerAlumni(t, f, "a@x.com")
	approve(t, f, id, true)
	ctx := context.Background()

	resp, _ := f.svc.Session.Login(ctx, &dto.LoginRequest{
		Email: "a@x.com", Password: "secret1", Type: dto.LoginTypeAlumni,
	})
	claims, _ := f.jwtMgr.ParseToken(resp.AccessToken)

	if err := f.svc.Session.Logout(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, ok := f.revoker.revoked[claims.ID]; !ok {
		t.Error("logout should revoke the token id")
	}
}

func TestSessionService_Current(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.Session.Current(context.Background(), "ghost@x.com")
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if resp.Role != dto.RoleNone || resp.Profile != nil || resp.Admin != nil {
		t.Errorf("expected bare none session, got %+v", resp)
	}
}
