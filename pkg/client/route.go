package client

import (
	"strings"

	"github.com/STAYCALM1234/mabest-alum/internal/dto"
)

// Client-side pages
const (
	PathHome          = "/"
	PathGallery       = "/gallery"
	PathLogin         = "/login"
	PathRegister      = "/register"
	PathAdminRegister = "/admin-register"
	PathPending       = "/pending-verification"
	PathAdminBoard    = "/admin-dashboard"
	PathDashboard     = "/dashboard"
)

// Decision outcome of a route check. Exactly one of Allow, Wait or Redirect is set.
type Decision struct {
	Allow    bool
	Wait     bool
	Redirect string
}

// HomePath landing page for a role after login
func HomePath(role string) string {
	switch role {
	case dto.RoleAdmin:
		return PathAdminBoard
	case dto.RoleUser:
		return PathDashboard
	default:
		return PathLogin
	}
}

// Route gates a client-side path on the resolved principal.
// Gated pages wait while resolution is in flight.
func (s *Store) Route(path string) Decision {
	path = cleanPath(path)

	s.mu.RLock()
	loading, role := s.loading, s.session.Role
	s.mu.RUnlock()

	switch path {
	case PathHome, PathGallery, PathLogin, PathPending:
		return Decision{Allow: true}
	case PathRegister, PathAdminRegister, PathAdminBoard, PathDashboard:
	default:
		return Decision{Redirect: PathHome}
	}

	if loading {
		return Decision{Wait: true}
	}

	switch path {
	case PathRegister, PathAdminRegister:
		if role != dto.RoleNone {
			return Decision{Redirect: HomePath(role)}
		}
		return Decision{Allow: true}
	case PathAdminBoard:
		if role == dto.RoleAdmin {
			return Decision{Allow: true}
		}
	case PathDashboard:
		if role == dto.RoleUser {
			return Decision{Allow: true}
		}
	}
	return Decision{Redirect: PathLogin}
}

func cleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return PathHome
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			return PathHome
		}
	}
	return p
}
