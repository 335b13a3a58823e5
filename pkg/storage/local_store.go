package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"

	"github.com/spf13/afero"
)

// LocalStore keeps objects on a filesystem rooted at one directory.
// Objects are served by the API itself, see HTTPFileSystem.
type LocalStore struct {
	fs      afero.Fs
	baseURL string
}

// NewLocalStore roots the store at dir on the OS filesystem
func NewLocalStore(dir, publicBaseURL string) (*LocalStore, error) {
	osfs := afero.NewOsFs()
	if err := osfs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return NewLocalStoreFs(afero.NewBasePathFs(osfs, dir), publicBaseURL), nil
}

// NewLocalStoreFs wraps an existing afero filesystem
func NewLocalStoreFs(fs afero.Fs, publicBaseURL string) *LocalStore {
	return &LocalStore{fs: fs, baseURL: publicBaseURL}
}

// Put writes the object, creating parent directories
func (s *LocalStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if err := s.fs.MkdirAll(path.Dir(key), 0o755); err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	f, err := s.fs.OpenFile(key, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(key)
		return fmt.Errorf("put object: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// PublicURL joins the configured base URL and the key
func (s *LocalStore) PublicURL(_ context.Context, key string) (string, error) {
	if _, err := s.fs.Stat(key); err != nil {
		return "", fmt.Errorf("public url: %w", err)
	}
	return joinURL(s.baseURL, key), nil
}

// Delete removes the object; a missing object is not an error
func (s *LocalStore) Delete(_ context.Context, key string) error {
	if err := s.fs.Remove(key); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// HTTPFileSystem exposes the stored objects for http.FileServer / gin StaticFS
func (s *LocalStore) HTTPFileSystem() http.FileSystem {
	return afero.NewHttpFs(s.fs)
}
