package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// Upload validation errors. Both are raised before any storage call.
var (
	ErrNotImage     = errors.New("please select an image file")
	ErrFileTooLarge = errors.New("file size must be less than 5MB")
)

// DefaultMaxImageBytes gallery upload ceiling (5 MiB)
const DefaultMaxImageBytes int64 = 5 << 20

// ObjectStore binary storage for gallery images
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// PublicURL resolves the URL under which a stored object is served
	PublicURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ValidateImage checks MIME type and size. maxBytes <= 0 means DefaultMaxImageBytes.
func ValidateImage(contentType string, size, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/") {
		return ErrNotImage
	}
	if size > maxBytes {
		return ErrFileTooLarge
	}
	return nil
}

// sniffLen bytes http.DetectContentType considers
const sniffLen = 512

// SniffImage checks the leading bytes of r really are an image, whatever
// Content-Type the client declared. The returned reader still yields the
// whole stream.
func SniffImage(r io.Reader) (io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return nil, ErrNotImage
	}
	return io.MultiReader(bytes.NewReader(head), r), nil
}

// ObjectKey builds "<uploaderID>/<unix-ms>_<uploaderID>.<ext>".
// The extension comes from the filename, falling back to the MIME subtype.
func ObjectKey(uploaderID, filename, contentType string, now time.Time) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		ext = "img"
		if i := strings.Index(contentType, "/"); i >= 0 && i < len(contentType)-1 {
			ext = strings.SplitN(contentType[i+1:], ";", 2)[0]
			ext = strings.TrimSpace(strings.SplitN(ext, "+", 2)[0])
		}
	}
	return fmt.Sprintf("%s/%d_%s.%s", uploaderID, now.UnixMilli(), uploaderID, ext)
}

func joinURL(base string, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
