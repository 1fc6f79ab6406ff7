package local

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"vault-backend/internal/shared/storage/object"
	"vault-backend/internal/shared/util"
)

// Store implements ObjectStore on the local filesystem, serving bytes back
// through the API under /uploads.
type Store struct {
	baseDir string
	baseURL string
}

// New creates a local object store rooted at baseDir. baseURL is the public
// address prefix used to build download URLs.
func New(baseDir, baseURL string) *Store {
	return &Store{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseDir exposes the storage root so the router can serve it.
func (s *Store) BaseDir() string { return s.baseDir }

// Store writes the reader to disk under the user's namespace with a unique name.
func (s *Store) Store(ctx context.Context, userID, fileName, contentType string, r io.Reader) (object.Locator, int64, error) {
	sanitizedName, err := util.SanitizeFileName(fileName)
	if err != nil {
		return object.Locator{}, 0, fmt.Errorf("sanitize file name: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return object.Locator{}, 0, err
	}

	userKey := util.HashUserKey(userID)
	finalName := fmt.Sprintf("%s_%s", uniquePrefix(), sanitizedName)

	dirPath := filepath.Join(s.baseDir, userKey)
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return object.Locator{}, 0, fmt.Errorf("mkdir: %w", err)
	}

	fullPath := filepath.Join(dirPath, finalName)
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return object.Locator{}, 0, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		// Leave no partial file behind.
		_ = os.Remove(fullPath)
		return object.Locator{}, 0, fmt.Errorf("write body: %w", err)
	}

	relPath := path.Join(userKey, finalName)
	loc := object.Locator{
		Provider:     object.ProviderLocal,
		PublicURL:    s.baseURL + "/uploads/" + relPath,
		DeleteKey:    relPath,
		ResourceKind: object.ResourceKindFor(contentType),
	}
	return loc, size, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, loc object.Locator) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := s.resolve(loc.DeleteKey)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, object.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes a stored object. A missing file is not an error.
func (s *Store) Delete(ctx context.Context, loc object.Locator) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := s.resolve(loc.DeleteKey)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func (s *Store) resolve(key string) (string, error) {
	clean := filepath.Clean(key)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key")
	}
	return filepath.Join(s.baseDir, clean), nil
}

func uniquePrefix() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), hex.EncodeToString(b[:]))
}

var _ object.ObjectStore = (*Store)(nil)
