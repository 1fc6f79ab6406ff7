package object

import (
	"context"
	"errors"
	"io"
	"strings"
)

// Providers. The provider for a deployment is chosen once at process start;
// it never changes per request.
const (
	ProviderS3    = "s3"
	ProviderLocal = "local"
)

// Resource kinds. PDFs are stored as non-transcodable raw blobs; image
// types may be served as thumbnails directly.
const (
	KindRaw   = "raw"
	KindImage = "image"
)

// ErrNotFound indicates the addressed object does not exist. Delete treats
// it as success so cleanup can be retried safely.
var ErrNotFound = errors.New("object not found")

// Locator addresses a stored blob. PublicURL is the user-facing address;
// DeleteKey is the provider-side key used to remove the bytes. They are
// distinct because a provider's public URL and its deletion key are not
// always the same string.
type Locator struct {
	Provider     string
	PublicURL    string
	DeleteKey    string
	ResourceKind string
}

// ObjectStore is the contract for saving, retrieving and deleting blobs.
type ObjectStore interface {
	// Store persists the reader's bytes under a collision-resistant name and
	// returns a locator with both PublicURL and DeleteKey set, plus the
	// actual number of bytes written.
	Store(ctx context.Context, userID, fileName, contentType string, r io.Reader) (Locator, int64, error)

	// Open returns the stored bytes for reading.
	Open(ctx context.Context, loc Locator) (io.ReadCloser, error)

	// Delete removes the stored bytes. Deleting a missing object is not an
	// error.
	Delete(ctx context.Context, loc Locator) error
}

// ResourceKindFor maps a content type to the provider resource kind.
func ResourceKindFor(contentType string) string {
	if strings.EqualFold(strings.TrimSpace(contentType), "application/pdf") {
		return KindRaw
	}
	return KindImage
}
