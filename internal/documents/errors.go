package documents

import "errors"

var (
	// ErrNotFound covers both a missing document and one owned by someone
	// else; callers cannot distinguish the two.
	ErrNotFound = errors.New("document not found")

	// ErrNoFile means the multipart request carried no file part.
	ErrNoFile = errors.New("no file provided")

	// ErrUnsupportedType means the upload's content type is outside the
	// accepted set.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrInvalidInput covers malformed request fields.
	ErrInvalidInput = errors.New("invalid input")
)
