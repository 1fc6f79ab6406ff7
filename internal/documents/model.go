package documents

import (
	"strings"
	"time"

	"vault-backend/internal/shared/storage/object"
)

// DocumentType is the user-facing classification of a document.
type DocumentType string

const (
	TypePDF       DocumentType = "pdf"
	TypeImage     DocumentType = "image"
	TypeLicense   DocumentType = "license"
	TypeInsurance DocumentType = "insurance"
	TypeOther     DocumentType = "other"
)

// ParseDocumentType maps a raw string to a known type, falling back to
// "other" for anything unrecognized.
func ParseDocumentType(raw string) DocumentType {
	t := DocumentType(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case TypePDF, TypeImage, TypeLicense, TypeInsurance, TypeOther:
		return t
	default:
		return TypeOther
	}
}

// Category groups documents for browsing and stats.
type Category string

const (
	CategoryIdentity  Category = "identity"
	CategoryFinancial Category = "financial"
	CategoryMedical   Category = "medical"
	CategoryInsurance Category = "insurance"
	CategoryLegal     Category = "legal"
	CategoryPersonal  Category = "personal"
	CategoryTravel    Category = "travel"
	CategoryOther     Category = "other"
)

// Categories lists every known category, in display order.
var Categories = []Category{
	CategoryIdentity, CategoryFinancial, CategoryMedical, CategoryInsurance,
	CategoryLegal, CategoryPersonal, CategoryTravel, CategoryOther,
}

// ParseCategory maps a raw string to a known category, falling back to
// "other" for anything unrecognized.
func ParseCategory(raw string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return CategoryOther
}

// FileType is the stored file format, derived from the upload's MIME type.
type FileType string

const (
	FilePDF  FileType = "pdf"
	FileJPG  FileType = "jpg"
	FilePNG  FileType = "png"
	FileWebP FileType = "webp"
	FileGIF  FileType = "gif"
)

// FileTypeFromMIME maps a content type to a FileType. The MIME value is
// normalized first (lowercased, any ";charset=..." suffix stripped).
// Returns false for anything outside the supported set.
func FileTypeFromMIME(contentType string) (FileType, bool) {
	mime := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch mime {
	case "application/pdf":
		return FilePDF, true
	case "image/jpeg", "image/jpg":
		return FileJPG, true
	case "image/png":
		return FilePNG, true
	case "image/webp":
		return FileWebP, true
	case "image/gif":
		return FileGIF, true
	default:
		return "", false
	}
}

// IsImage reports whether the file type renders as an image.
func (ft FileType) IsImage() bool {
	return ft != FilePDF && ft != ""
}

// Metadata holds the optional descriptive fields of a document.
type Metadata struct {
	Issuer         string     `json:"issuer,omitempty"`
	ExpiryDate     *time.Time `json:"expiryDate,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	DocumentNumber string     `json:"documentNumber,omitempty"`
}

// Document is the index record for one stored file.
type Document struct {
	ID              string       `json:"id"`
	UserID          string       `json:"-"`
	Name            string       `json:"name"`
	Type            DocumentType `json:"type"`
	Category        Category     `json:"category"`
	FileType        FileType     `json:"fileType"`
	SizeBytes       int64        `json:"size"`
	Tags            []string     `json:"tags"`
	Metadata        Metadata     `json:"metadata"`
	ThumbnailURL    string       `json:"thumbnailUrl,omitempty"`
	FileURL         string       `json:"fileUrl"`
	StorageProvider string       `json:"-"`
	StorageKey      string       `json:"-"`
	ResourceKind    string       `json:"-"`
	IsArchived      bool         `json:"isArchived"`
	IsFavorite      bool         `json:"isFavorite"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// Locator rebuilds the object store locator for this document's bytes.
func (d *Document) Locator() object.Locator {
	return object.Locator{
		Provider:     d.StorageProvider,
		PublicURL:    d.FileURL,
		DeleteKey:    d.StorageKey,
		ResourceKind: d.ResourceKind,
	}
}
