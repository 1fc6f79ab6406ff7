package documents

import (
	"context"
	"time"
)

// ListFilter narrows ListByUser results. Zero values mean "no constraint"
// except Archived, which always partitions the listing: false lists active
// documents, true lists archived ones.
type ListFilter struct {
	Category     Category
	FavoriteOnly bool
	Archived     bool
	Search       string
}

// Update carries partial changes to a document. Nil fields are left as-is.
type Update struct {
	Name       *string
	Category   *Category
	Tags       *[]string
	Metadata   *Metadata
	IsArchived *bool
	IsFavorite *bool
}

// Repo persists document index records. All reads and writes are scoped to
// the owning user; a mismatched owner behaves exactly like a missing row.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userID, docID string) (Document, error)
	ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Document, error)
	Update(ctx context.Context, userID, docID string, upd Update, now time.Time) (Document, error)
	Delete(ctx context.Context, userID, docID string) error
	CountActiveByUser(ctx context.Context, userID string) (int, error)
	CategoryCountsByUser(ctx context.Context, userID string) (map[Category]int, error)
}
