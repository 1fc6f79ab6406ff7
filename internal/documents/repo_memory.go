package documents

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo keeps document records in memory. Used for guest sessions and
// database-less dev mode.
type MemoryRepo struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{docs: make(map[string]Document)}
}

func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, docID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[docID]
	if !ok || doc.UserID != userID {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Document
	for _, doc := range r.docs {
		if doc.UserID != userID {
			continue
		}
		if !matchesFilter(doc, filter) {
			continue
		}
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func matchesFilter(doc Document, filter ListFilter) bool {
	if doc.IsArchived != filter.Archived {
		return false
	}
	if filter.Category != "" && doc.Category != filter.Category {
		return false
	}
	if filter.FavoriteOnly && !doc.IsFavorite {
		return false
	}
	if filter.Search != "" && !matchesSearch(doc, filter.Search) {
		return false
	}
	return true
}

// matchesSearch is a case-insensitive substring match over the name, any
// tag, the issuer and the notes.
func matchesSearch(doc Document, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(doc.Name), term) {
		return true
	}
	for _, tag := range doc.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(doc.Metadata.Issuer), term) ||
		strings.Contains(strings.ToLower(doc.Metadata.Notes), term)
}

func (r *MemoryRepo) Update(ctx context.Context, userID, docID string, upd Update, now time.Time) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docID]
	if !ok || doc.UserID != userID {
		return Document{}, ErrNotFound
	}
	if upd.Name != nil {
		doc.Name = *upd.Name
	}
	if upd.Category != nil {
		doc.Category = *upd.Category
	}
	if upd.Tags != nil {
		doc.Tags = *upd.Tags
	}
	if upd.Metadata != nil {
		doc.Metadata = *upd.Metadata
	}
	if upd.IsArchived != nil {
		doc.IsArchived = *upd.IsArchived
	}
	if upd.IsFavorite != nil {
		doc.IsFavorite = *upd.IsFavorite
	}
	doc.UpdatedAt = now
	r.docs[docID] = doc
	return doc, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, docID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docID]
	if !ok || doc.UserID != userID {
		return ErrNotFound
	}
	delete(r.docs, docID)
	return nil
}

func (r *MemoryRepo) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, doc := range r.docs {
		if doc.UserID == userID && !doc.IsArchived {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepo) CategoryCountsByUser(ctx context.Context, userID string) (map[Category]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[Category]int)
	for _, doc := range r.docs {
		if doc.UserID == userID && !doc.IsArchived {
			counts[doc.Category]++
		}
	}
	return counts, nil
}

var _ Repo = (*MemoryRepo)(nil)
