package activity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vault-backend/internal/shared/telemetry"
)

const (
	defaultListLimit = 50
	maxListLimit     = 50
)

// Recorder writes and reads the activity feed. Recording is best effort: a
// failed insert is logged and swallowed, it never fails the operation that
// triggered it.
type Recorder struct {
	repo Repo
}

func NewRecorder(repo Repo) *Recorder {
	return &Recorder{repo: repo}
}

// Record appends an entry to the user's feed.
func (rec *Recorder) Record(ctx context.Context, userID string, action Action, documentID, documentName string) {
	entry := Entry{
		ID:           uuid.NewString(),
		UserID:       userID,
		Action:       action,
		DocumentID:   documentID,
		DocumentName: documentName,
		CreatedAt:    time.Now().UTC(),
	}
	if err := rec.repo.Create(ctx, entry); err != nil {
		telemetry.Warn("activity record failed", map[string]any{
			"user_id": userID,
			"action":  string(action),
			"error":   err.Error(),
		})
	}
}

// ListForUser returns the user's most recent entries, newest first. A limit
// of zero or less means the default; anything above the cap is clamped.
func (rec *Recorder) ListForUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	entries, err := rec.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}
