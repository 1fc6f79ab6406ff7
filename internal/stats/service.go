package stats

import (
	"context"

	"vault-backend/internal/documents"
	"vault-backend/internal/quota"
)

// Overview is the storage dashboard payload. The category breakdown always
// lists every known category, including zero counts.
type Overview struct {
	UsedBytes         int64          `json:"used"`
	LimitBytes        int64          `json:"limit"`
	DocumentCount     int            `json:"documentCount"`
	CategoryBreakdown map[string]int `json:"categoryBreakdown"`
}

// Service aggregates quota usage and document counts. Archived documents
// are excluded from counts; their bytes still count against the quota.
type Service struct {
	repo   documents.Repo
	ledger *quota.Ledger
}

func NewService(repo documents.Repo, ledger *quota.Ledger) *Service {
	return &Service{repo: repo, ledger: ledger}
}

func (s *Service) Overview(ctx context.Context, userID string) (Overview, error) {
	usage, err := s.ledger.Usage(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	count, err := s.repo.CountActiveByUser(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	counts, err := s.repo.CategoryCountsByUser(ctx, userID)
	if err != nil {
		return Overview{}, err
	}

	breakdown := make(map[string]int, len(documents.Categories))
	for _, category := range documents.Categories {
		breakdown[string(category)] = counts[category]
	}
	return Overview{
		UsedBytes:         usage.UsedBytes,
		LimitBytes:        usage.LimitBytes,
		DocumentCount:     count,
		CategoryBreakdown: breakdown,
	}, nil
}
