package export

import (
	"context"
	"fmt"
	"time"

	"voxform/internal/domain"
)

// PageSize is the batch size used when collecting submissions for an export.
const PageSize = 200

// ListFunc returns one page of submissions and the total count.
type ListFunc func(ctx context.Context, offset, limit int) ([]domain.Submission, int, error)

// Collect pages through list until every submission has been read.
func Collect(ctx context.Context, list ListFunc) ([]domain.Submission, error) {
	var all []domain.Submission
	for offset := 0; ; offset += PageSize {
		page, total, err := list(ctx, offset, PageSize)
		if err != nil {
			return nil, fmt.Errorf("export: listing submissions at offset %d: %w", offset, err)
		}
		all = append(all, page...)
		if len(page) < PageSize || len(all) >= total {
			break
		}
	}
	if all == nil {
		all = []domain.Submission{}
	}
	return all, nil
}

// BuildFilename returns submissions_{YYYY-MM-DD}.{ext} for Content-Disposition.
func BuildFilename(ext string, now time.Time) string {
	return fmt.Sprintf("submissions_%s.%s", now.Format("2006-01-02"), ext)
}
