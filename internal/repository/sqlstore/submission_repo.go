package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"voxform/internal/domain"
	"voxform/internal/port"
)

type submissionRow struct {
	ID        string `db:"id"`
	SessionID string `db:"session_id"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Phone     string `db:"phone"`
	Address   string `db:"address"`
	Provider  string `db:"provider"`
	CreatedAt int64  `db:"created_at"`
}

type submissionRepo struct {
	db *sqlx.DB
}

// NewSubmissionRepo creates a SQL-backed SubmissionRepository.
func NewSubmissionRepo(db *sqlx.DB) port.SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, sub *domain.Submission) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	query := r.db.Rebind(`INSERT INTO submissions (id, session_id, name, email, phone, address, provider, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		sub.ID.String(), sub.SessionID, sub.Name, sub.Email, sub.Phone, sub.Address, sub.Provider,
		sub.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("submissionRepo.Create: %w", err)
	}
	return nil
}

func (r *submissionRepo) List(ctx context.Context, offset, limit int) ([]domain.Submission, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM submissions"); err != nil {
		return nil, 0, fmt.Errorf("submissionRepo.List count: %w", err)
	}

	var rows []submissionRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(
		`SELECT id, session_id, name, email, phone, address, provider, created_at
		FROM submissions ORDER BY created_at DESC, id LIMIT ? OFFSET ?`), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("submissionRepo.List: %w", err)
	}

	subs := make([]domain.Submission, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("submissionRepo.List: bad id %q: %w", row.ID, err)
		}
		subs = append(subs, domain.Submission{
			ID:        id,
			SessionID: row.SessionID,
			Name:      row.Name,
			Email:     row.Email,
			Phone:     row.Phone,
			Address:   row.Address,
			Provider:  row.Provider,
			CreatedAt: time.Unix(row.CreatedAt, 0).UTC(),
		})
	}
	return subs, total, nil
}
