package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"voxform/internal/domain"
	"voxform/internal/port"
)

type sessionRow struct {
	SessionID string `db:"session_id"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Phone     string `db:"phone"`
	Address   string `db:"address"`
	UpdatedAt int64  `db:"updated_at"`
}

func (r *sessionRow) toDomain() *domain.FormState {
	state := domain.NewFormState(r.SessionID)
	state.Merge(domain.ExtractedFields{
		domain.FieldFullName: r.Name,
		domain.FieldEmail:    r.Email,
		domain.FieldPhone:    r.Phone,
		domain.FieldAddress:  r.Address,
	})
	state.UpdatedAt = time.Unix(r.UpdatedAt, 0).UTC()
	return state
}

type sessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo creates a SQL-backed SessionStore. Its Update runs in a
// transaction, so replicas sharing a database do not lose each other's merges.
func NewSessionRepo(db *sqlx.DB) port.LockingSessionStore {
	return &sessionRepo{db: db}
}

const selectSession = "SELECT session_id, name, email, phone, address, updated_at FROM form_sessions WHERE session_id = ?"

func (r *sessionRepo) Load(ctx context.Context, sessionID string) (*domain.FormState, error) {
	state, err := loadSession(ctx, r.db, selectSession, sessionID)
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.Load: %w", err)
	}
	return state, nil
}

func (r *sessionRepo) Save(ctx context.Context, state *domain.FormState) error {
	if err := saveSession(ctx, r.db, state); err != nil {
		return fmt.Errorf("sessionRepo.Save: %w", err)
	}
	return nil
}

// Update holds a row lock on Postgres for the whole load, mutate and save.
// SQLite serialises writers on its single connection.
func (r *sessionRepo) Update(ctx context.Context, sessionID string, fn func(*domain.FormState) error) (*domain.FormState, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.Update begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := selectSession
	if r.db.DriverName() == "pgx" {
		// A row must exist before it can be locked.
		_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO form_sessions (session_id, updated_at)
			VALUES (?, ?) ON CONFLICT (session_id) DO NOTHING`), sessionID, time.Now().UTC().Unix())
		if err != nil {
			return nil, fmt.Errorf("sessionRepo.Update insert: %w", err)
		}
		query += " FOR UPDATE"
	}

	state, err := loadSession(ctx, tx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.Update load: %w", err)
	}
	if err := fn(state); err != nil {
		return nil, err
	}
	if err := saveSession(ctx, tx, state); err != nil {
		return nil, fmt.Errorf("sessionRepo.Update save: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sessionRepo.Update commit: %w", err)
	}
	return state, nil
}

func loadSession(ctx context.Context, q sqlx.ExtContext, query, sessionID string) (*domain.FormState, error) {
	var row sessionRow
	err := sqlx.GetContext(ctx, q, &row, q.Rebind(query), sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewFormState(sessionID), nil
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func saveSession(ctx context.Context, db sqlx.ExtContext, state *domain.FormState) error {
	updated := state.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	query := db.Rebind(`INSERT INTO form_sessions (session_id, name, email, phone, address, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			name = excluded.name, email = excluded.email, phone = excluded.phone,
			address = excluded.address, updated_at = excluded.updated_at`)
	_, err := db.ExecContext(ctx, query,
		state.SessionID,
		state.Get(domain.FieldFullName), state.Get(domain.FieldEmail),
		state.Get(domain.FieldPhone), state.Get(domain.FieldAddress),
		updated.Unix())
	return err
}

func (r *sessionRepo) Delete(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM form_sessions WHERE session_id = ?"), sessionID)
	if err != nil {
		return fmt.Errorf("sessionRepo.Delete: %w", err)
	}
	return nil
}

func (r *sessionRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// DeleteIdle removes sessions not updated since before.
func DeleteIdle(ctx context.Context, db *sqlx.DB, before time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, db.Rebind("DELETE FROM form_sessions WHERE updated_at < ?"), before.Unix())
	if err != nil {
		return 0, fmt.Errorf("sessionRepo.DeleteIdle: %w", err)
	}
	return res.RowsAffected()
}
