package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/dmitrijs2005/agentdesk/internal/dbx"
	"github.com/dmitrijs2005/agentdesk/internal/server/models"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Session) (*models.Session, error) {
	query :=
		`INSERT INTO sessions (id, username, title, created_at)
		 VALUES ($1, $2, $3, $4)
		 `

	if _, err := r.db.ExecContext(ctx, query, s.ID, s.UserName, s.Title, s.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	return getSession(ctx, r.db, id)
}

func getSession(ctx context.Context, db dbx.DBTX, id string) (*models.Session, error) {
	query :=
		`SELECT id, username, title, created_at FROM sessions
		 WHERE id = $1
		 `

	s := &models.Session{}
	err := db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.UserName, &s.Title, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userName string) ([]models.Session, error) {
	query :=
		`SELECT id, username, title, created_at FROM sessions
		 WHERE username = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userName)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.UserName, &s.Title, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Append runs the session upsert, the owner check and the message insert in
// one transaction.
func (r *PostgresRepository) Append(ctx context.Context, s *models.Session, m *models.Message) (*models.Session, error) {
	var stored *models.Session

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		upsert :=
			`INSERT INTO sessions (id, username, title, created_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO NOTHING
			 `
		if _, err := tx.ExecContext(ctx, upsert, s.ID, s.UserName, s.Title, s.CreatedAt); err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		current, err := getSession(ctx, tx, s.ID)
		if err != nil {
			return err
		}
		if current.UserName != s.UserName {
			return common.ErrorUnauthorized
		}

		insert :=
			`INSERT INTO messages (session_id, role, content, created_at)
			 VALUES ($1, $2, $3, $4)
			 `
		if _, err := tx.ExecContext(ctx, insert, current.ID, string(m.Role), m.Content, m.CreatedAt); err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		stored = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stored, nil
}

func (r *PostgresRepository) Messages(ctx context.Context, sessionID string) ([]models.Message, error) {
	query :=
		`SELECT session_id, role, content, created_at FROM messages
		 WHERE session_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Message
	for rows.Next() {
		var (
			m    models.Message
			role string
		)
		if err := rows.Scan(&m.SessionID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		m.Role = models.Role(role)
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
