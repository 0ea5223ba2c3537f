package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/agentdesk/internal/dbx"
	"github.com/dmitrijs2005/agentdesk/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, rec *models.TaskRecord) error {
	fields, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	query :=
		`INSERT INTO task_records (id, kind, input, fields, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	if _, err := r.db.ExecContext(ctx, query, rec.ID, string(rec.Kind), rec.Input, fields, rec.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListRecent(ctx context.Context, kind models.TaskKind, limit int) ([]models.TaskRecord, error) {
	query :=
		`SELECT id, kind, input, fields, created_at FROM task_records
		 WHERE kind = $1
		 ORDER BY created_at DESC
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.TaskRecord
	for rows.Next() {
		var (
			rec    models.TaskRecord
			k      string
			fields []byte
		)
		if err := rows.Scan(&rec.ID, &k, &rec.Input, &fields, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		rec.Kind = models.TaskKind(k)
		if err := json.Unmarshal(fields, &rec.Fields); err != nil {
			return nil, fmt.Errorf("decode fields of %s: %w", rec.ID, err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
