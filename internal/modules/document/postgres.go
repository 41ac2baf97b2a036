package document

import (
	"context"
	"database/sql"
	"fmt"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, d *Document) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (id, provider, filename, stored_name, uploaded_at)
		VALUES ($1,$2,$3,$4,$5)`,
		d.ID, d.Provider, d.Filename, d.StoredName, d.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *postgresRepo) List(ctx context.Context) ([]*Document, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, provider, filename, stored_name, uploaded_at
		FROM documents ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Document
	for rows.Next() {
		d := &Document{}
		if err := rows.Scan(&d.ID, &d.Provider, &d.Filename, &d.StoredName, &d.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
