package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const taskColumns = `id, title, provider, assignee, due_date, status, notes, created_at`

func (r *postgresRepo) Create(ctx context.Context, t *Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		t.ID, t.Title, t.Provider, t.Assignee, t.DueDate, t.Status, t.Notes, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *postgresRepo) Get(ctx context.Context, id string) (*Task, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("Task not found.")
	}
	t, err := scanTask(r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=$1`, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Task not found.")
	}
	return t, err
}

func (r *postgresRepo) List(ctx context.Context) ([]*Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		ORDER BY status DESC, due_date ASC NULLS LAST, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, t *Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET title=$1, provider=$2, assignee=$3, due_date=$4, status=$5, notes=$6
		WHERE id=$7`,
		t.Title, t.Provider, t.Assignee, t.DueDate, t.Status, t.Notes, t.ID)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Task not found.")
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperr.NotFound("Task not found.")
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id=$1`, uid)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Task not found.")
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row scanner) (*Task, error) {
	t := &Task{}
	err := row.Scan(&t.ID, &t.Title, &t.Provider, &t.Assignee, &t.DueDate, &t.Status, &t.Notes, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}
