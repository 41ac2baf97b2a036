package provider

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Tables that carry a provider column.
var renameTables = []string{"stock_items", "orders", "tasks", "documents", "practitioners"}

// Renamer rewrites legacy provider names stored in the database.
type Renamer struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRenamer(db *sql.DB, logger *zap.Logger) *Renamer {
	return &Renamer{db: db, logger: logger}
}

// Apply renames every legacy provider value, one transaction per table.
// It returns the number of rows changed per table. Running it again is a no-op.
func (r *Renamer) Apply(ctx context.Context) (map[string]int64, error) {
	olds := make([]string, 0, len(renames))
	for old := range renames {
		olds = append(olds, old)
	}
	sort.Strings(olds)

	changed := make(map[string]int64, len(renameTables))
	for _, table := range renameTables {
		n, err := r.renameTable(ctx, table, olds)
		if err != nil {
			return changed, err
		}
		changed[table] = n
		if n > 0 {
			r.logger.Info("renamed legacy providers", zap.String("table", table), zap.Int64("rows", n))
		}
	}
	return changed, nil
}

func (r *Renamer) renameTable(ctx context.Context, table string, olds []string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var total int64
	for _, old := range olds {
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET provider=$1 WHERE provider=$2`, table), renames[old], old)
		if err != nil {
			return 0, fmt.Errorf("rename providers in %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit renames in %s: %w", table, err)
	}
	return total, nil
}
