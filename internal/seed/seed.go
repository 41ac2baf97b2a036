// Package seed prepares the database at startup and loads demo data into empty tables.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/georgemunganga/life360-ops/internal/cache"
	"github.com/georgemunganga/life360-ops/internal/database"
	"github.com/georgemunganga/life360-ops/internal/modules/order"
	"github.com/georgemunganga/life360-ops/internal/modules/practitioner"
	"github.com/georgemunganga/life360-ops/internal/modules/provider"
	"go.uber.org/zap"
)

const lockTTL = 2 * time.Minute

type OrderStore interface {
	Summary(ctx context.Context) (*order.Summary, error)
	Create(ctx context.Context, req order.CreateOrderRequest) (*order.Order, error)
	Update(ctx context.Context, id string, req order.UpdateOrderRequest) (*order.Order, error)
}

type PractitionerStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, p *practitioner.Practitioner) (*practitioner.Practitioner, error)
}

// Bootstrap migrates the schema, rewrites legacy provider names and, when demo
// is non-nil, seeds empty tables. Only one instance runs it at a time; the
// others skip it.
func Bootstrap(ctx context.Context, db *sql.DB, c *cache.Cache, demo *Demo, logger *zap.Logger) error {
	release, err := c.Lock(ctx, "seed", lockTTL)
	if errors.Is(err, cache.ErrLockHeld) {
		logger.Info("bootstrap running elsewhere, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("obtain seed lock: %w", err)
	}
	defer func() {
		if err := release(context.Background()); err != nil {
			logger.Warn("release seed lock", zap.Error(err))
		}
	}()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	if _, err := provider.NewRenamer(db, logger).Apply(ctx); err != nil {
		return fmt.Errorf("rename providers: %w", err)
	}
	if demo == nil {
		return nil
	}
	return demo.Seed(ctx)
}

// Demo loads the demo practitioners and orders.
type Demo struct {
	orders        OrderStore
	practitioners PractitionerStore
	logger        *zap.Logger
}

func NewDemo(orders OrderStore, practitioners PractitionerStore, logger *zap.Logger) *Demo {
	return &Demo{orders: orders, practitioners: practitioners, logger: logger}
}

// Seed fills each table only while it is empty, so it can run on every start.
func (d *Demo) Seed(ctx context.Context) error {
	if err := d.seedPractitioners(ctx); err != nil {
		return err
	}
	return d.seedOrders(ctx)
}

func (d *Demo) seedPractitioners(ctx context.Context) error {
	n, err := d.practitioners.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	seeded := demoPractitioners()
	for _, p := range seeded {
		if _, err := d.practitioners.Create(ctx, p); err != nil {
			return fmt.Errorf("seed practitioner %s: %w", p.FullName(), err)
		}
	}
	d.logger.Info("seeded demo practitioners", zap.Int("count", len(seeded)))
	return nil
}

func (d *Demo) seedOrders(ctx context.Context) error {
	sum, err := d.orders.Summary(ctx)
	if err != nil {
		return err
	}
	if sum.Total > 0 {
		return nil
	}
	for _, o := range demoOrders {
		created, err := d.orders.Create(ctx, o.create())
		if err != nil {
			return fmt.Errorf("seed order for %s %s: %w", o.name, o.surname, err)
		}
		if _, err := d.orders.Update(ctx, created.ID.String(), o.update()); err != nil {
			return fmt.Errorf("seed order %s: %w", created.OrderNumber, err)
		}
	}
	d.logger.Info("seeded demo orders", zap.Int("count", len(demoOrders)))
	return nil
}
