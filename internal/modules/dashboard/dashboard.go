// Package dashboard serves the landing-page summary and the health check.
package dashboard

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/georgemunganga/life360-ops/internal/cache"
	"github.com/georgemunganga/life360-ops/internal/modules/order"
	"github.com/georgemunganga/life360-ops/internal/modules/practitioner"
	"go.uber.org/zap"
)

const (
	cacheKey     = "dashboard:overview"
	cacheTTL     = 30 * time.Second
	recentOrders = 100
)

type OrderSource interface {
	Summary(ctx context.Context) (*order.Summary, error)
	Recent(ctx context.Context, limit int) ([]*order.Order, error)
}

type PractitionerSource interface {
	Totals(ctx context.Context) (*practitioner.Totals, error)
}

type Overview struct {
	Practitioners practitioner.Totals `json:"practitioners"`
	Orders        order.Summary       `json:"orders"`
	Recent        []*order.Order      `json:"recent_orders"`
	GeneratedAt   time.Time           `json:"generated_at"`
}

type Service struct {
	db            *sql.DB
	cache         *cache.Cache
	orders        OrderSource
	practitioners PractitionerSource
	logger        *zap.Logger
}

func NewService(db *sql.DB, c *cache.Cache, logger *zap.Logger) *Service {
	return &Service{db: db, cache: c, logger: logger}
}

// Bind sets the data sources. The order and practitioner services take the
// dashboard as their change notifier, so they are built after it.
func (s *Service) Bind(orders OrderSource, practitioners PractitionerSource) {
	s.orders = orders
	s.practitioners = practitioners
}

// Overview returns the cached summary, rebuilding it on a miss.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	var ov Overview
	found, err := s.cache.GetJSON(ctx, cacheKey, &ov)
	if err != nil {
		s.logger.Warn("dashboard cache read failed", zap.Error(err))
	}
	if found {
		return &ov, nil
	}

	totals, err := s.practitioners.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("practitioner totals: %w", err)
	}
	summary, err := s.orders.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("order summary: %w", err)
	}
	recent, err := s.orders.Recent(ctx, recentOrders)
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	ov = Overview{
		Practitioners: *totals,
		Orders:        *summary,
		Recent:        recent,
		GeneratedAt:   time.Now().UTC(),
	}
	if ov.Recent == nil {
		ov.Recent = []*order.Order{}
	}
	if err := s.cache.SetJSON(ctx, cacheKey, ov, cacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return &ov, nil
}

// Health checks the database with SELECT 1.
func (s *Service) Health(ctx context.Context) error {
	var one int
	return s.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one)
}

func (s *Service) OrdersChanged(ctx context.Context)        { s.invalidate(ctx) }
func (s *Service) PractitionersChanged(ctx context.Context) { s.invalidate(ctx) }

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
