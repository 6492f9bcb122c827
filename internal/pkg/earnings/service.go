package earnings

import (
	"context"
	"errors"
	"fmt"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/internal/pkg/cache"
	"github.com/ManuelReschke/MarketFox/internal/pkg/env"
)

// OrderSource loads orders with their items. A non-empty vendorID limits the
// result to orders containing that vendor's items; nil bounds are open.
type OrderSource interface {
	ListForEarnings(vendorID string, from, to *time.Time) ([]models.Order, error)
}

type Cache interface {
	GetJSON(key string, dst interface{}) error
	SetJSON(key string, value interface{}, expiration time.Duration) error
}

// Period bounds a report by order creation time.
type Period struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

func (p Period) Validate() error {
	if p.From != nil && p.To != nil && p.To.Before(*p.From) {
		return errors.New("to must not be before from")
	}
	return nil
}

func (p Period) key() string {
	format := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.UTC().Format(time.RFC3339)
	}
	return format(p.From) + ":" + format(p.To)
}

type CachedReport struct {
	Report
	Period      Period    `json:"period"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type Service struct {
	orders OrderSource
	cache  Cache
	ttl    time.Duration
}

// NewService builds the report service. cache may be nil to disable caching.
func NewService(orders OrderSource, c Cache) *Service {
	return &Service{
		orders: orders,
		cache:  c,
		ttl:    env.GetEnvDuration("EARNINGS_CACHE_TTL", 60*time.Second),
	}
}

// Report aggregates earnings for vendorID ("" for all vendors) over period.
// Reports are cached for the configured TTL; cache failures only cost a recomputation.
func (s *Service) Report(ctx context.Context, vendorID string, period Period) (*CachedReport, error) {
	_ = ctx
	if err := period.Validate(); err != nil {
		return nil, err
	}

	scope := vendorID
	if scope == "" {
		scope = "all"
	}
	key := fmt.Sprintf("earnings:%s:%s", scope, period.key())

	if s.cache != nil && s.ttl > 0 {
		var cached CachedReport
		err := s.cache.GetJSON(key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			fiberlog.Warnf("earnings: cache read %s failed: %v", key, err)
		}
	}

	orders, err := s.orders.ListForEarnings(vendorID, period.From, period.To)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	report := &CachedReport{
		Report:      Aggregate(orders, vendorID),
		Period:      period,
		GeneratedAt: time.Now().UTC(),
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.SetJSON(key, report, s.ttl); err != nil {
			fiberlog.Warnf("earnings: cache write %s failed: %v", key, err)
		}
	}
	return report, nil
}
