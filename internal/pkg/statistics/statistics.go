// Package statistics serves marketplace totals for the admin dashboard,
// cached so repeated polling does not hit the database.
package statistics

import (
	"context"
	"errors"
	"sync"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/internal/pkg/cache"
)

const (
	CacheKey        = "statistics:marketplace"
	CacheExpiration = 5 * time.Minute
)

// Data holds the dashboard totals.
type Data struct {
	TotalUsers     int64     `json:"totalUsers"`
	TotalVendors   int64     `json:"totalVendors"`
	ActiveProducts int64     `json:"activeProducts"`
	TotalOrders    int64     `json:"totalOrders"`
	TodayOrders    int64     `json:"todayOrders"`
	PendingOrders  int64     `json:"pendingOrders"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Source computes fresh totals.
type Source interface {
	Collect(now time.Time) (Data, error)
}

type Cache interface {
	GetJSON(key string, dst interface{}) error
	SetJSON(key string, value interface{}, expiration time.Duration) error
}

type Service struct {
	source Source
	cache  Cache
	now    func() time.Time

	mu sync.Mutex
}

func NewService(source Source, c Cache) *Service {
	return &Service{source: source, cache: c, now: time.Now}
}

// NewServiceFromDB counts with GORM and caches in Redis.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(dbSource{db: db}, cache.Store{})
}

// Get returns cached totals, recomputing them at most once per expiry even
// under concurrent requests.
func (s *Service) Get(ctx context.Context) (Data, error) {
	_ = ctx
	var data Data
	if s.cache != nil {
		if err := s.cache.GetJSON(CacheKey, &data); err == nil {
			return data, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			fiberlog.Warnf("statistics: cache read failed: %v", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache != nil {
		if err := s.cache.GetJSON(CacheKey, &data); err == nil {
			return data, nil
		}
	}

	data, err := s.source.Collect(s.now())
	if err != nil {
		return Data{}, err
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(CacheKey, data, CacheExpiration); err != nil {
			fiberlog.Warnf("statistics: cache write failed: %v", err)
		}
	}
	return data, nil
}

type dbSource struct {
	db *gorm.DB
}

func (s dbSource) Collect(now time.Time) (Data, error) {
	data := Data{UpdatedAt: now.UTC()}
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&data.TotalUsers, s.db.Model(&models.User{})},
		{&data.TotalVendors, s.db.Model(&models.User{}).Where("role = ?", models.ROLE_VENDOR)},
		{&data.ActiveProducts, s.db.Model(&models.Product{}).Where("is_active = ?", true)},
		{&data.TotalOrders, s.db.Model(&models.Order{})},
		{&data.TodayOrders, s.db.Model(&models.Order{}).Where("created_at >= ?", dayStart)},
		{&data.PendingOrders, s.db.Model(&models.Order{}).Where("order_status = ?", models.OrderStatusPending)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return Data{}, err
		}
	}
	return data, nil
}
