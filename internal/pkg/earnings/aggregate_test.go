package earnings

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/internal/pkg/cache"
)

func ptr[T any](v T) *T { return &v }

func item(vendor string, price float64, qty int, commission float64, net *float64) models.OrderItem {
	it := models.OrderItem{
		Price:                  price,
		Quantity:               qty,
		ItemTotal:              price * float64(qty),
		VendorCommissionAmount: commission,
		VendorNetAmount:        net,
	}
	if vendor != "" {
		it.VendorID = &vendor
	}
	return it
}

func sampleOrders() []models.Order {
	return []models.Order{
		{ID: "o1", OrderStatus: models.OrderStatusPending, Items: []models.OrderItem{
			item("a", 100, 2, 20, ptr(180.0)),
			item("a", 50, 1, 5, ptr(45.0)),
			item("b", 10, 3, 3, ptr(27.0)),
		}},
		{ID: "o2", OrderStatus: models.OrderStatusDelivered, Items: []models.OrderItem{
			item("a", 0.1, 1, 0.01, nil),
			item("a", 0.2, 1, 0.02, nil),
			item("", 999, 1, 0, nil),
		}},
		{ID: "o3", OrderStatus: models.OrderStatusCancelled, Items: []models.OrderItem{
			item("a", 1000, 1, 100, ptr(900.0)),
		}},
	}
}

func TestAggregatePerVendor(t *testing.T) {
	r := Aggregate(sampleOrders(), "")

	require.Len(t, r.Vendors, 2)
	a, b := r.Vendors[0], r.Vendors[1]

	assert.Equal(t, "a", a.VendorID)
	assert.Equal(t, 250.3, a.GrossSales)
	assert.Equal(t, 25.03, a.CommissionTotal)
	assert.Equal(t, 225.27, a.NetEarnings, "net falls back to itemTotal - commission")
	assert.Equal(t, 3, a.TotalOrders)
	assert.Equal(t, 1, a.PendingOrders, "an order counts once per vendor")
	assert.Equal(t, 1, a.DeliveredOrders)
	assert.Equal(t, 1, a.CancelledOrders)

	assert.Equal(t, "b", b.VendorID)
	assert.Equal(t, 30.0, b.GrossSales)
	assert.Equal(t, 1, b.TotalOrders)

	assert.Equal(t, 280.3, r.Total.GrossSales)
	assert.Equal(t, 28.03, r.Total.CommissionTotal)
	assert.Equal(t, 252.27, r.Total.NetEarnings)
	assert.Equal(t, 3, r.Total.TotalOrders)
	assert.Equal(t, 1, r.Total.PendingOrders)
}

func TestAggregateVendorFilter(t *testing.T) {
	r := Aggregate(sampleOrders(), "b")

	require.Len(t, r.Vendors, 1)
	assert.Equal(t, "b", r.Total.VendorID)
	assert.Equal(t, 30.0, r.Total.GrossSales)
	assert.Equal(t, 3.0, r.Total.CommissionTotal)
	assert.Equal(t, 27.0, r.Total.NetEarnings)
	assert.Equal(t, 1, r.Total.TotalOrders)
	assert.Equal(t, 0, r.Total.DeliveredOrders)
}

func TestAggregateEmpty(t *testing.T) {
	r := Aggregate(nil, "x")
	assert.Empty(t, r.Vendors)
	assert.Equal(t, Summary{VendorID: "x"}, r.Total)
}

type fakeOrders struct {
	orders []models.Order
	calls  int
}

func (f *fakeOrders) ListForEarnings(vendorID string, from, to *time.Time) ([]models.Order, error) {
	f.calls++
	return f.orders, nil
}

type memCache struct {
	data   map[string][]byte
	ttl    time.Duration
	broken bool
}

func (m *memCache) GetJSON(key string, dst interface{}) error {
	if m.broken {
		return errors.New("connection refused")
	}
	raw, ok := m.data[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(raw, dst)
}

func (m *memCache) SetJSON(key string, value interface{}, ttl time.Duration) error {
	if m.broken {
		return errors.New("connection refused")
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	m.ttl = ttl
	return nil
}

func TestServiceCachesReports(t *testing.T) {
	t.Setenv("EARNINGS_CACHE_TTL", "90s")
	src := &fakeOrders{orders: sampleOrders()}
	c := &memCache{data: map[string][]byte{}}
	svc := NewService(src, c)
	ctx := context.Background()

	first, err := svc.Report(ctx, "a", Period{})
	require.NoError(t, err)
	second, err := svc.Report(ctx, "a", Period{})
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 90*time.Second, c.ttl)
	assert.Equal(t, first.Total, second.Total)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.Report(ctx, "a", Period{From: &from})
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls, "a different period is a different cache entry")
}

func TestServiceSurvivesBrokenCache(t *testing.T) {
	src := &fakeOrders{orders: sampleOrders()}
	svc := NewService(src, &memCache{broken: true})

	r, err := svc.Report(context.Background(), "", Period{})
	require.NoError(t, err)
	assert.Equal(t, 280.3, r.Total.GrossSales)
}

func TestServiceRejectsInvertedPeriod(t *testing.T) {
	svc := NewService(&fakeOrders{}, nil)
	from := time.Now()
	to := from.Add(-time.Hour)

	_, err := svc.Report(context.Background(), "", Period{From: &from, To: &to})
	assert.Error(t, err)
}
