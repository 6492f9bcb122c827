// Package earnings sums frozen order commissions into vendor earnings.
package earnings

import (
	"sort"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/internal/pkg/money"
)

// Summary holds money totals and distinct order counts. Cancelled orders are
// counted but never contribute money.
type Summary struct {
	VendorID        string  `json:"vendorId,omitempty"`
	GrossSales      float64 `json:"grossSales"`
	CommissionTotal float64 `json:"commissionTotal"`
	NetEarnings     float64 `json:"netEarnings"`
	TotalOrders     int     `json:"totalOrders"`
	PendingOrders   int     `json:"pendingOrders"`
	DeliveredOrders int     `json:"deliveredOrders"`
	CancelledOrders int     `json:"cancelledOrders"`
}

type Report struct {
	Vendors []Summary `json:"vendors"`
	Total   Summary   `json:"total"`
}

type tally struct {
	gross, commission, net float64

	orders, pending, delivered, cancelled map[string]struct{}
}

func newTally() *tally {
	return &tally{
		orders:    map[string]struct{}{},
		pending:   map[string]struct{}{},
		delivered: map[string]struct{}{},
		cancelled: map[string]struct{}{},
	}
}

func (t *tally) count(o *models.Order) {
	t.orders[o.ID] = struct{}{}
	switch o.OrderStatus {
	case models.OrderStatusPending:
		t.pending[o.ID] = struct{}{}
	case models.OrderStatusDelivered:
		t.delivered[o.ID] = struct{}{}
	case models.OrderStatusCancelled:
		t.cancelled[o.ID] = struct{}{}
	}
}

func (t *tally) add(it *models.OrderItem) {
	t.gross += it.Price * float64(it.Quantity)
	t.commission += it.VendorCommissionAmount
	if it.VendorNetAmount != nil {
		t.net += *it.VendorNetAmount
	} else {
		t.net += it.ItemTotal - it.VendorCommissionAmount
	}
}

func (t *tally) summary(vendorID string) Summary {
	return Summary{
		VendorID:        vendorID,
		GrossSales:      money.Round2(t.gross),
		CommissionTotal: money.Round2(t.commission),
		NetEarnings:     money.Round2(t.net),
		TotalOrders:     len(t.orders),
		PendingOrders:   len(t.pending),
		DeliveredOrders: len(t.delivered),
		CancelledOrders: len(t.cancelled),
	}
}

// Aggregate sums vendor line items across orders. With a non-empty
// vendorFilter only that vendor's items are considered. Items without a
// vendor belong to the platform and are ignored. An order counts once per
// vendor however many of its items that vendor sold.
func Aggregate(orders []models.Order, vendorFilter string) Report {
	byVendor := map[string]*tally{}
	total := newTally()

	for i := range orders {
		o := &orders[i]
		cancelled := o.OrderStatus == models.OrderStatusCancelled
		for j := range o.Items {
			it := &o.Items[j]
			vendor := it.VendorKey()
			if vendor == "" || (vendorFilter != "" && vendor != vendorFilter) {
				continue
			}
			t, ok := byVendor[vendor]
			if !ok {
				t = newTally()
				byVendor[vendor] = t
			}
			t.count(o)
			total.count(o)
			if cancelled {
				continue
			}
			t.add(it)
			total.add(it)
		}
	}

	report := Report{Vendors: make([]Summary, 0, len(byVendor)), Total: total.summary(vendorFilter)}
	for vendor, t := range byVendor {
		report.Vendors = append(report.Vendors, t.summary(vendor))
	}
	sort.Slice(report.Vendors, func(i, j int) bool {
		a, b := report.Vendors[i], report.Vendors[j]
		if a.GrossSales != b.GrossSales {
			return a.GrossSales > b.GrossSales
		}
		return a.VendorID < b.VendorID
	})
	return report
}
