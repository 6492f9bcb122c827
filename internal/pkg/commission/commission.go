// Package commission decides what the platform keeps from a vendor's sale.
package commission

import (
	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/internal/pkg/env"
	"github.com/ManuelReschke/MarketFox/internal/pkg/money"
)

// Rule is a resolved commission. Type is never inherit.
type Rule struct {
	Type  models.CommissionType
	Value float64
	Fixed float64
}

// Snapshot is the commission frozen onto an order item.
type Snapshot struct {
	Rule
	Amount float64
	Net    float64
}

// DefaultRule is the percentage charged when neither product nor subscription sets one.
func DefaultRule() Rule {
	pct := env.GetEnvFloat("DEFAULT_COMMISSION_PERCENT", 10)
	if pct < 0 || pct > 100 {
		pct = 10
	}
	return Rule{Type: models.CommissionPercentage, Value: pct}
}

// Resolve picks the product's own rule, else the vendor subscription's
// snapshot, else fallback.
func Resolve(p *models.Product, sub *models.VendorSubscription, fallback Rule) Rule {
	if p != nil && p.CommissionType != "" && p.CommissionType != models.CommissionInherit {
		return Rule{Type: p.CommissionType, Value: p.CommissionValue, Fixed: p.CommissionFixed}
	}
	if sub != nil && sub.CommissionType != "" && sub.CommissionType != models.CommissionInherit {
		return Rule{Type: sub.CommissionType, Value: sub.CommissionValue, Fixed: sub.CommissionFixed}
	}
	return fallback
}

// Apply computes the commission on price*quantity. The amount never exceeds
// the item total, so Net is never negative and Amount+Net equals the total.
func Apply(r Rule, price float64, quantity int) Snapshot {
	total := money.Mul(price, quantity)
	var amount float64
	switch r.Type {
	case models.CommissionPercentage:
		amount = money.Percent(total, r.Value)
	case models.CommissionFixed:
		amount = money.Mul(r.Fixed, quantity)
	case models.CommissionHybrid:
		amount = money.Sum(money.Percent(total, r.Value), money.Mul(r.Fixed, quantity))
	}
	amount = min(max(amount, 0), total)
	return Snapshot{Rule: r, Amount: amount, Net: money.Sum(total, -amount)}
}
