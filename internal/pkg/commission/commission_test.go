package commission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/internal/pkg/money"
)

func TestResolve(t *testing.T) {
	fallback := Rule{Type: models.CommissionPercentage, Value: 10}
	sub := &models.VendorSubscription{CommissionType: models.CommissionHybrid, CommissionValue: 5, CommissionFixed: 1}

	own := &models.Product{CommissionType: models.CommissionFixed, CommissionFixed: 3}
	assert.Equal(t, Rule{Type: models.CommissionFixed, Fixed: 3}, Resolve(own, sub, fallback))

	inherit := &models.Product{CommissionType: models.CommissionInherit, CommissionValue: 99}
	assert.Equal(t, Rule{Type: models.CommissionHybrid, Value: 5, Fixed: 1}, Resolve(inherit, sub, fallback))
	assert.Equal(t, fallback, Resolve(inherit, nil, fallback))
	assert.Equal(t, fallback, Resolve(nil, nil, fallback))
}

func TestApply(t *testing.T) {
	tests := []struct {
		name       string
		rule       Rule
		price      float64
		qty        int
		wantAmount float64
		wantNet    float64
	}{
		{name: "percentage", rule: Rule{Type: models.CommissionPercentage, Value: 10}, price: 750, qty: 2, wantAmount: 150, wantNet: 1350},
		{name: "percentage rounding", rule: Rule{Type: models.CommissionPercentage, Value: 12.5}, price: 19.99, qty: 3, wantAmount: 7.5, wantNet: 52.47},
		{name: "fixed per unit", rule: Rule{Type: models.CommissionFixed, Fixed: 2.5}, price: 40, qty: 4, wantAmount: 10, wantNet: 150},
		{name: "hybrid", rule: Rule{Type: models.CommissionHybrid, Value: 5, Fixed: 1}, price: 100, qty: 2, wantAmount: 12, wantNet: 188},
		{name: "capped at total", rule: Rule{Type: models.CommissionFixed, Fixed: 50}, price: 20, qty: 1, wantAmount: 20, wantNet: 0},
		{name: "unknown type", rule: Rule{Type: "tiered", Value: 50}, price: 20, qty: 1, wantAmount: 0, wantNet: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Apply(tt.rule, tt.price, tt.qty)
			assert.Equal(t, tt.wantAmount, s.Amount)
			assert.Equal(t, tt.wantNet, s.Net)
			assert.Equal(t, money.Mul(tt.price, tt.qty), money.Sum(s.Amount, s.Net))
		})
	}
}

func TestDefaultRule(t *testing.T) {
	t.Setenv("DEFAULT_COMMISSION_PERCENT", "12.5")
	assert.Equal(t, Rule{Type: models.CommissionPercentage, Value: 12.5}, DefaultRule())

	t.Setenv("DEFAULT_COMMISSION_PERCENT", "250")
	assert.Equal(t, 10.0, DefaultRule().Value)
}
