package pricing

import (
	"strings"

	"github.com/ManuelReschke/MarketFox/app/models"
)

// The Parse* functions map loosely typed request strings onto the closed
// enums in models. An empty input selects the fallback without complaint; a
// non-empty unknown value also selects the fallback but reports ok=false.

func ParseMarketplaceType(raw string, fallback models.MarketplaceType) (models.MarketplaceType, bool) {
	switch s := strings.ToLower(strings.TrimSpace(raw)); s {
	case "":
		return fallback, true
	case string(models.MarketplaceSimple), string(models.MarketplaceVariable), string(models.MarketplaceDigital),
		string(models.MarketplaceService), string(models.MarketplaceGrouped):
		return models.MarketplaceType(s), true
	default:
		return fallback, false
	}
}

func ParsePriceType(raw string, fallback models.PriceType) (models.PriceType, bool) {
	switch s := strings.ToLower(strings.TrimSpace(raw)); s {
	case "":
		return fallback, true
	case string(models.PriceSingle), string(models.PriceBest), string(models.PriceTBA):
		return models.PriceType(s), true
	default:
		return fallback, false
	}
}

func ParseCommissionType(raw string, fallback models.CommissionType) (models.CommissionType, bool) {
	switch s := strings.ToLower(strings.TrimSpace(raw)); s {
	case "":
		return fallback, true
	case string(models.CommissionInherit), string(models.CommissionPercentage),
		string(models.CommissionFixed), string(models.CommissionHybrid):
		return models.CommissionType(s), true
	default:
		return fallback, false
	}
}

func ParseRecurringInterval(raw string, fallback string) (string, bool) {
	switch s := strings.ToLower(strings.TrimSpace(raw)); s {
	case "":
		return fallback, true
	case models.RecurringDay, models.RecurringWeek, models.RecurringMonth, models.RecurringYear:
		return s, true
	default:
		return fallback, false
	}
}

// AllowsRecurring reports whether products of type t may bill on a schedule.
func AllowsRecurring(t models.MarketplaceType) bool {
	switch t {
	case models.MarketplaceSimple, models.MarketplaceDigital, models.MarketplaceService:
		return true
	}
	return false
}
