// Package pricing turns raw product input into a consistent product payload.
//
// Normalize never fails on malformed numbers: they are clamped to a safe
// default and reported in Payload.Clamped. Rule violations are collected as
// human readable messages; callers reject the request when any are returned.
package pricing

import (
	"fmt"
	"strings"

	"github.com/ManuelReschke/MarketFox/app/models"
)

const (
	ErrSinglePrice       = "Price must be greater than 0 for single price type"
	ErrBestRegularPrice  = "Regular price must be greater than 0 for best price type"
	ErrBestSalePrice     = "Sale price must be greater than 0 and lower than the regular price for best price type"
	ErrRecurringTBA      = "Recurring products cannot use TBA price type"
	ErrVariationRequired = "At least one variation is required for variable product type"
	ErrGroupedRequired   = "At least one grouped product is required for grouped product type"
	ErrDownloadURL       = "Download URL is required for digital product type"
	ErrRecurringType     = "Recurring billing is only available for simple, digital and service product types"
)

// Input is the product body as sent by a client. Fields left unset keep the
// existing product's value on update.
type Input struct {
	Name                   *string          `json:"name"`
	Description            *string          `json:"description"`
	MarketplaceType        string           `json:"marketplaceType"`
	PriceType              string           `json:"priceType"`
	Price                  Field            `json:"price"`
	SalePrice              Field            `json:"salePrice"`
	Stock                  Field            `json:"stock"`
	AllowBackorder         Field            `json:"allowBackorder"`
	Variations             []VariationInput `json:"variations"`
	GroupedProducts        []string         `json:"groupedProducts"`
	DownloadURL            *string          `json:"downloadUrl"`
	CommissionType         string           `json:"commissionType"`
	CommissionValue        Field            `json:"commissionValue"`
	CommissionFixed        Field            `json:"commissionFixed"`
	IsRecurring            Field            `json:"isRecurring"`
	RecurringInterval      string           `json:"recurringInterval"`
	RecurringIntervalCount Field            `json:"recurringIntervalCount"`
	RecurringTrialDays     Field            `json:"recurringTrialDays"`
	DeliveryMinDays        Field            `json:"deliveryMinDays"`
	DeliveryMaxDays        Field            `json:"deliveryMaxDays"`
}

type VariationInput struct {
	Label      string            `json:"label"`
	SKU        string            `json:"sku"`
	Price      any               `json:"price"`
	SalePrice  any               `json:"salePrice"`
	Stock      any               `json:"stock"`
	IsActive   any               `json:"isActive"`
	Attributes map[string]string `json:"attributes"`
}

// Payload is the normalized product. Clamped lists the fields whose input was
// replaced by a default.
type Payload struct {
	Name                   string                    `json:"name"`
	Description            string                    `json:"description"`
	MarketplaceType        models.MarketplaceType    `json:"marketplaceType"`
	PriceType              models.PriceType          `json:"priceType"`
	Price                  float64                   `json:"price"`
	SalePrice              *float64                  `json:"salePrice"`
	Stock                  int                       `json:"stock"`
	AllowBackorder         bool                      `json:"allowBackorder"`
	Variations             []models.ProductVariation `json:"variations"`
	GroupedProducts        []string                  `json:"groupedProducts"`
	DownloadURL            string                    `json:"downloadUrl"`
	CommissionType         models.CommissionType     `json:"commissionType"`
	CommissionValue        float64                   `json:"commissionValue"`
	CommissionFixed        float64                   `json:"commissionFixed"`
	IsRecurring            bool                      `json:"isRecurring"`
	RecurringInterval      string                    `json:"recurringInterval"`
	RecurringIntervalCount int                       `json:"recurringIntervalCount"`
	RecurringTrialDays     int                       `json:"recurringTrialDays"`
	DeliveryMinDays        int                       `json:"deliveryMinDays"`
	DeliveryMaxDays        int                       `json:"deliveryMaxDays"`
	Clamped                []string                  `json:"clamped,omitempty"`
}

// ApplyTo copies the payload onto p. Identity and ownership fields are untouched.
func (pl Payload) ApplyTo(p *models.Product) {
	p.Name = pl.Name
	p.Description = pl.Description
	p.MarketplaceType = pl.MarketplaceType
	p.PriceType = pl.PriceType
	p.Price = pl.Price
	p.SalePrice = pl.SalePrice
	p.Stock = pl.Stock
	p.AllowBackorder = pl.AllowBackorder
	p.Variations = pl.Variations
	p.GroupedProducts = pl.GroupedProducts
	p.DownloadURL = pl.DownloadURL
	p.CommissionType = pl.CommissionType
	p.CommissionValue = pl.CommissionValue
	p.CommissionFixed = pl.CommissionFixed
	p.IsRecurring = pl.IsRecurring
	p.RecurringInterval = pl.RecurringInterval
	p.RecurringIntervalCount = pl.RecurringIntervalCount
	p.RecurringTrialDays = pl.RecurringTrialDays
	p.DeliveryMinDays = pl.DeliveryMinDays
	p.DeliveryMaxDays = pl.DeliveryMaxDays
}

type normalizer struct {
	clamped []string
}

func (n *normalizer) flag(field string, clamped bool) {
	if clamped {
		n.clamped = append(n.clamped, field)
	}
}

func (n *normalizer) number(field string, f Field, fallback float64) float64 {
	if !f.Set {
		return fallback
	}
	v, clamped := SanitizeNumber(f.Value, fallback)
	n.flag(field, clamped)
	return v
}

func (n *normalizer) integer(field string, f Field, fallback int) int {
	if !f.Set {
		return fallback
	}
	v, clamped := SanitizeInt(f.Value, fallback)
	n.flag(field, clamped)
	return v
}

func (n *normalizer) boolean(field string, f Field, fallback bool) bool {
	if !f.Set {
		return fallback
	}
	v, clamped := SanitizeBool(f.Value, fallback)
	n.flag(field, clamped)
	return v
}

func (n *normalizer) optionalNumber(field string, f Field, fallback *float64) *float64 {
	if !f.Set {
		return copyFloat(fallback)
	}
	v, clamped := SanitizeOptionalNumber(f.Value, fallback)
	n.flag(field, clamped)
	return v
}

// Normalize derives a consistent product from in. existing supplies the
// values for fields the client left out; excludedProductID is dropped from
// grouped product references so a product cannot contain itself.
func Normalize(in Input, existing *models.Product, excludedProductID string) (Payload, []string) {
	base := models.Product{
		MarketplaceType:        models.MarketplaceSimple,
		PriceType:              models.PriceSingle,
		CommissionType:         models.CommissionInherit,
		RecurringInterval:      models.RecurringMonth,
		RecurringIntervalCount: 1,
	}
	if existing != nil {
		base = *existing
	}
	n := &normalizer{}
	var pl Payload

	pl.Name = base.Name
	if in.Name != nil {
		pl.Name = strings.TrimSpace(*in.Name)
	}
	pl.Description = base.Description
	if in.Description != nil {
		pl.Description = strings.TrimSpace(*in.Description)
	}

	var ok bool
	pl.MarketplaceType, ok = ParseMarketplaceType(in.MarketplaceType, base.MarketplaceType)
	n.flag("marketplaceType", !ok)
	pl.PriceType, ok = ParsePriceType(in.PriceType, base.PriceType)
	n.flag("priceType", !ok)

	pl.Price = n.number("price", in.Price, base.Price)
	pl.SalePrice = n.optionalNumber("salePrice", in.SalePrice, base.SalePrice)
	pl.Stock = n.integer("stock", in.Stock, base.Stock)
	pl.AllowBackorder = n.boolean("allowBackorder", in.AllowBackorder, base.AllowBackorder)

	if in.Variations != nil {
		pl.Variations = n.variations(in.Variations)
	} else {
		pl.Variations = cloneVariations(base.Variations)
	}
	if in.GroupedProducts != nil {
		pl.GroupedProducts = n.groupedProducts(in.GroupedProducts, excludedProductID)
	} else {
		pl.GroupedProducts = n.groupedProducts(base.GroupedProducts, excludedProductID)
	}

	pl.DownloadURL = base.DownloadURL
	if in.DownloadURL != nil {
		pl.DownloadURL = strings.TrimSpace(*in.DownloadURL)
	}

	n.commission(&pl, in, base)
	n.recurring(&pl, in, base)

	pl.DeliveryMinDays = n.integer("deliveryMinDays", in.DeliveryMinDays, base.DeliveryMinDays)
	pl.DeliveryMaxDays = n.integer("deliveryMaxDays", in.DeliveryMaxDays, base.DeliveryMaxDays)
	if pl.DeliveryMaxDays < pl.DeliveryMinDays {
		pl.DeliveryMaxDays = pl.DeliveryMinDays
		n.flag("deliveryMaxDays", true)
	}

	errs := applyPricingRules(&pl)
	pl.Clamped = n.clamped
	return pl, errs
}

// applyPricingRules derives price and stock for the product's marketplace type
// and returns rule violations in a fixed order.
func applyPricingRules(pl *Payload) []string {
	errs := make([]string, 0)

	switch pl.MarketplaceType {
	case models.MarketplaceVariable:
		if len(pl.Variations) == 0 {
			errs = append(errs, ErrVariationRequired)
			break
		}
		pl.Price = minVariationPrice(pl.Variations)
		pl.SalePrice = nil
		pl.Stock = 0
		for _, v := range pl.Variations {
			pl.Stock += v.Stock
		}
	case models.MarketplaceGrouped:
		if len(pl.GroupedProducts) == 0 {
			errs = append(errs, ErrGroupedRequired)
		}
		pl.Stock = 0
		pl.SalePrice = nil
	default:
		switch pl.PriceType {
		case models.PriceSingle:
			pl.SalePrice = nil
			if pl.Price <= 0 {
				errs = append(errs, ErrSinglePrice)
			}
		case models.PriceBest:
			if pl.Price <= 0 {
				errs = append(errs, ErrBestRegularPrice)
			}
			if pl.SalePrice == nil || *pl.SalePrice <= 0 || *pl.SalePrice >= pl.Price {
				errs = append(errs, ErrBestSalePrice)
			}
		case models.PriceTBA:
			pl.Price = 0
			pl.SalePrice = nil
			pl.Stock = 0
			pl.AllowBackorder = false
			if pl.IsRecurring {
				errs = append(errs, ErrRecurringTBA)
			}
		}
	}

	if pl.MarketplaceType == models.MarketplaceDigital && pl.DownloadURL == "" {
		errs = append(errs, ErrDownloadURL)
	}
	if pl.IsRecurring && !AllowsRecurring(pl.MarketplaceType) {
		errs = append(errs, ErrRecurringType)
	}
	return errs
}

// minVariationPrice is the lowest effective price among active variations.
// With every variation inactive the product still shows the lowest price overall.
func minVariationPrice(vars []models.ProductVariation) float64 {
	best, found := 0.0, false
	for _, v := range vars {
		if !v.IsActive {
			continue
		}
		if p := v.EffectivePrice(); !found || p < best {
			best, found = p, true
		}
	}
	if found {
		return best
	}
	for i, v := range vars {
		if p := v.EffectivePrice(); i == 0 || p < best {
			best = p
		}
	}
	return best
}

func (n *normalizer) variations(in []VariationInput) []models.ProductVariation {
	out := make([]models.ProductVariation, 0, len(in))
	for i, raw := range in {
		field := fmt.Sprintf("variations[%d]", i)
		label := strings.TrimSpace(raw.Label)
		price, ok := parseNumber(raw.Price)
		if label == "" || !ok {
			n.flag(field, true)
			continue
		}

		v := models.ProductVariation{
			Label: label,
			SKU:   strings.TrimSpace(raw.SKU),
			Price: price,
		}
		var clamped bool
		v.SalePrice, clamped = SanitizeOptionalNumber(raw.SalePrice, nil)
		n.flag(field+".salePrice", clamped)
		if v.SalePrice != nil && *v.SalePrice > v.Price {
			sp := v.Price
			v.SalePrice = &sp
			n.flag(field+".salePrice", true)
		}
		v.Stock, clamped = SanitizeInt(raw.Stock, 0)
		n.flag(field+".stock", clamped)
		v.IsActive, clamped = SanitizeBool(raw.IsActive, true)
		n.flag(field+".isActive", clamped)
		if len(raw.Attributes) > 0 {
			v.Attributes = make(map[string]string, len(raw.Attributes))
			for k, val := range raw.Attributes {
				if k = strings.TrimSpace(k); k != "" {
					v.Attributes[k] = strings.TrimSpace(val)
				}
			}
		}
		out = append(out, v)
	}
	return out
}

// groupedProducts keeps unique, well-formed ids other than self, in input order.
func (n *normalizer) groupedProducts(ids []string, self string) []string {
	self, _ = models.NormalizeObjectID(self)
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, raw := range ids {
		id, ok := models.NormalizeObjectID(raw)
		if !ok || id == self {
			n.flag("groupedProducts", true)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (n *normalizer) commission(pl *Payload, in Input, base models.Product) {
	var ok bool
	pl.CommissionType, ok = ParseCommissionType(in.CommissionType, base.CommissionType)
	n.flag("commissionType", !ok)
	value := n.number("commissionValue", in.CommissionValue, base.CommissionValue)
	fixed := n.number("commissionFixed", in.CommissionFixed, base.CommissionFixed)

	switch pl.CommissionType {
	case models.CommissionInherit:
		pl.CommissionValue, pl.CommissionFixed = 0, 0
	case models.CommissionPercentage:
		if value > 100 {
			value = 100
			n.flag("commissionValue", true)
		}
		pl.CommissionValue, pl.CommissionFixed = value, 0
	case models.CommissionFixed:
		if fixed <= 0 {
			fixed = value
		}
		pl.CommissionValue, pl.CommissionFixed = 0, fixed
	case models.CommissionHybrid:
		if value > 100 {
			value = 100
			n.flag("commissionValue", true)
		}
		pl.CommissionValue, pl.CommissionFixed = value, fixed
	}
}

func (n *normalizer) recurring(pl *Payload, in Input, base models.Product) {
	pl.IsRecurring = n.boolean("isRecurring", in.IsRecurring, base.IsRecurring)
	if !pl.IsRecurring {
		pl.RecurringInterval = models.RecurringMonth
		pl.RecurringIntervalCount = 1
		pl.RecurringTrialDays = 0
		return
	}

	baseInterval := base.RecurringInterval
	if baseInterval == "" {
		baseInterval = models.RecurringMonth
	}
	var ok bool
	pl.RecurringInterval, ok = ParseRecurringInterval(in.RecurringInterval, baseInterval)
	n.flag("recurringInterval", !ok)

	pl.RecurringIntervalCount = n.integer("recurringIntervalCount", in.RecurringIntervalCount, max(base.RecurringIntervalCount, 1))
	if pl.RecurringIntervalCount < 1 {
		pl.RecurringIntervalCount = 1
		n.flag("recurringIntervalCount", true)
	}
	pl.RecurringTrialDays = n.integer("recurringTrialDays", in.RecurringTrialDays, base.RecurringTrialDays)
}

func cloneVariations(in []models.ProductVariation) []models.ProductVariation {
	out := make([]models.ProductVariation, len(in))
	for i, v := range in {
		v.SalePrice = copyFloat(v.SalePrice)
		out[i] = v
	}
	return out
}
