package shipping

import (
	"context"
	"errors"
	"fmt"
	"strings"

	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/internal/pkg/env"
	"github.com/ManuelReschke/MarketFox/internal/pkg/metrics"
	"github.com/ManuelReschke/MarketFox/internal/pkg/money"
)

const (
	// GlobalGroup keys cart lines whose vendor could not be resolved.
	GlobalGroup     = "global"
	globalGroupName = "Global"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrUnresolvableCart = errors.New("no cart item could be resolved to a product")
)

// ProductLookup batch-loads products by id. Unknown ids are omitted.
type ProductLookup interface {
	GetByIDs(ids []string) ([]models.Product, error)
}

// ZoneSource lists active zones of a scope ordered by priority then creation.
// vendorID is ignored for the global scope.
type ZoneSource interface {
	ListActive(scope models.ZoneScope, vendorID string) ([]models.ShippingZone, error)
}

// VendorDirectory maps vendor ids to display names. Ids it does not know
// are absent from the result.
type VendorDirectory interface {
	GetStoreNames(ids []string) (map[string]string, error)
}

// Defaults apply when a destination has no country or no rule matches at all.
type Defaults struct {
	Country string
	Fee     float64
	MinDays int
	MaxDays int
}

func DefaultsFromEnv() Defaults {
	d := Defaults{
		Country: env.GetEnv("SHIPPING_DEFAULT_COUNTRY", "Bangladesh"),
		Fee:     env.GetEnvFloat("SHIPPING_FALLBACK_FEE", 0),
		MinDays: env.GetEnvInt("SHIPPING_FALLBACK_MIN_DAYS", 3),
		MaxDays: env.GetEnvInt("SHIPPING_FALLBACK_MAX_DAYS", 7),
	}
	if d.MaxDays < d.MinDays {
		d.MaxDays = d.MinDays
	}
	return d
}

// CartLine is one requested product. UnitPrice and VendorID are optional and
// are resolved from the catalog when missing.
type CartLine struct {
	ProductID string   `json:"productId"`
	Quantity  int      `json:"quantity"`
	UnitPrice *float64 `json:"unitPrice,omitempty"`
	VendorID  string   `json:"vendorId,omitempty"`
}

type BreakdownRow struct {
	VendorID         string  `json:"vendorId"`
	VendorName       string  `json:"vendorName"`
	Source           string  `json:"source"`
	ZoneID           string  `json:"zoneId,omitempty"`
	ZoneName         string  `json:"zoneName,omitempty"`
	RuleID           string  `json:"ruleId,omitempty"`
	RuleLabel        string  `json:"ruleLabel,omitempty"`
	Subtotal         float64 `json:"subtotal"`
	ItemCount        int     `json:"itemCount"`
	ShippingFee      float64 `json:"shippingFee"`
	EstimatedMinDays int     `json:"estimatedMinDays"`
	EstimatedMaxDays int     `json:"estimatedMaxDays"`
}

type Estimate struct {
	ShippingFee      float64        `json:"shippingFee"`
	EstimatedMinDays int            `json:"estimatedMinDays"`
	EstimatedMaxDays int            `json:"estimatedMaxDays"`
	Breakdown        []BreakdownRow `json:"breakdown"`
	Destination      Destination    `json:"destination"`
}

type group struct {
	key       string
	subtotal  float64
	itemCount int
}

type Estimator struct {
	products ProductLookup
	zones    ZoneSource
	vendors  VendorDirectory
	defaults Defaults
}

func NewEstimator(products ProductLookup, zones ZoneSource, vendors VendorDirectory, defaults Defaults) *Estimator {
	return &Estimator{products: products, zones: zones, vendors: vendors, defaults: defaults}
}

// Estimate prices delivery of lines to dest. Each vendor group is priced by
// its own zones first, then global zones, then the configured default; the
// order total sums group fees and ships as slow as the slowest group.
func (e *Estimator) Estimate(ctx context.Context, lines []CartLine, dest Destination) (*Estimate, error) {
	_ = ctx
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	dest = dest.normalized(e.defaults.Country)

	resolved, err := e.resolveLines(lines)
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, ErrUnresolvableCart
	}

	groups := groupLines(resolved)
	names, known, err := e.vendorNames(groups)
	if err != nil {
		return nil, err
	}

	var globalZones []models.ShippingZone
	globalLoaded := false
	loadGlobal := func() ([]models.ShippingZone, error) {
		if globalLoaded {
			return globalZones, nil
		}
		zones, err := e.zones.ListActive(models.ZoneScopeGlobal, "")
		if err != nil {
			return nil, fmt.Errorf("load global shipping zones: %w", err)
		}
		globalZones, globalLoaded = zones, true
		return zones, nil
	}

	est := &Estimate{Destination: dest, Breakdown: make([]BreakdownRow, 0, len(groups))}
	fees := make([]float64, 0, len(groups))
	for _, g := range groups {
		var candidates []Candidate
		if g.key != GlobalGroup && known[g.key] {
			zones, err := e.zones.ListActive(models.ZoneScopeVendor, g.key)
			if err != nil {
				return nil, fmt.Errorf("load shipping zones for vendor %s: %w", g.key, err)
			}
			candidates = MatchZones(zones, SourceVendor, dest, g.subtotal)
		}
		if len(candidates) == 0 {
			zones, err := loadGlobal()
			if err != nil {
				return nil, err
			}
			candidates = MatchZones(zones, SourceGlobal, dest, g.subtotal)
		}

		row := BreakdownRow{
			VendorID:   g.key,
			VendorName: names[g.key],
			Subtotal:   money.Round2(g.subtotal),
			ItemCount:  g.itemCount,
		}
		if best, ok := SelectBest(candidates); ok {
			row.Source = best.Source
			row.ZoneID = best.Zone.ID
			row.ZoneName = best.Zone.Name
			row.RuleID = best.Rule.ID
			row.RuleLabel = best.Rule.Label
			row.ShippingFee = money.Round2(best.Rule.ShippingFee)
			row.EstimatedMinDays = best.Rule.EstimatedMinDays
			row.EstimatedMaxDays = best.Rule.EstimatedMaxDays
		} else {
			fiberlog.Debugf("shipping: no rule matched group %s for %s/%s/%s, using default", g.key, dest.City, dest.District, dest.Country)
			row.Source = SourceDefault
			row.ShippingFee = money.Round2(e.defaults.Fee)
			row.EstimatedMinDays = e.defaults.MinDays
			row.EstimatedMaxDays = e.defaults.MaxDays
		}
		metrics.ShippingEstimate(row.Source)

		fees = append(fees, row.ShippingFee)
		est.EstimatedMinDays = max(est.EstimatedMinDays, row.EstimatedMinDays)
		est.EstimatedMaxDays = max(est.EstimatedMaxDays, row.EstimatedMaxDays)
		est.Breakdown = append(est.Breakdown, row)
	}
	est.ShippingFee = money.Sum(fees...)
	return est, nil
}

// resolveLines clamps quantities and prices and fills price from the catalog.
// A catalog product always decides the vendor; a line's own vendorId only
// counts for products the catalog does not know. Lines that name no product,
// or whose product is unknown and carries no price, are dropped.
func (e *Estimator) resolveLines(lines []CartLine) ([]CartLine, error) {
	var ids []string
	for _, l := range lines {
		if id := strings.TrimSpace(l.ProductID); id != "" {
			ids = append(ids, id)
		}
	}

	catalog := map[string]models.Product{}
	if len(ids) > 0 {
		products, err := e.products.GetByIDs(ids)
		if err != nil {
			return nil, fmt.Errorf("load cart products: %w", err)
		}
		for _, p := range products {
			catalog[p.ID] = p
		}
	}

	out := make([]CartLine, 0, len(lines))
	for _, l := range lines {
		l.ProductID = strings.TrimSpace(l.ProductID)
		if l.ProductID == "" {
			continue
		}
		l.Quantity = max(l.Quantity, 1)
		p, known := catalog[l.ProductID]
		if l.UnitPrice == nil || *l.UnitPrice < 0 {
			if !known {
				continue
			}
			price := p.EffectivePrice()
			l.UnitPrice = &price
		}
		if known {
			l.VendorID = p.VendorKey()
		}
		out = append(out, l)
	}
	return out, nil
}

// groupLines buckets lines by vendor in order of first appearance.
func groupLines(lines []CartLine) []*group {
	var groups []*group
	byKey := map[string]*group{}
	for _, l := range lines {
		key := strings.TrimSpace(l.VendorID)
		if key == "" {
			key = GlobalGroup
		}
		g, ok := byKey[key]
		if !ok {
			g = &group{key: key}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.subtotal += money.Mul(*l.UnitPrice, l.Quantity)
		g.itemCount += l.Quantity
	}
	return groups
}

// vendorNames names each group by its store. Vendors the directory does not
// know are named like the global group and reported as unknown, so their
// group is priced by global zones only. Without a directory every vendor is
// taken as known.
func (e *Estimator) vendorNames(groups []*group) (map[string]string, map[string]bool, error) {
	names := map[string]string{GlobalGroup: globalGroupName}
	known := map[string]bool{}
	var ids []string
	for _, g := range groups {
		if g.key != GlobalGroup {
			ids = append(ids, g.key)
			names[g.key] = "Vendor"
			known[g.key] = true
		}
	}
	if len(ids) == 0 || e.vendors == nil {
		return names, known, nil
	}
	found, err := e.vendors.GetStoreNames(ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load vendor names: %w", err)
	}
	for _, id := range ids {
		n, ok := found[id]
		if !ok {
			names[id] = globalGroupName
			known[id] = false
			continue
		}
		if n = strings.TrimSpace(n); n != "" {
			names[id] = n
		}
	}
	return names, known, nil
}
