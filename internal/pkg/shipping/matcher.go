package shipping

import (
	"sort"
	"strings"

	"github.com/ManuelReschke/MarketFox/app/models"
)

const (
	SourceVendor  = "vendor"
	SourceGlobal  = "global"
	SourceDefault = "default"
)

// Destination is where a cart ships to. Empty fields only match wildcard rules.
type Destination struct {
	City     string `json:"city"`
	District string `json:"district"`
	Country  string `json:"country"`
}

func (d Destination) normalized(defaultCountry string) Destination {
	d.City = strings.TrimSpace(d.City)
	d.District = strings.TrimSpace(d.District)
	d.Country = strings.TrimSpace(d.Country)
	if d.Country == "" {
		d.Country = defaultCountry
	}
	return d
}

// Candidate is a matching rule together with the zone it belongs to.
type Candidate struct {
	Source string
	Zone   models.ShippingZone
	Rule   models.ShippingRule
}

func locationMatches(ruleValue, destValue string) bool {
	ruleValue = strings.TrimSpace(ruleValue)
	return ruleValue == "" || strings.EqualFold(ruleValue, strings.TrimSpace(destValue))
}

// Matches reports whether rule r applies to dest for the given subtotal.
func Matches(r models.ShippingRule, dest Destination, subtotal float64) bool {
	if !r.IsActive {
		return false
	}
	if !locationMatches(r.Country, dest.Country) ||
		!locationMatches(r.District, dest.District) ||
		!locationMatches(r.City, dest.City) {
		return false
	}
	if subtotal < r.MinSubtotal {
		return false
	}
	if r.MaxSubtotal != nil && subtotal > *r.MaxSubtotal {
		return false
	}
	return true
}

// Specificity scores how narrowly a rule names its location: city 4, district 2, country 1.
func Specificity(r models.ShippingRule) int {
	score := 0
	if strings.TrimSpace(r.City) != "" {
		score += 4
	}
	if strings.TrimSpace(r.District) != "" {
		score += 2
	}
	if strings.TrimSpace(r.Country) != "" {
		score++
	}
	return score
}

// MatchZones collects every active rule of every active zone that matches,
// preserving zone then rule order.
func MatchZones(zones []models.ShippingZone, source string, dest Destination, subtotal float64) []Candidate {
	var out []Candidate
	for _, z := range zones {
		if !z.IsActive {
			continue
		}
		for _, r := range z.Rules {
			if Matches(r, dest, subtotal) {
				out = append(out, Candidate{Source: source, Zone: z, Rule: r})
			}
		}
	}
	return out
}

// SelectBest orders candidates by zone priority, then specificity (higher
// first), then fee, then maximum delivery days, and returns the first. Equal
// candidates keep their input order.
func SelectBest(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Zone.Priority != b.Zone.Priority {
			return a.Zone.Priority < b.Zone.Priority
		}
		if sa, sb := Specificity(a.Rule), Specificity(b.Rule); sa != sb {
			return sa > sb
		}
		if a.Rule.ShippingFee != b.Rule.ShippingFee {
			return a.Rule.ShippingFee < b.Rule.ShippingFee
		}
		return a.Rule.EstimatedMaxDays < b.Rule.EstimatedMaxDays
	})
	return sorted[0], true
}
