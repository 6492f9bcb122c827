package billing

import (
	"strings"
	"time"

	"github.com/ManuelReschke/MarketFox/app/models"
)

const monthKeyLayout = "2006-01"

// MonthKey returns the upload counter period for t, e.g. "2025-03".
func MonthKey(t time.Time) string {
	return t.Format(monthKeyLayout)
}

// Reconcile applies the time based transitions that are evaluated lazily:
// an active subscription past its expiry becomes expired, and an upload
// counter from an earlier month starts over. changed reports whether sub
// differs from the input and needs persisting.
func Reconcile(sub models.VendorSubscription, now time.Time) (models.VendorSubscription, bool) {
	changed := false
	if sub.Status == models.SubscriptionStatusActive && !sub.ExpiresAt.After(now) {
		sub.Status = models.SubscriptionStatusExpired
		changed = true
	}
	if key := MonthKey(now); sub.MonthlyUploadPeriod != key {
		sub.MonthlyUploadCount = 0
		sub.MonthlyUploadPeriod = key
		changed = true
	}
	return sub, changed
}

// snapshotPlan copies the plan's limits and commission onto a new subscription.
func snapshotPlan(plan *models.SubscriptionPlan, vendorID string, now time.Time) *models.VendorSubscription {
	return &models.VendorSubscription{
		VendorID:            vendorID,
		PlanID:              plan.ID,
		Status:              models.SubscriptionStatusActive,
		StartsAt:            now,
		ExpiresAt:           now.AddDate(0, 0, max(plan.DurationDays, 1)),
		MaxProducts:         plan.MaxProducts,
		MaxUploadsPerMonth:  plan.MaxUploadsPerMonth,
		MonthlyUploadPeriod: MonthKey(now),
		CommissionType:      plan.CommissionType,
		CommissionValue:     plan.CommissionValue,
		CommissionFixed:     plan.CommissionFixed,
	}
}

func normalizePlan(plan *models.SubscriptionPlan) {
	plan.Name = strings.TrimSpace(plan.Name)
	plan.Description = strings.TrimSpace(plan.Description)
	plan.CommissionType = models.CommissionType(strings.ToLower(strings.TrimSpace(string(plan.CommissionType))))
	if plan.CommissionType == "" {
		plan.CommissionType = models.CommissionPercentage
	}
	switch plan.CommissionType {
	case models.CommissionPercentage:
		plan.CommissionFixed = 0
	case models.CommissionFixed:
		plan.CommissionValue = 0
	}
}
