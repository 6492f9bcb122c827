package billing

import (
	"testing"
	"time"

	"github.com/ManuelReschke/MarketFox/app/models"
)

func TestMonthKey(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{in: time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC), want: "2025-01"},
		{in: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), want: "2025-12"},
		{in: time.Date(2026, 2, 15, 8, 0, 0, 0, time.UTC), want: "2026-02"},
	}

	for _, tt := range tests {
		if got := MonthKey(tt.in); got != tt.want {
			t.Fatalf("MonthKey(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReconcileResetsCounterOnNewMonth(t *testing.T) {
	now := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	sub := models.VendorSubscription{
		Status:              models.SubscriptionStatusActive,
		ExpiresAt:           now.AddDate(0, 1, 0),
		MonthlyUploadCount:  100,
		MonthlyUploadPeriod: "2025-03",
	}

	got, changed := Reconcile(sub, now)
	if !changed {
		t.Fatalf("expected a rollover to be reported")
	}
	if got.MonthlyUploadCount != 0 || got.MonthlyUploadPeriod != "2025-04" {
		t.Fatalf("expected counter 0 in 2025-04, got %d in %s", got.MonthlyUploadCount, got.MonthlyUploadPeriod)
	}
	if sub.MonthlyUploadCount != 100 {
		t.Fatalf("input must not be modified")
	}

	again, changed := Reconcile(got, now)
	if changed || again != got {
		t.Fatalf("expected reconcile to be idempotent")
	}
}

func TestReconcileKeepsCounterWithinMonth(t *testing.T) {
	now := time.Date(2025, 4, 30, 23, 0, 0, 0, time.UTC)
	sub := models.VendorSubscription{
		Status:              models.SubscriptionStatusActive,
		ExpiresAt:           now.Add(time.Hour),
		MonthlyUploadCount:  7,
		MonthlyUploadPeriod: "2025-04",
	}
	got, changed := Reconcile(sub, now)
	if changed || got.MonthlyUploadCount != 7 {
		t.Fatalf("expected no change, got changed=%v count=%d", changed, got.MonthlyUploadCount)
	}
}

func TestReconcileExpires(t *testing.T) {
	now := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	for _, expiresAt := range []time.Time{now, now.Add(-time.Second)} {
		sub := models.VendorSubscription{Status: models.SubscriptionStatusActive, ExpiresAt: expiresAt, MonthlyUploadPeriod: "2025-04"}
		got, changed := Reconcile(sub, now)
		if !changed || got.Status != models.SubscriptionStatusExpired {
			t.Fatalf("expected subscription expiring at %v to be expired", expiresAt)
		}
	}

	cancelled := models.VendorSubscription{Status: models.SubscriptionStatusCancelled, ExpiresAt: now.Add(-time.Hour), MonthlyUploadPeriod: "2025-04"}
	if got, _ := Reconcile(cancelled, now); got.Status != models.SubscriptionStatusCancelled {
		t.Fatalf("only active subscriptions expire, got %s", got.Status)
	}
}

func TestNormalizePlan(t *testing.T) {
	plan := &models.SubscriptionPlan{Name: " Pro ", CommissionType: " FIXED ", CommissionValue: 5, CommissionFixed: 2}
	normalizePlan(plan)
	if plan.Name != "Pro" || plan.CommissionType != models.CommissionFixed || plan.CommissionValue != 0 {
		t.Fatalf("unexpected plan after normalize: %+v", plan)
	}

	plan = &models.SubscriptionPlan{Name: "Basic", CommissionValue: 8, CommissionFixed: 2}
	normalizePlan(plan)
	if plan.CommissionType != models.CommissionPercentage || plan.CommissionFixed != 0 {
		t.Fatalf("expected percentage default, got %+v", plan)
	}
}
