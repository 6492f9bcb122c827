package entitlements

import (
	"fmt"
	"time"

	"github.com/ManuelReschke/MarketFox/app/models"
)

const (
	ReasonNoEnforcement        = "no_enforcement"
	ReasonSubscriptionRequired = "subscription_required"
	ReasonProductLimit         = "product_limit"
	ReasonMonthlyUploadLimit   = "monthly_upload_limit"
	ReasonAllowed              = "allowed"
)

// UploadLimits describes the vendor's quota at decision time. Zero maximums are unlimited.
type UploadLimits struct {
	PlanID             string     `json:"planId"`
	PlanName           string     `json:"planName,omitempty"`
	ExpiresAt          *time.Time `json:"expiresAt,omitempty"`
	MaxProducts        int        `json:"maxProducts"`
	MaxUploadsPerMonth int        `json:"maxUploadsPerMonth"`
	CurrentProducts    int        `json:"currentProducts"`
	MonthlyUploadCount int        `json:"monthlyUploadCount"`
	Requested          int        `json:"requested"`
}

// RemainingProducts is nil when the plan has no product cap.
func (l UploadLimits) RemainingProducts() *int {
	if l.MaxProducts <= 0 {
		return nil
	}
	r := max(l.MaxProducts-l.CurrentProducts, 0)
	return &r
}

// RemainingUploads is nil when the plan has no monthly cap.
func (l UploadLimits) RemainingUploads() *int {
	if l.MaxUploadsPerMonth <= 0 {
		return nil
	}
	r := max(l.MaxUploadsPerMonth-l.MonthlyUploadCount, 0)
	return &r
}

// UploadDecision is the answer to "may this vendor add n products now".
// Limits is nil when the vendor has no active subscription.
type UploadDecision struct {
	Allowed bool          `json:"allowed"`
	Reason  string        `json:"reason"`
	Message string        `json:"message"`
	Limits  *UploadLimits `json:"limits"`
}

// CheckUpload decides an upload of requested products. sub must already be
// reconciled to the current month; nil means the vendor has no active
// subscription. plansConfigured reports whether any active plan exists.
func CheckUpload(sub *models.VendorSubscription, productCount, requested int, plansConfigured bool) UploadDecision {
	requested = max(requested, 1)

	if sub == nil {
		if !plansConfigured {
			return UploadDecision{
				Allowed: true,
				Reason:  ReasonNoEnforcement,
				Message: "No subscription plans are configured, uploads are unrestricted",
			}
		}
		return UploadDecision{
			Allowed: false,
			Reason:  ReasonSubscriptionRequired,
			Message: "An active subscription is required to upload products",
		}
	}

	expires := sub.ExpiresAt
	limits := &UploadLimits{
		PlanID:             sub.PlanID,
		PlanName:           sub.Plan.Name,
		ExpiresAt:          &expires,
		MaxProducts:        sub.MaxProducts,
		MaxUploadsPerMonth: sub.MaxUploadsPerMonth,
		CurrentProducts:    productCount,
		MonthlyUploadCount: sub.MonthlyUploadCount,
		Requested:          requested,
	}

	if sub.MaxProducts > 0 && productCount+requested > sub.MaxProducts {
		return UploadDecision{
			Reason: ReasonProductLimit,
			Message: fmt.Sprintf("Product limit reached: %d of %d products used, %d requested",
				productCount, sub.MaxProducts, requested),
			Limits: limits,
		}
	}
	if sub.MaxUploadsPerMonth > 0 && sub.MonthlyUploadCount+requested > sub.MaxUploadsPerMonth {
		return UploadDecision{
			Reason: ReasonMonthlyUploadLimit,
			Message: fmt.Sprintf("Monthly upload limit reached: %d of %d uploads used this month, %d requested",
				sub.MonthlyUploadCount, sub.MaxUploadsPerMonth, requested),
			Limits: limits,
		}
	}
	return UploadDecision{Allowed: true, Reason: ReasonAllowed, Message: "Upload allowed", Limits: limits}
}
