package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/MarketFox/internal/pkg/metrics"
)

var (
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrPlanNotFound         = errors.New("subscription plan not found")
	ErrPlanInactive         = errors.New("subscription plan is not active")
)

// Service runs the vendor subscription lifecycle and the upload guard.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// Current returns the vendor's active subscription with the upload counter
// moved to the current month, or ErrNoActiveSubscription.
func (s *Service) Current(ctx context.Context, vendorID string) (*models.VendorSubscription, error) {
	_ = ctx
	vendorID = strings.TrimSpace(vendorID)
	if vendorID == "" {
		return nil, errors.New("vendor_id is required")
	}
	now := s.now()

	if n, err := s.repo.ExpireOverdue(vendorID, now); err != nil {
		return nil, fmt.Errorf("expire subscriptions: %w", err)
	} else if n > 0 {
		fiberlog.Infof("billing: expired %d subscription(s) of vendor %s", n, vendorID)
	}

	sub, err := s.repo.FindCurrent(vendorID, now)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveSubscription
	}
	if err != nil {
		return nil, err
	}

	reconciled, changed := Reconcile(*sub, now)
	if changed && reconciled.MonthlyUploadPeriod != sub.MonthlyUploadPeriod {
		if err := s.repo.ResetUploadPeriod(sub.ID, reconciled.MonthlyUploadPeriod); err != nil {
			return nil, fmt.Errorf("reset upload period: %w", err)
		}
	}
	return &reconciled, nil
}

// CanUpload decides whether the vendor may add requested products. The
// returned subscription is nil when the vendor has none; pass it to
// RecordUpload once the products are stored.
func (s *Service) CanUpload(ctx context.Context, vendorID string, requested int) (entitlements.UploadDecision, *models.VendorSubscription, error) {
	sub, err := s.Current(ctx, vendorID)
	if err != nil && !errors.Is(err, ErrNoActiveSubscription) {
		return entitlements.UploadDecision{}, nil, err
	}

	var decision entitlements.UploadDecision
	if sub == nil {
		plans, err := s.repo.CountActivePlans()
		if err != nil {
			return entitlements.UploadDecision{}, nil, err
		}
		decision = entitlements.CheckUpload(nil, 0, requested, plans > 0)
	} else {
		products, err := s.repo.CountVendorProducts(vendorID)
		if err != nil {
			return entitlements.UploadDecision{}, nil, err
		}
		decision = entitlements.CheckUpload(sub, int(products), requested, true)
	}

	metrics.UploadDecision(decision.Allowed)
	return decision, sub, nil
}

// RecordUpload adds count uploads to the subscription's monthly counter.
// A nil subscription (no enforcement) is a no-op. Check and record are
// separate steps, so parallel uploads by one vendor can overshoot a limit
// by the size of the overlapping batch.
func (s *Service) RecordUpload(ctx context.Context, sub *models.VendorSubscription, count int) error {
	_ = ctx
	if sub == nil || count <= 0 {
		return nil
	}
	reconciled, _ := Reconcile(*sub, s.now())
	if err := s.repo.AddUploads(sub.ID, reconciled.MonthlyUploadPeriod, count); err != nil {
		return fmt.Errorf("record uploads: %w", err)
	}
	sub.MonthlyUploadPeriod = reconciled.MonthlyUploadPeriod
	sub.MonthlyUploadCount = reconciled.MonthlyUploadCount + count
	return nil
}

// Subscribe starts a subscription on planID and cancels any active one.
// Uploads already counted this month carry over to the new subscription.
func (s *Service) Subscribe(ctx context.Context, vendorID, planID string) (*models.VendorSubscription, error) {
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrPlanInactive
	}

	previous, err := s.Current(ctx, vendorID)
	if err != nil && !errors.Is(err, ErrNoActiveSubscription) {
		return nil, err
	}

	now := s.now()
	sub := snapshotPlan(plan, vendorID, now)
	if previous != nil && previous.MonthlyUploadPeriod == sub.MonthlyUploadPeriod {
		sub.MonthlyUploadCount = previous.MonthlyUploadCount
	}
	if err := s.repo.ReplaceActive(sub, now); err != nil {
		return nil, fmt.Errorf("store subscription: %w", err)
	}
	sub.Plan = *plan
	fiberlog.Infof("billing: vendor %s subscribed to plan %s until %s", vendorID, plan.ID, sub.ExpiresAt.Format(time.RFC3339))
	return sub, nil
}

// Cancel ends the vendor's active subscription.
func (s *Service) Cancel(ctx context.Context, vendorID string) error {
	_ = ctx
	n, err := s.repo.CancelActive(vendorID, s.now())
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoActiveSubscription
	}
	return nil
}

func (s *Service) GetPlan(ctx context.Context, planID string) (*models.SubscriptionPlan, error) {
	_ = ctx
	id, ok := models.NormalizeObjectID(planID)
	if !ok {
		return nil, ErrPlanNotFound
	}
	plan, err := s.repo.FindPlan(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	return plan, err
}

func (s *Service) ListPlans(ctx context.Context, activeOnly bool) ([]models.SubscriptionPlan, error) {
	_ = ctx
	return s.repo.ListPlans(activeOnly)
}

// SavePlan validates and stores a plan. Existing subscriptions keep their snapshot.
func (s *Service) SavePlan(ctx context.Context, plan *models.SubscriptionPlan) error {
	_ = ctx
	normalizePlan(plan)
	if err := plan.Validate(); err != nil {
		return err
	}
	return s.repo.SavePlan(plan)
}
