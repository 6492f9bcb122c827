package billing

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/internal/pkg/entitlements"
)

// memRepository keeps subscriptions and plans in memory and mimics the SQL semantics.
type memRepository struct {
	subs     []*models.VendorSubscription
	plans    map[string]*models.SubscriptionPlan
	products map[string]int64
	resets   int
}

func newMemRepository() *memRepository {
	return &memRepository{plans: map[string]*models.SubscriptionPlan{}, products: map[string]int64{}}
}

func (m *memRepository) ExpireOverdue(vendorID string, now time.Time) (int64, error) {
	var n int64
	for _, s := range m.subs {
		if s.VendorID == vendorID && s.Status == models.SubscriptionStatusActive && !s.ExpiresAt.After(now) {
			s.Status = models.SubscriptionStatusExpired
			n++
		}
	}
	return n, nil
}

func (m *memRepository) FindCurrent(vendorID string, now time.Time) (*models.VendorSubscription, error) {
	var matches []*models.VendorSubscription
	for _, s := range m.subs {
		if s.VendorID == vendorID && s.IsCurrent(now) {
			matches = append(matches, s)
		}
	}
	if len(matches) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].ExpiresAt.After(matches[j].ExpiresAt) })
	cp := *matches[0]
	return &cp, nil
}

func (m *memRepository) find(id string) *models.VendorSubscription {
	for _, s := range m.subs {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (m *memRepository) ResetUploadPeriod(id, period string) error {
	if s := m.find(id); s != nil && s.MonthlyUploadPeriod != period {
		s.MonthlyUploadCount = 0
		s.MonthlyUploadPeriod = period
		m.resets++
	}
	return nil
}

func (m *memRepository) AddUploads(id, period string, count int) error {
	s := m.find(id)
	if s == nil {
		return gorm.ErrRecordNotFound
	}
	if s.MonthlyUploadPeriod == period {
		s.MonthlyUploadCount += count
	} else {
		s.MonthlyUploadCount = count
	}
	s.MonthlyUploadPeriod = period
	return nil
}

func (m *memRepository) CountActivePlans() (int64, error) {
	var n int64
	for _, p := range m.plans {
		if p.IsActive {
			n++
		}
	}
	return n, nil
}

func (m *memRepository) CountVendorProducts(vendorID string) (int64, error) {
	return m.products[vendorID], nil
}

func (m *memRepository) FindPlan(id string) (*models.SubscriptionPlan, error) {
	p, ok := m.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepository) ListPlans(activeOnly bool) ([]models.SubscriptionPlan, error) {
	var out []models.SubscriptionPlan
	for _, p := range m.plans {
		if !activeOnly || p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memRepository) SavePlan(plan *models.SubscriptionPlan) error {
	if plan.ID == "" {
		plan.ID = models.NewObjectID()
	}
	cp := *plan
	m.plans[plan.ID] = &cp
	return nil
}

func (m *memRepository) ReplaceActive(sub *models.VendorSubscription, now time.Time) error {
	if _, err := m.CancelActive(sub.VendorID, now); err != nil {
		return err
	}
	if sub.ID == "" {
		sub.ID = models.NewObjectID()
	}
	cp := *sub
	m.subs = append(m.subs, &cp)
	return nil
}

func (m *memRepository) CancelActive(vendorID string, now time.Time) (int64, error) {
	var n int64
	for _, s := range m.subs {
		if s.VendorID == vendorID && s.Status == models.SubscriptionStatusActive {
			s.Status = models.SubscriptionStatusCancelled
			at := now
			s.CancelledAt = &at
			n++
		}
	}
	return n, nil
}

func newTestService(repo Repository, now time.Time) *Service {
	s := NewService(repo)
	s.now = func() time.Time { return now }
	return s
}

func addPlan(t *testing.T, repo *memRepository, maxProducts, maxUploads int) *models.SubscriptionPlan {
	t.Helper()
	plan := &models.SubscriptionPlan{
		Name:               "Starter",
		Price:              9.99,
		DurationDays:       30,
		MaxProducts:        maxProducts,
		MaxUploadsPerMonth: maxUploads,
		CommissionType:     models.CommissionPercentage,
		CommissionValue:    7,
		IsActive:           true,
	}
	require.NoError(t, repo.SavePlan(plan))
	return plan
}

var april = time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)

func TestCanUploadWithoutPlansAllowsEverything(t *testing.T) {
	svc := newTestService(newMemRepository(), april)

	d, sub, err := svc.CanUpload(context.Background(), "vendor", 500)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, entitlements.ReasonNoEnforcement, d.Reason)
	assert.Nil(t, sub)
	assert.NoError(t, svc.RecordUpload(context.Background(), sub, 500))
}

func TestCanUploadRequiresSubscriptionOncePlansExist(t *testing.T) {
	repo := newMemRepository()
	addPlan(t, repo, 0, 0)
	svc := newTestService(repo, april)

	d, _, err := svc.CanUpload(context.Background(), "vendor", 1)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, entitlements.ReasonSubscriptionRequired, d.Reason)
}

func TestSubscribeCheckAndRecord(t *testing.T) {
	repo := newMemRepository()
	plan := addPlan(t, repo, 0, 10)
	svc := newTestService(repo, april)
	ctx := context.Background()

	sub, err := svc.Subscribe(ctx, "vendor", plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, sub.MaxUploadsPerMonth)
	assert.Equal(t, models.CommissionPercentage, sub.CommissionType)
	assert.Equal(t, 7.0, sub.CommissionValue)
	assert.Equal(t, april.AddDate(0, 0, 30), sub.ExpiresAt)

	d, current, err := svc.CanUpload(ctx, "vendor", 9)
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.NoError(t, svc.RecordUpload(ctx, current, 9))
	assert.Equal(t, 9, current.MonthlyUploadCount)

	d, _, err = svc.CanUpload(ctx, "vendor", 2)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, entitlements.ReasonMonthlyUploadLimit, d.Reason)

	d, _, err = svc.CanUpload(ctx, "vendor", 1)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestCurrentRollsCounterIntoNewMonth(t *testing.T) {
	repo := newMemRepository()
	plan := addPlan(t, repo, 0, 10)
	repo.subs = append(repo.subs, &models.VendorSubscription{
		ID:                  models.NewObjectID(),
		VendorID:            "vendor",
		PlanID:              plan.ID,
		Status:              models.SubscriptionStatusActive,
		ExpiresAt:           april.AddDate(0, 2, 0),
		MaxUploadsPerMonth:  10,
		MonthlyUploadCount:  100,
		MonthlyUploadPeriod: "2025-03",
	})
	svc := newTestService(repo, april)

	d, sub, err := svc.CanUpload(context.Background(), "vendor", 10)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, sub.MonthlyUploadCount)
	assert.Equal(t, "2025-04", sub.MonthlyUploadPeriod)
	assert.Equal(t, 1, repo.resets)
	assert.Equal(t, 0, repo.subs[0].MonthlyUploadCount)
}

func TestCurrentExpiresOverdueSubscription(t *testing.T) {
	repo := newMemRepository()
	repo.subs = append(repo.subs, &models.VendorSubscription{
		ID:        models.NewObjectID(),
		VendorID:  "vendor",
		Status:    models.SubscriptionStatusActive,
		ExpiresAt: april.Add(-time.Minute),
	})
	svc := newTestService(repo, april)

	_, err := svc.Current(context.Background(), "vendor")
	assert.ErrorIs(t, err, ErrNoActiveSubscription)
	assert.Equal(t, models.SubscriptionStatusExpired, repo.subs[0].Status)
}

func TestResubscribeKeepsSingleActiveAndCarriesCount(t *testing.T) {
	repo := newMemRepository()
	basic := addPlan(t, repo, 0, 10)
	pro := addPlan(t, repo, 0, 50)
	svc := newTestService(repo, april)
	ctx := context.Background()

	first, err := svc.Subscribe(ctx, "vendor", basic.ID)
	require.NoError(t, err)
	require.NoError(t, svc.RecordUpload(ctx, first, 8))

	second, err := svc.Subscribe(ctx, "vendor", pro.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, second.MonthlyUploadCount)

	active := 0
	for _, s := range repo.subs {
		if s.Status == models.SubscriptionStatusActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestSubscribeRejectsUnknownOrInactivePlan(t *testing.T) {
	repo := newMemRepository()
	plan := addPlan(t, repo, 0, 0)
	repo.plans[plan.ID].IsActive = false
	svc := newTestService(repo, april)

	_, err := svc.Subscribe(context.Background(), "vendor", "nope")
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = svc.Subscribe(context.Background(), "vendor", models.NewObjectID())
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = svc.Subscribe(context.Background(), "vendor", plan.ID)
	assert.ErrorIs(t, err, ErrPlanInactive)
}

func TestCancel(t *testing.T) {
	repo := newMemRepository()
	plan := addPlan(t, repo, 0, 0)
	svc := newTestService(repo, april)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Cancel(ctx, "vendor"), ErrNoActiveSubscription)

	_, err := svc.Subscribe(ctx, "vendor", plan.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, "vendor"))

	_, err = svc.Current(ctx, "vendor")
	assert.ErrorIs(t, err, ErrNoActiveSubscription)
}

func TestSavePlanValidates(t *testing.T) {
	svc := newTestService(newMemRepository(), april)

	err := svc.SavePlan(context.Background(), &models.SubscriptionPlan{Name: "", DurationDays: 30})
	assert.Error(t, err)

	err = svc.SavePlan(context.Background(), &models.SubscriptionPlan{Name: "Pro", DurationDays: 30, CommissionType: "tiered"})
	assert.Error(t, err)

	plan := &models.SubscriptionPlan{Name: "Pro", DurationDays: 30, IsActive: true}
	require.NoError(t, svc.SavePlan(context.Background(), plan))
	assert.True(t, models.IsObjectID(plan.ID))
}
