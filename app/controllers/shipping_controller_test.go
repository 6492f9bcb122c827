package controllers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/internal/pkg/shipping"
)

type memZones struct {
	items map[string]*models.ShippingZone
}

func (m *memZones) Create(z *models.ShippingZone) error {
	if z.ID == "" {
		z.ID = models.NewObjectID()
	}
	cp := *z
	m.items[z.ID] = &cp
	return nil
}

func (m *memZones) Update(z *models.ShippingZone) error {
	cp := *z
	m.items[z.ID] = &cp
	return nil
}

func (m *memZones) Delete(id string) error {
	if _, ok := m.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memZones) GetByID(id string) (*models.ShippingZone, error) {
	z, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *z
	return &cp, nil
}

func (m *memZones) ListActive(scope models.ZoneScope, vendor string) ([]models.ShippingZone, error) {
	var out []models.ShippingZone
	all, _ := m.ListByOwner(scope, vendor)
	for _, z := range all {
		if z.IsActive {
			out = append(out, z)
		}
	}
	return out, nil
}

func (m *memZones) ListByOwner(scope models.ZoneScope, vendor string) ([]models.ShippingZone, error) {
	var out []models.ShippingZone
	for _, z := range m.items {
		if z.Scope != scope {
			continue
		}
		if scope == models.ZoneScopeVendor && (z.VendorID == nil || *z.VendorID != vendor) {
			continue
		}
		out = append(out, *z)
	}
	return out, nil
}

type stubEstimator struct {
	est *shipping.Estimate
	err error
}

func (s stubEstimator) Estimate(ctx context.Context, lines []shipping.CartLine, dest shipping.Destination) (*shipping.Estimate, error) {
	return s.est, s.err
}

func TestZoneCreateSanitizesAndOwns(t *testing.T) {
	zones := &memZones{items: map[string]*models.ShippingZone{}}
	sc := NewShippingController(zones, nil)
	app := testApp(vendorCaller)
	app.Post("/zones", sc.HandleCreateZone)

	status, body := doJSON(t, app, "POST", "/zones", map[string]any{
		"name":  " Dhaka ",
		"scope": "global",
		"rules": []any{map[string]any{
			"city": " Dhaka ", "shippingFee": -5, "estimatedMinDays": 3, "estimatedMaxDays": 1, "isActive": true,
		}},
	})
	require.Equal(t, 201, status, "%v", body)
	assert.Equal(t, "vendor", body["scope"], "vendors cannot create global zones")
	assert.Equal(t, vendorID, body["vendorId"])

	rule := body["rules"].([]any)[0].(map[string]any)
	assert.Equal(t, "Dhaka", rule["city"])
	assert.Equal(t, 0.0, rule["shippingFee"])
	assert.Equal(t, 3.0, rule["estimatedMaxDays"])
	assert.True(t, models.IsObjectID(rule["id"].(string)))
}

func TestZoneCreateRejectsInvertedBand(t *testing.T) {
	zones := &memZones{items: map[string]*models.ShippingZone{}}
	sc := NewShippingController(zones, nil)
	app := testApp(adminCaller)
	app.Post("/zones", sc.HandleCreateZone)

	status, _ := doJSON(t, app, "POST", "/zones", map[string]any{
		"name":  "Global",
		"rules": []any{map[string]any{"minSubtotal": 100, "maxSubtotal": 50}},
	})
	assert.Equal(t, 422, status)
	assert.Empty(t, zones.items)
}

func TestZoneOwnership(t *testing.T) {
	vendor := vendorID
	zones := &memZones{items: map[string]*models.ShippingZone{}}
	require.NoError(t, zones.Create(&models.ShippingZone{Name: "Mine", Scope: models.ZoneScopeVendor, VendorID: &vendor, IsActive: true}))
	var id string
	for k := range zones.items {
		id = k
	}
	sc := NewShippingController(zones, nil)

	other := testApp(otherCaller)
	other.Delete("/zones/:id", sc.HandleDeleteZone)
	status, _ := doJSON(t, other, "DELETE", "/zones/"+id, nil)
	assert.Equal(t, 404, status)

	admin := testApp(adminCaller)
	admin.Delete("/zones/:id", sc.HandleDeleteZone)
	status, _ = doJSON(t, admin, "DELETE", "/zones/"+id, nil)
	assert.Equal(t, 404, status, "admins manage global zones only")

	owner := testApp(vendorCaller)
	owner.Put("/zones/:id", sc.HandleUpdateZone)
	status, body := doJSON(t, owner, "PUT", "/zones/"+id, map[string]any{"name": "Renamed", "priority": 5})
	require.Equal(t, 200, status, "%v", body)
	assert.Equal(t, id, body["id"])
	assert.Equal(t, "Renamed", zones.items[id].Name)

	owner.Delete("/zones/:id", sc.HandleDeleteZone)
	status, _ = doJSON(t, owner, "DELETE", "/zones/"+id, nil)
	assert.Equal(t, 204, status)
	assert.Empty(t, zones.items)
}

func TestEstimateErrors(t *testing.T) {
	tests := []struct {
		name   string
		stub   stubEstimator
		status int
	}{
		{"empty cart", stubEstimator{err: shipping.ErrEmptyCart}, 400},
		{"unresolvable", stubEstimator{err: shipping.ErrUnresolvableCart}, 400},
		{"ok", stubEstimator{est: &shipping.Estimate{ShippingFee: 60, Breakdown: []shipping.BreakdownRow{}}}, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testApp(vendorCaller)
			app.Post("/estimate", NewShippingController(nil, tt.stub).HandleEstimate)
			status, _ := doJSON(t, app, "POST", "/estimate", map[string]any{"items": []any{}})
			assert.Equal(t, tt.status, status)
		})
	}
}
