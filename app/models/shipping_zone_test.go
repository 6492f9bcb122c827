package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrFloat(v float64) *float64 { return &v }

func TestShippingZoneSanitize(t *testing.T) {
	vendor := NewObjectID()
	z := ShippingZone{
		Name:     "  Dhaka metro ",
		Scope:    ZoneScopeGlobal,
		VendorID: &vendor,
		Rules: []ShippingRule{
			{City: " Dhaka ", MinSubtotal: -10, ShippingFee: -5, EstimatedMinDays: 4, EstimatedMaxDays: 2},
		},
	}

	z.Sanitize()

	assert.Equal(t, "Dhaka metro", z.Name)
	assert.Nil(t, z.VendorID, "global zones never carry a vendor")
	r := z.Rules[0]
	assert.True(t, IsObjectID(r.ID))
	assert.Equal(t, "Dhaka", r.City)
	assert.Equal(t, 0.0, r.MinSubtotal)
	assert.Equal(t, 0.0, r.ShippingFee)
	assert.Equal(t, 4, r.EstimatedMaxDays)
	require.NoError(t, z.Validate())
}

func TestShippingZoneValidate(t *testing.T) {
	vendor := NewObjectID()

	missingVendor := ShippingZone{Name: "Mine", Scope: ZoneScopeVendor}
	assert.Error(t, missingVendor.Validate())

	badScope := ShippingZone{Name: "Mine", Scope: "planet"}
	assert.Error(t, badScope.Validate())

	inverted := ShippingZone{
		Name:     "Inverted band",
		Scope:    ZoneScopeVendor,
		VendorID: &vendor,
		Rules:    []ShippingRule{{MinSubtotal: 500, MaxSubtotal: ptrFloat(100)}},
	}
	assert.Error(t, inverted.Validate())

	ok := ShippingZone{
		Name:     "Chattogram",
		Scope:    ZoneScopeVendor,
		VendorID: &vendor,
		Rules:    []ShippingRule{{City: "Chattogram", MinSubtotal: 0, MaxSubtotal: ptrFloat(1000), ShippingFee: 120, EstimatedMinDays: 2, EstimatedMaxDays: 4}},
	}
	assert.NoError(t, ok.Validate())
}
