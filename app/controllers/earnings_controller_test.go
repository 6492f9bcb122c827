package controllers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/MarketFox/internal/pkg/earnings"
)

func TestParsePeriod(t *testing.T) {
	p, err := parsePeriod("2025-03-01", "2025-03-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *p.From)
	assert.Equal(t, time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC), *p.To, "a plain date includes the whole day")

	p, err = parsePeriod("2025-03-01T10:00:00+02:00", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC), *p.From)
	assert.Nil(t, p.To)

	_, err = parsePeriod("yesterday", "")
	assert.Error(t, err)
}

type recordingReporter struct {
	vendor string
}

func (r *recordingReporter) Report(ctx context.Context, vendorID string, period earnings.Period) (*earnings.CachedReport, error) {
	r.vendor = vendorID
	return &earnings.CachedReport{Period: period}, nil
}

func TestEarningsScopes(t *testing.T) {
	rep := &recordingReporter{}
	ec := NewEarningsController(rep)

	app := testApp(vendorCaller)
	app.Get("/vendor/earnings", ec.HandleVendorEarnings)
	status, _ := doJSON(t, app, "GET", "/vendor/earnings?vendorId="+otherID, nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, vendorID, rep.vendor, "vendors only see their own report")

	admin := testApp(adminCaller)
	admin.Get("/admin/earnings", ec.HandleAdminEarnings)
	status, _ = doJSON(t, admin, "GET", "/admin/earnings?vendorId="+otherID, nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, otherID, rep.vendor)

	status, body := doJSON(t, admin, "GET", "/admin/earnings?from=2025-02-01&to=2025-01-01", nil)
	assert.Equal(t, 400, status)
	assert.Equal(t, "bad_request", body["error"])
}
