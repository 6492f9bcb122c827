package controllers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/MarketFox/internal/pkg/earnings"
	"github.com/ManuelReschke/MarketFox/internal/pkg/usercontext"
)

type EarningsReporter interface {
	Report(ctx context.Context, vendorID string, period earnings.Period) (*earnings.CachedReport, error)
}

type EarningsController struct {
	reports EarningsReporter
}

func NewEarningsController(r EarningsReporter) *EarningsController {
	return &EarningsController{reports: r}
}

// HandleVendorEarnings reports the calling vendor's earnings.
func (ec *EarningsController) HandleVendorEarnings(c *fiber.Ctx) error {
	return ec.report(c, usercontext.GetUserID(c))
}

// HandleAdminEarnings reports all vendors, or one with ?vendorId.
func (ec *EarningsController) HandleAdminEarnings(c *fiber.Ctx) error {
	return ec.report(c, strings.TrimSpace(c.Query("vendorId")))
}

func (ec *EarningsController) report(c *fiber.Ctx, vendorID string) error {
	period, err := parsePeriod(c.Query("from"), c.Query("to"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := period.Validate(); err != nil {
		return badRequest(c, err.Error())
	}
	report, err := ec.reports.Report(c.UserContext(), vendorID, period)
	if err != nil {
		return internalError(c, "Failed to build earnings report", err)
	}
	return c.JSON(report)
}

// parsePeriod accepts RFC 3339 timestamps or plain dates. A plain "to" date
// includes the whole day.
func parsePeriod(from, to string) (earnings.Period, error) {
	var p earnings.Period
	if from = strings.TrimSpace(from); from != "" {
		t, _, err := parseBound(from)
		if err != nil {
			return p, fmt.Errorf("invalid from: %w", err)
		}
		p.From = &t
	}
	if to = strings.TrimSpace(to); to != "" {
		t, dateOnly, err := parseBound(to)
		if err != nil {
			return p, fmt.Errorf("invalid to: %w", err)
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Second)
		}
		p.To = &t
	}
	return p, nil
}

func parseBound(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	return t.UTC(), false, err
}
