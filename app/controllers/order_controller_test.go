package controllers

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/internal/pkg/orders"
	"github.com/ManuelReschke/MarketFox/internal/pkg/usercontext"
)

type stubOrders struct {
	order *models.Order
	err   error
}

func (s stubOrders) Place(ctx context.Context, customerID string, in orders.PlaceInput) (*models.Order, error) {
	return s.order, s.err
}

func (s stubOrders) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.order, s.err
}

func (s stubOrders) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	return s.order, s.err
}

func TestOrderErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: tea", orders.ErrOutOfStock), 409, "out_of_stock"},
		{orders.ErrOrderNotFound, 404, "not_found"},
		{fmt.Errorf("%w: x", orders.ErrProductNotFound), 422, "unknown_item"},
		{fmt.Errorf("%w: tea", orders.ErrNotPurchasable), 422, "not_purchasable"},
		{fmt.Errorf("%w: shipped to pending", orders.ErrInvalidTransition), 409, "invalid_transition"},
		{fmt.Errorf("boom"), 500, "internal_server_error"},
	}
	for _, tt := range tests {
		app := testApp(adminCaller)
		app.Patch("/orders/:id/status", NewOrderController(stubOrders{err: tt.err}).HandleUpdateStatus)
		status, body := doJSON(t, app, "PATCH", "/orders/x/status", map[string]any{"status": "shipped"})
		assert.Equal(t, tt.status, status, "%v", tt.err)
		assert.Equal(t, tt.code, body["error"], "%v", tt.err)
	}
}

func TestOrderVisibility(t *testing.T) {
	vendor := vendorID
	order := &models.Order{
		ID:         models.NewObjectID(),
		CustomerID: "dddddddddddddddddddddddd",
		Items:      []models.OrderItem{{VendorID: &vendor}},
	}
	customer := usercontext.UserContext{UserID: order.CustomerID, Role: models.ROLE_CUSTOMER, IsLoggedIn: true}

	tests := []struct {
		name   string
		caller usercontext.UserContext
		status int
	}{
		{"customer", customer, 200},
		{"vendor with items", vendorCaller, 200},
		{"admin", adminCaller, 200},
		{"unrelated vendor", otherCaller, 404},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testApp(tt.caller)
			app.Get("/orders/:id", NewOrderController(stubOrders{order: order}).HandleGet)
			status, _ := doJSON(t, app, "GET", "/orders/"+order.ID, nil)
			assert.Equal(t, tt.status, status)
		})
	}
}
