// Package orders places orders against the catalog and moves them through
// their fulfilment states.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/internal/pkg/billing"
	"github.com/ManuelReschke/MarketFox/internal/pkg/commission"
	"github.com/ManuelReschke/MarketFox/internal/pkg/money"
	"github.com/ManuelReschke/MarketFox/internal/pkg/shipping"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrNotPurchasable    = errors.New("product cannot be ordered")
	ErrVariationRequired = errors.New("a variation must be chosen for this product")
	ErrVariationNotFound = errors.New("variation not found")
	ErrOutOfStock        = errors.New("not enough stock")
	ErrInvalidTransition = errors.New("order status cannot change that way")
	ErrUnknownStatus     = errors.New("unknown order status")
)

// transitions lists the statuses each status may move to.
var transitions = map[string][]string{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered, models.OrderStatusCancelled},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type ShippingQuoter interface {
	Estimate(ctx context.Context, lines []shipping.CartLine, dest shipping.Destination) (*shipping.Estimate, error)
}

type SubscriptionLookup interface {
	Current(ctx context.Context, vendorID string) (*models.VendorSubscription, error)
}

type LineInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1,max=1000"`
	Variation string `json:"variation"`
}

type PlaceInput struct {
	Items         []LineInput          `json:"items" validate:"required,min=1,max=100,dive"`
	Destination   shipping.Destination `json:"destination"`
	PaymentMethod string               `json:"paymentMethod" validate:"omitempty,oneof=cod card bkash"`
}

func (in *PlaceInput) Validate() error {
	v := validator.New()
	return v.Struct(in)
}

type Service struct {
	repo     Repository
	shipping ShippingQuoter
	subs     SubscriptionLookup
	fallback commission.Rule
	now      func() time.Time
}

func NewService(repo Repository, quoter ShippingQuoter, subs SubscriptionLookup, fallback commission.Rule) *Service {
	return &Service{repo: repo, shipping: quoter, subs: subs, fallback: fallback, now: time.Now}
}

// NewServiceFromDB wires the service with its GORM repository.
func NewServiceFromDB(db *gorm.DB, quoter ShippingQuoter, subs SubscriptionLookup) *Service {
	return NewService(NewRepository(db), quoter, subs, commission.DefaultRule())
}

// Place prices the cart from the catalog, freezes commissions, reserves
// stock and stores the order for customerID.
func (s *Service) Place(ctx context.Context, customerID string, in PlaceInput) (*models.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	lines := mergeLines(in.Items)

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.repo.LoadProducts(ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	catalog := make(map[string]*models.Product, len(products))
	for i := range products {
		catalog[products[i].ID] = &products[i]
	}

	order := &models.Order{
		UUID:          uuid.NewString(),
		CustomerID:    customerID,
		OrderStatus:   models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
		PaymentMethod: strings.ToLower(strings.TrimSpace(in.PaymentMethod)),
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = "cod"
	}

	subs := map[string]*models.VendorSubscription{}
	cart := make([]shipping.CartLine, 0, len(lines))
	var changes []StockChange
	var itemTotals []float64

	for _, l := range lines {
		p, ok := catalog[l.ProductID]
		if !ok || !p.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, l.ProductID)
		}
		price, variation, err := unitPrice(p, l.Variation)
		if err != nil {
			return nil, err
		}

		rule, err := s.commissionRule(ctx, p, subs)
		if err != nil {
			return nil, err
		}
		snap := commission.Apply(rule, price, l.Quantity)
		net := snap.Net
		total := money.Mul(price, l.Quantity)

		order.Items = append(order.Items, models.OrderItem{
			ProductID:              p.ID,
			VendorID:               p.VendorID,
			Name:                   p.Name,
			Variation:              variation,
			Price:                  price,
			Quantity:               l.Quantity,
			ItemTotal:              total,
			VendorCommissionType:   snap.Type,
			VendorCommissionValue:  snap.Value,
			VendorCommissionFixed:  snap.Fixed,
			VendorCommissionAmount: snap.Amount,
			VendorNetAmount:        &net,
		})
		itemTotals = append(itemTotals, total)

		unit := price
		cart = append(cart, shipping.CartLine{ProductID: p.ID, Quantity: l.Quantity, UnitPrice: &unit, VendorID: p.VendorKey()})
		if p.TracksStock() {
			changes = append(changes, StockChange{ProductID: p.ID, Variation: variation, Delta: -l.Quantity})
		}
	}

	est, err := s.shipping.Estimate(ctx, cart, in.Destination)
	if err != nil {
		return nil, fmt.Errorf("estimate shipping: %w", err)
	}
	order.Subtotal = money.Sum(itemTotals...)
	order.ShippingFee = est.ShippingFee
	order.Total = money.Sum(order.Subtotal, order.ShippingFee)
	order.ShippingCity = est.Destination.City
	order.ShippingDistrict = est.Destination.District
	order.ShippingCountry = est.Destination.Country
	order.EstimatedMinDays = est.EstimatedMinDays
	order.EstimatedMaxDays = est.EstimatedMaxDays

	if err := s.repo.Create(order, changes); err != nil {
		return nil, err
	}
	fiberlog.Infof("orders: placed %s for customer %s, total %.2f", order.UUID, customerID, order.Total)
	return order, nil
}

// Get returns an order with its items.
func (s *Service) Get(ctx context.Context, id string) (*models.Order, error) {
	_ = ctx
	norm, ok := models.NormalizeObjectID(id)
	if !ok {
		return nil, ErrOrderNotFound
	}
	order, err := s.repo.Get(norm)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

// UpdateStatus moves the order forward. Cancelling returns reserved stock;
// delivering a cash on delivery order marks it paid.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case models.OrderStatusPending, models.OrderStatusProcessing, models.OrderStatusShipped,
		models.OrderStatusDelivered, models.OrderStatusCancelled:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(order.OrderStatus, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.OrderStatus, status)
	}

	var changes []StockChange
	switch status {
	case models.OrderStatusCancelled:
		changes, err = s.restock(order)
		if err != nil {
			return nil, err
		}
		if order.PaymentStatus == models.PaymentStatusPaid {
			order.PaymentStatus = models.PaymentStatusRefunded
		}
	case models.OrderStatusDelivered:
		if order.PaymentMethod == "cod" {
			order.PaymentStatus = models.PaymentStatusPaid
		}
	}
	order.OrderStatus = status
	order.UpdatedAt = s.now()

	if err := s.repo.SaveStatus(order, changes); err != nil {
		return nil, err
	}
	return order, nil
}

// restock builds the stock changes that undo the order's reservations. Only
// products and variations that still exist and track stock are touched.
func (s *Service) restock(order *models.Order) ([]StockChange, error) {
	ids := make([]string, 0, len(order.Items))
	for _, it := range order.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.repo.LoadProducts(ids)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]*models.Product, len(products))
	for i := range products {
		catalog[products[i].ID] = &products[i]
	}
	var changes []StockChange
	for _, it := range order.Items {
		p, ok := catalog[it.ProductID]
		if !ok || !p.TracksStock() {
			continue
		}
		if it.Variation != "" {
			if _, v := p.FindVariation(it.Variation); v == nil {
				continue
			}
		}
		changes = append(changes, StockChange{ProductID: it.ProductID, Variation: it.Variation, Delta: it.Quantity})
	}
	return changes, nil
}

func (s *Service) commissionRule(ctx context.Context, p *models.Product, cache map[string]*models.VendorSubscription) (commission.Rule, error) {
	vendor := p.VendorKey()
	if vendor == "" || s.subs == nil {
		return commission.Resolve(p, nil, s.fallback), nil
	}
	sub, seen := cache[vendor]
	if !seen {
		var err error
		sub, err = s.subs.Current(ctx, vendor)
		if err != nil && !errors.Is(err, billing.ErrNoActiveSubscription) {
			return commission.Rule{}, fmt.Errorf("load vendor subscription: %w", err)
		}
		cache[vendor] = sub
	}
	return commission.Resolve(p, sub, s.fallback), nil
}

// unitPrice returns the catalog price of p, or of its named variation.
func unitPrice(p *models.Product, variation string) (float64, string, error) {
	if p.PriceType == models.PriceTBA || p.MarketplaceType == models.MarketplaceGrouped {
		return 0, "", fmt.Errorf("%w: %s", ErrNotPurchasable, p.Name)
	}
	variation = strings.TrimSpace(variation)
	if p.MarketplaceType != models.MarketplaceVariable {
		return p.EffectivePrice(), "", nil
	}
	if variation == "" {
		return 0, "", fmt.Errorf("%w: %s", ErrVariationRequired, p.Name)
	}
	v := matchVariation(p.Variations, variation)
	if v == nil {
		return 0, "", fmt.Errorf("%w: %s (%s)", ErrVariationNotFound, p.Name, variation)
	}
	if !v.IsActive {
		return 0, "", fmt.Errorf("%w: %s (%s)", ErrNotPurchasable, p.Name, v.Label)
	}
	return v.EffectivePrice(), v.Label, nil
}

// matchVariation prefers an exact label and falls back to a case-insensitive one.
func matchVariation(vars []models.ProductVariation, label string) *models.ProductVariation {
	for i := range vars {
		if vars[i].Label == label {
			return &vars[i]
		}
	}
	for i := range vars {
		if strings.EqualFold(vars[i].Label, label) {
			return &vars[i]
		}
	}
	return nil
}

// mergeLines folds repeated product/variation pairs into one line, keeping first-seen order.
func mergeLines(in []LineInput) []LineInput {
	out := make([]LineInput, 0, len(in))
	index := map[string]int{}
	for _, l := range in {
		l.ProductID = strings.ToLower(strings.TrimSpace(l.ProductID))
		l.Variation = strings.TrimSpace(l.Variation)
		key := l.ProductID + "\x00" + l.Variation
		if i, ok := index[key]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[key] = len(out)
		out = append(out, l)
	}
	return out
}
