package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pizza-nz/hotel-service/internal/db/repository"
	"github.com/pizza-nz/hotel-service/internal/models"
)

// OrderPublisher receives placed and updated orders, typically the staff
// order feed.
type OrderPublisher interface {
	OrderPlaced(order models.Order)
	OrderUpdated(order models.Order)
}

type nopPublisher struct{}

func (nopPublisher) OrderPlaced(models.Order)  {}
func (nopPublisher) OrderUpdated(models.Order) {}

// OrderDraft accumulates a guest's lines before payment. Amounts keep full
// precision.
type OrderDraft struct {
	RoomNumber string
	Lines      []models.OrderLine
	Discount   *models.Discount
}

// Subtotal is the sum of all line amounts.
func (d *OrderDraft) Subtotal() float64 {
	var subtotal float64
	for _, line := range d.Lines {
		subtotal += line.Amount()
	}
	return subtotal
}

// Total is the subtotal with the discount applied once.
func (d *OrderDraft) Total() float64 {
	if d.Discount == nil {
		return d.Subtotal()
	}
	return d.Discount.Apply(d.Subtotal())
}

// OrderService handles guest room-service orders
type OrderService struct {
	repos     *repository.Repositories
	pricing   *PricingResolver
	discounts *DiscountService
	publisher OrderPublisher
	taxRate   float64
	clock     Clock
	log       *slog.Logger
}

// NewOrderService creates a new order service. A nil publisher drops feed
// events.
func NewOrderService(repos *repository.Repositories, pricing *PricingResolver, discounts *DiscountService, publisher OrderPublisher, taxRate float64, clock Clock, log *slog.Logger) *OrderService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if clock == nil {
		clock = SystemClock
	}
	return &OrderService{
		repos:     repos,
		pricing:   pricing,
		discounts: discounts,
		publisher: publisher,
		taxRate:   taxRate,
		clock:     clock,
		log:       log,
	}
}

// NewDraft starts an order for a matched reservation
func (s *OrderService) NewDraft(reservation *models.Reservation) *OrderDraft {
	return &OrderDraft{RoomNumber: reservation.RoomNumber}
}

// AddLine prices itemID, appends a line with a fresh redemption code and
// returns it.
func (s *OrderService) AddLine(ctx context.Context, draft *OrderDraft, itemID, quantity int) (*models.OrderLine, error) {
	if quantity <= 0 {
		return nil, invalid("quantity", "must be a positive number")
	}

	item, err := s.pricing.Resolve(ctx, itemID)
	if err != nil {
		return nil, err
	}

	line := models.OrderLine{
		LineNo:         len(draft.Lines) + 1,
		ItemID:         item.ID,
		Quantity:       quantity,
		UnitPrice:      item.Effective,
		RedemptionCode: RedemptionCode(),
		Name:           item.Name,
	}
	draft.Lines = append(draft.Lines, line)

	return &line, nil
}

// ApplyDiscount attaches code to the draft. An unknown code leaves the draft
// unchanged and returns ErrInvalidDiscountCode.
func (s *OrderService) ApplyDiscount(ctx context.Context, draft *OrderDraft, code string) error {
	_, discount, err := s.discounts.Apply(ctx, code, draft.Subtotal())
	if err != nil {
		return err
	}
	draft.Discount = discount
	return nil
}

// Tax returns the tax on amount at the configured rate.
func (s *OrderService) Tax(amount float64) float64 {
	return amount * s.taxRate
}

// TaxRate returns the configured tax rate.
func (s *OrderService) TaxRate() float64 {
	return s.taxRate
}

// AmountDue is the discounted total plus tax.
func (s *OrderService) AmountDue(draft *OrderDraft) float64 {
	total := draft.Total()
	return total + s.Tax(total)
}

// PlaceOrder persists a paid draft with status placed and publishes it to the
// order feed. The stored total includes tax.
func (s *OrderService) PlaceOrder(ctx context.Context, draft *OrderDraft) (*models.Order, error) {
	if len(draft.Lines) == 0 {
		return nil, invalid("order", "has no items")
	}

	order := models.Order{
		ID:         uuid.New(),
		RoomNumber: draft.RoomNumber,
		Subtotal:   draft.Subtotal(),
		Total:      s.AmountDue(draft),
		Status:     models.OrderStatusPlaced,
		CreatedAt:  s.clock(),
		Lines:      make([]models.OrderLine, len(draft.Lines)),
	}
	if draft.Discount != nil {
		code := draft.Discount.Code
		order.DiscountCode = &code
		order.DiscountPercentage = draft.Discount.Percentage
	}
	for i, line := range draft.Lines {
		line.OrderID = order.ID
		order.Lines[i] = line
	}

	if err := s.repos.Order.Create(ctx, order); err != nil {
		return nil, storeErr("place order", err)
	}

	s.log.Info("order placed", "order_id", order.ID, "room", order.RoomNumber, "total", order.Total)
	s.publisher.OrderPlaced(order)

	return &order, nil
}

// GetOrder retrieves an order by the ID printed on the guest's receipt
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	orderID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, invalid("order ID", "is not a valid order number")
	}

	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, storeErr("get order", err)
	}

	return order, nil
}

// UpdateStatus moves an order to status and publishes the change
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, invalid("status", fmt.Sprintf("unknown status %q", status))
	}

	if err := s.repos.Order.UpdateStatus(ctx, id, status); err != nil {
		return nil, storeErr("update order status", err)
	}

	order, err := s.repos.Order.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get order", err)
	}

	s.log.Info("order status updated", "order_id", id, "status", status)
	s.publisher.OrderUpdated(*order)

	return order, nil
}

// RedemptionCode returns a 5-character code for one order line.
func RedemptionCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:5])
}
