package service

import (
	"context"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/repository"
)

type ProductService interface {
	Create(ctx context.Context, principal domain.Principal, product *domain.Product) error
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Update(ctx context.Context, principal domain.Principal, product *domain.Product) error
	Delete(ctx context.Context, principal domain.Principal, id int64) error
	List(ctx context.Context, page, pageSize int32) ([]domain.Product, int64, error)
}

type CartService interface {
	Get(ctx context.Context, principal domain.Principal) (*domain.Quotation, error)
	AddOrUpdateLine(ctx context.Context, principal domain.Principal, productID int64, quantity int32, lineType domain.LineType, window *domain.RentalWindow) (*domain.Quotation, error)
	RemoveLine(ctx context.Context, principal domain.Principal, lineID int64) (*domain.Quotation, error)
	ApplyCoupon(ctx context.Context, principal domain.Principal, code string) (*domain.Quotation, error)
	Clear(ctx context.Context, principal domain.Principal) error
}

type CouponService interface {
	// Validate checks a code against its temporal, usage and minimum-
	// order constraints and returns the coupon plus the discount it
	// yields on the given amount. Checks run in a fixed sequence so the
	// first failing constraint names the error.
	Validate(ctx context.Context, code string, orderAmountPaise int64, userID int64) (*domain.Coupon, int64, error)
}

// ReturnItemInput describes the condition one product line came back in.
// Type may be left empty when the product sits on a single line; an order
// carrying both a rental and a sale line for the product requires it.
type ReturnItemInput struct {
	ProductID int64                `json:"product_id"`
	Type      domain.LineType      `json:"type,omitempty"`
	Quantity  int32                `json:"quantity"`
	Condition domain.ItemCondition `json:"condition"`
}

type OrderService interface {
	Confirm(ctx context.Context, principal domain.Principal, quotationID int64) (*domain.Order, error)
	MarkPickedUp(ctx context.Context, principal domain.Principal, orderID int64, note string) (*domain.Order, error)
	MarkReturned(ctx context.Context, principal domain.Principal, orderID int64, items []ReturnItemInput) (*domain.Order, *domain.Return, error)
	Cancel(ctx context.Context, principal domain.Principal, orderID int64) (*domain.Order, error)
	Get(ctx context.Context, principal domain.Principal, orderID int64) (*domain.Order, error)
	List(ctx context.Context, principal domain.Principal, page, pageSize int32) ([]domain.Order, int64, error)
}

type StockService interface {
	OnHand(ctx context.Context, productID int64) (int64, error)
	// Available is on-hand minus reservations overlapping the window.
	Available(ctx context.Context, productID int64, window domain.RentalWindow) (int64, error)
	Movements(ctx context.Context, productID int64, page, pageSize int32) ([]domain.StockMovement, int64, error)
	Adjust(ctx context.Context, principal domain.Principal, productID int64, delta int64, note string) error
	// Reconcile audits every product's on-hand against the journal fold
	// and reports drift.
	Reconcile(ctx context.Context) ([]repository.StockDrift, error)
}

type PaymentService interface {
	// CreateIntent registers a pending payment against an order or a
	// standalone invoice and returns it together with the gateway
	// checkout URL.
	CreateIntent(ctx context.Context, principal domain.Principal, orderID, invoiceID *int64, amountPaise int64) (*domain.Payment, string, error)
	// HandleCallback verifies and applies a signed gateway
	// confirmation. Replaying the same transaction id is a no-op.
	HandleCallback(ctx context.Context, conf *domain.GatewayConfirmation) (*domain.Payment, error)
	// ListForOrder returns every payment recorded against the order.
	ListForOrder(ctx context.Context, principal domain.Principal, orderID int64) ([]domain.Payment, error)
}

// PaymentGateway is the external collaborator that hosts the checkout.
// Calls are bounded by the configured timeout; failures surface as
// ExternalError and leave no local state behind.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, reference string, amountPaise int64, description string) (checkoutURL string, err error)
}

// Notifier receives fire-and-forget events. Implementations must never
// block the caller on delivery.
type Notifier interface {
	OrderConfirmed(ctx context.Context, order *domain.Order)
	OrderPickedUp(ctx context.Context, order *domain.Order)
	OrderReturned(ctx context.Context, order *domain.Order, ret *domain.Return)
	OrderCancelled(ctx context.Context, order *domain.Order)
	OrderOverdue(ctx context.Context, order *domain.Order)
	PaymentReceived(ctx context.Context, payment *domain.Payment)
}
