package repository

import (
	"context"
	"time"

	"rentkart-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, page, pageSize int32) ([]domain.Product, int64, error)
}

type QuotationRepository interface {
	Create(ctx context.Context, q *domain.Quotation) error
	GetByID(ctx context.Context, id int64) (*domain.Quotation, error)
	GetDraftByCustomer(ctx context.Context, customerID int64) (*domain.Quotation, error)
	// Update persists header fields: window, totals, discount, coupon,
	// status, expiry. Lines are managed through the line methods.
	Update(ctx context.Context, q *domain.Quotation) error
	CreateLine(ctx context.Context, line *domain.QuotationLine) error
	UpdateLine(ctx context.Context, line *domain.QuotationLine) error
	DeleteLine(ctx context.Context, lineID int64) error
	DeleteDraftByCustomer(ctx context.Context, customerID int64) error
	ExpireStale(ctx context.Context, asOf time.Time) (int64, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	SetStatus(ctx context.Context, id int64, status domain.OrderStatus) error
	SetInvoice(ctx context.Context, id int64, invoiceID int64) error
	// AddAmountPaid increments amount_paid, refusing to exceed the
	// order total.
	AddAmountPaid(ctx context.Context, id int64, amountPaise int64) error
	ListByCustomer(ctx context.Context, customerID int64, page, pageSize int32) ([]domain.Order, int64, error)
	ListByVendor(ctx context.Context, vendorID int64, page, pageSize int32) ([]domain.Order, int64, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Order, error)

	CreateReservation(ctx context.Context, r *domain.Reservation) error
	ListReservations(ctx context.Context, orderID int64) ([]domain.Reservation, error)
	// ReservedQuantity sums reserved units of a product over windows
	// overlapping the given one.
	ReservedQuantity(ctx context.Context, productID int64, w domain.RentalWindow) (int64, error)
	TruncateReservations(ctx context.Context, orderID int64, end time.Time) error
	DeleteReservations(ctx context.Context, orderID int64) error

	CreatePickup(ctx context.Context, p *domain.Pickup) error
	GetPickup(ctx context.Context, orderID int64) (*domain.Pickup, error)
	CreateReturn(ctx context.Context, r *domain.Return) error
	GetReturn(ctx context.Context, orderID int64) (*domain.Return, error)
}

// StockDrift reports a product whose denormalized on-hand quantity has
// diverged from the fold of its movement journal.
type StockDrift struct {
	ProductID  int64
	OnHand     int64
	JournalSum int64
}

type StockRepository interface {
	// Reserve appends a negative-delta movement and decrements the
	// denormalized on-hand quantity in one atomic statement pair,
	// failing with ErrInsufficientStock when on-hand would go negative.
	Reserve(ctx context.Context, productID int64, quantity int64, referenceID int64) error
	// Restore appends a positive-delta movement and increments on-hand.
	Restore(ctx context.Context, productID int64, quantity int64, movType domain.MovementType, referenceID int64, note string) error
	Adjust(ctx context.Context, productID int64, delta int64, note string) error
	OnHand(ctx context.Context, productID int64) (int64, error)
	ListMovements(ctx context.Context, productID int64, page, pageSize int32) ([]domain.StockMovement, int64, error)
	// Drifting folds every product's journal and returns the ones
	// whose on-hand no longer matches.
	Drifting(ctx context.Context) ([]StockDrift, error)
}

type BillingRepository interface {
	CreateInvoice(ctx context.Context, inv *domain.Invoice) error
	GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error)
	GetInvoiceByOrder(ctx context.Context, orderID int64) (*domain.Invoice, error)
	// ApplyToInvoice increments amount_paid and rederives the status.
	ApplyToInvoice(ctx context.Context, invoiceID int64, amountPaise int64) error
	CreatePayment(ctx context.Context, p *domain.Payment) error
	// CompletePayment transitions a PENDING payment to COMPLETED and
	// stamps the gateway transaction id on it.
	CompletePayment(ctx context.Context, reference, transactionID string) error
	GetPaymentByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error)
	GetPaymentByReference(ctx context.Context, reference string) (*domain.Payment, error)
	SetPaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
	ListPaymentsByOrder(ctx context.Context, orderID int64) ([]domain.Payment, error)
}

type CouponRepository interface {
	Create(ctx context.Context, c *domain.Coupon) error
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	UsageCount(ctx context.Context, couponID int64) (int64, error)
	UserUsageCount(ctx context.Context, couponID, userID int64) (int64, error)
	RecordUsage(ctx context.Context, usage *domain.CouponUsage) error
}

// Store bundles every repository plus transactional execution. WithinTx
// runs fn against a store whose repositories share one database
// transaction: either every write commits or none do.
type Store interface {
	Users() UserRepository
	Products() ProductRepository
	Quotations() QuotationRepository
	Orders() OrderRepository
	Stock() StockRepository
	Billing() BillingRepository
	Coupons() CouponRepository
	WithinTx(ctx context.Context, fn func(Store) error) error
}
