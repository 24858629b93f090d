package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/repository"
)

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockProductRepo struct{ mock.Mock }

func (m *MockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepo) Update(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepo) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepo) List(ctx context.Context, page, pageSize int32) ([]domain.Product, int64, error) {
	args := m.Called(ctx, page, pageSize)
	var products []domain.Product
	if args.Get(0) != nil {
		products = args.Get(0).([]domain.Product)
	}
	return products, args.Get(1).(int64), args.Error(2)
}

type MockQuotationRepo struct{ mock.Mock }

func (m *MockQuotationRepo) Create(ctx context.Context, q *domain.Quotation) error {
	return m.Called(ctx, q).Error(0)
}

func (m *MockQuotationRepo) GetByID(ctx context.Context, id int64) (*domain.Quotation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quotation), args.Error(1)
}

func (m *MockQuotationRepo) GetDraftByCustomer(ctx context.Context, customerID int64) (*domain.Quotation, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quotation), args.Error(1)
}

func (m *MockQuotationRepo) Update(ctx context.Context, q *domain.Quotation) error {
	return m.Called(ctx, q).Error(0)
}

func (m *MockQuotationRepo) CreateLine(ctx context.Context, line *domain.QuotationLine) error {
	return m.Called(ctx, line).Error(0)
}

func (m *MockQuotationRepo) UpdateLine(ctx context.Context, line *domain.QuotationLine) error {
	return m.Called(ctx, line).Error(0)
}

func (m *MockQuotationRepo) DeleteLine(ctx context.Context, lineID int64) error {
	return m.Called(ctx, lineID).Error(0)
}

func (m *MockQuotationRepo) DeleteDraftByCustomer(ctx context.Context, customerID int64) error {
	return m.Called(ctx, customerID).Error(0)
}

func (m *MockQuotationRepo) ExpireStale(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

type MockOrderRepo struct{ mock.Mock }

func (m *MockOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepo) SetStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockOrderRepo) SetInvoice(ctx context.Context, id int64, invoiceID int64) error {
	return m.Called(ctx, id, invoiceID).Error(0)
}

func (m *MockOrderRepo) AddAmountPaid(ctx context.Context, id int64, amountPaise int64) error {
	return m.Called(ctx, id, amountPaise).Error(0)
}

func (m *MockOrderRepo) ListByCustomer(ctx context.Context, customerID int64, page, pageSize int32) ([]domain.Order, int64, error) {
	args := m.Called(ctx, customerID, page, pageSize)
	var orders []domain.Order
	if args.Get(0) != nil {
		orders = args.Get(0).([]domain.Order)
	}
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepo) ListByVendor(ctx context.Context, vendorID int64, page, pageSize int32) ([]domain.Order, int64, error) {
	args := m.Called(ctx, vendorID, page, pageSize)
	var orders []domain.Order
	if args.Get(0) != nil {
		orders = args.Get(0).([]domain.Order)
	}
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Order, error) {
	args := m.Called(ctx, asOf)
	var orders []domain.Order
	if args.Get(0) != nil {
		orders = args.Get(0).([]domain.Order)
	}
	return orders, args.Error(1)
}

func (m *MockOrderRepo) CreateReservation(ctx context.Context, r *domain.Reservation) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockOrderRepo) ListReservations(ctx context.Context, orderID int64) ([]domain.Reservation, error) {
	args := m.Called(ctx, orderID)
	var reservations []domain.Reservation
	if args.Get(0) != nil {
		reservations = args.Get(0).([]domain.Reservation)
	}
	return reservations, args.Error(1)
}

func (m *MockOrderRepo) ReservedQuantity(ctx context.Context, productID int64, w domain.RentalWindow) (int64, error) {
	args := m.Called(ctx, productID, w)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepo) TruncateReservations(ctx context.Context, orderID int64, end time.Time) error {
	return m.Called(ctx, orderID, end).Error(0)
}

func (m *MockOrderRepo) DeleteReservations(ctx context.Context, orderID int64) error {
	return m.Called(ctx, orderID).Error(0)
}

func (m *MockOrderRepo) CreatePickup(ctx context.Context, p *domain.Pickup) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockOrderRepo) GetPickup(ctx context.Context, orderID int64) (*domain.Pickup, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pickup), args.Error(1)
}

func (m *MockOrderRepo) CreateReturn(ctx context.Context, r *domain.Return) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockOrderRepo) GetReturn(ctx context.Context, orderID int64) (*domain.Return, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Return), args.Error(1)
}

type MockStockRepo struct{ mock.Mock }

func (m *MockStockRepo) Reserve(ctx context.Context, productID int64, quantity int64, referenceID int64) error {
	return m.Called(ctx, productID, quantity, referenceID).Error(0)
}

func (m *MockStockRepo) Restore(ctx context.Context, productID int64, quantity int64, movType domain.MovementType, referenceID int64, note string) error {
	return m.Called(ctx, productID, quantity, movType, referenceID, note).Error(0)
}

func (m *MockStockRepo) Adjust(ctx context.Context, productID int64, delta int64, note string) error {
	return m.Called(ctx, productID, delta, note).Error(0)
}

func (m *MockStockRepo) OnHand(ctx context.Context, productID int64) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStockRepo) ListMovements(ctx context.Context, productID int64, page, pageSize int32) ([]domain.StockMovement, int64, error) {
	args := m.Called(ctx, productID, page, pageSize)
	var movements []domain.StockMovement
	if args.Get(0) != nil {
		movements = args.Get(0).([]domain.StockMovement)
	}
	return movements, args.Get(1).(int64), args.Error(2)
}

func (m *MockStockRepo) Drifting(ctx context.Context) ([]repository.StockDrift, error) {
	args := m.Called(ctx)
	var drifts []repository.StockDrift
	if args.Get(0) != nil {
		drifts = args.Get(0).([]repository.StockDrift)
	}
	return drifts, args.Error(1)
}

type MockBillingRepo struct{ mock.Mock }

func (m *MockBillingRepo) CreateInvoice(ctx context.Context, inv *domain.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockBillingRepo) GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockBillingRepo) GetInvoiceByOrder(ctx context.Context, orderID int64) (*domain.Invoice, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockBillingRepo) ApplyToInvoice(ctx context.Context, invoiceID int64, amountPaise int64) error {
	return m.Called(ctx, invoiceID, amountPaise).Error(0)
}

func (m *MockBillingRepo) CreatePayment(ctx context.Context, p *domain.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockBillingRepo) CompletePayment(ctx context.Context, reference, transactionID string) error {
	return m.Called(ctx, reference, transactionID).Error(0)
}

func (m *MockBillingRepo) GetPaymentByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockBillingRepo) GetPaymentByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockBillingRepo) SetPaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockBillingRepo) ListPaymentsByOrder(ctx context.Context, orderID int64) ([]domain.Payment, error) {
	args := m.Called(ctx, orderID)
	var payments []domain.Payment
	if args.Get(0) != nil {
		payments = args.Get(0).([]domain.Payment)
	}
	return payments, args.Error(1)
}

type MockCouponRepo struct{ mock.Mock }

func (m *MockCouponRepo) Create(ctx context.Context, c *domain.Coupon) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCouponRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coupon), args.Error(1)
}

func (m *MockCouponRepo) UsageCount(ctx context.Context, couponID int64) (int64, error) {
	args := m.Called(ctx, couponID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCouponRepo) UserUsageCount(ctx context.Context, couponID, userID int64) (int64, error) {
	args := m.Called(ctx, couponID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCouponRepo) RecordUsage(ctx context.Context, usage *domain.CouponUsage) error {
	return m.Called(ctx, usage).Error(0)
}

// mockStore bundles the repository mocks behind the Store interface.
// WithinTx simply runs fn against the same store, which matches the
// nested-transaction reuse of the real implementation.
type mockStore struct {
	users    *MockUserRepo
	products *MockProductRepo
	quotes   *MockQuotationRepo
	orders   *MockOrderRepo
	stock    *MockStockRepo
	billing  *MockBillingRepo
	coupons  *MockCouponRepo
}

func newMockStore() *mockStore {
	return &mockStore{
		users:    new(MockUserRepo),
		products: new(MockProductRepo),
		quotes:   new(MockQuotationRepo),
		orders:   new(MockOrderRepo),
		stock:    new(MockStockRepo),
		billing:  new(MockBillingRepo),
		coupons:  new(MockCouponRepo),
	}
}

func (s *mockStore) Users() repository.UserRepository           { return s.users }
func (s *mockStore) Products() repository.ProductRepository     { return s.products }
func (s *mockStore) Quotations() repository.QuotationRepository { return s.quotes }
func (s *mockStore) Orders() repository.OrderRepository         { return s.orders }
func (s *mockStore) Stock() repository.StockRepository          { return s.stock }
func (s *mockStore) Billing() repository.BillingRepository      { return s.billing }
func (s *mockStore) Coupons() repository.CouponRepository       { return s.coupons }

func (s *mockStore) WithinTx(_ context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

type MockCouponService struct{ mock.Mock }

func (m *MockCouponService) Validate(ctx context.Context, code string, orderAmountPaise int64, userID int64) (*domain.Coupon, int64, error) {
	args := m.Called(ctx, code, orderAmountPaise, userID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).(*domain.Coupon), args.Get(1).(int64), args.Error(2)
}

type MockGateway struct{ mock.Mock }

func (m *MockGateway) CreateIntent(ctx context.Context, reference string, amountPaise int64, description string) (string, error) {
	args := m.Called(ctx, reference, amountPaise, description)
	return args.String(0), args.Error(1)
}

type stubVerifier struct{ ok bool }

func (v stubVerifier) Verify(*domain.GatewayConfirmation) bool { return v.ok }

// noopNotifier satisfies Notifier for tests that do not assert on
// notifications.
type noopNotifier struct{}

func (noopNotifier) OrderConfirmed(context.Context, *domain.Order)                {}
func (noopNotifier) OrderPickedUp(context.Context, *domain.Order)                 {}
func (noopNotifier) OrderReturned(context.Context, *domain.Order, *domain.Return) {}
func (noopNotifier) OrderCancelled(context.Context, *domain.Order)                {}
func (noopNotifier) OrderOverdue(context.Context, *domain.Order)                  {}
func (noopNotifier) PaymentReceived(context.Context, *domain.Payment)             {}
