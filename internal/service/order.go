package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/logger"
	"rentkart-backend/internal/pricing"
	"rentkart-backend/internal/repository"
)

// txRetryAttempts bounds how often a conflicted transaction is retried
// before the error is surfaced to the caller.
const txRetryAttempts = 3

type orderService struct {
	store            repository.Store
	couponSvc        CouponService
	notifier         Notifier
	taxRatePercent   int64
	lateFeePercent   int64
	damageFeePercent int64
	now              func() time.Time
}

func NewOrderService(store repository.Store, couponSvc CouponService, notifier Notifier, taxRatePercent, lateFeePercent, damageFeePercent int64) OrderService {
	return &orderService{
		store:            store,
		couponSvc:        couponSvc,
		notifier:         notifier,
		taxRatePercent:   taxRatePercent,
		lateFeePercent:   lateFeePercent,
		damageFeePercent: damageFeePercent,
		now:              time.Now,
	}
}

// inTxWithRetry runs fn in a transaction, retrying on ErrTxConflict.
func (s *orderService) inTxWithRetry(ctx context.Context, fn func(repository.Store) error) error {
	var err error
	for attempt := 1; attempt <= txRetryAttempts; attempt++ {
		err = s.store.WithinTx(ctx, fn)
		if !errors.Is(err, domain.ErrTxConflict) {
			return err
		}
		logger.Warn("transaction conflict, retrying", "attempt", attempt)
	}
	return err
}

// Confirm turns a customer's DRAFT quotation into a CONFIRMED order.
// Stock is reserved, prices and the daily rate are snapshotted, the
// coupon (if any) is redeemed and the main invoice is raised, all in
// one transaction.
func (s *orderService) Confirm(ctx context.Context, principal domain.Principal, quotationID int64) (*domain.Order, error) {
	var order *domain.Order
	err := s.inTxWithRetry(ctx, func(tx repository.Store) error {
		quote, err := tx.Quotations().GetByID(ctx, quotationID)
		if err != nil {
			return err
		}
		if quote.CustomerID != principal.UserID && !principal.Is(domain.RoleAdmin) {
			return &domain.AuthorizationError{Reason: "quotation belongs to another customer"}
		}
		if quote.Status != domain.QuotationStatusDraft {
			return &domain.ConflictError{Reason: fmt.Sprintf("quotation is %s, only DRAFT can be confirmed", quote.Status)}
		}
		if len(quote.Lines) == 0 {
			return domain.ErrEmptyCart
		}

		vendorID, err := s.resolveVendor(ctx, tx, quote)
		if err != nil {
			return err
		}

		window := orderWindow(quote)
		var rentalDays int32
		if window != nil {
			rentalDays, err = pricing.RentalDays(*window)
			if err != nil {
				return err
			}
		}

		now := s.now()
		order = &domain.Order{
			Number:         orderNumber(),
			QuotationID:    quote.ID,
			CustomerID:     quote.CustomerID,
			VendorID:       vendorID,
			Status:         domain.OrderStatusConfirmed,
			SubtotalPaise:  quote.SubtotalPaise,
			TaxPaise:       quote.TaxPaise,
			DiscountPaise:  quote.DiscountPaise,
			TotalPaise:     quote.PayableTotalPaise(),
			DailyRatePaise: pricing.DailyRate(rentalSubtotal(quote), rentalDays),
			RentalDays:     rentalDays,
			Window:         window,
			CreatedOn:      now,
			UpdatedOn:      now,
		}
		for _, ql := range quote.Lines {
			order.Lines = append(order.Lines, domain.OrderLine{
				ProductID:      ql.ProductID,
				Type:           ql.Type,
				Quantity:       ql.Quantity,
				UnitPricePaise: ql.UnitPricePaise,
				TotalPaise:     ql.TotalPaise,
				Window:         ql.Window,
			})
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}

		// Reserve after the order exists so movements reference it.
		for _, line := range order.Lines {
			if err := tx.Stock().Reserve(ctx, line.ProductID, int64(line.Quantity), order.ID); err != nil {
				return err
			}
			if line.Type != domain.LineTypeRental {
				continue
			}
			w := line.Window
			if w == nil {
				w = window
			}
			if w == nil {
				return &domain.InvariantViolation{Reason: fmt.Sprintf("rental line for product %d has no window", line.ProductID)}
			}
			if err := tx.Orders().CreateReservation(ctx, &domain.Reservation{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Start:     w.Start,
				End:       w.End,
			}); err != nil {
				return err
			}
		}

		if quote.CouponCode != "" {
			// Revalidate under the transaction so limits hold at the
			// moment of redemption, not the moment the cart saw them.
			coupon, _, err := s.couponSvc.Validate(ctx, quote.CouponCode, quote.TotalPaise, quote.CustomerID)
			if err != nil {
				return err
			}
			if err := tx.Coupons().RecordUsage(ctx, &domain.CouponUsage{
				CouponID: coupon.ID,
				UserID:   quote.CustomerID,
				OrderID:  order.ID,
				UsedOn:   now,
			}); err != nil {
				return err
			}
		}

		invoice := &domain.Invoice{
			Number:        invoiceNumber(),
			OrderID:       &order.ID,
			SubtotalPaise: order.SubtotalPaise,
			TaxPaise:      order.TaxPaise,
			TotalPaise:    order.TotalPaise,
			Status:        domain.InvoiceStatusDraft,
		}
		if err := tx.Billing().CreateInvoice(ctx, invoice); err != nil {
			return err
		}
		if err := tx.Orders().SetInvoice(ctx, order.ID, invoice.ID); err != nil {
			return err
		}
		order.InvoiceID = &invoice.ID

		quote.Status = domain.QuotationStatusConfirmed
		return tx.Quotations().Update(ctx, quote)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("order confirmed", "order_id", order.ID, "number", order.Number, "total_paise", order.TotalPaise)
	s.notifier.OrderConfirmed(ctx, order)
	return order, nil
}

// resolveVendor loads each line's product and requires them to share
// one vendor. Deleted products fail the confirmation.
func (s *orderService) resolveVendor(ctx context.Context, tx repository.Store, quote *domain.Quotation) (int64, error) {
	var vendorID int64
	for _, line := range quote.Lines {
		product, err := tx.Products().GetByID(ctx, line.ProductID)
		if err != nil {
			return 0, err
		}
		if product.IsDeleted() {
			return 0, domain.ErrProductDeleted
		}
		if vendorID == 0 {
			vendorID = product.VendorID
			continue
		}
		if product.VendorID != vendorID {
			return 0, domain.ErrMixedVendors
		}
	}
	return vendorID, nil
}

// MarkPickedUp records handover to the customer. Only the order's
// vendor (or an admin) may do this; doing it twice returns the order
// unchanged.
func (s *orderService) MarkPickedUp(ctx context.Context, principal domain.Principal, orderID int64, note string) (*domain.Order, error) {
	var order *domain.Order
	var already bool
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		order, err = tx.Orders().GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.VendorID != principal.UserID && !principal.Is(domain.RoleAdmin) {
			return &domain.AuthorizationError{Reason: "order belongs to another vendor"}
		}
		if _, err := tx.Orders().GetPickup(ctx, orderID); err == nil {
			already = true
			return nil
		} else if !isNotFound(err) {
			return err
		}
		if !order.CanTransitionTo(domain.OrderStatusPickedUp) {
			return domain.ErrInvalidTransition
		}
		if err := tx.Orders().CreatePickup(ctx, &domain.Pickup{
			OrderID:    orderID,
			PickedUpOn: s.now(),
			Note:       note,
		}); err != nil {
			return err
		}
		order.Status = domain.OrderStatusPickedUp
		return tx.Orders().SetStatus(ctx, orderID, domain.OrderStatusPickedUp)
	})
	if err != nil {
		return nil, err
	}
	if !already {
		s.notifier.OrderPickedUp(ctx, order)
	}
	return order, nil
}

// Cancel releases every reservation and restores the reserved stock.
func (s *orderService) Cancel(ctx context.Context, principal domain.Principal, orderID int64) (*domain.Order, error) {
	var order *domain.Order
	err := s.inTxWithRetry(ctx, func(tx repository.Store) error {
		var err error
		order, err = tx.Orders().GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.CustomerID != principal.UserID && order.VendorID != principal.UserID && !principal.Is(domain.RoleAdmin) {
			return &domain.AuthorizationError{Reason: "not a party to this order"}
		}
		if !order.CanTransitionTo(domain.OrderStatusCancelled) {
			return domain.ErrInvalidTransition
		}
		for _, line := range order.Lines {
			if err := tx.Stock().Restore(ctx, line.ProductID, int64(line.Quantity), domain.MovementTypeReturn, order.ID, "order cancelled"); err != nil {
				return err
			}
		}
		if err := tx.Orders().DeleteReservations(ctx, orderID); err != nil {
			return err
		}
		order.Status = domain.OrderStatusCancelled
		return tx.Orders().SetStatus(ctx, orderID, domain.OrderStatusCancelled)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("order cancelled", "order_id", order.ID, "number", order.Number)
	s.notifier.OrderCancelled(ctx, order)
	return order, nil
}

func (s *orderService) Get(ctx context.Context, principal domain.Principal, orderID int64) (*domain.Order, error) {
	order, err := s.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != principal.UserID && order.VendorID != principal.UserID && !principal.Is(domain.RoleAdmin) {
		return nil, &domain.AuthorizationError{Reason: "not a party to this order"}
	}
	order.Reservations, err = s.store.Orders().ListReservations(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, principal domain.Principal, page, pageSize int32) ([]domain.Order, int64, error) {
	if principal.Is(domain.RoleVendor) {
		return s.store.Orders().ListByVendor(ctx, principal.UserID, page, pageSize)
	}
	return s.store.Orders().ListByCustomer(ctx, principal.UserID, page, pageSize)
}

// orderWindow picks the widest span covered by the quotation's rental
// lines, falling back to the cart-level window. Nil for all-SALE carts.
func orderWindow(quote *domain.Quotation) *domain.RentalWindow {
	var window *domain.RentalWindow
	for _, line := range quote.Lines {
		if line.Type != domain.LineTypeRental || line.Window == nil {
			continue
		}
		if window == nil {
			w := *line.Window
			window = &w
			continue
		}
		if line.Window.Start.Before(window.Start) {
			window.Start = line.Window.Start
		}
		if line.Window.End.After(window.End) {
			window.End = line.Window.End
		}
	}
	if window == nil {
		window = quote.Window
	}
	return window
}

// rentalSubtotal sums the rental lines only; sale lines never
// contribute to the contracted daily rate.
func rentalSubtotal(quote *domain.Quotation) int64 {
	var sum int64
	for _, line := range quote.Lines {
		if line.Type == domain.LineTypeRental {
			sum += line.TotalPaise
		}
	}
	return sum
}

func orderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

func invoiceNumber() string {
	return "INV-" + strings.ToUpper(uuid.NewString()[:8])
}

func isNotFound(err error) bool {
	var notFound *domain.NotFoundError
	return errors.As(err, &notFound)
}
