package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/logger"
	"rentkart-backend/internal/repository"
)

// GatewayStatusSuccess is the confirmation status the gateway posts for
// a captured payment. Anything else marks the attempt FAILED.
const GatewayStatusSuccess = "SUCCESS"

// SignatureVerifier checks the authenticity of a gateway confirmation.
type SignatureVerifier interface {
	Verify(conf *domain.GatewayConfirmation) bool
}

type paymentService struct {
	store    repository.Store
	gateway  PaymentGateway
	verifier SignatureVerifier
	notifier Notifier
	now      func() time.Time
}

func NewPaymentService(store repository.Store, gateway PaymentGateway, verifier SignatureVerifier, notifier Notifier) PaymentService {
	return &paymentService{
		store:    store,
		gateway:  gateway,
		verifier: verifier,
		notifier: notifier,
		now:      time.Now,
	}
}

// CreateIntent registers a PENDING payment and hands back the gateway
// checkout URL. The gateway is called before anything is persisted, so
// a gateway failure leaves no local state behind.
func (s *paymentService) CreateIntent(ctx context.Context, principal domain.Principal, orderID, invoiceID *int64, amountPaise int64) (*domain.Payment, string, error) {
	if orderID == nil && invoiceID == nil {
		return nil, "", &domain.ValidationError{Reason: "payment must target an order or an invoice"}
	}
	if amountPaise <= 0 {
		return nil, "", &domain.ValidationError{Reason: "payment amount must be positive"}
	}

	var description string
	switch {
	case orderID != nil:
		order, err := s.store.Orders().GetByID(ctx, *orderID)
		if err != nil {
			return nil, "", err
		}
		if order.CustomerID != principal.UserID && !principal.Is(domain.RoleAdmin) {
			return nil, "", &domain.AuthorizationError{Reason: "order belongs to another customer"}
		}
		if remaining := order.TotalPaise - order.AmountPaidPaise; amountPaise > remaining {
			return nil, "", &domain.ValidationError{Reason: fmt.Sprintf("amount exceeds outstanding balance of %d paise", remaining)}
		}
		description = "payment for order " + order.Number
	default:
		invoice, err := s.store.Billing().GetInvoice(ctx, *invoiceID)
		if err != nil {
			return nil, "", err
		}
		if invoice.OrderID != nil {
			order, err := s.store.Orders().GetByID(ctx, *invoice.OrderID)
			if err != nil {
				return nil, "", err
			}
			if order.CustomerID != principal.UserID && !principal.Is(domain.RoleAdmin) {
				return nil, "", &domain.AuthorizationError{Reason: "invoice belongs to another customer"}
			}
		}
		if remaining := invoice.TotalPaise - invoice.AmountPaidPaise; amountPaise > remaining {
			return nil, "", &domain.ValidationError{Reason: fmt.Sprintf("amount exceeds outstanding balance of %d paise", remaining)}
		}
		description = "payment for invoice " + invoice.Number
	}

	reference := uuid.NewString()
	checkoutURL, err := s.gateway.CreateIntent(ctx, reference, amountPaise, description)
	if err != nil {
		return nil, "", &domain.ExternalError{Service: "payment gateway", Err: err}
	}

	payment := &domain.Payment{
		Reference:   reference,
		OrderID:     orderID,
		InvoiceID:   invoiceID,
		AmountPaise: amountPaise,
		Status:      domain.PaymentStatusPending,
		CreatedOn:   s.now(),
	}
	if err := s.store.Billing().CreatePayment(ctx, payment); err != nil {
		return nil, "", err
	}

	logger.Info("payment intent created", "reference", reference, "amount_paise", amountPaise)
	return payment, checkoutURL, nil
}

// HandleCallback applies a signed gateway confirmation. The gateway's
// transaction id is the idempotency key: replaying a confirmation that
// was already applied returns the stored payment without touching any
// balance again.
func (s *paymentService) HandleCallback(ctx context.Context, conf *domain.GatewayConfirmation) (*domain.Payment, error) {
	if !s.verifier.Verify(conf) {
		return nil, domain.ErrInvalidSignature
	}

	if existing, err := s.store.Billing().GetPaymentByTransactionID(ctx, conf.TransactionID); err == nil {
		logger.Info("replayed gateway confirmation ignored", "transaction_id", conf.TransactionID)
		return existing, nil
	} else if !isNotFound(err) {
		return nil, err
	}

	var payment *domain.Payment
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		payment, err = tx.Billing().GetPaymentByReference(ctx, conf.Reference)
		if err != nil {
			return err
		}
		if payment.Status != domain.PaymentStatusPending {
			return &domain.ConflictError{Reason: fmt.Sprintf("payment %s is already %s", payment.Reference, payment.Status)}
		}
		if !strings.EqualFold(conf.Status, GatewayStatusSuccess) {
			payment.Status = domain.PaymentStatusFailed
			return tx.Billing().SetPaymentStatus(ctx, payment.ID, domain.PaymentStatusFailed)
		}
		if conf.AmountPaise != payment.AmountPaise {
			return &domain.ConflictError{Reason: fmt.Sprintf("confirmed amount %d does not match intent amount %d", conf.AmountPaise, payment.AmountPaise)}
		}

		if err := tx.Billing().CompletePayment(ctx, payment.Reference, conf.TransactionID); err != nil {
			return err
		}
		payment.Status = domain.PaymentStatusCompleted
		payment.TransactionID = conf.TransactionID

		if payment.InvoiceID != nil {
			if err := tx.Billing().ApplyToInvoice(ctx, *payment.InvoiceID, payment.AmountPaise); err != nil {
				return err
			}
		}
		if payment.OrderID != nil {
			if err := tx.Orders().AddAmountPaid(ctx, *payment.OrderID, payment.AmountPaise); err != nil {
				return err
			}
			// A payment aimed at the order also settles its invoice.
			if payment.InvoiceID == nil {
				invoice, err := tx.Billing().GetInvoiceByOrder(ctx, *payment.OrderID)
				if err != nil && !isNotFound(err) {
					return err
				}
				if invoice != nil {
					if err := tx.Billing().ApplyToInvoice(ctx, invoice.ID, payment.AmountPaise); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if payment.Status == domain.PaymentStatusCompleted {
		logger.Info("payment completed",
			"reference", payment.Reference, "transaction_id", payment.TransactionID,
			"amount_paise", payment.AmountPaise)
		s.notifier.PaymentReceived(ctx, payment)
	} else {
		logger.Warn("payment failed at gateway", "reference", payment.Reference, "status", conf.Status)
	}
	return payment, nil
}

func (s *paymentService) ListForOrder(ctx context.Context, principal domain.Principal, orderID int64) ([]domain.Payment, error) {
	order, err := s.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != principal.UserID && order.VendorID != principal.UserID && !principal.Is(domain.RoleAdmin) {
		return nil, &domain.AuthorizationError{Reason: "not a party to this order"}
	}
	return s.store.Billing().ListPaymentsByOrder(ctx, orderID)
}
