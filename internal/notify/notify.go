// Package notify delivers transactional email over SendGrid. Every
// event is dispatched on its own goroutine so the ordering flows never
// wait on the mail provider.
package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/logger"
	"rentkart-backend/internal/repository"
)

type EmailNotifier struct {
	apiKey    string
	fromEmail string
	fromName  string
	users     repository.UserRepository
	orders    repository.OrderRepository
}

func NewEmailNotifier(apiKey, fromEmail, fromName string, users repository.UserRepository, orders repository.OrderRepository) *EmailNotifier {
	return &EmailNotifier{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		users:     users,
		orders:    orders,
	}
}

func (n *EmailNotifier) send(userID int64, subject, plainText string) {
	go func() {
		ctx := context.Background()
		user, err := n.users.GetByID(ctx, userID)
		if err != nil {
			logger.Error("notification recipient lookup failed", "user_id", userID, "error", err)
			return
		}

		from := mail.NewEmail(n.fromName, n.fromEmail)
		to := mail.NewEmail(user.Name, user.Email)
		message := mail.NewSingleEmail(from, subject, to, plainText, "")

		client := sendgrid.NewSendClient(n.apiKey)
		response, err := client.Send(message)
		if err != nil {
			logger.Error("notification send failed", "user_id", userID, "subject", subject, "error", err)
			return
		}
		if response.StatusCode >= 400 {
			logger.Error("sendgrid rejected notification",
				"user_id", userID, "subject", subject, "status", response.StatusCode, "body", response.Body)
			return
		}
		logger.Debug("notification sent", "user_id", userID, "subject", subject)
	}()
}

func rupees(paise int64) string {
	return fmt.Sprintf("₹%d.%02d", paise/100, paise%100)
}

func (n *EmailNotifier) OrderConfirmed(_ context.Context, order *domain.Order) {
	n.send(order.CustomerID,
		fmt.Sprintf("Order %s confirmed", order.Number),
		fmt.Sprintf("Your order %s for %s is confirmed.", order.Number, rupees(order.TotalPaise)))
	n.send(order.VendorID,
		fmt.Sprintf("New order %s", order.Number),
		fmt.Sprintf("Order %s for %s is awaiting pickup.", order.Number, rupees(order.TotalPaise)))
}

func (n *EmailNotifier) OrderPickedUp(_ context.Context, order *domain.Order) {
	n.send(order.CustomerID,
		fmt.Sprintf("Order %s picked up", order.Number),
		fmt.Sprintf("Order %s has been handed over.", order.Number))
}

func (n *EmailNotifier) OrderReturned(_ context.Context, order *domain.Order, ret *domain.Return) {
	body := fmt.Sprintf("Order %s has been returned.", order.Number)
	if fees := ret.LateFeePaise + ret.DamageFeePaise; fees > 0 {
		body += fmt.Sprintf(" Fees assessed: %s late, %s damage.",
			rupees(ret.LateFeePaise), rupees(ret.DamageFeePaise))
	}
	n.send(order.CustomerID, fmt.Sprintf("Order %s returned", order.Number), body)
}

func (n *EmailNotifier) OrderCancelled(_ context.Context, order *domain.Order) {
	n.send(order.CustomerID,
		fmt.Sprintf("Order %s cancelled", order.Number),
		fmt.Sprintf("Order %s has been cancelled and its items released.", order.Number))
	n.send(order.VendorID,
		fmt.Sprintf("Order %s cancelled", order.Number),
		fmt.Sprintf("Order %s has been cancelled.", order.Number))
}

func (n *EmailNotifier) OrderOverdue(_ context.Context, order *domain.Order) {
	n.send(order.CustomerID,
		fmt.Sprintf("Order %s is overdue", order.Number),
		fmt.Sprintf("The rental window for order %s has ended. Late fees accrue daily until the items come back.", order.Number))
}

func (n *EmailNotifier) PaymentReceived(ctx context.Context, payment *domain.Payment) {
	if payment.OrderID == nil {
		return
	}
	order, err := n.orders.GetByID(ctx, *payment.OrderID)
	if err != nil {
		logger.Error("payment notification order lookup failed", "order_id", *payment.OrderID, "error", err)
		return
	}
	n.send(order.CustomerID,
		fmt.Sprintf("Payment received for order %s", order.Number),
		fmt.Sprintf("We received %s against order %s.", rupees(payment.AmountPaise), order.Number))
}
