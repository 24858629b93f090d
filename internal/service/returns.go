package service

import (
	"context"
	"fmt"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/logger"
	"rentkart-backend/internal/pricing"
	"rentkart-backend/internal/repository"
)

// MarkReturned closes out an order: it assesses late and damage fees,
// restores undamaged stock, raises a fee invoice when anything is owed
// and releases the reservations. Exactly one return per order.
func (s *orderService) MarkReturned(ctx context.Context, principal domain.Principal, orderID int64, items []ReturnItemInput) (*domain.Order, *domain.Return, error) {
	var order *domain.Order
	var ret *domain.Return
	err := s.inTxWithRetry(ctx, func(tx repository.Store) error {
		var err error
		order, err = tx.Orders().GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.VendorID != principal.UserID && !principal.Is(domain.RoleAdmin) {
			return &domain.AuthorizationError{Reason: "order belongs to another vendor"}
		}
		if _, err := tx.Orders().GetReturn(ctx, orderID); err == nil {
			return domain.ErrReturnAlreadyProcessed
		} else if !isNotFound(err) {
			return err
		}
		if !order.CanTransitionTo(domain.OrderStatusReturned) {
			return domain.ErrInvalidTransition
		}

		returnItems, damagedTotals, err := resolveReturnItems(order, items)
		if err != nil {
			return err
		}

		returnedOn := s.now()
		fees := pricing.AssessReturnFees(order, returnedOn, damagedTotals, s.lateFeePercent, s.damageFeePercent)

		ret = &domain.Return{
			OrderID:        orderID,
			ReturnedOn:     returnedOn,
			LateDays:       fees.LateDays,
			LateFeePaise:   fees.LateFeePaise,
			DamageFeePaise: fees.DamageFeePaise,
			Items:          returnItems,
		}

		if sub := fees.SubtotalPaise(); sub > 0 {
			tax := pricing.Percent(sub, s.taxRatePercent)
			feeInvoice := &domain.Invoice{
				Number:        invoiceNumber(),
				OrderID:       &order.ID,
				SubtotalPaise: sub,
				TaxPaise:      tax,
				TotalPaise:    sub + tax,
				Status:        domain.InvoiceStatusDraft,
			}
			if err := tx.Billing().CreateInvoice(ctx, feeInvoice); err != nil {
				return err
			}
			ret.FeeInvoiceID = &feeInvoice.ID
		}

		if err := tx.Orders().CreateReturn(ctx, ret); err != nil {
			return err
		}

		// Damaged units stay out of circulation; only GOOD ones go
		// back on the shelf.
		for _, item := range ret.Items {
			if item.Condition != domain.ItemConditionGood {
				continue
			}
			if err := tx.Stock().Restore(ctx, item.ProductID, int64(item.Quantity), domain.MovementTypeReturn, orderID, "order returned"); err != nil {
				return err
			}
		}

		if err := tx.Orders().TruncateReservations(ctx, orderID, returnedOn); err != nil {
			return err
		}
		if err := tx.Orders().DeleteReservations(ctx, orderID); err != nil {
			return err
		}

		order.Status = domain.OrderStatusReturned
		return tx.Orders().SetStatus(ctx, orderID, domain.OrderStatusReturned)
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info("order returned",
		"order_id", order.ID, "late_days", ret.LateDays,
		"late_fee_paise", ret.LateFeePaise, "damage_fee_paise", ret.DamageFeePaise)
	s.notifier.OrderReturned(ctx, order, ret)
	return order, ret, nil
}

// resolveReturnItems matches the reported items against the order's
// lines and collects the totals of the damaged ones for fee assessment.
// A product can sit on both a rental and a sale line, so each reported
// item resolves to one (product, line type) pair.
func resolveReturnItems(order *domain.Order, items []ReturnItemInput) ([]domain.ReturnItem, []int64, error) {
	byProduct := make(map[int64][]*domain.OrderLine, len(order.Lines))
	for i := range order.Lines {
		line := &order.Lines[i]
		byProduct[line.ProductID] = append(byProduct[line.ProductID], line)
	}

	type lineKey struct {
		productID int64
		lineType  domain.LineType
	}
	returnItems := make([]domain.ReturnItem, 0, len(items))
	var damagedTotals []int64
	seen := make(map[lineKey]bool, len(items))
	for _, item := range items {
		line, err := matchOrderLine(byProduct[item.ProductID], item)
		if err != nil {
			return nil, nil, err
		}
		key := lineKey{item.ProductID, line.Type}
		if seen[key] {
			return nil, nil, &domain.ValidationError{Reason: fmt.Sprintf("product %d reported more than once", item.ProductID)}
		}
		seen[key] = true
		if item.Quantity <= 0 || item.Quantity > line.Quantity {
			return nil, nil, &domain.ValidationError{Reason: fmt.Sprintf("quantity for product %d must be between 1 and %d", item.ProductID, line.Quantity)}
		}
		switch item.Condition {
		case domain.ItemConditionGood, domain.ItemConditionDamaged:
		default:
			return nil, nil, &domain.ValidationError{Reason: fmt.Sprintf("unknown item condition %q", item.Condition)}
		}
		if item.Condition == domain.ItemConditionDamaged {
			damagedTotals = append(damagedTotals, line.TotalPaise)
		}
		returnItems = append(returnItems, domain.ReturnItem{
			ProductID: item.ProductID,
			Type:      line.Type,
			Quantity:  item.Quantity,
			Condition: item.Condition,
		})
	}
	return returnItems, damagedTotals, nil
}

func matchOrderLine(candidates []*domain.OrderLine, item ReturnItemInput) (*domain.OrderLine, error) {
	if len(candidates) == 0 {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("product %d is not on this order", item.ProductID)}
	}
	if item.Type != "" {
		for _, line := range candidates {
			if line.Type == item.Type {
				return line, nil
			}
		}
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("order has no %s line for product %d", item.Type, item.ProductID)}
	}
	if len(candidates) > 1 {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("product %d is on both a rental and a sale line, specify the line type", item.ProductID)}
	}
	return candidates[0], nil
}
