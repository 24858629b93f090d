package jobs

import (
	"context"
	"time"

	"rentkart-backend/internal/logger"
)

// ExpireQuotations flips DRAFT quotations past their expiry to EXPIRED
func (jr *JobRunner) ExpireQuotations() {
	jr.runWithRecovery("ExpireQuotations", func() {
		ctx := context.Background()

		count, err := jr.store.Quotations().ExpireStale(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to expire stale quotations", "error", err)
			return
		}
		logger.Info("Expired stale quotations", "count", count)
	})
}

// SendOverdueReminders emails customers whose picked-up orders are past
// their rental window end
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()

		overdue, err := jr.store.Orders().ListOverdue(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to list overdue orders", "error", err)
			return
		}

		for i := range overdue {
			jr.notifier.OrderOverdue(ctx, &overdue[i])
			logger.Debug("Sent overdue reminder",
				"order_id", overdue[i].ID,
				"customer_id", overdue[i].CustomerID,
				"window_end", overdue[i].Window.End)
		}
		logger.Info("Sent overdue reminders", "count", len(overdue))
	})
}

// ReconcileStock audits every product's on-hand quantity against its
// movement journal
func (jr *JobRunner) ReconcileStock() {
	jr.runWithRecovery("ReconcileStock", func() {
		ctx := context.Background()

		drifts, err := jr.stock.Reconcile(ctx)
		if err != nil {
			logger.Error("Failed to reconcile stock", "error", err)
			return
		}
		logger.Info("Stock reconciliation finished", "drifting_products", len(drifts))
	})
}
