package jobs

import (
	"context"

	"dumpster-backoffice/internal/domain"
	"dumpster-backoffice/internal/logger"
	"dumpster-backoffice/internal/metrics"
)

// ReconcileInvoiceBalances rewrites every cached invoice balance that has
// drifted from its payments.
func (jr *JobRunner) ReconcileInvoiceBalances() {
	jr.runWithRecovery("ReconcileInvoiceBalances", func() {
		corrected, err := jr.reconcileInvoiceBalances(context.Background())
		if err != nil {
			logger.Error("Failed to reconcile invoice balances", "error", err)
			return
		}
		logger.Info("Reconciled invoice balances", "corrected", corrected)
	})
}

func (jr *JobRunner) reconcileInvoiceBalances(ctx context.Context) (int, error) {
	invoices, err := jr.repos.Invoices.List(ctx)
	if err != nil {
		return 0, err
	}
	payments, err := jr.repos.Payments.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	byInvoice := make(map[string][]domain.Payment)
	for _, p := range payments {
		byInvoice[p.InvoiceID] = append(byInvoice[p.InvoiceID], p)
	}

	// The in-memory figure only picks candidates. The write goes through the
	// database recompute so a payment committed after ListAll is never undone.
	corrected := 0
	for _, inv := range invoices {
		if inv.BalanceFrom(byInvoice[inv.ID]) == inv.CurrentBalanceCents {
			continue
		}
		balance, err := jr.repos.Invoices.RecomputeBalance(ctx, inv.ID)
		if err != nil {
			logger.Error("Failed to correct invoice balance", "invoice_id", inv.ID, "error", err)
			continue
		}
		if balance == inv.CurrentBalanceCents {
			continue
		}
		logger.Warn("Invoice balance drift",
			"invoice_id", inv.ID,
			"invoice_number", inv.Number,
			"stored_cents", inv.CurrentBalanceCents,
			"computed_cents", balance)
		metrics.BalanceDrift.Inc()
		corrected++
	}
	return corrected, nil
}
