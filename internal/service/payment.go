package service

import (
	"context"
	"errors"
	"fmt"

	"dumpster-backoffice/internal/allocation"
	"dumpster-backoffice/internal/domain"
	"dumpster-backoffice/internal/logger"
	"dumpster-backoffice/internal/metrics"
	"dumpster-backoffice/internal/reference"
	"dumpster-backoffice/internal/repository"
)

// ReferenceSettings decides which month and policy number a new payment.
type ReferenceSettings struct {
	Prefix             string
	InvoiceMonthPolicy reference.Policy
	TodayPolicy        reference.Policy
	// NumberByInvoiceMonth scopes a batch by the first invoice's issue month instead of today.
	NumberByInvoiceMonth bool
}

// submitAttempts bounds how often a batch is re-allocated after a reference collision.
const submitAttempts = 2

type paymentService struct {
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	refs        ReferenceSettings
	clock       Clock
}

func NewPaymentService(
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	refs ReferenceSettings,
	clock Clock,
) PaymentService {
	if refs.InvoiceMonthPolicy == "" {
		refs.InvoiceMonthPolicy = reference.PolicyMaxPlusOne
	}
	if refs.TodayPolicy == "" {
		refs.TodayPolicy = reference.PolicyFirstGap
	}
	return &paymentService{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		refs:        refs,
		clock:       clock,
	}
}

func (s *paymentService) today() domain.Date {
	return domain.DateOf(s.clock.Now())
}

func (s *paymentService) PreviewPayment(ctx context.Context, req PaymentRequest) (*allocation.Allocation, error) {
	logger.EnterMethod("paymentService.PreviewPayment", "lines", len(req.Lines))
	alloc, _, err := s.allocate(ctx, req)
	if err != nil {
		logger.ExitMethodWithError("paymentService.PreviewPayment", err)
		return nil, err
	}
	logger.ExitMethod("paymentService.PreviewPayment",
		"regularCents", alloc.TotalRegularCents, "overpaidCents", alloc.TotalOverpaidCents)
	return &alloc, nil
}

func (s *paymentService) SubmitPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	logger.EnterMethod("paymentService.SubmitPayment", "lines", len(req.Lines), "confirmed", req.Confirmed)
	paidOn := req.PaidOn
	if paidOn.IsZero() {
		paidOn = s.today()
	}

	for attempt := 1; attempt <= submitAttempts; attempt++ {
		// Balances and issued references are re-read on every attempt.
		alloc, batch, err := s.allocate(ctx, req)
		if err != nil {
			logger.ExitMethodWithError("paymentService.SubmitPayment", err)
			return nil, err
		}
		if err := alloc.RequireConfirmation(req.Confirmed); err != nil {
			logger.ExitMethodWithError("paymentService.SubmitPayment", err, "overpaidCents", alloc.TotalOverpaidCents)
			return nil, err
		}

		scope, policy := s.scopeFor(batch)
		created, err := s.paymentRepo.CreateBatch(ctx, scope.Key(), func(existing []string) ([]domain.Payment, error) {
			codes, err := reference.NextN(scope, existing, policy, alloc.RecordCount())
			if err != nil {
				return nil, err
			}
			return alloc.Records(paidOn, codes)
		})
		if errors.Is(err, domain.ErrReferenceCollision) {
			metrics.ReferenceCollisions.Inc()
			logger.Warn("Internal reference collision, re-allocating", "scope", scope.Key(), "attempt", attempt)
			continue
		}
		if err != nil {
			logger.ExitMethodWithError("paymentService.SubmitPayment", err)
			return nil, err
		}

		for _, p := range created {
			metrics.PaymentsRecorded.WithLabelValues(string(p.Status)).Inc()
		}
		metrics.OverpaidCents.Add(float64(alloc.TotalOverpaidCents))
		logger.ExitMethod("paymentService.SubmitPayment", "records", len(created), "scope", scope.Key())
		return &PaymentResult{Allocation: alloc, Payments: created}, nil
	}

	err := fmt.Errorf("submit payment: references kept colliding: %w", domain.ErrTransient)
	logger.ExitMethodWithError("paymentService.SubmitPayment", err)
	return nil, err
}

func (s *paymentService) CancelPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	logger.EnterMethod("paymentService.CancelPayment", "paymentID", paymentID)
	p, err := s.paymentRepo.Cancel(ctx, paymentID)
	if err != nil {
		logger.ExitMethodWithError("paymentService.CancelPayment", err)
		return nil, err
	}
	logger.ExitMethod("paymentService.CancelPayment", "reference", p.InternalReference)
	return p, nil
}

// NextReference previews the code the next payment in day's month would get.
// An empty policy falls back to the today policy; empty settings default in NewPaymentService.
func (s *paymentService) NextReference(ctx context.Context, policy reference.Policy, day domain.Date) (string, error) {
	if policy == "" {
		policy = s.refs.TodayPolicy
	}
	if day.IsZero() {
		day = s.today()
	}
	scope := reference.ScopeFor(s.refs.Prefix, day)
	existing, err := s.paymentRepo.ListReferences(ctx, scope.Key())
	if err != nil {
		return "", err
	}
	return reference.Next(scope, existing, policy)
}

// allocate loads every invoice named by req, derives its balance from its
// payments and runs the allocator.
func (s *paymentService) allocate(ctx context.Context, req PaymentRequest) (allocation.Allocation, allocation.Batch, error) {
	batch := allocation.Batch{ExternalReference: req.ExternalReference}
	loaded := map[string]domain.Invoice{}
	for _, line := range req.Lines {
		inv, ok := loaded[line.InvoiceID]
		if !ok {
			fetched, err := s.invoiceRepo.GetByID(ctx, line.InvoiceID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return allocation.Allocation{}, batch, domain.NewValidationError("invoices", "invoice %s does not exist", line.InvoiceID)
				}
				return allocation.Allocation{}, batch, err
			}
			payments, err := s.paymentRepo.ListByInvoice(ctx, fetched.ID)
			if err != nil {
				return allocation.Allocation{}, batch, err
			}
			inv = *fetched
			inv.CurrentBalanceCents = inv.BalanceFrom(payments)
			loaded[line.InvoiceID] = inv
		}
		batch.Lines = append(batch.Lines, allocation.Line{Invoice: inv, ProposedCents: line.AmountCents})
	}

	alloc, err := allocation.Allocate(batch)
	return alloc, batch, err
}

func (s *paymentService) scopeFor(batch allocation.Batch) (reference.Scope, reference.Policy) {
	if s.refs.NumberByInvoiceMonth && len(batch.Lines) > 0 {
		return reference.ScopeFor(s.refs.Prefix, batch.Lines[0].Invoice.IssueDate), s.refs.InvoiceMonthPolicy
	}
	return reference.ScopeFor(s.refs.Prefix, s.today()), s.refs.TodayPolicy
}
