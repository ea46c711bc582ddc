// Package service provides the use-case layer between the HTTP handlers and
// the session-held ledger. LedgerService turns request payloads into engine
// commands and engine results into response payloads.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
	"github.com/boddenberg/retail-ledger-go/internal/infra/observability"
	"github.com/boddenberg/retail-ledger-go/internal/ledger"
	"github.com/boddenberg/retail-ledger-go/internal/session"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var ledgerTracer = otel.Tracer("service/ledger")

// Operations lists every mutation the service exposes, in display order.
var Operations = []string{
	ledger.OpTransfer,
	ledger.OpPayCreditCard,
	ledger.OpRecordCardMovement,
	ledger.OpPayInstallment,
	ledger.OpPayExtraordinary,
}

// LedgerService runs ledger operations against a session's aggregate.
type LedgerService struct {
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(metrics *observability.Metrics, logger *zap.Logger) *LedgerService {
	return &LedgerService{metrics: metrics, logger: logger}
}

// ============================================================
// Read side
// ============================================================

func (s *LedgerService) Profile(ctx context.Context, h *session.Holder) (*domain.ClientProfile, error) {
	_, span := ledgerTracer.Start(ctx, "LedgerService.Profile")
	defer span.End()

	return h.Profile()
}

// Statement lists an account's or card's movements. from and to are optional
// YYYY-MM-DD bounds, both inclusive.
func (s *LedgerService) Statement(ctx context.Context, h *session.Holder, ownerID, from, to string) (domain.MovementLog, error) {
	_, span := ledgerTracer.Start(ctx, "LedgerService.Statement")
	defer span.End()
	span.SetAttributes(attribute.String("owner.id", ownerID))

	fromT, err := parseOptionalDate("from", from)
	if err != nil {
		return nil, err
	}
	toT, err := parseOptionalDate("to", to)
	if err != nil {
		return nil, err
	}
	if !fromT.IsZero() && !toT.IsZero() && toT.Before(fromT) {
		return nil, &domain.ErrValidation{Field: "to", Message: "must not be before from"}
	}

	log, err := h.Statement(ownerID, fromT, toT)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = domain.MovementLog{}
	}
	return log, nil
}

func (s *LedgerService) Schedule(ctx context.Context, h *session.Holder, loanID string) ([]domain.ScheduleEntry, error) {
	_, span := ledgerTracer.Start(ctx, "LedgerService.Schedule")
	defer span.End()
	span.SetAttributes(attribute.String("loan.id", loanID))

	return h.Schedule(loanID)
}

// Metrics returns the operation counters for GET /v1/metrics/ledger.
func (s *LedgerService) Metrics() *domain.LedgerMetrics {
	return s.metrics.Snapshot(Operations)
}

// ============================================================
// Transfers: POST /v1/transfers
// ============================================================

func (s *LedgerService) Transfer(ctx context.Context, h *session.Holder, req *domain.TransferRequest) (*domain.OperationResponse, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.Transfer")
	defer span.End()
	start := time.Now()

	if req.SourceAccountID == "" {
		err := &domain.ErrValidation{Field: "source_account_id", Message: domain.MsgNoSourceAccount}
		return nil, s.rejected(ctx, span, h, ledger.OpTransfer, start, err)
	}
	amount, err := domain.ParseAmount("amount", string(req.Amount))
	if err != nil {
		return nil, s.rejected(ctx, span, h, ledger.OpTransfer, start, err)
	}

	res, err := h.Transfer(ledger.Transfer{
		SourceAccountID:          req.SourceAccountID,
		DestinationAccountNumber: req.DestinationAccountNumber,
		Amount:                   amount,
		Memo:                     req.Memo,
	})
	if err != nil {
		return nil, s.rejected(ctx, span, h, ledger.OpTransfer, start, err)
	}

	out := s.succeeded(ctx, h, ledger.OpTransfer, start,
		zap.String("source_account_id", req.SourceAccountID),
		zap.String("destination", req.DestinationAccountNumber),
		zap.String("amount", amount.StringFixed(2)),
		zap.Bool("external", res.External),
	)
	out.External = res.External
	out.Accounts = append(out.Accounts, res.Source)
	if res.Destination != nil {
		out.Accounts = append(out.Accounts, *res.Destination)
	}
	return out, nil
}

// ============================================================
// Cards: POST /v1/cards/{cardId}/payments, /movements
// ============================================================

func (s *LedgerService) PayCreditCard(ctx context.Context, h *session.Holder, cardID string, req *domain.CardPaymentRequest) (*domain.OperationResponse, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.PayCreditCard")
	defer span.End()
	span.SetAttributes(attribute.String("card.id", cardID))
	start := time.Now()

	amount, err := domain.ParseAmount("amount", string(req.Amount))
	if err != nil {
		return nil, s.rejected(ctx, span, h, ledger.OpPayCreditCard, start, err)
	}

	res, err := h.PayCreditCard(ledger.CardPayment{CardID: cardID, Amount: amount, FromAccountID: req.FromAccountID})
	if err != nil {
		return nil, s.rejected(ctx, span, h, ledger.OpPayCreditCard, start, err)
	}

	out := s.succeeded(ctx, h, ledger.OpPayCreditCard, start,
		zap.String("card_id", cardID),
		zap.String("amount", amount.StringFixed(2)),
	)
	out.Cards = []domain.Card{res.Card}
	if res.Account != nil {
		out.Accounts = []domain.Account{*res.Account}
	}
	return out, nil
}

func (s *LedgerService) RecordCardMovement(ctx context.Context, h *session.Holder, cardID string, req *domain.CardMovementRequest) (*domain.OperationResponse, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.RecordCardMovement")
	defer span.End()
	span.SetAttributes(attribute.String("card.id", cardID))
	start := time.Now()

	amount, err := domain.ParseSignedAmount("amount", string(req.Amount))
	if err != nil {
		return nil, s.rejected(ctx, span, h, ledger.OpRecordCardMovement, start, err)
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		return nil, s.rejected(ctx, span, h, ledger.OpRecordCardMovement, start, err)
	}

	res, err := h.RecordCardMovement(ledger.CardMovement{
		CardID:          cardID,
		Date:            date,
		Description:     req.Description,
		Amount:          amount,
		Kind:            req.Kind,
		LinkedAccountID: req.LinkedAccountID,
	})
	if err != nil {
		return nil, s.rejected(ctx, span, h, ledger.OpRecordCardMovement, start, err)
	}

	out := s.succeeded(ctx, h, ledger.OpRecordCardMovement, start,
		zap.String("card_id", cardID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("kind", req.Kind),
	)
	out.Cards = []domain.Card{res.Card}
	if res.Account != nil {
		out.Accounts = []domain.Account{*res.Account}
	}
	return out, nil
}

// ============================================================
// Loans: POST /v1/loans/{loanId}/installments/{seq}/pay, /payments
// ============================================================

func (s *LedgerService) PayInstallment(ctx context.Context, h *session.Holder, loanID string, seq int, req *domain.InstallmentPaymentRequest) (*domain.OperationResponse, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.PayInstallment")
	defer span.End()
	span.SetAttributes(attribute.String("loan.id", loanID), attribute.Int("installment.sequence", seq))
	start := time.Now()

	res, err := h.PayInstallment(ledger.InstallmentPayment{LoanID: loanID, Sequence: seq, FromAccountID: req.FromAccountID})
	if err != nil {
		return nil, s.rejected(ctx, span, h, ledger.OpPayInstallment, start, err)
	}

	out := s.succeeded(ctx, h, ledger.OpPayInstallment, start,
		zap.String("loan_id", loanID),
		zap.Int("sequence", seq),
		zap.String("account_id", req.FromAccountID),
	)
	out.Accounts = []domain.Account{res.Account}
	out.Loan = &res.Loan
	return out, nil
}

func (s *LedgerService) PayExtraordinary(ctx context.Context, h *session.Holder, loanID string, req *domain.ExtraordinaryPaymentRequest) (*domain.OperationResponse, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.PayExtraordinary")
	defer span.End()
	span.SetAttributes(attribute.String("loan.id", loanID))
	start := time.Now()

	amount, err := domain.ParseAmount("amount", string(req.Amount))
	if err != nil {
		return nil, s.rejected(ctx, span, h, ledger.OpPayExtraordinary, start, err)
	}

	res, err := h.PayExtraordinary(ledger.ExtraordinaryPayment{LoanID: loanID, FromAccountID: req.FromAccountID, Amount: amount})
	if err != nil {
		return nil, s.rejected(ctx, span, h, ledger.OpPayExtraordinary, start, err)
	}

	out := s.succeeded(ctx, h, ledger.OpPayExtraordinary, start,
		zap.String("loan_id", loanID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("account_id", req.FromAccountID),
	)
	out.Accounts = []domain.Account{res.Account}
	out.Loan = &res.Loan
	return out, nil
}

// ============================================================
// Internal helpers
// ============================================================

func (s *LedgerService) succeeded(ctx context.Context, h *session.Holder, op string, start time.Time, fields ...zap.Field) *domain.OperationResponse {
	s.metrics.RecordOperation(op, observability.OutcomeSuccess, time.Since(start))

	id := uuid.NewString()
	fields = append(fields,
		zap.String("operation", op),
		zap.String("operation_id", id),
		zap.String("client_id", h.ClientID()),
		zap.String("session_id", h.ID()),
	)
	observability.WithTrace(ctx, s.logger).Info("ledger operation applied", fields...)

	return &domain.OperationResponse{OperationID: id, Operation: op}
}

func (s *LedgerService) rejected(ctx context.Context, span trace.Span, h *session.Holder, op string, start time.Time, err error) error {
	s.metrics.RecordOperation(op, observability.OutcomeRejected, time.Since(start))
	span.SetStatus(codes.Error, err.Error())

	log := observability.WithTrace(ctx, s.logger)
	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("client_id", h.ClientID()),
		zap.String("session_id", h.ID()),
		zap.Error(err),
	}
	var unauthorized *domain.ErrUnauthorized
	if errors.As(err, &unauthorized) {
		log.Info("ledger operation on closed session", fields...)
		return err
	}
	log.Warn("ledger operation rejected", fields...)
	return err
}

func parseOptionalDate(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := domain.ParseDate(raw)
	if err != nil {
		return time.Time{}, &domain.ErrValidation{Field: field, Message: "expected YYYY-MM-DD"}
	}
	return t, nil
}
