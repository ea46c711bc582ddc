package handler

import (
	"net/http"
	"strconv"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
	"github.com/boddenberg/retail-ledger-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Read side
// ============================================================

func profileHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/profile")
		defer span.End()

		profile, err := svc.Profile(ctx, HolderFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// statementHandler serves GET /v1/statements/{ownerId}?from=YYYY-MM-DD&to=YYYY-MM-DD
func statementHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/statements/{ownerId}")
		defer span.End()

		ownerID := chi.URLParam(r, "ownerId")
		q := r.URL.Query()
		log, err := svc.Statement(ctx, HolderFromContext(ctx), ownerID, q.Get("from"), q.Get("to"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ownerId":   ownerID,
			"movements": log,
			"total":     log.Sum(),
		})
	}
}

func scheduleHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/loans/{loanId}/schedule")
		defer span.End()

		loanID := chi.URLParam(r, "loanId")
		sched, err := svc.Schedule(ctx, HolderFromContext(ctx), loanID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"loanId":       loanID,
			"installments": sched,
		})
	}
}

// ============================================================
// Mutations
// ============================================================

func transferHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transfers")
		defer span.End()

		var req domain.TransferRequest
		if err := decodeBody(w, r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		resp, err := svc.Transfer(ctx, HolderFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func cardPaymentHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/cards/{cardId}/payments")
		defer span.End()

		cardID := chi.URLParam(r, "cardId")
		span.SetAttributes(attribute.String("card.id", cardID))

		var req domain.CardPaymentRequest
		if err := decodeBody(w, r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		resp, err := svc.PayCreditCard(ctx, HolderFromContext(ctx), cardID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func cardMovementHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/cards/{cardId}/movements")
		defer span.End()

		cardID := chi.URLParam(r, "cardId")
		span.SetAttributes(attribute.String("card.id", cardID))

		var req domain.CardMovementRequest
		if err := decodeBody(w, r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		resp, err := svc.RecordCardMovement(ctx, HolderFromContext(ctx), cardID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func installmentPaymentHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/loans/{loanId}/installments/{seq}/pay")
		defer span.End()

		loanID := chi.URLParam(r, "loanId")
		seq, err := strconv.Atoi(chi.URLParam(r, "seq"))
		if err != nil || seq < 1 {
			handleServiceError(w, &domain.ErrValidation{Field: "seq", Message: "installment sequence must be a positive integer"}, logger)
			return
		}

		var req domain.InstallmentPaymentRequest
		if err := decodeBody(w, r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		resp, err := svc.PayInstallment(ctx, HolderFromContext(ctx), loanID, seq, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func extraordinaryPaymentHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/loans/{loanId}/payments")
		defer span.End()

		loanID := chi.URLParam(r, "loanId")

		var req domain.ExtraordinaryPaymentRequest
		if err := decodeBody(w, r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		resp, err := svc.PayExtraordinary(ctx, HolderFromContext(ctx), loanID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
