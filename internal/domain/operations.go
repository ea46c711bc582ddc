package domain

// ============================================================
// Ledger operation payloads
// ============================================================

// TransferRequest is the body for POST /v1/transfers.
type TransferRequest struct {
	SourceAccountID          string      `json:"sourceAccountId"`
	DestinationAccountNumber string      `json:"destinationAccountNumber"`
	Amount                   AmountInput `json:"amount"`
	Memo                     string      `json:"memo" validate:"max=140"`
}

// CardPaymentRequest is the body for POST /v1/cards/{cardId}/payments.
type CardPaymentRequest struct {
	Amount        AmountInput `json:"amount"`
	FromAccountID string      `json:"fromAccountId,omitempty"`
}

// CardMovementRequest is the body for POST /v1/cards/{cardId}/movements.
// Date is optional, formatted as YYYY-MM-DD.
type CardMovementRequest struct {
	Date            string      `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Description     string      `json:"description" validate:"required,max=140"`
	Amount          AmountInput `json:"amount"`
	Kind            string      `json:"kind" validate:"required"`
	LinkedAccountID string      `json:"linkedAccountId,omitempty"`
}

// InstallmentPaymentRequest is the body for POST /v1/loans/{loanId}/installments/{seq}/pay.
type InstallmentPaymentRequest struct {
	FromAccountID string `json:"fromAccountId"`
}

// ExtraordinaryPaymentRequest is the body for POST /v1/loans/{loanId}/payments.
type ExtraordinaryPaymentRequest struct {
	FromAccountID string      `json:"fromAccountId"`
	Amount        AmountInput `json:"amount"`
}

// OperationResponse is returned by every successful mutation. Only the
// entities the operation touched are populated.
type OperationResponse struct {
	OperationID string    `json:"operationId"`
	Operation   string    `json:"operation"`
	External    bool      `json:"external,omitempty"`
	Accounts    []Account `json:"accounts,omitempty"`
	Cards       []Card    `json:"cards,omitempty"`
	Loan        *Loan     `json:"loan,omitempty"`
}

// ScheduleEntry is an installment with its derived status.
type ScheduleEntry struct {
	LoanInstallment
	EffectiveStatus InstallmentStatus `json:"effective_status"`
}
