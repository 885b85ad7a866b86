package service

import "errors"

// Sentinel errors shared by the services. Handlers map these onto HTTP
// status codes with errors.Is.
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrTerminalStatus     = errors.New("order has completed the pipeline")
	ErrSettlementRequired = errors.New("order leaves debt only when the remaining balance is paid")
	ErrOrderModified      = errors.New("order was changed by another operator, reload and retry")
	ErrOrderNotDeletable  = errors.New("only quotes can be deleted")
	ErrPaymentNotAllowed  = errors.New("payments are accepted only from delivery onwards")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrOverpayment        = errors.New("payment exceeds the remaining debt")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrDocumentNotReady   = errors.New("document has not been rendered yet")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
