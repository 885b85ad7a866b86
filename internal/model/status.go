package model

// Status is the production pipeline stage of an order.
// Orders only move forward:
//
//	quote → design → production → delivery → debt → done
//
// Every stage except done has exactly one successor. The final hop
// debt → done is never taken by a plain advance — it happens only when a
// payment settles the remaining debt (see OrderService.RecordPayment).
type Status string

const (
	StatusQuote      Status = "quote"
	StatusDesign     Status = "design"
	StatusProduction Status = "production"
	StatusDelivery   Status = "delivery"
	StatusDebt       Status = "debt"
	StatusDone       Status = "done"
)

var statusSuccessor = map[Status]Status{
	StatusQuote:      StatusDesign,
	StatusDesign:     StatusProduction,
	StatusProduction: StatusDelivery,
	StatusDelivery:   StatusDebt,
}

// Next returns the successor stage for a plain advance. The second return
// is false for debt (settlement required) and done (terminal).
func (s Status) Next() (Status, bool) {
	next, ok := statusSuccessor[s]
	return next, ok
}

// Terminal reports whether the order has completed the pipeline.
func (s Status) Terminal() bool { return s == StatusDone }

// AcceptsPayment reports whether payments may be recorded at this stage.
// Done is included so a debt reopened by editing a settled order can still
// be collected; with nothing owed the overpayment guard rejects the money.
func (s Status) AcceptsPayment() bool {
	return s == StatusDelivery || s == StatusDebt || s == StatusDone
}

// Deletable reports whether the order may still be removed. Anything past
// quote represents committed production work and must stay on record.
func (s Status) Deletable() bool { return s == StatusQuote }

// PaymentStatus tracks how much of the order total has been received.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partially_paid"
	PaymentPaid    PaymentStatus = "paid"
)

// CommissionStatus is the settlement state of the salesperson commission,
// orthogonal to the pipeline — it can be toggled at any stage.
type CommissionStatus string

const (
	CommissionNotPaid CommissionStatus = "not_paid"
	CommissionPaid    CommissionStatus = "paid"
)
