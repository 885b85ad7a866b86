package dto

// RequestDocumentRequest asks for a printable artifact of an order.
type RequestDocumentRequest struct {
	Kind string `json:"kind" validate:"required,oneof=quote delivery_note"`
	// EmailTo, when present, mails the rendered PDF to the customer.
	EmailTo *string `json:"email_to" validate:"omitempty,email"`
}

type DocumentResponse struct {
	ID        string  `json:"id"`
	OrderCode string  `json:"order_code"`
	Kind      string  `json:"kind"`
	Status    string  `json:"status"`
	PDFPath   *string `json:"pdf_path,omitempty"`
	LastError *string `json:"last_error,omitempty"`
	CreatedAt string  `json:"created_at"`
}
