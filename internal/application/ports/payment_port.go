package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pago del proveedor que interesan a la aplicación.
const (
	PaymentStatusApproved = "approved"
	PaymentStatusPending  = "pending"
	PaymentStatusRejected = "rejected"
)

// CheckoutItem línea enviada al checkout.
type CheckoutItem struct {
	ID        string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// CheckoutRequest datos para crear la sesión de pago.
// ExternalReference es el id de la venta: vuelve intacto en el pago.
type CheckoutRequest struct {
	ExternalReference string
	PayerEmail        string
	PayerName         string
	Items             []CheckoutItem
	IdempotencyKey    string
}

// CheckoutSession sesión creada por el proveedor.
type CheckoutSession struct {
	PreferenceID string
	InitPoint    string
}

// Payment estado autoritativo de un pago, leído del proveedor.
type Payment struct {
	ID                string
	Status            string
	StatusDetail      string
	ExternalReference string
	Amount            decimal.Decimal
	Currency          string
	PayerEmail        string
	ApprovedAt        *time.Time
}

// PaymentGateway puerto hacia el proveedor de pagos.
type PaymentGateway interface {
	CreatePreference(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
	// VerifyNotification valida la firma de la notificación. Sin secreto configurado, siempre nil.
	VerifyNotification(signature, requestID, resourceID string) error
}
