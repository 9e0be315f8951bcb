package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
	"github.com/jhoicas/tienda-erp-api/pkg/logger"
)

const defaultLockTTL = 30 * time.Second

// WebhookUseCase procesa las notificaciones del proveedor de pagos.
// El estado del pago se lee siempre del proveedor; el cuerpo de la notificación solo aporta el id.
type WebhookUseCase struct {
	saleRepo repository.SaleRepository
	gateway  ports.PaymentGateway
	locker   ports.Locker
	emails   ports.EmailQueue
	log      *logger.Logger
	lockTTL  time.Duration
	now      func() time.Time
}

// NewWebhookUseCase construye el caso de uso. locker y emails son opcionales.
func NewWebhookUseCase(
	saleRepo repository.SaleRepository,
	gateway ports.PaymentGateway,
	locker ports.Locker,
	emails ports.EmailQueue,
	log *logger.Logger,
) *WebhookUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &WebhookUseCase{
		saleRepo: saleRepo,
		gateway:  gateway,
		locker:   locker,
		emails:   emails,
		log:      log.Component("payments-webhook"),
		lockTTL:  defaultLockTTL,
		now:      time.Now,
	}
}

// Handle procesa una notificación. Devuelve:
//   - domain.ErrUnknownWebhookEvent si no es un evento de pago.
//   - domain.ErrUnauthorized si la firma no valida.
//   - domain.ErrPaymentVerificationFailed si no se pudo consultar el pago.
//
// El handler HTTP responde 200 en todos los casos; estos errores solo se registran.
func (uc *WebhookUseCase) Handle(ctx context.Context, n dto.WebhookNotification) error {
	eventType := n.EventType()
	paymentID := n.ResourceID()
	if eventType != "payment" || paymentID == "" {
		uc.log.Info().Str("event_type", eventType).Str("resource_id", paymentID).Msg("notificación ignorada")
		return fmt.Errorf("%w: %q", domain.ErrUnknownWebhookEvent, eventType)
	}

	if err := uc.gateway.VerifyNotification(n.Signature, n.RequestID, paymentID); err != nil {
		uc.log.Warn().Err(err).Str("payment_id", paymentID).Msg("firma de notificación inválida")
		return fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	if uc.locker != nil {
		release, err := uc.locker.Acquire(ctx, "payment:"+paymentID, uc.lockTTL)
		if err != nil {
			// MarkPaid es idempotente: sin lock se procesa igual.
			uc.log.Warn().Err(err).Str("payment_id", paymentID).Msg("no se obtuvo el lock, se procesa sin serializar")
		} else {
			defer release()
		}
	}

	payment, err := uc.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		uc.log.Error().Err(err).Str("payment_id", paymentID).Msg("no se pudo verificar el pago")
		return fmt.Errorf("%w: %v", domain.ErrPaymentVerificationFailed, err)
	}

	log := uc.log.Zerolog().With().
		Str("payment_id", payment.ID).
		Str("sale_id", payment.ExternalReference).
		Str("status", payment.Status).
		Logger()

	if payment.Status != ports.PaymentStatusApproved {
		log.Info().Str("status_detail", payment.StatusDetail).Msg("pago no aprobado, sin cambios")
		return nil
	}
	if payment.ExternalReference == "" {
		log.Warn().Msg("pago aprobado sin external_reference")
		return nil
	}

	sale, err := uc.saleRepo.GetByID(ctx, payment.ExternalReference)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Error().Err(err).Msg("error leyendo la venta del pago")
		return err
	}
	if sale == nil {
		log.Warn().Msg("pago aprobado para una venta inexistente")
		return nil
	}
	if !sale.Total.Equal(payment.Amount) {
		log.Warn().
			Str("amount", payment.Amount.String()).
			Str("sale_total", sale.Total.String()).
			Msg("el importe pagado no coincide con el total de la venta")
	}
	if !entity.PayableStatus(sale.Status) {
		if sale.Status == entity.SaleStatusCancelled {
			log.Warn().Msg("pago aprobado sobre una venta cancelada, requiere revisión manual")
		} else {
			log.Info().Str("sale_status", sale.Status).Msg("la venta ya no admite el pago, notificación ignorada")
		}
		return nil
	}

	paidAt := uc.now()
	if payment.ApprovedAt != nil {
		paidAt = *payment.ApprovedAt
	}
	changed, err := uc.saleRepo.MarkPaid(ctx, payment.ExternalReference, payment.ID, paidAt)
	if err != nil {
		log.Error().Err(err).Msg("error marcando la venta como pagada")
		return err
	}
	if !changed {
		log.Info().Msg("venta ya pagada, notificación duplicada")
		return nil
	}
	log.Info().Msg("venta marcada como pagada")

	uc.notify(ctx, payment, paidAt)
	return nil
}

func (uc *WebhookUseCase) notify(ctx context.Context, p *ports.Payment, paidAt time.Time) {
	if uc.emails == nil {
		return
	}
	email := ports.PaymentApprovedEmail{
		To:         p.PayerEmail,
		SaleID:     p.ExternalReference,
		PaymentID:  p.ID,
		Amount:     p.Amount,
		Currency:   p.Currency,
		PayerEmail: p.PayerEmail,
		ApprovedAt: paidAt,
	}
	if sale, err := uc.saleRepo.GetByID(ctx, p.ExternalReference); err == nil && sale != nil && sale.CustomerEmail != "" {
		email.To = sale.CustomerEmail
	}
	if err := uc.emails.EnqueuePaymentApproved(ctx, email); err != nil {
		uc.log.Error().Err(err).Str("sale_id", p.ExternalReference).Msg("no se pudo encolar el email de pago aprobado")
	}
}

// IsAcknowledged informa si el error de Handle debe responderse igualmente con 200.
func IsAcknowledged(err error) bool {
	return err == nil ||
		errors.Is(err, domain.ErrUnknownWebhookEvent) ||
		errors.Is(err, domain.ErrPaymentVerificationFailed) ||
		errors.Is(err, domain.ErrUnauthorized)
}
