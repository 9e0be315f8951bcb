package payments_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/fakes"
	"github.com/jhoicas/tienda-erp-api/internal/application/payments"
	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/pkg/logger"
)

type webhookFixture struct {
	store   *fakes.Store
	gateway *fakes.PaymentGateway
	locker  *fakes.Locker
	emails  *fakes.EmailQueue
	uc      *payments.WebhookUseCase
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	s := fakes.NewStore()
	s.AddSale(&entity.Sale{
		ID: "venta-1", Channel: entity.ChannelOnline, Status: entity.SaleStatusPending,
		CustomerEmail: "cliente@example.com", Total: decimal.NewFromInt(1500),
	})
	approvedAt := time.Date(2024, 5, 2, 15, 4, 0, 0, time.UTC)
	gw := fakes.NewPaymentGateway()
	gw.Payments["pay-1"] = &ports.Payment{
		ID: "pay-1", Status: ports.PaymentStatusApproved, ExternalReference: "venta-1",
		Amount: decimal.NewFromInt(1500), Currency: "ARS", PayerEmail: "pagador@example.com", ApprovedAt: &approvedAt,
	}
	f := &webhookFixture{store: s, gateway: gw, locker: fakes.NewLocker(), emails: &fakes.EmailQueue{}}
	f.uc = payments.NewWebhookUseCase(fakes.NewSaleRepo(s), gw, f.locker, f.emails, nil)
	return f
}

func paymentEvent(id string) dto.WebhookNotification {
	n := dto.WebhookNotification{Type: "payment", Action: "payment.updated"}
	n.Data.ID = id
	return n
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo de pago aprobado
// ──────────────────────────────────────────────────────────────────────────────

func TestWebhook_PagoAprobadoMarcaVentaYEncolaEmail(t *testing.T) {
	f := newWebhookFixture(t)

	require.NoError(t, f.uc.Handle(context.Background(), paymentEvent("pay-1")))

	sale := f.store.Sale("venta-1")
	assert.Equal(t, entity.SaleStatusPaid, sale.Status)
	assert.Equal(t, "pay-1", sale.PaymentID)
	require.NotNil(t, sale.PaidAt)
	assert.Equal(t, 2024, sale.PaidAt.Year())

	require.Equal(t, 1, f.emails.Count())
	assert.Equal(t, "cliente@example.com", f.emails.Sent[0].To, "el email va al cliente de la venta")
	assert.True(t, f.emails.Sent[0].Amount.Equal(decimal.NewFromInt(1500)))
	assert.True(t, f.gateway.VerifyCalled)
	assert.False(t, f.locker.Held("payment:pay-1"), "el lock debe liberarse")
}

func TestWebhook_NotificacionDuplicadaNoReenviaEmail(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()

	require.NoError(t, f.uc.Handle(ctx, paymentEvent("pay-1")))
	require.NoError(t, f.uc.Handle(ctx, paymentEvent("pay-1")))

	assert.Equal(t, 1, f.emails.Count())
	assert.Equal(t, 1, f.store.MarkPaidCalls, "el duplicado se descarta al leer la venta ya pagada")
}

func TestWebhook_NotificacionesConcurrentesUnSoloEmail(t *testing.T) {
	f := newWebhookFixture(t)
	f.locker.Fail = errors.New("redis caído")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.uc.Handle(context.Background(), paymentEvent("pay-1"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, f.emails.Count(), "la transición a Pagada ocurre una sola vez")
}

func TestWebhook_FormatoViejoTopicID(t *testing.T) {
	f := newWebhookFixture(t)

	err := f.uc.Handle(context.Background(), dto.WebhookNotification{Topic: "payment", ID: "pay-1"})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusPaid, f.store.Sale("venta-1").Status)
}

func TestWebhook_NoConfiaEnElEstadoDelPayload(t *testing.T) {
	f := newWebhookFixture(t)
	f.gateway.Payments["pay-1"].Status = ports.PaymentStatusPending

	n := paymentEvent("pay-1")
	n.Action = "payment.approved"
	require.NoError(t, f.uc.Handle(context.Background(), n))

	assert.Equal(t, entity.SaleStatusPending, f.store.Sale("venta-1").Status)
	assert.Equal(t, 0, f.emails.Count())
}

func TestWebhook_VentaEnviadaNoVuelveAPagada(t *testing.T) {
	f := newWebhookFixture(t)
	f.store.AddSale(&entity.Sale{ID: "venta-1", Channel: entity.ChannelOnline, Status: entity.SaleStatusShipped})

	require.NoError(t, f.uc.Handle(context.Background(), paymentEvent("pay-1")))
	assert.Equal(t, entity.SaleStatusShipped, f.store.Sale("venta-1").Status)
	assert.Equal(t, 0, f.emails.Count())
}

func TestWebhook_VentaCanceladaNoPasaAPagada(t *testing.T) {
	f := newWebhookFixture(t)
	f.store.AddSale(&entity.Sale{ID: "venta-1", Channel: entity.ChannelOnline, Status: entity.SaleStatusCancelled, Total: decimal.NewFromInt(1500)})

	require.NoError(t, f.uc.Handle(context.Background(), paymentEvent("pay-1")))
	assert.Equal(t, entity.SaleStatusCancelled, f.store.Sale("venta-1").Status)
	assert.Equal(t, 0, f.emails.Count())
}

func TestWebhook_CarritoAbandonadoPasaAPagada(t *testing.T) {
	f := newWebhookFixture(t)
	f.store.AddSale(&entity.Sale{ID: "venta-1", Channel: entity.ChannelOnline, Status: entity.SaleStatusAbandoned, Total: decimal.NewFromInt(1500)})

	require.NoError(t, f.uc.Handle(context.Background(), paymentEvent("pay-1")))
	assert.Equal(t, entity.SaleStatusPaid, f.store.Sale("venta-1").Status)
	assert.Equal(t, 1, f.emails.Count())
}

func TestWebhook_ImporteDistintoDelTotalSeRegistra(t *testing.T) {
	f := newWebhookFixture(t)
	f.gateway.Payments["pay-1"].Amount = decimal.NewFromInt(1000)
	var buf bytes.Buffer
	uc := payments.NewWebhookUseCase(fakes.NewSaleRepo(f.store), f.gateway, f.locker, f.emails, logger.NewWithWriter(&buf, "info"))

	require.NoError(t, uc.Handle(context.Background(), paymentEvent("pay-1")))
	assert.Contains(t, buf.String(), "el importe pagado no coincide con el total de la venta")
	assert.Contains(t, buf.String(), `"sale_total":"1500"`)
}

// ──────────────────────────────────────────────────────────────────────────────
// Errores reconocidos
// ──────────────────────────────────────────────────────────────────────────────

func TestWebhook_EventoDesconocido(t *testing.T) {
	f := newWebhookFixture(t)

	err := f.uc.Handle(context.Background(), dto.WebhookNotification{Type: "merchant_order", ID: "mo-1"})
	assert.True(t, errors.Is(err, domain.ErrUnknownWebhookEvent))
	assert.True(t, payments.IsAcknowledged(err))
	assert.Equal(t, 0, f.gateway.GetCalls, "no debe consultar al proveedor")
}

func TestWebhook_FallaLaConsultaDelPago(t *testing.T) {
	f := newWebhookFixture(t)
	f.gateway.GetErr = errors.New("timeout")

	err := f.uc.Handle(context.Background(), paymentEvent("pay-1"))
	assert.True(t, errors.Is(err, domain.ErrPaymentVerificationFailed))
	assert.True(t, payments.IsAcknowledged(err))
	assert.Equal(t, entity.SaleStatusPending, f.store.Sale("venta-1").Status)
}

func TestWebhook_FirmaInvalida(t *testing.T) {
	f := newWebhookFixture(t)
	f.gateway.SignatureErr = errors.New("hmac no coincide")

	err := f.uc.Handle(context.Background(), paymentEvent("pay-1"))
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	assert.Equal(t, 0, f.gateway.GetCalls)
	assert.Equal(t, entity.SaleStatusPending, f.store.Sale("venta-1").Status)
}

func TestWebhook_FallaDelLockNoBloqueaElProceso(t *testing.T) {
	f := newWebhookFixture(t)
	f.locker.Fail = errors.New("redis caído")

	require.NoError(t, f.uc.Handle(context.Background(), paymentEvent("pay-1")))
	assert.Equal(t, entity.SaleStatusPaid, f.store.Sale("venta-1").Status)
}

func TestWebhook_FallaAlEncolarEmailNoFallaElWebhook(t *testing.T) {
	f := newWebhookFixture(t)
	f.emails.Err = errors.New("cola llena")

	require.NoError(t, f.uc.Handle(context.Background(), paymentEvent("pay-1")))
	assert.Equal(t, entity.SaleStatusPaid, f.store.Sale("venta-1").Status)
}
