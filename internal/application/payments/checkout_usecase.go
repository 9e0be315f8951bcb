package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
	"github.com/jhoicas/tienda-erp-api/pkg/logger"
)

// CheckoutUseCase crea la preferencia de pago de una venta online.
type CheckoutUseCase struct {
	saleRepo repository.SaleRepository
	gateway  ports.PaymentGateway
	log      *logger.Logger
}

// NewCheckoutUseCase construye el caso de uso.
func NewCheckoutUseCase(saleRepo repository.SaleRepository, gateway ports.PaymentGateway, log *logger.Logger) *CheckoutUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CheckoutUseCase{saleRepo: saleRepo, gateway: gateway, log: log.Component("checkout")}
}

// Execute arma la preferencia con las líneas de la venta y external_reference = id de venta.
// Solo ventas Pendiente pueden ir al checkout.
func (uc *CheckoutUseCase) Execute(ctx context.Context, saleID string) (*dto.CheckoutResponse, error) {
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if sale.Status != entity.SaleStatusPending {
		return nil, fmt.Errorf("%w: la venta está en estado %q", domain.ErrConflict, sale.Status)
	}
	if len(sale.Items) == 0 {
		return nil, fmt.Errorf("%w: la venta no tiene ítems", domain.ErrInvalidInput)
	}
	if !sale.Total.IsPositive() {
		return nil, fmt.Errorf("%w: la venta no tiene importe a cobrar", domain.ErrInvalidInput)
	}

	req := ports.CheckoutRequest{
		ExternalReference: sale.ID,
		PayerEmail:        sale.CustomerEmail,
		PayerName:         sale.CustomerName,
		IdempotencyKey:    uuid.New().String(),
		Items:             checkoutItems(sale),
	}
	session, err := uc.gateway.CreatePreference(ctx, req)
	if err != nil {
		uc.log.Error().Err(err).Str("sale_id", sale.ID).Msg("no se pudo crear la preferencia de pago")
		return nil, err
	}
	if err := uc.saleRepo.SetPreference(ctx, sale.ID, session.PreferenceID); err != nil {
		return nil, err
	}

	uc.log.Info().Str("sale_id", sale.ID).Str("preference_id", session.PreferenceID).Msg("checkout creado")
	return &dto.CheckoutResponse{SaleID: sale.ID, PreferenceID: session.PreferenceID, InitPoint: session.InitPoint}, nil
}

// checkoutItems arma los ítems de la preferencia; su suma es siempre sale.Total.
// Las líneas del mismo producto y precio se agrupan. Un grupo con cantidad fraccionaria
// viaja como un ítem de cantidad 1 por el importe de la línea, y el impuesto como ítem propio.
// Si el redondeo por línea no coincide con el total de la venta se cobra un único ítem por el total.
func checkoutItems(sale *entity.Sale) []ports.CheckoutItem {
	type group struct {
		id, title string
		qty       decimal.Decimal
		price     decimal.Decimal
	}
	var groups []*group
	index := map[string]*group{}
	for _, it := range sale.Items {
		key := it.ProductID + "|" + it.UnitPrice.String()
		if g, ok := index[key]; ok {
			g.qty = g.qty.Add(it.Quantity)
			continue
		}
		title := it.ProductName
		if title == "" {
			title = it.ProductID
		}
		g := &group{id: it.ProductID, title: title, qty: it.Quantity, price: it.UnitPrice}
		index[key] = g
		groups = append(groups, g)
	}

	out := make([]ports.CheckoutItem, 0, len(groups)+1)
	sum := decimal.Zero
	for _, g := range groups {
		item := ports.CheckoutItem{ID: g.id, Title: g.title, Quantity: 1}
		if g.qty.IsInteger() {
			item.Quantity = int(g.qty.IntPart())
			item.UnitPrice = g.price
		} else {
			item.Title = fmt.Sprintf("%s x %s", g.title, g.qty.String())
			item.UnitPrice = g.qty.Mul(g.price).Round(2)
		}
		sum = sum.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		out = append(out, item)
	}
	if sale.Tax.IsPositive() {
		out = append(out, ports.CheckoutItem{ID: "impuestos", Title: "Impuestos", Quantity: 1, UnitPrice: sale.Tax})
		sum = sum.Add(sale.Tax)
	}
	if !sum.Equal(sale.Total) {
		return []ports.CheckoutItem{{ID: sale.ID, Title: "Pedido " + sale.ID, Quantity: 1, UnitPrice: sale.Total}}
	}
	return out
}
