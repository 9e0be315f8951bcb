package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/inventory"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
	"github.com/jhoicas/tienda-erp-api/pkg/logger"
)

// CreateSaleUseCase registra una venta: resuelve precios, asigna lotes por FEFO y
// persiste cabecera, ítems y descuentos de stock en una sola transacción.
type CreateSaleUseCase struct {
	tx            SalesTxRunner
	productRepo   repository.ProductRepository
	priceListRepo repository.PriceListRepository
	log           *logger.Logger
	now           func() time.Time
}

// NewCreateSaleUseCase construye el caso de uso.
func NewCreateSaleUseCase(
	tx SalesTxRunner,
	productRepo repository.ProductRepository,
	priceListRepo repository.PriceListRepository,
	log *logger.Logger,
) *CreateSaleUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CreateSaleUseCase{
		tx:            tx,
		productRepo:   productRepo,
		priceListRepo: priceListRepo,
		log:           log.Component("sales"),
		now:           time.Now,
	}
}

// Escalas de sale_items: quantity numeric(14,3), unit_price numeric(14,2).
const (
	quantityScale = 3
	priceScale    = 2
)

// Execute valida la venta y la persiste. Errores posibles:
//   - domain.ErrInvalidInput: cantidades, precios fuera de escala, tipo, canal o estado inválidos.
//   - domain.ErrNotFound: producto o lista de precios inexistente.
//   - *domain.InsufficientStockError: no alcanza el stock de algún producto.
//   - *domain.AllocationIntegrityError: un lote cambió entre la lectura y el descuento.
func (uc *CreateSaleUseCase) Execute(ctx context.Context, userID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	header, err := uc.buildHeader(userID, in)
	if err != nil {
		return nil, err
	}

	productIDs := make([]string, 0, len(in.Items))
	seen := make(map[string]bool, len(in.Items))
	for _, it := range in.Items {
		if !it.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: cantidad debe ser mayor a cero", domain.ErrInvalidInput)
		}
		if !it.Quantity.Equal(it.Quantity.Round(quantityScale)) {
			return nil, fmt.Errorf("%w: cantidad admite hasta %d decimales", domain.ErrInvalidInput, quantityScale)
		}
		if it.UnitPrice != nil && !it.UnitPrice.Equal(it.UnitPrice.Round(priceScale)) {
			return nil, fmt.Errorf("%w: precio unitario admite hasta %d decimales", domain.ErrInvalidInput, priceScale)
		}
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			productIDs = append(productIDs, it.ProductID)
		}
	}

	products, err := uc.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range productIDs {
		p, ok := products[id]
		if !ok {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		if !p.Active {
			return nil, fmt.Errorf("%w: el producto %q está inactivo", domain.ErrInvalidInput, p.Name)
		}
	}

	overrides, err := uc.priceOverrides(ctx, in.PriceListID)
	if err != nil {
		return nil, err
	}

	lines := make([]inventory.AllocationRequest, 0, len(in.Items))
	subtotal := decimal.Zero
	for _, it := range in.Items {
		p := products[it.ProductID]
		price := resolveUnitPrice(p, header.SaleType, it.UnitPrice, overrides)
		lines = append(lines, inventory.AllocationRequest{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   price,
		})
		subtotal = subtotal.Add(it.Quantity.Mul(price))
	}
	header.Subtotal = subtotal.Round(2)
	header.Tax = header.Subtotal.Mul(in.TaxRate).Round(2)
	header.Total = header.Subtotal.Add(header.Tax)

	err = uc.tx.RunSales(ctx, func(lotRepo repository.LotRepository, saleRepo repository.SaleRepository) error {
		lots, err := lotRepo.ListAvailableForUpdate(ctx, productIDs)
		if err != nil {
			return err
		}
		allocs, err := inventory.AllocateCart(lines, snapshotsByProduct(lots))
		if err != nil {
			return err
		}

		if err := saleRepo.Create(ctx, header); err != nil {
			return err
		}
		items := make([]entity.SaleItem, len(allocs))
		for i, a := range allocs {
			items[i] = entity.SaleItem{
				ID:          uuid.New().String(),
				SaleID:      header.ID,
				ProductID:   a.ProductID,
				ProductName: products[a.ProductID].Name,
				LotID:       a.LotID,
				Quantity:    a.Quantity,
				UnitPrice:   a.UnitPrice,
				Position:    i,
			}
		}
		if err := saleRepo.AddItems(ctx, header.ID, items); err != nil {
			return err
		}
		for _, a := range allocs {
			ok, err := lotRepo.Decrement(ctx, a.LotID, a.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &domain.AllocationIntegrityError{ProductID: a.ProductID, LotID: a.LotID}
			}
		}
		header.Items = items
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("channel", header.Channel).Int("lines", len(lines)).Msg("venta rechazada")
		return nil, err
	}

	uc.log.Info().
		Str("sale_id", header.ID).
		Str("channel", header.Channel).
		Str("total", header.Total.String()).
		Int("items", len(header.Items)).
		Msg("venta registrada")
	return toSaleResponse(header), nil
}

func (uc *CreateSaleUseCase) buildHeader(userID string, in dto.CreateSaleRequest) (*entity.Sale, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la venta no tiene ítems", domain.ErrInvalidInput)
	}
	if in.TaxRate.IsNegative() {
		return nil, fmt.Errorf("%w: tasa de impuesto negativa", domain.ErrInvalidInput)
	}
	saleType := in.SaleType
	if saleType == "" {
		saleType = entity.SaleTypePublic
	}
	if !entity.ValidSaleType(saleType) {
		return nil, fmt.Errorf("%w: tipo de venta %q", domain.ErrInvalidInput, saleType)
	}
	channel := in.Channel
	if channel == "" {
		channel = entity.ChannelLocal
	}
	if channel != entity.ChannelLocal && channel != entity.ChannelOnline {
		return nil, fmt.Errorf("%w: canal %q", domain.ErrInvalidInput, channel)
	}
	status := in.Status
	if status == "" {
		// El mostrador cobra en el acto; online espera la confirmación del pago.
		status = entity.SaleStatusPaid
		if channel == entity.ChannelOnline {
			status = entity.SaleStatusPending
		}
	}
	if !entity.ValidSaleStatus(status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}

	now := uc.now()
	date := now
	if in.Date != nil {
		date = *in.Date
	}
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		CustomerID:    in.CustomerID,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		Date:          date,
		SaleType:      saleType,
		Channel:       channel,
		Status:        status,
		PaymentMethod: in.PaymentMethod,
		PriceListID:   in.PriceListID,
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if status == entity.SaleStatusPaid {
		sale.PaidAt = &now
	}
	if sale.CustomerName == "" {
		sale.CustomerName = "Consumidor final"
	}
	return sale, nil
}

func (uc *CreateSaleUseCase) priceOverrides(ctx context.Context, listID *string) (map[string]decimal.Decimal, error) {
	if listID == nil || *listID == "" {
		return nil, nil
	}
	list, err := uc.priceListRepo.GetByID(ctx, *listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, fmt.Errorf("%w: lista de precios %s", domain.ErrNotFound, *listID)
	}
	items, err := uc.priceListRepo.Items(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(items))
	for _, it := range items {
		out[it.ProductID] = it.Price
	}
	return out, nil
}

// resolveUnitPrice: precio explícito, si no el de la lista, si no el del tipo de venta.
func resolveUnitPrice(p *entity.Product, saleType string, explicit *decimal.Decimal, overrides map[string]decimal.Decimal) decimal.Decimal {
	if explicit != nil {
		return *explicit
	}
	if price, ok := overrides[p.ID]; ok {
		return price
	}
	return p.PriceFor(saleType)
}

func snapshotsByProduct(lots []*entity.Lot) map[string][]inventory.LotSnapshot {
	out := make(map[string][]inventory.LotSnapshot)
	for _, l := range lots {
		out[l.ProductID] = append(out[l.ProductID], inventory.LotSnapshot{
			LotID:       l.ID,
			WarehouseID: l.WarehouseID,
			Remaining:   l.CurrentQty,
			ExpiresAt:   l.ExpiresAt,
			CreatedAt:   l.CreatedAt,
		})
	}
	return out
}
