package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
	"github.com/jhoicas/tienda-erp-api/pkg/logger"
)

// SaleUseCase consultas y mutaciones sobre ventas existentes.
type SaleUseCase struct {
	saleRepo repository.SaleRepository
	pdf      ports.PDFRenderer
	log      *logger.Logger
}

// NewSaleUseCase construye el caso de uso. pdf puede ser nil si no se generan comprobantes.
func NewSaleUseCase(saleRepo repository.SaleRepository, pdf ports.PDFRenderer, log *logger.Logger) *SaleUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SaleUseCase{saleRepo: saleRepo, pdf: pdf, log: log.Component("sales")}
}

// GetByID devuelve la venta con sus ítems.
func (uc *SaleUseCase) GetByID(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale), nil
}

func (uc *SaleUseCase) get(ctx context.Context, id string) (*entity.Sale, error) {
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}

// List lista ventas con filtros.
func (uc *SaleUseCase) List(ctx context.Context, filter repository.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Status != "" && !entity.ValidSaleStatus(filter.Status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, filter.Status)
	}
	list, err := uc.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSaleResponse(s))
	}
	return &dto.SaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// UpdateStatus cambia el estado de la venta dentro del conjunto cerrado de estados.
func (uc *SaleUseCase) UpdateStatus(ctx context.Context, id, status string) (*dto.SaleResponse, error) {
	if !entity.ValidSaleStatus(status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	if err := uc.saleRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	uc.log.Info().Str("sale_id", id).Str("status", status).Msg("estado de venta actualizado")
	return uc.GetByID(ctx, id)
}

// Delete elimina la venta devolviendo el stock a cada lote.
// Si el procedimiento no está desplegado devuelve *domain.ProcedureNotFoundError con el SQL a ejecutar.
func (uc *SaleUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.saleRepo.DeleteRestoringStock(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("sale_id", id).Msg("venta eliminada, stock restituido")
	return nil
}

// MarkAbandonedCarts pasa a "Carrito Abandonado" las ventas online pendientes más viejas que olderThan.
func (uc *SaleUseCase) MarkAbandonedCarts(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := uc.saleRepo.MarkAbandoned(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		uc.log.Info().Int64("count", n).Msg("carritos marcados como abandonados")
	}
	return n, nil
}

// Receipt genera el comprobante PDF de la venta.
func (uc *SaleUseCase) Receipt(ctx context.Context, id string) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("generador de PDF no configurado")
	}
	sale, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	doc := ports.SaleReceiptDocument{
		SaleID:       sale.ID,
		Date:         sale.Date,
		CustomerName: sale.CustomerName,
		Status:       sale.Status,
		Subtotal:     sale.Subtotal,
		Tax:          sale.Tax,
		Total:        sale.Total,
	}
	for _, it := range sale.Items {
		doc.Lines = append(doc.Lines, ports.SaleReceiptLine{
			Description: it.ProductName,
			LotID:       it.LotID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.LineTotal(),
		})
	}
	return uc.pdf.SaleReceipt(doc)
}
