package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
	"github.com/jhoicas/tienda-erp-api/pkg/logger"
)

const defaultHistoryLimit = 100

// TransferUseCase mueve stock de un lote a otro depósito.
// Valida todo antes de escribir; la escritura la hace el procedimiento transfer_stock en una sola sentencia.
type TransferUseCase struct {
	lotRepo       repository.LotRepository
	warehouseRepo repository.WarehouseRepository
	transferRepo  repository.TransferRepository
	log           *logger.Logger
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(
	lotRepo repository.LotRepository,
	warehouseRepo repository.WarehouseRepository,
	transferRepo repository.TransferRepository,
	log *logger.Logger,
) *TransferUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &TransferUseCase{
		lotRepo:       lotRepo,
		warehouseRepo: warehouseRepo,
		transferRepo:  transferRepo,
		log:           log.Component("transfers"),
	}
}

// Transfer valida y ejecuta la transferencia. Errores posibles:
//   - domain.ErrInvalidInput: cantidad no positiva.
//   - domain.ErrNotFound: lote origen o depósito destino inexistente.
//   - domain.ErrSameWarehouseTransfer: el destino es el depósito del lote.
//   - domain.ErrInsufficientSourceStock: el lote no tiene la cantidad pedida.
func (uc *TransferUseCase) Transfer(ctx context.Context, actorID string, in dto.TransferRequest) (*dto.TransferResponse, error) {
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor a cero", domain.ErrInvalidInput)
	}
	lot, err := uc.lotRepo.GetByID(ctx, in.SourceLotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, in.SourceLotID)
	}
	dest, err := uc.warehouseRepo.GetByID(ctx, in.DestWarehouseID)
	if err != nil {
		return nil, err
	}
	if dest == nil {
		return nil, fmt.Errorf("%w: depósito %s", domain.ErrNotFound, in.DestWarehouseID)
	}
	if lot.WarehouseID == dest.ID {
		return nil, domain.ErrSameWarehouseTransfer
	}
	if lot.CurrentQty.LessThan(in.Quantity) {
		return nil, fmt.Errorf("%w: disponible %s, solicitado %s",
			domain.ErrInsufficientSourceStock, lot.CurrentQty.String(), in.Quantity.String())
	}

	t, err := uc.transferRepo.Transfer(ctx, repository.TransferCommand{
		SourceLotID:     lot.ID,
		DestWarehouseID: dest.ID,
		Quantity:        in.Quantity,
		ActorID:         actorID,
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("lot_id", lot.ID).Str("dest_warehouse_id", dest.ID).Msg("transferencia rechazada")
		return nil, err
	}
	uc.log.Info().
		Str("transfer_id", t.ID).
		Str("lot_id", lot.ID).
		Str("dest_lot_id", t.DestLotID).
		Str("quantity", t.Quantity.String()).
		Msg("transferencia registrada")
	return toTransferResponse(t), nil
}

// History lista las transferencias más recientes; productID vacío = todos los productos.
func (uc *TransferUseCase) History(ctx context.Context, productID string, limit int) ([]dto.TransferResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = defaultHistoryLimit
	}
	list, err := uc.transferRepo.ListHistory(ctx, productID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		out = append(out, *toTransferResponse(t))
	}
	return out, nil
}

func toTransferResponse(t *entity.StockTransfer) *dto.TransferResponse {
	return &dto.TransferResponse{
		ID:                t.ID,
		ProductID:         t.ProductID,
		ProductName:       t.ProductName,
		LotNumber:         t.LotNumber,
		SourceLotID:       t.SourceLotID,
		DestLotID:         t.DestLotID,
		FromWarehouseID:   t.FromWarehouseID,
		FromWarehouseName: t.FromWarehouseName,
		ToWarehouseID:     t.ToWarehouseID,
		ToWarehouseName:   t.ToWarehouseName,
		Quantity:          t.Quantity,
		ActorID:           t.ActorID,
		CreatedAt:         t.CreatedAt,
	}
}
