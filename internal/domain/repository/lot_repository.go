package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
)

// LotRepository define el puerto de persistencia para lotes.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.Lot, error)
	// ListAvailableForUpdate devuelve los lotes con cantidad > 0 de los productos y los
	// bloquea (SELECT ... FOR UPDATE). Solo tiene sentido dentro de una transacción.
	ListAvailableForUpdate(ctx context.Context, productIDs []string) ([]*entity.Lot, error)
	// Decrement descuenta qty solo si el lote tiene al menos qty restante.
	// Devuelve false si no se actualizó ninguna fila.
	Decrement(ctx context.Context, lotID string, qty decimal.Decimal) (bool, error)
}
