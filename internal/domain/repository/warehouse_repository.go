package repository

import (
	"context"

	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para depósitos.
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	Update(ctx context.Context, warehouse *entity.Warehouse) error
	List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error)
	Delete(ctx context.Context, id string) error
	// ClearDefault quita la marca de predeterminado a todos los depósitos.
	ClearDefault(ctx context.Context) error
	// MarkDefault marca id como predeterminado. Una segunda marca viola el índice único parcial.
	MarkDefault(ctx context.Context, id string) error
}
