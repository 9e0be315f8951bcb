package repository

import (
	"context"
	"time"

	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
)

// SaleFilter filtros del listado de ventas.
type SaleFilter struct {
	Status  string
	Channel string
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

// SaleRepository define el puerto de persistencia para ventas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	AddItems(ctx context.Context, saleID string, items []entity.SaleItem) error
	// GetByID devuelve la venta con sus ítems; nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SetPreference(ctx context.Context, id, preferenceID string) error
	// MarkPaid pasa la venta a "Pagada" solo si aún no lo estaba. Devuelve true si cambió.
	MarkPaid(ctx context.Context, id, paymentID string, paidAt time.Time) (bool, error)
	// MarkAbandoned pasa a "Carrito Abandonado" las ventas online pendientes creadas antes de olderThan.
	MarkAbandoned(ctx context.Context, olderThan time.Time) (int64, error)
	// DeleteRestoringStock invoca restore_stock_and_delete_sale.
	DeleteRestoringStock(ctx context.Context, id string) error
}
