package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
)

// PriceListRepository define el puerto de persistencia para listas de precios.
type PriceListRepository interface {
	Create(ctx context.Context, list *entity.PriceList) error
	GetByID(ctx context.Context, id string) (*entity.PriceList, error)
	Update(ctx context.Context, list *entity.PriceList) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.PriceList, error)
	// Items devuelve los precios de la lista con SKU y nombre del producto.
	Items(ctx context.Context, listID string) ([]entity.PriceListItem, error)
	UpsertItem(ctx context.Context, item entity.PriceListItem) error
	DeleteItem(ctx context.Context, listID, productID string) error
}

// SupplyRepository define el puerto de persistencia para insumos.
type SupplyRepository interface {
	Create(ctx context.Context, supply *entity.Supply) error
	GetByID(ctx context.Context, id string) (*entity.Supply, error)
	Update(ctx context.Context, supply *entity.Supply) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.Supply, error)
	// AddStock invoca add_insumo_stock (recalcula costo promedio) y devuelve el insumo actualizado.
	AddStock(ctx context.Context, supplyID string, qty, unitCost decimal.Decimal) (*entity.Supply, error)
}

// TransferCommand argumentos del procedimiento transfer_stock.
type TransferCommand struct {
	SourceLotID     string
	DestWarehouseID string
	Quantity        decimal.Decimal
	ActorID         string
}

// TransferRepository define el puerto hacia los procedimientos de transferencia.
type TransferRepository interface {
	Transfer(ctx context.Context, cmd TransferCommand) (*entity.StockTransfer, error)
	ListHistory(ctx context.Context, productID string, limit int) ([]*entity.StockTransfer, error)
}

// KnowledgeRepository define el puerto de persistencia para la base de conocimiento del chatbot.
type KnowledgeRepository interface {
	Create(ctx context.Context, entry *entity.KnowledgeEntry) error
	GetByID(ctx context.Context, id string) (*entity.KnowledgeEntry, error)
	Update(ctx context.Context, entry *entity.KnowledgeEntry) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, onlyActive bool) ([]*entity.KnowledgeEntry, error)
}
