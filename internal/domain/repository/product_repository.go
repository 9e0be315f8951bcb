package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
)

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Search     string // nombre o SKU
	OnlyActive bool
	Limit      int
	Offset     int
}

// ProductWithStock producto con su stock total agregado (lotes).
type ProductWithStock struct {
	Product    *entity.Product
	StockTotal decimal.Decimal
}

// ProductRepository define el puerto de persistencia para Product.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ProductFilter) ([]ProductWithStock, error)
	// StockByWarehouse agrega la cantidad restante de los lotes del producto por depósito.
	StockByWarehouse(ctx context.Context, productID string) ([]entity.WarehouseStock, error)
	// SetSupplies reemplaza la lista de materiales del producto.
	SetSupplies(ctx context.Context, productID string, supplies []entity.ProductSupply) error
	GetSupplies(ctx context.Context, productID string) ([]entity.ProductSupply, error)
}
