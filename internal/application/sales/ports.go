package sales

import (
	"context"

	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

// SalesTxRunner ejecuta fn dentro de una transacción con repos de lotes y ventas atados a ella.
// Si fn devuelve error la transacción se revierte completa: no quedan cabeceras huérfanas.
type SalesTxRunner interface {
	RunSales(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		saleRepo repository.SaleRepository,
	) error) error
}
