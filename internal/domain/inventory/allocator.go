package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-erp-api/internal/domain"
)

// minUsableQty lotes con menos de una unidad restante no se consideran disponibles
// (restos fraccionarios por redondeo).
var minUsableQty = decimal.NewFromInt(1)

// LotSnapshot estado de un lote en el momento de asignar.
type LotSnapshot struct {
	LotID       string
	WarehouseID string
	Remaining   decimal.Decimal
	ExpiresAt   *time.Time
	CreatedAt   time.Time
}

// AllocationRequest cantidad pedida de un producto a un precio unitario.
type AllocationRequest struct {
	ProductID   string
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// Allocation porción de un pedido que se toma de un lote.
type Allocation struct {
	ProductID   string
	LotID       string
	WarehouseID string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// Allocate asigna req a los lotes por FEFO: primero los que vencen antes, luego los
// que no tienen vencimiento; empates por fecha de creación y por ID.
// No devuelve asignaciones parciales: si no alcanza el stock devuelve *domain.InsufficientStockError.
// No modifica lots.
func Allocate(req AllocationRequest, lots []LotSnapshot) ([]Allocation, error) {
	if !req.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}

	usable := make([]LotSnapshot, 0, len(lots))
	available := decimal.Zero
	for _, l := range lots {
		if l.Remaining.LessThan(minUsableQty) {
			continue
		}
		usable = append(usable, l)
		available = available.Add(l.Remaining)
	}
	if available.LessThan(req.Quantity) {
		return nil, &domain.InsufficientStockError{
			ProductID:   req.ProductID,
			ProductName: req.ProductName,
			Requested:   req.Quantity,
			Available:   available,
		}
	}

	SortFEFO(usable)

	pending := req.Quantity
	out := make([]Allocation, 0, 2)
	for _, l := range usable {
		if !pending.IsPositive() {
			break
		}
		take := decimal.Min(l.Remaining, pending)
		out = append(out, Allocation{
			ProductID:   req.ProductID,
			LotID:       l.LotID,
			WarehouseID: l.WarehouseID,
			Quantity:    take,
			UnitPrice:   req.UnitPrice,
		})
		pending = pending.Sub(take)
	}
	if pending.IsPositive() {
		return nil, &domain.AllocationIntegrityError{ProductID: req.ProductID, Remainder: pending}
	}
	return out, nil
}

// AllocateCart asigna todas las líneas de un carrito. Varias líneas del mismo producto
// ven el stock que dejaron las anteriores. Si una línea falla, falla el carrito completo.
func AllocateCart(lines []AllocationRequest, lotsByProduct map[string][]LotSnapshot) ([]Allocation, error) {
	remaining := make(map[string]decimal.Decimal)
	for _, lots := range lotsByProduct {
		for _, l := range lots {
			remaining[l.LotID] = l.Remaining
		}
	}

	var out []Allocation
	for _, line := range lines {
		src := lotsByProduct[line.ProductID]
		view := make([]LotSnapshot, len(src))
		for i, l := range src {
			l.Remaining = remaining[l.LotID]
			view[i] = l
		}
		allocs, err := Allocate(line, view)
		if err != nil {
			return nil, err
		}
		for _, a := range allocs {
			remaining[a.LotID] = remaining[a.LotID].Sub(a.Quantity)
		}
		out = append(out, allocs...)
	}
	return out, nil
}

// SortFEFO ordena los lotes in-place en el orden de consumo.
func SortFEFO(lots []LotSnapshot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		switch {
		case a.ExpiresAt != nil && b.ExpiresAt != nil:
			if !a.ExpiresAt.Equal(*b.ExpiresAt) {
				return a.ExpiresAt.Before(*b.ExpiresAt)
			}
		case a.ExpiresAt != nil:
			return true
		case b.ExpiresAt != nil:
			return false
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.LotID < b.LotID
	})
}

// TotalAllocated suma las cantidades asignadas a un producto.
func TotalAllocated(allocs []Allocation, productID string) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocs {
		if a.ProductID == productID {
			total = total.Add(a.Quantity)
		}
	}
	return total
}
