package fakes

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.LotRepository       = (*LotRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.PriceListRepository = (*PriceListRepo)(nil)
)

// ProductRepo fake de repository.ProductRepository.
type ProductRepo struct{ s *Store }

// NewProductRepo construye el fake.
func NewProductRepo(s *Store) *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.products {
		if existing.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	c := *p
	r.s.products[p.ID] = &c
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *ProductRepo) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			c := *p
			out[id] = &c
		}
	}
	return out, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range r.s.products {
		if existing.ID != p.ID && existing.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	c := *p
	r.s.products[p.ID] = &c
	return nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return domain.ErrNotFound
	}
	for _, l := range r.s.lots {
		if l.ProductID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.products, id)
	return nil
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]repository.ProductWithStock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []repository.ProductWithStock
	for _, p := range r.s.products {
		if f.OnlyActive && !p.Active {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.SKU), strings.ToLower(f.Search)) {
			continue
		}
		c := *p
		ws := repository.ProductWithStock{Product: &c}
		for _, l := range r.s.lots {
			if l.ProductID == p.ID {
				ws.StockTotal = ws.StockTotal.Add(l.CurrentQty)
			}
		}
		out = append(out, ws)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Product.Name < out[j].Product.Name })
	return out, nil
}

func (r *ProductRepo) StockByWarehouse(_ context.Context, productID string) ([]entity.WarehouseStock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byWh := map[string]*entity.WarehouseStock{}
	for _, l := range r.s.lots {
		if l.ProductID != productID {
			continue
		}
		ws, ok := byWh[l.WarehouseID]
		if !ok {
			ws = &entity.WarehouseStock{WarehouseID: l.WarehouseID}
			if w, ok := r.s.warehouses[l.WarehouseID]; ok {
				ws.WarehouseName = w.Name
			}
			byWh[l.WarehouseID] = ws
		}
		ws.Quantity = ws.Quantity.Add(l.CurrentQty)
	}
	out := make([]entity.WarehouseStock, 0, len(byWh))
	for _, ws := range byWh {
		out = append(out, *ws)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WarehouseName < out[j].WarehouseName })
	return out, nil
}

func (r *ProductRepo) SetSupplies(_ context.Context, productID string, supplies []entity.ProductSupply) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.boms[productID] = append([]entity.ProductSupply(nil), supplies...)
	return nil
}

func (r *ProductRepo) GetSupplies(_ context.Context, productID string) ([]entity.ProductSupply, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := append([]entity.ProductSupply(nil), r.s.boms[productID]...)
	for i := range out {
		if sp, ok := r.s.supplies[out[i].SupplyID]; ok {
			out[i].SupplyName = sp.Name
			out[i].UnitCost = sp.UnitCost
		}
	}
	return out, nil
}

// LotRepo fake de repository.LotRepository.
type LotRepo struct{ s *Store }

// NewLotRepo construye el fake.
func NewLotRepo(s *Store) *LotRepo { return &LotRepo{s: s} }

func (r *LotRepo) Create(_ context.Context, l *entity.Lot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *l
	r.s.lots[l.ID] = &c
	return nil
}

func (r *LotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lots[id]
	if !ok {
		return nil, nil
	}
	c := *l
	if w, ok := r.s.warehouses[l.WarehouseID]; ok {
		c.WarehouseName = w.Name
	}
	return &c, nil
}

func (r *LotRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Lot
	for _, l := range r.s.lots {
		if l.ProductID == productID {
			c := *l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *LotRepo) ListAvailableForUpdate(_ context.Context, productIDs []string) ([]*entity.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		want[id] = true
	}
	var out []*entity.Lot
	for _, l := range r.s.lots {
		if want[l.ProductID] && l.CurrentQty.IsPositive() {
			c := *l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *LotRepo) Decrement(_ context.Context, lotID string, qty decimal.Decimal) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lots[lotID]
	if !ok || r.s.StaleLots[lotID] || l.CurrentQty.LessThan(qty) {
		return false, nil
	}
	l.CurrentQty = l.CurrentQty.Sub(qty)
	return true, nil
}

// WarehouseRepo fake de repository.WarehouseRepository con índice único de predeterminado.
type WarehouseRepo struct{ s *Store }

// NewWarehouseRepo construye el fake.
func NewWarehouseRepo(s *Store) *WarehouseRepo { return &WarehouseRepo{s: s} }

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.warehouses {
		if existing.Name == w.Name {
			return domain.ErrDuplicate
		}
	}
	c := *w
	c.IsDefault = false
	r.s.warehouses[w.ID] = &c
	return nil
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	c := *w
	return &c, nil
}

func (r *WarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.warehouses[w.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Name, existing.Address, existing.UpdatedAt = w.Name, w.Address, w.UpdatedAt
	return nil
}

func (r *WarehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Warehouse
	for _, w := range r.s.warehouses {
		c := *w
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].Name < out[j].Name
	})
	if offset > len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *WarehouseRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.warehouses[id]; !ok {
		return domain.ErrNotFound
	}
	for _, l := range r.s.lots {
		if l.WarehouseID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.warehouses, id)
	return nil
}

func (r *WarehouseRepo) ClearDefault(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.warehouses {
		w.IsDefault = false
	}
	return nil
}

func (r *WarehouseRepo) MarkDefault(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.warehouses[id]
	if !ok {
		return domain.ErrNotFound
	}
	for _, other := range r.s.warehouses {
		if other.ID != id && other.IsDefault {
			return domain.ErrDuplicate
		}
	}
	w.IsDefault = true
	return nil
}

// PriceListRepo fake de repository.PriceListRepository.
type PriceListRepo struct{ s *Store }

// NewPriceListRepo construye el fake.
func NewPriceListRepo(s *Store) *PriceListRepo { return &PriceListRepo{s: s} }

func (r *PriceListRepo) Create(_ context.Context, l *entity.PriceList) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.priceLists {
		if existing.Name == l.Name {
			return domain.ErrDuplicate
		}
	}
	c := *l
	c.Items = nil
	r.s.priceLists[l.ID] = &c
	return nil
}

func (r *PriceListRepo) GetByID(_ context.Context, id string) (*entity.PriceList, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.priceLists[id]
	if !ok {
		return nil, nil
	}
	c := *l
	return &c, nil
}

func (r *PriceListRepo) Update(_ context.Context, l *entity.PriceList) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.priceLists[l.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range r.s.priceLists {
		if existing.ID != l.ID && existing.Name == l.Name {
			return domain.ErrDuplicate
		}
	}
	c := *l
	r.s.priceLists[l.ID] = &c
	return nil
}

func (r *PriceListRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.priceLists[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.priceLists, id)
	delete(r.s.priceItems, id)
	return nil
}

func (r *PriceListRepo) List(_ context.Context) ([]*entity.PriceList, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.PriceList
	for _, l := range r.s.priceLists {
		c := *l
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *PriceListRepo) Items(_ context.Context, listID string) ([]entity.PriceListItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.PriceListItem
	for productID, price := range r.s.priceItems[listID] {
		it := entity.PriceListItem{PriceListID: listID, ProductID: productID, Price: price}
		if p, ok := r.s.products[productID]; ok {
			it.ProductSKU, it.ProductName = p.SKU, p.Name
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out, nil
}

func (r *PriceListRepo) UpsertItem(_ context.Context, it entity.PriceListItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.priceLists[it.PriceListID]; !ok {
		return domain.ErrNotFound
	}
	if r.s.priceItems[it.PriceListID] == nil {
		r.s.priceItems[it.PriceListID] = map[string]decimal.Decimal{}
	}
	r.s.priceItems[it.PriceListID][it.ProductID] = it.Price
	return nil
}

func (r *PriceListRepo) DeleteItem(_ context.Context, listID, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.priceItems[listID][productID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.priceItems[listID], productID)
	return nil
}
