// Package fakes implementa en memoria los puertos de repositorio para los tests de aplicación.
// Reproduce las garantías de la base que importan a los casos de uso: descuento con guarda,
// transición idempotente a Pagada, depósito predeterminado único y rollback de transacciones.
package fakes

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
)

// Store estado compartido por todos los repositorios fake.
type Store struct {
	mu sync.Mutex

	products   map[string]*entity.Product
	boms       map[string][]entity.ProductSupply
	lots       map[string]*entity.Lot
	sales      map[string]*entity.Sale
	priceLists map[string]*entity.PriceList
	priceItems map[string]map[string]decimal.Decimal
	warehouses map[string]*entity.Warehouse
	supplies   map[string]*entity.Supply
	transfers  []*entity.StockTransfer
	users      map[string]*entity.User
	requests   map[string]*entity.AccessRequest
	knowledge  map[string]*entity.KnowledgeEntry
	customers  map[string]*entity.Customer

	// Inyección de fallas.
	DeleteProcedureMissing bool            // restore_stock_and_delete_sale no desplegado
	StaleLots              map[string]bool // Decrement devuelve false para estos lotes
	AddItemsErr            error

	// Contadores de llamadas.
	TransferCalls int
	MarkPaidCalls int
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products:   map[string]*entity.Product{},
		boms:       map[string][]entity.ProductSupply{},
		lots:       map[string]*entity.Lot{},
		sales:      map[string]*entity.Sale{},
		priceLists: map[string]*entity.PriceList{},
		priceItems: map[string]map[string]decimal.Decimal{},
		warehouses: map[string]*entity.Warehouse{},
		supplies:   map[string]*entity.Supply{},
		users:      map[string]*entity.User{},
		requests:   map[string]*entity.AccessRequest{},
		knowledge:  map[string]*entity.KnowledgeEntry{},
		customers:  map[string]*entity.Customer{},
		StaleLots:  map[string]bool{},
	}
}

// snapshot copia el estado mutable para poder revertirlo.
type snapshot struct {
	lots       map[string]entity.Lot
	sales      map[string]entity.Sale
	warehouses map[string]entity.Warehouse
}

func (s *Store) takeSnapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		lots:       make(map[string]entity.Lot, len(s.lots)),
		sales:      make(map[string]entity.Sale, len(s.sales)),
		warehouses: make(map[string]entity.Warehouse, len(s.warehouses)),
	}
	for k, v := range s.lots {
		snap.lots[k] = *v
	}
	for k, v := range s.sales {
		c := *v
		c.Items = append([]entity.SaleItem(nil), v.Items...)
		snap.sales[k] = c
	}
	for k, v := range s.warehouses {
		snap.warehouses[k] = *v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lots = make(map[string]*entity.Lot, len(snap.lots))
	for k, v := range snap.lots {
		s.lots[k] = &v
	}
	s.sales = make(map[string]*entity.Sale, len(snap.sales))
	for k, v := range snap.sales {
		s.sales[k] = &v
	}
	s.warehouses = make(map[string]*entity.Warehouse, len(snap.warehouses))
	for k, v := range snap.warehouses {
		s.warehouses[k] = &v
	}
}

// ── Siembra y lectura directa para los tests ────────────────────────────────

// AddProduct registra un producto.
func (s *Store) AddProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *p
	s.products[p.ID] = &c
}

// AddLot registra un lote.
func (s *Store) AddLot(l *entity.Lot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *l
	s.lots[l.ID] = &c
}

// AddWarehouse registra un depósito.
func (s *Store) AddWarehouse(w *entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *w
	s.warehouses[w.ID] = &c
}

// AddSale registra una venta.
func (s *Store) AddSale(sale *entity.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *sale
	s.sales[sale.ID] = &c
}

// AddSupply registra un insumo.
func (s *Store) AddSupply(sp *entity.Supply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *sp
	s.supplies[sp.ID] = &c
}

// AddUser registra un usuario.
func (s *Store) AddUser(u *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *u
	s.users[u.ID] = &c
}

// AddPriceList registra una lista con sus precios por producto.
func (s *Store) AddPriceList(l *entity.PriceList, prices map[string]decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *l
	s.priceLists[l.ID] = &c
	s.priceItems[l.ID] = map[string]decimal.Decimal{}
	for k, v := range prices {
		s.priceItems[l.ID][k] = v
	}
}

// AddAccessRequest registra una solicitud de acceso.
func (s *Store) AddAccessRequest(r *entity.AccessRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *r
	s.requests[r.ID] = &c
}

// User devuelve una copia del usuario.
func (s *Store) User(id string) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	return &c
}

// Supply devuelve una copia del insumo.
func (s *Store) Supply(id string) *entity.Supply {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.supplies[id]
	if !ok {
		return nil
	}
	c := *sp
	return &c
}

// Lot devuelve una copia del lote (nil si no existe).
func (s *Store) Lot(id string) *entity.Lot {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lots[id]
	if !ok {
		return nil
	}
	c := *l
	return &c
}

// Sale devuelve una copia de la venta (nil si no existe).
func (s *Store) Sale(id string) *entity.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[id]
	if !ok {
		return nil
	}
	c := *sale
	c.Items = append([]entity.SaleItem(nil), sale.Items...)
	return &c
}

// SaleCount cantidad de ventas persistidas.
func (s *Store) SaleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sales)
}

// ProductStock suma la cantidad restante de los lotes del producto.
func (s *Store) ProductStock(productID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, l := range s.lots {
		if l.ProductID == productID {
			total = total.Add(l.CurrentQty)
		}
	}
	return total
}

// Warehouse devuelve una copia del depósito.
func (s *Store) Warehouse(id string) *entity.Warehouse {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.warehouses[id]
	if !ok {
		return nil
	}
	c := *w
	return &c
}

// Transfers devuelve el historial de transferencias.
func (s *Store) Transfers() []*entity.StockTransfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entity.StockTransfer(nil), s.transfers...)
}
