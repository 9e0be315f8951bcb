package fakes

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/reporting"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

var (
	_ repository.SaleRepository          = (*SaleRepo)(nil)
	_ repository.SupplyRepository        = (*SupplyRepo)(nil)
	_ repository.TransferRepository      = (*TransferRepo)(nil)
	_ repository.UserRepository          = (*UserRepo)(nil)
	_ repository.AccessRequestRepository = (*AccessRequestRepo)(nil)
	_ repository.KnowledgeRepository     = (*KnowledgeRepo)(nil)
	_ repository.CustomerRepository      = (*CustomerRepo)(nil)
	_ repository.AnalyticsRepository     = (*AnalyticsRepo)(nil)
)

// SaleRepo fake de repository.SaleRepository.
type SaleRepo struct{ s *Store }

// NewSaleRepo construye el fake.
func NewSaleRepo(s *Store) *SaleRepo { return &SaleRepo{s: s} }

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sales[sale.ID]; ok {
		return domain.ErrDuplicate
	}
	c := *sale
	c.Items = nil
	r.s.sales[sale.ID] = &c
	return nil
}

func (r *SaleRepo) AddItems(_ context.Context, saleID string, items []entity.SaleItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.AddItemsErr != nil {
		return r.s.AddItemsErr
	}
	sale, ok := r.s.sales[saleID]
	if !ok {
		return domain.ErrConflict
	}
	sale.Items = append(sale.Items, items...)
	return nil
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	c := *sale
	c.Items = append([]entity.SaleItem(nil), sale.Items...)
	for i := range c.Items {
		if p, ok := r.s.products[c.Items[i].ProductID]; ok {
			c.Items[i].ProductName = p.Name
		}
	}
	return &c, nil
}

func (r *SaleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Sale
	for _, sale := range r.s.sales {
		if f.Status != "" && sale.Status != f.Status {
			continue
		}
		if f.Channel != "" && sale.Channel != f.Channel {
			continue
		}
		if f.From != nil && sale.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && !sale.Date.Before(*f.To) {
			continue
		}
		c := *sale
		c.Items = nil
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if f.Offset > len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *SaleRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.sales[id]
	if !ok {
		return domain.ErrNotFound
	}
	sale.Status = status
	return nil
}

func (r *SaleRepo) SetPreference(_ context.Context, id, preferenceID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.sales[id]
	if !ok {
		return domain.ErrNotFound
	}
	sale.PreferenceID = preferenceID
	return nil
}

// MarkPaid replica el UPDATE condicionado: no toca ventas Pagadas ni Enviadas.
func (r *SaleRepo) MarkPaid(_ context.Context, id, paymentID string, paidAt time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.MarkPaidCalls++
	sale, ok := r.s.sales[id]
	if !ok || !entity.PayableStatus(sale.Status) {
		return false, nil
	}
	sale.Status = entity.SaleStatusPaid
	sale.PaymentID = paymentID
	sale.PaidAt = &paidAt
	return true, nil
}

func (r *SaleRepo) MarkAbandoned(_ context.Context, olderThan time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, sale := range r.s.sales {
		if sale.Channel == entity.ChannelOnline && sale.Status == entity.SaleStatusPending && sale.CreatedAt.Before(olderThan) {
			sale.Status = entity.SaleStatusAbandoned
			n++
		}
	}
	return n, nil
}

// DeleteRestoringStock simula restore_stock_and_delete_sale.
func (r *SaleRepo) DeleteRestoringStock(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.DeleteProcedureMissing {
		return &domain.ProcedureNotFoundError{
			Procedure: "restore_stock_and_delete_sale",
			Remedy:    "CREATE OR REPLACE FUNCTION restore_stock_and_delete_sale(",
		}
	}
	sale, ok := r.s.sales[id]
	if !ok {
		return domain.ErrNotFound
	}
	for _, it := range sale.Items {
		if l, ok := r.s.lots[it.LotID]; ok {
			l.CurrentQty = l.CurrentQty.Add(it.Quantity)
		}
	}
	delete(r.s.sales, id)
	return nil
}

// SupplyRepo fake de repository.SupplyRepository.
type SupplyRepo struct{ s *Store }

// NewSupplyRepo construye el fake.
func NewSupplyRepo(s *Store) *SupplyRepo { return &SupplyRepo{s: s} }

func (r *SupplyRepo) Create(_ context.Context, sp *entity.Supply) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.supplies {
		if existing.Name == sp.Name {
			return domain.ErrDuplicate
		}
	}
	c := *sp
	r.s.supplies[sp.ID] = &c
	return nil
}

func (r *SupplyRepo) GetByID(_ context.Context, id string) (*entity.Supply, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.supplies[id]
	if !ok {
		return nil, nil
	}
	c := *sp
	return &c, nil
}

func (r *SupplyRepo) Update(_ context.Context, sp *entity.Supply) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.supplies[sp.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Name, existing.UnitMeasure, existing.UnitCost, existing.UpdatedAt = sp.Name, sp.UnitMeasure, sp.UnitCost, sp.UpdatedAt
	return nil
}

func (r *SupplyRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.supplies[id]; !ok {
		return domain.ErrNotFound
	}
	for _, bom := range r.s.boms {
		for _, line := range bom {
			if line.SupplyID == id {
				return domain.ErrConflict
			}
		}
	}
	delete(r.s.supplies, id)
	return nil
}

func (r *SupplyRepo) List(_ context.Context) ([]*entity.Supply, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Supply
	for _, sp := range r.s.supplies {
		c := *sp
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// AddStock replica add_insumo_stock: promedio ponderado del costo unitario.
func (r *SupplyRepo) AddStock(_ context.Context, supplyID string, qty, unitCost decimal.Decimal) (*entity.Supply, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.supplies[supplyID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	newStock := sp.Stock.Add(qty)
	if newStock.IsPositive() {
		sp.UnitCost = sp.Stock.Mul(sp.UnitCost).Add(qty.Mul(unitCost)).Div(newStock).Round(4)
	}
	sp.Stock = newStock
	c := *sp
	return &c, nil
}

// TransferRepo fake de repository.TransferRepository que replica transfer_stock.
type TransferRepo struct{ s *Store }

// NewTransferRepo construye el fake.
func NewTransferRepo(s *Store) *TransferRepo { return &TransferRepo{s: s} }

func (r *TransferRepo) Transfer(_ context.Context, cmd repository.TransferCommand) (*entity.StockTransfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.TransferCalls++

	src, ok := r.s.lots[cmd.SourceLotID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	dest, ok := r.s.warehouses[cmd.DestWarehouseID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if src.WarehouseID == dest.ID {
		return nil, domain.ErrSameWarehouseTransfer
	}
	if src.CurrentQty.LessThan(cmd.Quantity) {
		return nil, domain.ErrInsufficientSourceStock
	}

	var target *entity.Lot
	for _, l := range r.s.lots {
		if l.ProductID == src.ProductID && l.LotNumber == src.LotNumber && l.WarehouseID == dest.ID {
			target = l
			break
		}
	}
	now := time.Now()
	if target == nil {
		target = &entity.Lot{
			ID:          uuid.New().String(),
			ProductID:   src.ProductID,
			WarehouseID: dest.ID,
			LotNumber:   src.LotNumber,
			ExpiresAt:   src.ExpiresAt,
			Cost:        src.Cost,
			CreatedAt:   now,
		}
		r.s.lots[target.ID] = target
	}
	src.CurrentQty = src.CurrentQty.Sub(cmd.Quantity)
	target.CurrentQty = target.CurrentQty.Add(cmd.Quantity)
	target.InitialQty = decimal.Max(target.InitialQty, target.CurrentQty)

	t := &entity.StockTransfer{
		ID:              uuid.New().String(),
		ProductID:       src.ProductID,
		LotNumber:       src.LotNumber,
		SourceLotID:     src.ID,
		DestLotID:       target.ID,
		FromWarehouseID: src.WarehouseID,
		ToWarehouseID:   dest.ID,
		ToWarehouseName: dest.Name,
		Quantity:        cmd.Quantity,
		ActorID:         cmd.ActorID,
		CreatedAt:       now,
	}
	if p, ok := r.s.products[src.ProductID]; ok {
		t.ProductName = p.Name
	}
	if w, ok := r.s.warehouses[src.WarehouseID]; ok {
		t.FromWarehouseName = w.Name
	}
	r.s.transfers = append(r.s.transfers, t)
	c := *t
	return &c, nil
}

func (r *TransferRepo) ListHistory(_ context.Context, productID string, limit int) ([]*entity.StockTransfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockTransfer
	for i := len(r.s.transfers) - 1; i >= 0; i-- {
		t := r.s.transfers[i]
		if productID != "" && t.ProductID != productID {
			continue
		}
		c := *t
		out = append(out, &c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// UserRepo fake de repository.UserRepository con las reglas de los procedimientos de administración.
type UserRepo struct{ s *Store }

// NewUserRepo construye el fake.
func NewUserRepo(s *Store) *UserRepo { return &UserRepo{s: s} }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	c := *u
	r.s.users[u.ID] = &c
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) isAdmin(id string) bool {
	u, ok := r.s.users[id]
	return ok && u.HasRole(entity.RoleAdmin)
}

func (r *UserRepo) ListAsAdmin(_ context.Context, actorID string) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.isAdmin(actorID) {
		return nil, domain.ErrPermissionDenied
	}
	var out []*entity.User
	for _, u := range r.s.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *UserRepo) UpdateRoles(_ context.Context, actorID, userID string, roles []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.isAdmin(actorID) {
		return domain.ErrPermissionDenied
	}
	hasAdmin := false
	for _, role := range roles {
		if !entity.ValidRole(role) {
			return domain.ErrInvalidInput
		}
		hasAdmin = hasAdmin || role == entity.RoleAdmin
	}
	if actorID == userID && !hasAdmin {
		return domain.ErrInvalidInput
	}
	u, ok := r.s.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.Roles = append([]string(nil), roles...)
	return nil
}

// AccessRequestRepo fake de repository.AccessRequestRepository.
type AccessRequestRepo struct{ s *Store }

// NewAccessRequestRepo construye el fake.
func NewAccessRequestRepo(s *Store) *AccessRequestRepo { return &AccessRequestRepo{s: s} }

func (r *AccessRequestRepo) Create(_ context.Context, req *entity.AccessRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.requests {
		if existing.Status == entity.AccessRequestPending && strings.EqualFold(existing.Email, req.Email) {
			return domain.ErrDuplicate
		}
	}
	c := *req
	r.s.requests[req.ID] = &c
	return nil
}

func (r *AccessRequestRepo) ListPending(_ context.Context) ([]*entity.AccessRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.AccessRequest
	for _, req := range r.s.requests {
		if req.Status == entity.AccessRequestPending {
			c := *req
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *AccessRequestRepo) pending(actorID, requestID string) (*entity.AccessRequest, error) {
	if u, ok := r.s.users[actorID]; !ok || !u.HasRole(entity.RoleAdmin) {
		return nil, domain.ErrPermissionDenied
	}
	req, ok := r.s.requests[requestID]
	if !ok || req.Status != entity.AccessRequestPending {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

func (r *AccessRequestRepo) Approve(_ context.Context, actorID, requestID string, roles []string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, err := r.pending(actorID, requestID)
	if err != nil {
		return "", err
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, req.Email) {
			return "", domain.ErrEmailAlreadyExists
		}
	}
	now := time.Now()
	u := &entity.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: req.PasswordHash,
		Roles:        append([]string(nil), roles...),
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.s.users[u.ID] = u
	req.Status = entity.AccessRequestApproved
	req.ReviewedBy = &actorID
	req.ReviewedAt = &now
	return u.ID, nil
}

func (r *AccessRequestRepo) Reject(_ context.Context, actorID, requestID, _ string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, err := r.pending(actorID, requestID)
	if err != nil {
		return err
	}
	now := time.Now()
	req.Status = entity.AccessRequestRejected
	req.ReviewedBy = &actorID
	req.ReviewedAt = &now
	return nil
}

// KnowledgeRepo fake de repository.KnowledgeRepository.
type KnowledgeRepo struct{ s *Store }

// NewKnowledgeRepo construye el fake.
func NewKnowledgeRepo(s *Store) *KnowledgeRepo { return &KnowledgeRepo{s: s} }

func (r *KnowledgeRepo) Create(_ context.Context, e *entity.KnowledgeEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *e
	r.s.knowledge[e.ID] = &c
	return nil
}

func (r *KnowledgeRepo) GetByID(_ context.Context, id string) (*entity.KnowledgeEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.knowledge[id]
	if !ok {
		return nil, nil
	}
	c := *e
	return &c, nil
}

func (r *KnowledgeRepo) Update(_ context.Context, e *entity.KnowledgeEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.knowledge[e.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *e
	r.s.knowledge[e.ID] = &c
	return nil
}

func (r *KnowledgeRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.knowledge[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.knowledge, id)
	return nil
}

func (r *KnowledgeRepo) List(_ context.Context, onlyActive bool) ([]*entity.KnowledgeEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.KnowledgeEntry
	for _, e := range r.s.knowledge {
		if onlyActive && !e.Active {
			continue
		}
		c := *e
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Question < out[j].Question })
	return out, nil
}

// CustomerRepo fake de repository.CustomerRepository.
type CustomerRepo struct{ s *Store }

// NewCustomerRepo construye el fake.
func NewCustomerRepo(s *Store) *CustomerRepo { return &CustomerRepo{s: s} }

func (r *CustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.customers {
		if c.Email != "" && strings.EqualFold(existing.Email, c.Email) {
			return domain.ErrDuplicate
		}
	}
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *CustomerRepo) FindByEmail(_ context.Context, email string) (*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.customers {
		if strings.EqualFold(c.Email, email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *CustomerRepo) List(_ context.Context, search string, limit, offset int) ([]*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Customer
	for _, c := range r.s.customers {
		if search != "" && !strings.Contains(strings.ToLower(c.Name+" "+c.Email), strings.ToLower(search)) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if offset > len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *CustomerRepo) Update(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.customers[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

// AnalyticsRepo fake de repository.AnalyticsRepository con respuestas fijas.
type AnalyticsRepo struct {
	Timeline []reporting.SalePoint
	Costs    []repository.ProductCostInput
	Stats    []entity.ProductStatistics
	Err      error

	// Since y StatsFrom registran los argumentos de la última llamada.
	Since     time.Time
	StatsFrom time.Time
	StatsTo   time.Time
}

func (r *AnalyticsRepo) SalesTimeline(_ context.Context, since time.Time) ([]reporting.SalePoint, error) {
	r.Since = since
	return r.Timeline, r.Err
}

func (r *AnalyticsRepo) ProductCostInputs(_ context.Context) ([]repository.ProductCostInput, error) {
	return r.Costs, r.Err
}

func (r *AnalyticsRepo) ProductStatistics(_ context.Context, from, to time.Time) ([]entity.ProductStatistics, error) {
	r.StatsFrom, r.StatsTo = from, to
	return r.Stats, r.Err
}
