package pricing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
	"github.com/jhoicas/tienda-erp-api/pkg/logger"
)

// EffectivePrice precio de la lista si el producto tiene uno propio; si no, el precio público.
func EffectivePrice(p *entity.Product, overrides map[string]decimal.Decimal) (decimal.Decimal, bool) {
	if price, ok := overrides[p.ID]; ok {
		return price, true
	}
	return p.PricePublic, false
}

// PriceListUseCase administra listas de precios. Toda mutación invalida la caché del portal.
type PriceListUseCase struct {
	repo        repository.PriceListRepository
	productRepo repository.ProductRepository
	cache       ports.PriceCache
	log         *logger.Logger
}

// NewPriceListUseCase construye el caso de uso. cache puede ser nil.
func NewPriceListUseCase(repo repository.PriceListRepository, productRepo repository.ProductRepository, cache ports.PriceCache, log *logger.Logger) *PriceListUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PriceListUseCase{repo: repo, productRepo: productRepo, cache: cache, log: log.Component("price-lists")}
}

// Create crea una lista. Nombre repetido -> domain.ErrDuplicate.
func (uc *PriceListUseCase) Create(ctx context.Context, in dto.PriceListRequest) (*dto.PriceListResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	now := time.Now()
	list := &entity.PriceList{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		Public:      in.Public,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, list); err != nil {
		return nil, err
	}
	return toPriceListResponse(list, nil), nil
}

// GetByID devuelve la lista con sus precios.
func (uc *PriceListUseCase) GetByID(ctx context.Context, id string) (*dto.PriceListResponse, error) {
	list, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := uc.repo.Items(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPriceListResponse(list, items), nil
}

func (uc *PriceListUseCase) get(ctx context.Context, id string) (*entity.PriceList, error) {
	list, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, domain.ErrNotFound
	}
	return list, nil
}

// List devuelve las listas sin ítems.
func (uc *PriceListUseCase) List(ctx context.Context) ([]dto.PriceListResponse, error) {
	lists, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PriceListResponse, 0, len(lists))
	for _, l := range lists {
		out = append(out, *toPriceListResponse(l, nil))
	}
	return out, nil
}

// Update modifica nombre, descripción y visibilidad.
func (uc *PriceListUseCase) Update(ctx context.Context, id string, in dto.PriceListRequest) (*dto.PriceListResponse, error) {
	list, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		list.Name = name
	}
	list.Description = in.Description
	list.Public = in.Public
	list.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, list); err != nil {
		return nil, err
	}
	uc.invalidate(ctx, id)
	return toPriceListResponse(list, nil), nil
}

// Delete elimina la lista y sus precios.
func (uc *PriceListUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidate(ctx, id)
	return nil
}

// SetItemPrice fija el precio de un producto en la lista.
func (uc *PriceListUseCase) SetItemPrice(ctx context.Context, listID string, in dto.PriceListItemRequest) error {
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
	}
	if _, err := uc.get(ctx, listID); err != nil {
		return err
	}
	p, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}
	if err := uc.repo.UpsertItem(ctx, entity.PriceListItem{PriceListID: listID, ProductID: p.ID, Price: in.Price}); err != nil {
		return err
	}
	uc.invalidate(ctx, listID)
	return nil
}

// RemoveItem quita el precio propio: el producto vuelve al precio público.
func (uc *PriceListUseCase) RemoveItem(ctx context.Context, listID, productID string) error {
	if err := uc.repo.DeleteItem(ctx, listID, productID); err != nil {
		return err
	}
	uc.invalidate(ctx, listID)
	return nil
}

func (uc *PriceListUseCase) invalidate(ctx context.Context, listID string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, listID); err != nil {
		uc.log.Warn().Err(err).Str("price_list_id", listID).Msg("no se pudo invalidar la caché del portal")
	}
}

func toPriceListResponse(l *entity.PriceList, items []entity.PriceListItem) *dto.PriceListResponse {
	out := &dto.PriceListResponse{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Public:      l.Public,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	for _, it := range items {
		out.Items = append(out.Items, dto.PriceListItemResponse{
			ProductID:   it.ProductID,
			ProductSKU:  it.ProductSKU,
			ProductName: it.ProductName,
			Price:       it.Price,
		})
	}
	return out
}
