package usecase

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

// ProductUseCase catálogo: CRUD de productos, lotes, lista de materiales y consulta de stock.
// El stock no se edita en el producto: se deriva de los lotes.
type ProductUseCase struct {
	repo          repository.ProductRepository
	lotRepo       repository.LotRepository
	warehouseRepo repository.WarehouseRepository
	supplyRepo    repository.SupplyRepository
	priceListRepo repository.PriceListRepository
	cache         ports.PriceCache
	log           *logger.Logger
}

// NewProductUseCase construye el caso de uso. priceListRepo y cache pueden ser nil:
// sin ellos los cambios de producto no invalidan las listas del portal.
func NewProductUseCase(
	repo repository.ProductRepository,
	lotRepo repository.LotRepository,
	warehouseRepo repository.WarehouseRepository,
	supplyRepo repository.SupplyRepository,
	priceListRepo repository.PriceListRepository,
	cache ports.PriceCache,
	log *logger.Logger,
) *ProductUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{
		repo:          repo,
		lotRepo:       lotRepo,
		warehouseRepo: warehouseRepo,
		supplyRepo:    supplyRepo,
		priceListRepo: priceListRepo,
		cache:         cache,
		log:           log.Component("catalog"),
	}
}

// Create crea un producto. SKU repetido -> domain.ErrDuplicate.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := validatePrices(in.PricePublic, in.PriceRetail, in.PriceWholesale); err != nil {
		return nil, err
	}
	now := time.Now()
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	product := &entity.Product{
		ID:             uuid.New().String(),
		SKU:            strings.TrimSpace(in.SKU),
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		PricePublic:    in.PricePublic,
		PriceRetail:    in.PriceRetail,
		PriceWholesale: in.PriceWholesale,
		Active:         active,
		Export:         toExportAttributes(in.Export),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if product.SKU == "" || product.Name == "" {
		return nil, fmt.Errorf("%w: SKU y nombre son obligatorios", domain.ErrInvalidInput)
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product, decimal.Zero), nil
}

// GetByID obtiene un producto con su stock total.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	stock, err := uc.GetProductStock(ctx, id)
	if err != nil {
		return nil, err
	}
	return &stock.Product, nil
}

// Update actualiza los campos presentes en la petición.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.SKU != nil {
		product.SKU = strings.TrimSpace(*in.SKU)
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.PricePublic != nil {
		product.PricePublic = *in.PricePublic
	}
	if in.PriceRetail != nil {
		product.PriceRetail = *in.PriceRetail
	}
	if in.PriceWholesale != nil {
		product.PriceWholesale = *in.PriceWholesale
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	if in.Export != nil {
		product.Export = toExportAttributes(in.Export)
	}
	if err := validatePrices(product.PricePublic, product.PriceRetail, product.PriceWholesale); err != nil {
		return nil, err
	}
	if product.SKU == "" || product.Name == "" {
		return nil, fmt.Errorf("%w: SKU y nombre son obligatorios", domain.ErrInvalidInput)
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	uc.invalidatePortal(ctx)
	return uc.GetByID(ctx, id)
}

// Delete elimina un producto. Con lotes o ventas asociadas -> domain.ErrConflict.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidatePortal(ctx)
	return nil
}

// invalidatePortal descarta las listas públicas cacheadas: todas muestran nombre, SKU y
// precio público del producto como respaldo, así que cualquier cambio puede afectarlas.
func (uc *ProductUseCase) invalidatePortal(ctx context.Context) {
	if uc.cache == nil || uc.priceListRepo == nil {
		return
	}
	lists, err := uc.priceListRepo.List(ctx)
	if err != nil {
		uc.log.Warn().Err(err).Msg("no se pudieron listar las listas de precios para invalidar la caché")
		return
	}
	for _, l := range lists {
		if !l.Public {
			continue
		}
		if err := uc.cache.Invalidate(ctx, l.ID); err != nil {
			uc.log.Warn().Err(err).Str("price_list_id", l.ID).Msg("no se pudo invalidar la caché del portal")
		}
	}
}

// List lista productos con su stock agregado.
func (uc *ProductUseCase) List(ctx context.Context, search string, onlyActive bool, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, repository.ProductFilter{
		Search:     strings.TrimSpace(search),
		OnlyActive: onlyActive,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, ps := range list {
		items = append(items, *toProductResponse(ps.Product, ps.StockTotal))
	}
	return &dto.ProductListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// GetProductStock devuelve el producto, todos sus lotes y el desglose por depósito.
// StockTotal es siempre la suma de la cantidad restante de los lotes.
func (uc *ProductUseCase) GetProductStock(ctx context.Context, id string) (*dto.ProductStockResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	lots, err := uc.lotRepo.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	byWarehouse, err := uc.repo.StockByWarehouse(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Lots = make([]entity.Lot, 0, len(lots))
	out := &dto.ProductStockResponse{
		Lots:        make([]dto.LotResponse, 0, len(lots)),
		ByWarehouse: make([]dto.WarehouseStockDTO, 0, len(byWarehouse)),
	}
	for _, l := range lots {
		product.Lots = append(product.Lots, *l)
		out.Lots = append(out.Lots, toLotResponse(l))
	}
	for _, ws := range byWarehouse {
		out.ByWarehouse = append(out.ByWarehouse, dto.WarehouseStockDTO{
			WarehouseID:   ws.WarehouseID,
			WarehouseName: ws.WarehouseName,
			Quantity:      ws.Quantity,
		})
	}
	out.StockTotal = product.StockTotal()
	out.Product = *toProductResponse(product, out.StockTotal)
	return out, nil
}

// CreateLot registra un lote de producción o compra: la cantidad inicial es la actual.
func (uc *ProductUseCase) CreateLot(ctx context.Context, productID string, in dto.CreateLotRequest) (*dto.LotResponse, error) {
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if in.Cost.IsNegative() {
		return nil, fmt.Errorf("%w: costo negativo", domain.ErrInvalidInput)
	}
	if _, err := uc.get(ctx, productID); err != nil {
		return nil, err
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, fmt.Errorf("%w: depósito %s", domain.ErrNotFound, in.WarehouseID)
	}
	lot := &entity.Lot{
		ID:            uuid.New().String(),
		ProductID:     productID,
		WarehouseID:   wh.ID,
		WarehouseName: wh.Name,
		LotNumber:     strings.TrimSpace(in.LotNumber),
		InitialQty:    in.Quantity,
		CurrentQty:    in.Quantity,
		ExpiresAt:     in.ExpiresAt,
		Cost:          in.Cost,
		CreatedAt:     time.Now(),
	}
	if !lot.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.lotRepo.Create(ctx, lot); err != nil {
		return nil, err
	}
	out := toLotResponse(lot)
	return &out, nil
}

// SetSupplies reemplaza la lista de materiales del producto.
func (uc *ProductUseCase) SetSupplies(ctx context.Context, productID string, in dto.SetProductSuppliesRequest) ([]dto.ProductSupplyDTO, error) {
	if _, err := uc.get(ctx, productID); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(in.Supplies))
	lines := make([]entity.ProductSupply, 0, len(in.Supplies))
	for _, s := range in.Supplies {
		if !s.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: cantidad de insumo debe ser mayor a cero", domain.ErrInvalidInput)
		}
		if seen[s.SupplyID] {
			return nil, fmt.Errorf("%w: insumo %s repetido", domain.ErrInvalidInput, s.SupplyID)
		}
		seen[s.SupplyID] = true
		supply, err := uc.supplyRepo.GetByID(ctx, s.SupplyID)
		if err != nil {
			return nil, err
		}
		if supply == nil {
			return nil, fmt.Errorf("%w: insumo %s", domain.ErrNotFound, s.SupplyID)
		}
		lines = append(lines, entity.ProductSupply{ProductID: productID, SupplyID: supply.ID, Quantity: s.Quantity})
	}
	if err := uc.repo.SetSupplies(ctx, productID, lines); err != nil {
		return nil, err
	}
	return uc.GetSupplies(ctx, productID)
}

// GetSupplies devuelve la lista de materiales con el costo vigente de cada insumo.
func (uc *ProductUseCase) GetSupplies(ctx context.Context, productID string) ([]dto.ProductSupplyDTO, error) {
	lines, err := uc.repo.GetSupplies(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductSupplyDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.ProductSupplyDTO{SupplyID: l.SupplyID, SupplyName: l.SupplyName, UnitCost: l.UnitCost, Quantity: l.Quantity})
	}
	return out, nil
}

func (uc *ProductUseCase) get(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func validatePrices(prices ...decimal.Decimal) error {
	for _, p := range prices {
		if p.IsNegative() {
			return fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
		}
	}
	return nil
}

func toExportAttributes(in *dto.ExportAttributesDTO) *entity.ExportAttributes {
	if in == nil {
		return nil
	}
	return &entity.ExportAttributes{
		BoxLengthCM:      in.BoxLengthCM,
		BoxWidthCM:       in.BoxWidthCM,
		BoxHeightCM:      in.BoxHeightCM,
		BoxGrossWeightKG: in.BoxGrossWeightKG,
		UnitsPerBox:      in.UnitsPerBox,
		HSCode:           in.HSCode,
	}
}

func toProductResponse(p *entity.Product, stock decimal.Decimal) *dto.ProductResponse {
	out := &dto.ProductResponse{
		ID:             p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		Description:    p.Description,
		PricePublic:    p.PricePublic,
		PriceRetail:    p.PriceRetail,
		PriceWholesale: p.PriceWholesale,
		Active:         p.Active,
		StockTotal:     stock,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if ex := p.Export; ex != nil {
		out.Export = &dto.ExportAttributesDTO{
			BoxLengthCM:      ex.BoxLengthCM,
			BoxWidthCM:       ex.BoxWidthCM,
			BoxHeightCM:      ex.BoxHeightCM,
			BoxGrossWeightKG: ex.BoxGrossWeightKG,
			UnitsPerBox:      ex.UnitsPerBox,
			HSCode:           ex.HSCode,
		}
	}
	return out
}

func toLotResponse(l *entity.Lot) dto.LotResponse {
	return dto.LotResponse{
		ID:            l.ID,
		ProductID:     l.ProductID,
		WarehouseID:   l.WarehouseID,
		WarehouseName: l.WarehouseName,
		LotNumber:     l.LotNumber,
		InitialQty:    l.InitialQty,
		CurrentQty:    l.CurrentQty,
		ExpiresAt:     l.ExpiresAt,
		Cost:          l.Cost,
		CreatedAt:     l.CreatedAt,
	}
}
