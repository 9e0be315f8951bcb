package pricing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
	"github.com/jhoicas/tienda-erp-api/pkg/logger"
	"github.com/jhoicas/tienda-erp-api/pkg/textfold"
)

// PortalUseCase lectura pública de listas de precios: precios efectivos y disponibilidad.
// La lista completa se cachea; la búsqueda se aplica sobre la copia cacheada.
type PortalUseCase struct {
	priceListRepo repository.PriceListRepository
	productRepo   repository.ProductRepository
	cache         ports.PriceCache
	pdf           ports.PDFRenderer
	log           *logger.Logger
	now           func() time.Time
}

// NewPortalUseCase construye el caso de uso. cache y pdf son opcionales.
func NewPortalUseCase(
	priceListRepo repository.PriceListRepository,
	productRepo repository.ProductRepository,
	cache ports.PriceCache,
	pdf ports.PDFRenderer,
	log *logger.Logger,
) *PortalUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PortalUseCase{
		priceListRepo: priceListRepo,
		productRepo:   productRepo,
		cache:         cache,
		pdf:           pdf,
		log:           log.Component("portal"),
		now:           time.Now,
	}
}

// Get devuelve la lista publicada filtrada por search (sin distinguir acentos ni mayúsculas).
// Listas no públicas se informan como inexistentes.
func (uc *PortalUseCase) Get(ctx context.Context, listID, search string) (*dto.PortalPriceList, error) {
	list, err := uc.load(ctx, listID)
	if err != nil {
		return nil, err
	}
	if search == "" {
		return list, nil
	}
	filtered := *list
	filtered.Items = nil
	for _, it := range list.Items {
		if textfold.Contains(it.Name, search) || textfold.Contains(it.SKU, search) || textfold.Contains(it.Description, search) {
			filtered.Items = append(filtered.Items, it)
		}
	}
	return &filtered, nil
}

// PDF genera la lista publicada en PDF.
func (uc *PortalUseCase) PDF(ctx context.Context, listID string) ([]byte, error) {
	if uc.pdf == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.load(ctx, listID)
	if err != nil {
		return nil, err
	}
	doc := ports.PriceListDocument{
		Title:       list.Name,
		Description: list.Description,
		GeneratedAt: list.GeneratedAt,
	}
	for _, it := range list.Items {
		doc.Rows = append(doc.Rows, ports.PriceListRow{SKU: it.SKU, Name: it.Name, Price: it.Price, InStock: it.InStock})
	}
	return uc.pdf.PriceList(doc)
}

func (uc *PortalUseCase) load(ctx context.Context, listID string) (*dto.PortalPriceList, error) {
	if uc.cache != nil {
		raw, ok, err := uc.cache.Get(ctx, listID)
		if err != nil {
			uc.log.Warn().Err(err).Str("price_list_id", listID).Msg("caché del portal no disponible")
		}
		if ok {
			var cached dto.PortalPriceList
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
			uc.log.Warn().Str("price_list_id", listID).Msg("entrada de caché corrupta, se reconstruye")
		}
	}

	list, err := uc.build(ctx, listID)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		if raw, err := json.Marshal(list); err == nil {
			if err := uc.cache.Set(ctx, listID, raw); err != nil {
				uc.log.Warn().Err(err).Str("price_list_id", listID).Msg("no se pudo cachear la lista")
			}
		}
	}
	return list, nil
}

func (uc *PortalUseCase) build(ctx context.Context, listID string) (*dto.PortalPriceList, error) {
	list, err := uc.priceListRepo.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list == nil || !list.Public {
		return nil, domain.ErrNotFound
	}
	items, err := uc.priceListRepo.Items(ctx, listID)
	if err != nil {
		return nil, err
	}
	overrides := make(map[string]decimal.Decimal, len(items))
	for _, it := range items {
		overrides[it.ProductID] = it.Price
	}
	products, err := uc.productRepo.List(ctx, repository.ProductFilter{OnlyActive: true})
	if err != nil {
		return nil, err
	}

	out := &dto.PortalPriceList{
		ListID:      list.ID,
		Name:        list.Name,
		Description: list.Description,
		GeneratedAt: uc.now(),
		Items:       make([]dto.PortalItem, 0, len(products)),
	}
	for _, ps := range products {
		price, overridden := EffectivePrice(ps.Product, overrides)
		out.Items = append(out.Items, dto.PortalItem{
			ProductID:   ps.Product.ID,
			SKU:         ps.Product.SKU,
			Name:        ps.Product.Name,
			Description: ps.Product.Description,
			Price:       price,
			Overridden:  overridden,
			InStock:     ps.StockTotal.IsPositive(),
		})
	}
	return out, nil
}
