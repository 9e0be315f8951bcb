package pricing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/fakes"
	"github.com/jhoicas/tienda-erp-api/internal/application/pricing"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type pricingFixture struct {
	store  *fakes.Store
	cache  *fakes.PriceCache
	lists  *pricing.PriceListUseCase
	portal *pricing.PortalUseCase
}

func newPricingFixture(t *testing.T) *pricingFixture {
	t.Helper()
	s := fakes.NewStore()
	s.AddProduct(&entity.Product{ID: "p1", SKU: "CR-01", Name: "Crema de Limón", Active: true, PricePublic: d("1000")})
	s.AddProduct(&entity.Product{ID: "p2", SKU: "JA-01", Name: "Jabón de avena", Active: true, PricePublic: d("500")})
	s.AddProduct(&entity.Product{ID: "p3", SKU: "OLD", Name: "Discontinuado", Active: false, PricePublic: d("1")})
	s.AddLot(&entity.Lot{ID: "l1", ProductID: "p1", WarehouseID: "w1", InitialQty: d("5"), CurrentQty: d("5")})
	s.AddPriceList(&entity.PriceList{ID: "pub", Name: "Revendedores", Public: true}, map[string]decimal.Decimal{"p1": d("850")})
	s.AddPriceList(&entity.PriceList{ID: "priv", Name: "Interna", Public: false}, nil)

	cache := fakes.NewPriceCache()
	products := fakes.NewProductRepo(s)
	lists := fakes.NewPriceListRepo(s)
	return &pricingFixture{
		store:  s,
		cache:  cache,
		lists:  pricing.NewPriceListUseCase(lists, products, cache, nil),
		portal: pricing.NewPortalUseCase(lists, products, cache, nil, nil),
	}
}

func TestEffectivePrice(t *testing.T) {
	p := &entity.Product{ID: "p1", PricePublic: d("100")}

	price, overridden := pricing.EffectivePrice(p, map[string]decimal.Decimal{"p1": d("80")})
	assert.True(t, price.Equal(d("80")))
	assert.True(t, overridden)

	price, overridden = pricing.EffectivePrice(p, nil)
	assert.True(t, price.Equal(d("100")))
	assert.False(t, overridden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Portal
// ──────────────────────────────────────────────────────────────────────────────

func TestPortal_PreciosEfectivosYDisponibilidad(t *testing.T) {
	f := newPricingFixture(t)

	out, err := f.portal.Get(context.Background(), "pub", "")
	require.NoError(t, err)
	require.Len(t, out.Items, 2, "los productos inactivos no se publican")

	byID := map[string]dto.PortalItem{}
	for _, it := range out.Items {
		byID[it.ProductID] = it
	}
	assert.True(t, byID["p1"].Price.Equal(d("850")))
	assert.True(t, byID["p1"].Overridden)
	assert.True(t, byID["p1"].InStock)
	assert.True(t, byID["p2"].Price.Equal(d("500")))
	assert.False(t, byID["p2"].InStock)
}

func TestPortal_BusquedaSinAcentos(t *testing.T) {
	f := newPricingFixture(t)

	out, err := f.portal.Get(context.Background(), "pub", "JABON")
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "p2", out.Items[0].ProductID)

	out, err = f.portal.Get(context.Background(), "pub", "limon")
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "p1", out.Items[0].ProductID)
}

func TestPortal_ListaPrivadaNoSeExpone(t *testing.T) {
	f := newPricingFixture(t)
	_, err := f.portal.Get(context.Background(), "priv", "")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = f.portal.Get(context.Background(), "nope", "")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPortal_UsaCacheYSeInvalidaAlModificar(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()

	_, err := f.portal.Get(ctx, "pub", "")
	require.NoError(t, err)
	_, err = f.portal.Get(ctx, "pub", "")
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.Hits, "la segunda lectura sale de la caché")

	require.NoError(t, f.lists.SetItemPrice(ctx, "pub", dto.PriceListItemRequest{ProductID: "p2", Price: d("450")}))
	assert.Contains(t, f.cache.Invalidated, "pub")

	out, err := f.portal.Get(ctx, "pub", "jabon")
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.True(t, out.Items[0].Price.Equal(d("450")), "tras invalidar se ve el precio nuevo")
}

// ──────────────────────────────────────────────────────────────────────────────
// Administración de listas
// ──────────────────────────────────────────────────────────────────────────────

func TestPriceList_NombreDuplicado(t *testing.T) {
	f := newPricingFixture(t)
	_, err := f.lists.Create(context.Background(), dto.PriceListRequest{Name: "Revendedores"})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}

func TestPriceList_PrecioDeProductoInexistente(t *testing.T) {
	f := newPricingFixture(t)
	err := f.lists.SetItemPrice(context.Background(), "pub", dto.PriceListItemRequest{ProductID: "nope", Price: d("1")})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPriceList_QuitarPrecioVuelveAlPublico(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()

	require.NoError(t, f.lists.RemoveItem(ctx, "pub", "p1"))
	out, err := f.portal.Get(ctx, "pub", "limon")
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.True(t, out.Items[0].Price.Equal(d("1000")))
	assert.False(t, out.Items[0].Overridden)
}

func TestPriceList_GetConItems(t *testing.T) {
	f := newPricingFixture(t)
	out, err := f.lists.GetByID(context.Background(), "pub")
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "CR-01", out.Items[0].ProductSKU)
}
