package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/fakes"
	"github.com/jhoicas/tienda-erp-api/internal/application/usecase"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newProductUseCase(s *fakes.Store) *usecase.ProductUseCase {
	return usecase.NewProductUseCase(fakes.NewProductRepo(s), fakes.NewLotRepo(s), fakes.NewWarehouseRepo(s), fakes.NewSupplyRepo(s), nil, nil, nil)
}

// seedStock siembra un producto con lotes en dos depósitos.
func seedStock(s *fakes.Store) {
	s.AddWarehouse(&entity.Warehouse{ID: "w1", Name: "Central", IsDefault: true})
	s.AddWarehouse(&entity.Warehouse{ID: "w2", Name: "Sucursal"})
	s.AddProduct(&entity.Product{ID: "p1", SKU: "JB-01", Name: "Jabón de avena", Active: true, PricePublic: d("500")})
	s.AddLot(&entity.Lot{ID: "l1", ProductID: "p1", WarehouseID: "w1", InitialQty: d("10"), CurrentQty: d("4"), CreatedAt: t0})
	s.AddLot(&entity.Lot{ID: "l2", ProductID: "p1", WarehouseID: "w1", InitialQty: d("5"), CurrentQty: d("5"), CreatedAt: t0})
	s.AddLot(&entity.Lot{ID: "l3", ProductID: "p1", WarehouseID: "w2", InitialQty: d("8"), CurrentQty: d("2.5"), CreatedAt: t0})
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock derivado de lotes
// ──────────────────────────────────────────────────────────────────────────────

func TestGetProductStock_SumaLotesYDesglosaPorDeposito(t *testing.T) {
	s := fakes.NewStore()
	seedStock(s)
	uc := newProductUseCase(s)

	out, err := uc.GetProductStock(context.Background(), "p1")
	require.NoError(t, err)

	assert.True(t, out.StockTotal.Equal(d("11.5")), "stock total = suma de lotes, obtenido %s", out.StockTotal)
	assert.True(t, out.Product.StockTotal.Equal(out.StockTotal))
	assert.Len(t, out.Lots, 3)
	require.Len(t, out.ByWarehouse, 2)
	assert.Equal(t, "Central", out.ByWarehouse[0].WarehouseName)
	assert.True(t, out.ByWarehouse[0].Quantity.Equal(d("9")))
	assert.True(t, out.ByWarehouse[1].Quantity.Equal(d("2.5")))
}

func TestGetProductStock_ProductoInexistente(t *testing.T) {
	uc := newProductUseCase(fakes.NewStore())

	_, err := uc.GetProductStock(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_IncluyeStockAgregado(t *testing.T) {
	s := fakes.NewStore()
	seedStock(s)
	uc := newProductUseCase(s)

	out, err := uc.List(context.Background(), "avena", true, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.True(t, out.Items[0].StockTotal.Equal(d("11.5")))
	assert.Equal(t, 20, out.Page.Limit, "límite por defecto")
}

// ──────────────────────────────────────────────────────────────────────────────
// Alta y modificación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateProduct_SKUDuplicado(t *testing.T) {
	s := fakes.NewStore()
	seedStock(s)
	uc := newProductUseCase(s)

	_, err := uc.Create(context.Background(), dto.CreateProductRequest{SKU: "JB-01", Name: "Otro", PricePublic: d("1")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateProduct_PrecioNegativo(t *testing.T) {
	uc := newProductUseCase(fakes.NewStore())

	_, err := uc.Create(context.Background(), dto.CreateProductRequest{SKU: "X", Name: "X", PricePublic: d("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateProduct_ActivoPorDefecto(t *testing.T) {
	uc := newProductUseCase(fakes.NewStore())

	out, err := uc.Create(context.Background(), dto.CreateProductRequest{SKU: " CR-02 ", Name: "Crema", PricePublic: d("100")})
	require.NoError(t, err)
	assert.True(t, out.Active)
	assert.Equal(t, "CR-02", out.SKU)
	assert.True(t, out.StockTotal.IsZero())
}

func TestUpdateProduct_SoloCamposPresentes(t *testing.T) {
	s := fakes.NewStore()
	seedStock(s)
	uc := newProductUseCase(s)
	price := d("650")

	out, err := uc.Update(context.Background(), "p1", dto.UpdateProductRequest{PricePublic: &price})
	require.NoError(t, err)
	assert.True(t, out.PricePublic.Equal(price))
	assert.Equal(t, "Jabón de avena", out.Name, "el nombre no debe cambiar")
	assert.True(t, out.StockTotal.Equal(d("11.5")))
}

func TestUpdateProduct_InvalidaListasPublicasCacheadas(t *testing.T) {
	s := fakes.NewStore()
	seedStock(s)
	s.AddPriceList(&entity.PriceList{ID: "portal", Name: "Portal", Public: true}, nil)
	s.AddPriceList(&entity.PriceList{ID: "interna", Name: "Interna"}, nil)
	cache := fakes.NewPriceCache()
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "portal", []byte(`{"items":[]}`)))
	uc := usecase.NewProductUseCase(fakes.NewProductRepo(s), fakes.NewLotRepo(s), fakes.NewWarehouseRepo(s), fakes.NewSupplyRepo(s),
		fakes.NewPriceListRepo(s), cache, nil)
	price := d("650")

	_, err := uc.Update(ctx, "p1", dto.UpdateProductRequest{PricePublic: &price})
	require.NoError(t, err)

	_, ok, err := cache.Get(ctx, "portal")
	require.NoError(t, err)
	assert.False(t, ok, "el portal no debe seguir sirviendo el precio anterior")
	assert.Equal(t, []string{"portal"}, cache.Invalidated)
}

func TestUpdateProduct_FallidoNoInvalida(t *testing.T) {
	s := fakes.NewStore()
	seedStock(s)
	s.AddPriceList(&entity.PriceList{ID: "portal", Name: "Portal", Public: true}, nil)
	cache := fakes.NewPriceCache()
	uc := usecase.NewProductUseCase(fakes.NewProductRepo(s), fakes.NewLotRepo(s), fakes.NewWarehouseRepo(s), fakes.NewSupplyRepo(s),
		fakes.NewPriceListRepo(s), cache, nil)
	negative := d("-1")

	_, err := uc.Update(context.Background(), "p1", dto.UpdateProductRequest{PricePublic: &negative})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, cache.Invalidated)
}

func TestDeleteProduct_ConLotesEsConflicto(t *testing.T) {
	s := fakes.NewStore()
	seedStock(s)
	uc := newProductUseCase(s)

	err := uc.Delete(context.Background(), "p1")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes y lista de materiales
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateLot_CantidadInicialIgualActual(t *testing.T) {
	s := fakes.NewStore()
	seedStock(s)
	uc := newProductUseCase(s)

	lot, err := uc.CreateLot(context.Background(), "p1", dto.CreateLotRequest{
		WarehouseID: "w2", LotNumber: "C3", Quantity: d("12"), Cost: d("120"),
	})
	require.NoError(t, err)
	assert.True(t, lot.InitialQty.Equal(d("12")))
	assert.True(t, lot.CurrentQty.Equal(d("12")))
	assert.True(t, s.ProductStock("p1").Equal(d("23.5")))
}

func TestCreateLot_DepositoInexistente(t *testing.T) {
	s := fakes.NewStore()
	seedStock(s)
	uc := newProductUseCase(s)

	_, err := uc.CreateLot(context.Background(), "p1", dto.CreateLotRequest{WarehouseID: "w9", Quantity: d("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateLot_CantidadCero(t *testing.T) {
	s := fakes.NewStore()
	seedStock(s)
	uc := newProductUseCase(s)

	_, err := uc.CreateLot(context.Background(), "p1", dto.CreateLotRequest{WarehouseID: "w1", Quantity: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSetSupplies_DevuelveCostoVigente(t *testing.T) {
	s := fakes.NewStore()
	seedStock(s)
	s.AddSupply(&entity.Supply{ID: "s1", Name: "Avena", UnitMeasure: "kg", UnitCost: d("300")})
	uc := newProductUseCase(s)

	out, err := uc.SetSupplies(context.Background(), "p1", dto.SetProductSuppliesRequest{
		Supplies: []dto.ProductSupplyDTO{{SupplyID: "s1", Quantity: d("0.2")}},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Avena", out[0].SupplyName)
	assert.True(t, out[0].UnitCost.Equal(d("300")))
}

func TestSetSupplies_InsumoRepetido(t *testing.T) {
	s := fakes.NewStore()
	seedStock(s)
	s.AddSupply(&entity.Supply{ID: "s1", Name: "Avena"})
	uc := newProductUseCase(s)

	_, err := uc.SetSupplies(context.Background(), "p1", dto.SetProductSuppliesRequest{
		Supplies: []dto.ProductSupplyDTO{{SupplyID: "s1", Quantity: d("1")}, {SupplyID: "s1", Quantity: d("2")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
