package sales_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/fakes"
	"github.com/jhoicas/tienda-erp-api/internal/application/sales"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store  *fakes.Store
	tx     *fakes.TxRunner
	create *sales.CreateSaleUseCase
	sales  *sales.SaleUseCase
}

// newFixture siembra un producto "crema" con dos lotes: L-VIEJO vence antes que L-NUEVO.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := fakes.NewStore()
	s.AddWarehouse(&entity.Warehouse{ID: "w1", Name: "Central", IsDefault: true})
	s.AddProduct(&entity.Product{
		ID: "crema", SKU: "CR-01", Name: "Crema facial", Active: true,
		PricePublic: d("1000"), PriceRetail: d("800"), PriceWholesale: d("600"),
	})
	s.AddProduct(&entity.Product{ID: "inactivo", SKU: "IN-01", Name: "Discontinuado", Active: false, PricePublic: d("10")})
	s.AddLot(&entity.Lot{ID: "L-NUEVO", ProductID: "crema", WarehouseID: "w1", LotNumber: "B2", InitialQty: d("10"), CurrentQty: d("10"), ExpiresAt: day("2025-12-31"), CreatedAt: t0})
	s.AddLot(&entity.Lot{ID: "L-VIEJO", ProductID: "crema", WarehouseID: "w1", LotNumber: "A1", InitialQty: d("5"), CurrentQty: d("3"), ExpiresAt: day("2024-06-30"), CreatedAt: t0.Add(time.Hour)})

	tx := fakes.NewTxRunner(s)
	return &fixture{
		store:  s,
		tx:     tx,
		create: sales.NewCreateSaleUseCase(tx, fakes.NewProductRepo(s), fakes.NewPriceListRepo(s), nil),
		sales:  sales.NewSaleUseCase(fakes.NewSaleRepo(s), nil, nil),
	}
}

func cart(qty string) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{Items: []dto.SaleItemRequest{{ProductID: "crema", Quantity: d(qty)}}}
}

// ──────────────────────────────────────────────────────────────────────────────
// Asignación FEFO y descuento de stock
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_ConsumeLotesPorVencimiento(t *testing.T) {
	f := newFixture(t)

	out, err := f.create.Execute(context.Background(), "u1", cart("5"))
	require.NoError(t, err)
	require.Len(t, out.Items, 2, "la venta debe partirse en dos lotes")

	assert.Equal(t, "L-VIEJO", out.Items[0].LotID)
	assert.True(t, out.Items[0].Quantity.Equal(d("3")))
	assert.Equal(t, "L-NUEVO", out.Items[1].LotID)
	assert.True(t, out.Items[1].Quantity.Equal(d("2")))

	assert.True(t, f.store.Lot("L-VIEJO").CurrentQty.IsZero())
	assert.True(t, f.store.Lot("L-NUEVO").CurrentQty.Equal(d("8")))
	assert.True(t, f.store.ProductStock("crema").Equal(d("8")), "el stock total debe bajar en lo vendido")
	assert.Equal(t, 1, f.tx.Commits)
}

func TestCreateSale_StockInsuficienteNoEscribeNada(t *testing.T) {
	f := newFixture(t)

	_, err := f.create.Execute(context.Background(), "u1", cart("14"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.True(t, stockErr.Available.Equal(d("13")))
	assert.True(t, stockErr.Requested.Equal(d("14")))

	assert.Equal(t, 0, f.store.SaleCount(), "no debe quedar cabecera de venta")
	assert.True(t, f.store.ProductStock("crema").Equal(d("13")))
	assert.Equal(t, 1, f.tx.Rollbacks)
}

func TestCreateSale_LoteModificadoConcurrentementeRevierteTodo(t *testing.T) {
	f := newFixture(t)
	f.store.StaleLots["L-NUEVO"] = true

	_, err := f.create.Execute(context.Background(), "u1", cart("5"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAllocationIntegrity))

	var integrity *domain.AllocationIntegrityError
	require.True(t, errors.As(err, &integrity))
	assert.Equal(t, "L-NUEVO", integrity.LotID)

	assert.Equal(t, 0, f.store.SaleCount(), "no debe quedar una venta huérfana")
	assert.True(t, f.store.Lot("L-VIEJO").CurrentQty.Equal(d("3")), "el primer descuento debe revertirse")
}

func TestCreateSale_FallaAlGuardarItemsRevierteCabecera(t *testing.T) {
	f := newFixture(t)
	f.store.AddItemsErr = errors.New("conexión perdida")

	_, err := f.create.Execute(context.Background(), "u1", cart("1"))
	require.Error(t, err)
	assert.Equal(t, 0, f.store.SaleCount())
	assert.True(t, f.store.ProductStock("crema").Equal(d("13")))
}

func TestCreateSale_VariasLineasDelMismoProductoCompartenStock(t *testing.T) {
	f := newFixture(t)
	in := dto.CreateSaleRequest{Items: []dto.SaleItemRequest{
		{ProductID: "crema", Quantity: d("7")},
		{ProductID: "crema", Quantity: d("7")},
	}}

	_, err := f.create.Execute(context.Background(), "u1", in)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock), "7+7 supera las 13 unidades")
	assert.True(t, f.store.ProductStock("crema").Equal(d("13")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Validaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_Validaciones(t *testing.T) {
	cases := []struct {
		name string
		in   dto.CreateSaleRequest
		want error
	}{
		{"sin ítems", dto.CreateSaleRequest{}, domain.ErrInvalidInput},
		{"cantidad cero", cart("0"), domain.ErrInvalidInput},
		{"producto inexistente", dto.CreateSaleRequest{Items: []dto.SaleItemRequest{{ProductID: "nope", Quantity: d("1")}}}, domain.ErrNotFound},
		{"producto inactivo", dto.CreateSaleRequest{Items: []dto.SaleItemRequest{{ProductID: "inactivo", Quantity: d("1")}}}, domain.ErrInvalidInput},
		{"tipo de venta desconocido", dto.CreateSaleRequest{SaleType: "vip", Items: cart("1").Items}, domain.ErrInvalidInput},
		{"canal desconocido", dto.CreateSaleRequest{Channel: "telefono", Items: cart("1").Items}, domain.ErrInvalidInput},
		{"estado desconocido", dto.CreateSaleRequest{Status: "Reservada", Items: cart("1").Items}, domain.ErrInvalidInput},
		{"cantidad con más de tres decimales", cart("1.0005"), domain.ErrInvalidInput},
		{"precio explícito con más de dos decimales", dto.CreateSaleRequest{Items: []dto.SaleItemRequest{{ProductID: "crema", Quantity: d("1"), UnitPrice: dp("0.335")}}}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.create.Execute(context.Background(), "u1", tc.in)
			assert.True(t, errors.Is(err, tc.want), "error inesperado: %v", err)
			assert.Equal(t, 0, f.store.SaleCount())
		})
	}
}

func TestCreateSale_EscalasValidasSeAceptan(t *testing.T) {
	f := newFixture(t)
	in := dto.CreateSaleRequest{Items: []dto.SaleItemRequest{{ProductID: "crema", Quantity: d("1.500"), UnitPrice: dp("10.50")}}}

	out, err := f.create.Execute(context.Background(), "u1", in)
	require.NoError(t, err)
	assert.True(t, out.Subtotal.Equal(d("15.75")), "subtotal: %s", out.Subtotal)
}

func TestCreateSale_CantidadFueraDeEscalaNoTocaStock(t *testing.T) {
	f := newFixture(t)

	_, err := f.create.Execute(context.Background(), "u1", cart("0.0001"))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, f.store.Lot("L-VIEJO").CurrentQty.Equal(d("3")))
	assert.True(t, f.store.Lot("L-NUEVO").CurrentQty.Equal(d("10")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Precios y totales
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_ResolucionDePrecio(t *testing.T) {
	f := newFixture(t)
	listID := "lista-promo"
	f.store.AddPriceList(&entity.PriceList{ID: listID, Name: "Promo"}, map[string]decimal.Decimal{"crema": d("700")})

	t.Run("precio del tipo de venta", func(t *testing.T) {
		out, err := f.create.Execute(context.Background(), "u1", dto.CreateSaleRequest{SaleType: entity.SaleTypeWholesale, Items: cart("1").Items})
		require.NoError(t, err)
		assert.True(t, out.Items[0].UnitPrice.Equal(d("600")))
	})
	t.Run("la lista pisa al tipo de venta", func(t *testing.T) {
		out, err := f.create.Execute(context.Background(), "u1", dto.CreateSaleRequest{PriceListID: &listID, Items: cart("1").Items})
		require.NoError(t, err)
		assert.True(t, out.Items[0].UnitPrice.Equal(d("700")))
	})
	t.Run("el precio explícito pisa a la lista", func(t *testing.T) {
		in := dto.CreateSaleRequest{PriceListID: &listID, Items: []dto.SaleItemRequest{{ProductID: "crema", Quantity: d("1"), UnitPrice: dp("650")}}}
		out, err := f.create.Execute(context.Background(), "u1", in)
		require.NoError(t, err)
		assert.True(t, out.Items[0].UnitPrice.Equal(d("650")))
	})
	t.Run("lista inexistente", func(t *testing.T) {
		missing := "no-existe"
		_, err := f.create.Execute(context.Background(), "u1", dto.CreateSaleRequest{PriceListID: &missing, Items: cart("1").Items})
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestCreateSale_TotalesConImpuesto(t *testing.T) {
	f := newFixture(t)
	in := cart("3")
	in.TaxRate = d("0.21")

	out, err := f.create.Execute(context.Background(), "u1", in)
	require.NoError(t, err)
	assert.True(t, out.Subtotal.Equal(d("3000")))
	assert.True(t, out.Tax.Equal(d("630")))
	assert.True(t, out.Total.Equal(d("3630")))
}

func TestCreateSale_EstadoPorDefectoSegunCanal(t *testing.T) {
	f := newFixture(t)

	local, err := f.create.Execute(context.Background(), "u1", cart("1"))
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusPaid, local.Status)
	assert.NotNil(t, local.PaidAt)
	assert.Equal(t, "Consumidor final", local.CustomerName)

	online, err := f.create.Execute(context.Background(), "u1", dto.CreateSaleRequest{Channel: entity.ChannelOnline, Items: cart("1").Items})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusPending, online.Status)
	assert.Nil(t, online.PaidAt)
}
