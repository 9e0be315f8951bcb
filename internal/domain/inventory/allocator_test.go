package inventory_test

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

var t0 = time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)

// ──────────────────────────────────────────────────────────────────────────────
// Orden FEFO
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocate_VenceAntesSeConsumePrimero(t *testing.T) {
	lots := []inventory.LotSnapshot{
		{LotID: "B", Remaining: d("3"), ExpiresAt: date("2024-03-01"), CreatedAt: t0},
		{LotID: "A", Remaining: d("5"), ExpiresAt: date("2024-01-01"), CreatedAt: t0.Add(time.Hour)},
	}
	out, err := inventory.Allocate(inventory.AllocationRequest{ProductID: "p1", Quantity: d("6")}, lots)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "A", out[0].LotID)
	assert.True(t, out[0].Quantity.Equal(d("5")))
	assert.Equal(t, "B", out[1].LotID)
	assert.True(t, out[1].Quantity.Equal(d("1")))
}

func TestAllocate_LotesSinVencimientoVanAlFinalYDesempatanPorCreacion(t *testing.T) {
	lots := []inventory.LotSnapshot{
		{LotID: "sin-venc-nuevo", Remaining: d("10"), CreatedAt: t0.Add(48 * time.Hour)},
		{LotID: "sin-venc-viejo", Remaining: d("10"), CreatedAt: t0},
		{LotID: "con-venc", Remaining: d("2"), ExpiresAt: date("2030-01-01"), CreatedAt: t0.Add(72 * time.Hour)},
	}
	out, err := inventory.Allocate(inventory.AllocationRequest{ProductID: "p1", Quantity: d("5")}, lots)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "con-venc", out[0].LotID)
	assert.Equal(t, "sin-venc-viejo", out[1].LotID)
	assert.True(t, out[1].Quantity.Equal(d("3")))
}

func TestAllocate_EmpateTotalSeResuelvePorID(t *testing.T) {
	lots := []inventory.LotSnapshot{
		{LotID: "z", Remaining: d("1"), CreatedAt: t0},
		{LotID: "a", Remaining: d("1"), CreatedAt: t0},
	}
	out, err := inventory.Allocate(inventory.AllocationRequest{Quantity: d("1")}, lots)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].LotID)
}

func TestAllocate_NoModificaElSnapshot(t *testing.T) {
	lots := []inventory.LotSnapshot{
		{LotID: "B", Remaining: d("3"), ExpiresAt: date("2024-03-01")},
		{LotID: "A", Remaining: d("5"), ExpiresAt: date("2024-01-01")},
	}
	_, err := inventory.Allocate(inventory.AllocationRequest{Quantity: d("6")}, lots)
	require.NoError(t, err)
	assert.Equal(t, "B", lots[0].LotID, "el orden del snapshot original no cambia")
	assert.True(t, lots[1].Remaining.Equal(d("5")), "las cantidades del snapshot no cambian")
}

// ──────────────────────────────────────────────────────────────────────────────
// Casos de error
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocate_StockInsuficienteSinAsignacionParcial(t *testing.T) {
	lots := []inventory.LotSnapshot{
		{LotID: "A", Remaining: d("5")},
		{LotID: "B", Remaining: d("3")},
	}
	out, err := inventory.Allocate(inventory.AllocationRequest{ProductID: "p1", ProductName: "Crema", Quantity: d("9")}, lots)
	assert.Nil(t, out)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Crema", stockErr.ProductName)
	assert.True(t, stockErr.Requested.Equal(d("9")))
	assert.True(t, stockErr.Available.Equal(d("8")))
}

func TestAllocate_LotesConMenosDeUnaUnidadSeExcluyen(t *testing.T) {
	lots := []inventory.LotSnapshot{
		{LotID: "resto", Remaining: d("0.5"), ExpiresAt: date("2024-01-01")},
	}
	_, err := inventory.Allocate(inventory.AllocationRequest{Quantity: d("0.3")}, lots)
	require.ErrorIs(t, err, domain.ErrInsufficientStock, "un lote con 0.5 no es stock utilizable aunque se pidan 0.3")

	lots = append(lots, inventory.LotSnapshot{LotID: "entero", Remaining: d("2"), ExpiresAt: date("2025-01-01")})
	out, err := inventory.Allocate(inventory.AllocationRequest{Quantity: d("1.5")}, lots)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "entero", out[0].LotID)
}

func TestAllocate_CantidadNoPositivaEsInvalida(t *testing.T) {
	_, err := inventory.Allocate(inventory.AllocationRequest{Quantity: decimal.Zero}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocate_PropiedadSumaExactaYSinExceso(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 500; iter++ {
		n := rng.Intn(6) + 1
		lots := make([]inventory.LotSnapshot, n)
		byID := map[string]decimal.Decimal{}
		available := decimal.Zero
		for i := range lots {
			rem := decimal.NewFromInt(int64(rng.Intn(20)))
			if rng.Intn(4) == 0 {
				rem = rem.Add(d("0.25"))
			}
			l := inventory.LotSnapshot{
				LotID:     string(rune('a' + i)),
				Remaining: rem,
				CreatedAt: t0.Add(time.Duration(rng.Intn(100)) * time.Hour),
			}
			if rng.Intn(2) == 0 {
				exp := t0.AddDate(0, rng.Intn(24), 0)
				l.ExpiresAt = &exp
			}
			lots[i] = l
			byID[l.LotID] = rem
			if rem.GreaterThanOrEqual(d("1")) {
				available = available.Add(rem)
			}
		}
		requested := decimal.NewFromInt(int64(rng.Intn(60) + 1))

		out, err := inventory.Allocate(inventory.AllocationRequest{ProductID: "p", Quantity: requested}, lots)
		if requested.GreaterThan(available) {
			require.ErrorIs(t, err, domain.ErrInsufficientStock)
			require.Nil(t, out)
			continue
		}
		require.NoError(t, err)
		assert.True(t, inventory.TotalAllocated(out, "p").Equal(requested), "la suma asignada debe ser exacta")
		for _, a := range out {
			assert.True(t, a.Quantity.LessThanOrEqual(byID[a.LotID]), "nunca más que lo restante del lote")
			assert.True(t, a.Quantity.IsPositive())
			assert.True(t, byID[a.LotID].GreaterThanOrEqual(d("1")))
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Carrito
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocateCart_LineasRepetidasVenElStockRestante(t *testing.T) {
	lots := map[string][]inventory.LotSnapshot{
		"p1": {
			{LotID: "A", Remaining: d("5"), ExpiresAt: date("2024-01-01")},
			{LotID: "B", Remaining: d("3"), ExpiresAt: date("2024-03-01")},
		},
	}
	out, err := inventory.AllocateCart([]inventory.AllocationRequest{
		{ProductID: "p1", Quantity: d("4")},
		{ProductID: "p1", Quantity: d("3")},
	}, lots)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "A", out[0].LotID)
	assert.True(t, out[0].Quantity.Equal(d("4")))
	assert.Equal(t, "A", out[1].LotID)
	assert.True(t, out[1].Quantity.Equal(d("1")))
	assert.Equal(t, "B", out[2].LotID)
	assert.True(t, out[2].Quantity.Equal(d("2")))
}

func TestAllocateCart_FallaCompletoSiUnaLineaNoAlcanza(t *testing.T) {
	lots := map[string][]inventory.LotSnapshot{
		"p1": {{LotID: "A", Remaining: d("5")}},
		"p2": {{LotID: "C", Remaining: d("1")}},
	}
	out, err := inventory.AllocateCart([]inventory.AllocationRequest{
		{ProductID: "p1", Quantity: d("2")},
		{ProductID: "p2", Quantity: d("2")},
	}, lots)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}
