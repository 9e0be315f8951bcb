package inventory_test

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
	"github.com/jhoicas/tienda-erp-api/internal/application/inventory"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTransferFixture(t *testing.T) (*fakes.Store, *inventory.TransferUseCase) {
	t.Helper()
	s := fakes.NewStore()
	s.AddProduct(&entity.Product{ID: "p1", Name: "Sérum"})
	s.AddWarehouse(&entity.Warehouse{ID: "w1", Name: "Central"})
	s.AddWarehouse(&entity.Warehouse{ID: "w2", Name: "Sucursal"})
	exp := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	s.AddLot(&entity.Lot{ID: "src", ProductID: "p1", WarehouseID: "w1", LotNumber: "A1", InitialQty: d("10"), CurrentQty: d("10"), ExpiresAt: &exp})
	uc := inventory.NewTransferUseCase(fakes.NewLotRepo(s), fakes.NewWarehouseRepo(s), fakes.NewTransferRepo(s), nil)
	return s, uc
}

func TestTransfer_CreaLoteEnDestinoYRegistraHistorial(t *testing.T) {
	s, uc := newTransferFixture(t)

	out, err := uc.Transfer(context.Background(), "u1", dto.TransferRequest{SourceLotID: "src", DestWarehouseID: "w2", Quantity: d("4")})
	require.NoError(t, err)

	assert.True(t, s.Lot("src").CurrentQty.Equal(d("6")))
	dest := s.Lot(out.DestLotID)
	require.NotNil(t, dest)
	assert.Equal(t, "w2", dest.WarehouseID)
	assert.Equal(t, "A1", dest.LotNumber, "el lote destino conserva el número de lote")
	assert.True(t, dest.CurrentQty.Equal(d("4")))
	assert.True(t, s.ProductStock("p1").Equal(d("10")), "la transferencia no cambia el stock total")

	require.Len(t, s.Transfers(), 1)
	assert.Equal(t, "u1", s.Transfers()[0].ActorID)
}

func TestTransfer_SegundaTransferenciaSeFusionaEnElMismoLote(t *testing.T) {
	s, uc := newTransferFixture(t)
	ctx := context.Background()

	first, err := uc.Transfer(ctx, "u1", dto.TransferRequest{SourceLotID: "src", DestWarehouseID: "w2", Quantity: d("3")})
	require.NoError(t, err)
	second, err := uc.Transfer(ctx, "u1", dto.TransferRequest{SourceLotID: "src", DestWarehouseID: "w2", Quantity: d("2")})
	require.NoError(t, err)

	assert.Equal(t, first.DestLotID, second.DestLotID)
	assert.True(t, s.Lot(first.DestLotID).CurrentQty.Equal(d("5")))

	hist, err := uc.History(ctx, "p1", 0)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.True(t, hist[0].Quantity.Equal(d("2")), "el historial va del más reciente al más viejo")
}

func TestTransfer_ValidacionesNoLlamanAlProcedimiento(t *testing.T) {
	cases := []struct {
		name string
		in   dto.TransferRequest
		want error
	}{
		{"mismo depósito", dto.TransferRequest{SourceLotID: "src", DestWarehouseID: "w1", Quantity: d("1")}, domain.ErrSameWarehouseTransfer},
		{"cantidad mayor al lote", dto.TransferRequest{SourceLotID: "src", DestWarehouseID: "w2", Quantity: d("11")}, domain.ErrInsufficientSourceStock},
		{"cantidad cero", dto.TransferRequest{SourceLotID: "src", DestWarehouseID: "w2", Quantity: d("0")}, domain.ErrInvalidInput},
		{"lote inexistente", dto.TransferRequest{SourceLotID: "nope", DestWarehouseID: "w2", Quantity: d("1")}, domain.ErrNotFound},
		{"depósito inexistente", dto.TransferRequest{SourceLotID: "src", DestWarehouseID: "nope", Quantity: d("1")}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, uc := newTransferFixture(t)
			_, err := uc.Transfer(context.Background(), "u1", tc.in)
			assert.True(t, errors.Is(err, tc.want), "error inesperado: %v", err)
			assert.Equal(t, 0, s.TransferCalls)
			assert.True(t, s.Lot("src").CurrentQty.Equal(d("10")))
		})
	}
}
