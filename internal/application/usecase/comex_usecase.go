package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/comex"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

// ComexUseCase cotizaciones de exportación.
type ComexUseCase struct {
	productRepo repository.ProductRepository
}

// NewComexUseCase construye el caso de uso.
func NewComexUseCase(productRepo repository.ProductRepository) *ComexUseCase {
	return &ComexUseCase{productRepo: productRepo}
}

// Quote cotiza FOB y CIF en moneda extranjera. Productos sin datos logísticos -> domain.ErrInvalidInput.
func (uc *ComexUseCase) Quote(ctx context.Context, in dto.QuoteRequest) (*dto.QuoteResponse, error) {
	p, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if p.Export == nil {
		return nil, fmt.Errorf("%w: el producto %q no tiene datos de exportación", domain.ErrInvalidInput, p.Name)
	}
	q, err := comex.Calculate(p, comex.QuoteInput{
		Units:        in.Units,
		ExchangeRate: in.ExchangeRate,
		FreightPerKG: in.FreightPerKG,
		InsurancePct: in.InsurancePct,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, fmt.Errorf("%w: unidades, tipo de cambio, flete o seguro fuera de rango", domain.ErrInvalidInput)
		}
		return nil, err
	}
	return &dto.QuoteResponse{
		ProductID:          p.ID,
		SKU:                p.SKU,
		ProductName:        p.Name,
		HSCode:             q.HSCode,
		Units:              q.Units,
		Boxes:              q.Boxes,
		GrossWeightKG:      q.GrossWeightKG,
		VolumeM3:           q.VolumeM3,
		VolumetricWeightKG: q.VolumetricWeightKG,
		ChargeableWeightKG: q.ChargeableWeightKG,
		UnitFOB:            q.UnitFOB,
		FOB:                q.FOB,
		Freight:            q.Freight,
		Insurance:          q.Insurance,
		CIF:                q.CIF,
	}, nil
}
