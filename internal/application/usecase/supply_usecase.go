package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

// SupplyUseCase insumos de producción.
type SupplyUseCase struct {
	repo repository.SupplyRepository
}

// NewSupplyUseCase construye el caso de uso.
func NewSupplyUseCase(repo repository.SupplyRepository) *SupplyUseCase {
	return &SupplyUseCase{repo: repo}
}

// Create crea un insumo. Nombre repetido -> domain.ErrDuplicate.
func (uc *SupplyUseCase) Create(ctx context.Context, in dto.SupplyRequest) (*dto.SupplyResponse, error) {
	if in.Stock.IsNegative() || in.UnitCost.IsNegative() {
		return nil, fmt.Errorf("%w: stock y costo no pueden ser negativos", domain.ErrInvalidInput)
	}
	now := time.Now()
	s := &entity.Supply{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		UnitMeasure: in.UnitMeasure,
		Stock:       in.Stock,
		UnitCost:    in.UnitCost,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if s.Name == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toSupplyResponse(s), nil
}

// List lista los insumos.
func (uc *SupplyUseCase) List(ctx context.Context) ([]dto.SupplyResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplyResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *toSupplyResponse(s))
	}
	return out, nil
}

// Update modifica nombre, unidad y costo. El stock solo cambia con AddStock.
func (uc *SupplyUseCase) Update(ctx context.Context, id string, in dto.SupplyRequest) (*dto.SupplyResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if in.UnitCost.IsNegative() {
		return nil, fmt.Errorf("%w: costo negativo", domain.ErrInvalidInput)
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		s.Name = name
	}
	if in.UnitMeasure != "" {
		s.UnitMeasure = in.UnitMeasure
	}
	s.UnitCost = in.UnitCost
	s.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return toSupplyResponse(s), nil
}

// Delete elimina un insumo que no esté en ninguna lista de materiales.
func (uc *SupplyUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

// AddStock ingresa stock; el costo unitario pasa a ser el promedio ponderado.
func (uc *SupplyUseCase) AddStock(ctx context.Context, id string, in dto.AddSupplyStockRequest) (*dto.SupplyResponse, error) {
	if !in.Quantity.IsPositive() || in.UnitCost.IsNegative() {
		return nil, fmt.Errorf("%w: cantidad debe ser mayor a cero y costo no negativo", domain.ErrInvalidInput)
	}
	s, err := uc.repo.AddStock(ctx, id, in.Quantity, in.UnitCost)
	if err != nil {
		return nil, err
	}
	return toSupplyResponse(s), nil
}

func toSupplyResponse(s *entity.Supply) *dto.SupplyResponse {
	return &dto.SupplyResponse{
		ID:          s.ID,
		Name:        s.Name,
		UnitMeasure: s.UnitMeasure,
		Stock:       s.Stock,
		UnitCost:    s.UnitCost,
		UpdatedAt:   s.UpdatedAt,
	}
}
