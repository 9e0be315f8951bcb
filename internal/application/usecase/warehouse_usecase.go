package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

// WarehouseTxRunner ejecuta fn con un repositorio de depósitos atado a una transacción.
type WarehouseTxRunner interface {
	RunWarehouses(ctx context.Context, fn func(repository.WarehouseRepository) error) error
}

// WarehouseUseCase casos de uso CRUD para depósitos.
type WarehouseUseCase struct {
	repo repository.WarehouseRepository
	tx   WarehouseTxRunner
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(repo repository.WarehouseRepository, tx WarehouseTxRunner) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo, tx: tx}
}

// Create crea un nuevo depósito (nunca como predeterminado; usar SetDefault).
func (uc *WarehouseUseCase) Create(ctx context.Context, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	now := time.Now()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if warehouse.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene un depósito por ID.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}
	return toWarehouseResponse(warehouse), nil
}

// Update actualiza un depósito.
func (uc *WarehouseUseCase) Update(ctx context.Context, id string, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		warehouse.Name = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		warehouse.Address = *in.Address
	}
	warehouse.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// List lista depósitos con paginación; el predeterminado primero.
func (uc *WarehouseUseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.WarehouseResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return items, nil
}

// Delete elimina un depósito sin lotes.
func (uc *WarehouseUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

// SetDefault marca el depósito como predeterminado y desmarca el anterior en una transacción.
// Si otra petición concurrente gana, el índice único devuelve domain.ErrDuplicate.
func (uc *WarehouseUseCase) SetDefault(ctx context.Context, id string) (*dto.WarehouseResponse, error) {
	err := uc.tx.RunWarehouses(ctx, func(repo repository.WarehouseRepository) error {
		w, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if w == nil {
			return domain.ErrNotFound
		}
		if err := repo.ClearDefault(ctx); err != nil {
			return err
		}
		return repo.MarkDefault(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	return &dto.WarehouseResponse{
		ID:        w.ID,
		Name:      w.Name,
		Address:   w.Address,
		IsDefault: w.IsDefault,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
