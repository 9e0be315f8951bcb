package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

var _ repository.PriceListRepository = (*PriceListRepo)(nil)

// PriceListRepo implementación del puerto PriceListRepository sobre PostgreSQL.
type PriceListRepo struct {
	q Querier
}

// NewPriceListRepository construye el adaptador de persistencia para listas de precios.
func NewPriceListRepository(q Querier) *PriceListRepo {
	return &PriceListRepo{q: q}
}

func (r *PriceListRepo) Create(ctx context.Context, list *entity.PriceList) error {
	query := `
		INSERT INTO price_lists (id, name, description, public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, list.ID, list.Name, list.Description, list.Public, list.CreatedAt, list.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert price list: %w", mapPgError(err, ""))
	}
	return nil
}

func (r *PriceListRepo) GetByID(ctx context.Context, id string) (*entity.PriceList, error) {
	var l entity.PriceList
	err := r.q.QueryRow(ctx,
		`SELECT id, name, description, public, created_at, updated_at FROM price_lists WHERE id = $1`, id,
	).Scan(&l.ID, &l.Name, &l.Description, &l.Public, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get price list: %w", err)
	}
	return &l, nil
}

func (r *PriceListRepo) Update(ctx context.Context, list *entity.PriceList) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE price_lists SET name = $2, description = $3, public = $4, updated_at = $5 WHERE id = $1`,
		list.ID, list.Name, list.Description, list.Public, list.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update price list: %w", mapPgError(err, ""))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la lista y sus ítems (ON DELETE CASCADE).
func (r *PriceListRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM price_lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete price list: %w", mapPgError(err, ""))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PriceListRepo) List(ctx context.Context) ([]*entity.PriceList, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, name, description, public, created_at, updated_at FROM price_lists ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list price lists: %w", err)
	}
	defer rows.Close()
	var list []*entity.PriceList
	for rows.Next() {
		var l entity.PriceList
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.Public, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan price list: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

func (r *PriceListRepo) Items(ctx context.Context, listID string) ([]entity.PriceListItem, error) {
	query := `
		SELECT i.price_list_id, i.product_id, p.sku, p.name, i.price
		FROM price_list_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.price_list_id = $1
		ORDER BY p.name`
	rows, err := r.q.Query(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("list price list items: %w", err)
	}
	defer rows.Close()
	var items []entity.PriceListItem
	for rows.Next() {
		var it entity.PriceListItem
		if err := rows.Scan(&it.PriceListID, &it.ProductID, &it.ProductSKU, &it.ProductName, &it.Price); err != nil {
			return nil, fmt.Errorf("scan price list item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpsertItem fija el precio del producto en la lista.
func (r *PriceListRepo) UpsertItem(ctx context.Context, item entity.PriceListItem) error {
	query := `
		INSERT INTO price_list_items (price_list_id, product_id, price)
		VALUES ($1, $2, $3)
		ON CONFLICT (price_list_id, product_id) DO UPDATE SET price = EXCLUDED.price`
	if _, err := r.q.Exec(ctx, query, item.PriceListID, item.ProductID, item.Price); err != nil {
		return fmt.Errorf("upsert price list item: %w", mapPgError(err, ""))
	}
	return nil
}

func (r *PriceListRepo) DeleteItem(ctx context.Context, listID, productID string) error {
	cmd, err := r.q.Exec(ctx,
		`DELETE FROM price_list_items WHERE price_list_id = $1 AND product_id = $2`, listID, productID)
	if err != nil {
		return fmt.Errorf("delete price list item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
