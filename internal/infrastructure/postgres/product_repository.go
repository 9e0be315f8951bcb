package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `p.id, p.sku, p.name, p.description, p.price_public, p.price_retail, p.price_wholesale, p.active,
	p.box_length_cm, p.box_width_cm, p.box_height_cm, p.box_gross_weight_kg, p.units_per_box, p.hs_code,
	p.created_at, p.updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// exportColumns columnas logísticas nulas de products.
type exportColumns struct {
	length, width, height, weight decimal.NullDecimal
	unitsPerBox                   *int
	hsCode                        *string
}

func (e *exportColumns) toEntity() *entity.ExportAttributes {
	if !e.length.Valid && !e.width.Valid && !e.height.Valid && !e.weight.Valid && e.unitsPerBox == nil && e.hsCode == nil {
		return nil
	}
	a := &entity.ExportAttributes{
		BoxLengthCM:      e.length.Decimal,
		BoxWidthCM:       e.width.Decimal,
		BoxHeightCM:      e.height.Decimal,
		BoxGrossWeightKG: e.weight.Decimal,
	}
	if e.unitsPerBox != nil {
		a.UnitsPerBox = *e.unitsPerBox
	}
	if e.hsCode != nil {
		a.HSCode = *e.hsCode
	}
	return a
}

func exportArgs(a *entity.ExportAttributes) []any {
	if a == nil {
		return []any{nil, nil, nil, nil, nil, nil}
	}
	return []any{a.BoxLengthCM, a.BoxWidthCM, a.BoxHeightCM, a.BoxGrossWeightKG, a.UnitsPerBox, a.HSCode}
}

func scanProduct(row pgx.Row, extra ...any) (*entity.Product, error) {
	var p entity.Product
	var ex exportColumns
	dest := []any{
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.PricePublic, &p.PriceRetail, &p.PriceWholesale, &p.Active,
		&ex.length, &ex.width, &ex.height, &ex.weight, &ex.unitsPerBox, &ex.hsCode,
		&p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	p.Export = ex.toEntity()
	return &p, nil
}

// Create persiste un nuevo producto. SKU repetido -> ErrDuplicate.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, name, description, price_public, price_retail, price_wholesale, active,
			box_length_cm, box_width_cm, box_height_cm, box_gross_weight_kg, units_per_box, hs_code,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	args := []any{product.ID, product.SKU, product.Name, product.Description,
		product.PricePublic, product.PriceRetail, product.PriceWholesale, product.Active}
	args = append(args, exportArgs(product.Export)...)
	args = append(args, product.CreatedAt, product.UpdatedAt)
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert product: %w", mapPgError(err, ""))
	}
	return nil
}

// GetByID obtiene un producto por ID. nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByIDs obtiene varios productos indexados por ID. Los inexistentes no aparecen en el mapa.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// Update actualiza datos y precios. El stock no se toca: vive en los lotes.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET sku = $2, name = $3, description = $4, price_public = $5, price_retail = $6,
			price_wholesale = $7, active = $8, box_length_cm = $9, box_width_cm = $10, box_height_cm = $11,
			box_gross_weight_kg = $12, units_per_box = $13, hs_code = $14, updated_at = $15
		WHERE id = $1`
	args := []any{product.ID, product.SKU, product.Name, product.Description,
		product.PricePublic, product.PriceRetail, product.PriceWholesale, product.Active}
	args = append(args, exportArgs(product.Export)...)
	args = append(args, product.UpdatedAt)
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", mapPgError(err, ""))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un producto. Con lotes o ventas asociadas -> ErrConflict.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", mapPgError(err, ""))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos con su stock total (suma de lotes).
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]repository.ProductWithStock, error) {
	query := `
		SELECT ` + productColumns + `, COALESCE(SUM(l.current_qty), 0)
		FROM products p
		LEFT JOIN lots l ON l.product_id = p.id
		WHERE ($1 = '' OR p.name ILIKE '%' || $1 || '%' OR p.sku ILIKE '%' || $1 || '%')
		  AND (NOT $2 OR p.active)
		GROUP BY p.id
		ORDER BY p.name
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, filter.Search, filter.OnlyActive, limitArg(filter.Limit), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []repository.ProductWithStock
	for rows.Next() {
		var stock decimal.Decimal
		p, err := scanProduct(rows, &stock)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, repository.ProductWithStock{Product: p, StockTotal: stock})
	}
	return list, rows.Err()
}

// StockByWarehouse agrega el stock del producto por depósito.
func (r *ProductRepo) StockByWarehouse(ctx context.Context, productID string) ([]entity.WarehouseStock, error) {
	query := `
		SELECT w.id, w.name, COALESCE(SUM(l.current_qty), 0)
		FROM lots l
		JOIN warehouses w ON w.id = l.warehouse_id
		WHERE l.product_id = $1
		GROUP BY w.id, w.name
		ORDER BY w.name`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("stock by warehouse: %w", err)
	}
	defer rows.Close()
	var list []entity.WarehouseStock
	for rows.Next() {
		var ws entity.WarehouseStock
		if err := rows.Scan(&ws.WarehouseID, &ws.WarehouseName, &ws.Quantity); err != nil {
			return nil, fmt.Errorf("scan warehouse stock: %w", err)
		}
		list = append(list, ws)
	}
	return list, rows.Err()
}

// SetSupplies reemplaza la lista de materiales en una única sentencia:
// borra los insumos que ya no figuran y hace upsert del resto.
func (r *ProductRepo) SetSupplies(ctx context.Context, productID string, supplies []entity.ProductSupply) error {
	ids := make([]string, len(supplies))
	qtys := make([]decimal.Decimal, len(supplies))
	for i, s := range supplies {
		ids[i] = s.SupplyID
		qtys[i] = s.Quantity
	}
	query := `
		WITH input AS (
			SELECT * FROM unnest($2::uuid[], $3::numeric[]) AS s(supply_id, quantity)
		), removed AS (
			DELETE FROM product_supplies ps
			WHERE ps.product_id = $1 AND ps.supply_id NOT IN (SELECT supply_id FROM input)
		)
		INSERT INTO product_supplies (product_id, supply_id, quantity)
		SELECT $1, supply_id, quantity FROM input
		ON CONFLICT (product_id, supply_id) DO UPDATE SET quantity = EXCLUDED.quantity`
	if _, err := r.q.Exec(ctx, query, productID, ids, qtys); err != nil {
		return fmt.Errorf("set product supplies: %w", mapPgError(err, ""))
	}
	return nil
}

// GetSupplies devuelve la lista de materiales con el costo actual de cada insumo.
func (r *ProductRepo) GetSupplies(ctx context.Context, productID string) ([]entity.ProductSupply, error) {
	query := `
		SELECT ps.product_id, ps.supply_id, s.name, s.unit_cost, ps.quantity
		FROM product_supplies ps
		JOIN supplies s ON s.id = ps.supply_id
		WHERE ps.product_id = $1
		ORDER BY s.name`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("get product supplies: %w", err)
	}
	defer rows.Close()
	var list []entity.ProductSupply
	for rows.Next() {
		var ps entity.ProductSupply
		if err := rows.Scan(&ps.ProductID, &ps.SupplyID, &ps.SupplyName, &ps.UnitCost, &ps.Quantity); err != nil {
			return nil, fmt.Errorf("scan product supply: %w", err)
		}
		list = append(list, ps)
	}
	return list, rows.Err()
}
