package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, customer_id, customer_name, customer_email, sale_date, subtotal, tax, total, sale_type, channel,
	status, payment_method, payment_id, preference_id, paid_at, price_list_id, created_by, created_at, updated_at`

// SaleRepo implementación del puerto SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de persistencia para ventas.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var createdBy *string
	err := row.Scan(
		&s.ID, &s.CustomerID, &s.CustomerName, &s.CustomerEmail, &s.Date, &s.Subtotal, &s.Tax, &s.Total,
		&s.SaleType, &s.Channel, &s.Status, &s.PaymentMethod, &s.PaymentID, &s.PreferenceID, &s.PaidAt,
		&s.PriceListID, &createdBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		s.CreatedBy = *createdBy
	}
	return &s, nil
}

func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}

// Create persiste la cabecera de la venta.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		sale.ID, sale.CustomerID, sale.CustomerName, sale.CustomerEmail, sale.Date, sale.Subtotal, sale.Tax,
		sale.Total, sale.SaleType, sale.Channel, sale.Status, sale.PaymentMethod, sale.PaymentID,
		sale.PreferenceID, sale.PaidAt, sale.PriceListID, nullableID(sale.CreatedBy), sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", mapPgError(err, ""))
	}
	return nil
}

// AddItems inserta las líneas de la venta.
func (r *SaleRepo) AddItems(ctx context.Context, saleID string, items []entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, lot_id, quantity, unit_price, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, it := range items {
		if _, err := r.q.Exec(ctx, query, it.ID, saleID, it.ProductID, it.LotID, it.Quantity, it.UnitPrice, it.Position); err != nil {
			return fmt.Errorf("insert sale item: %w", mapPgError(err, ""))
		}
	}
	return nil
}

// GetByID obtiene la venta con sus ítems. nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	items, err := r.items(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return s, nil
}

func (r *SaleRepo) items(ctx context.Context, saleID string) ([]entity.SaleItem, error) {
	query := `
		SELECT si.id, si.sale_id, si.product_id, p.name, si.lot_id, si.quantity, si.unit_price, si.position
		FROM sale_items si
		JOIN products p ON p.id = si.product_id
		WHERE si.sale_id = $1
		ORDER BY si.position, si.id`
	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	var items []entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName, &it.LotID,
			&it.Quantity, &it.UnitPrice, &it.Position); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// List lista cabeceras de venta (sin ítems), más recientes primero.
func (r *SaleRepo) List(ctx context.Context, filter repository.SaleFilter) ([]*entity.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR channel = $2)
		  AND ($3::timestamptz IS NULL OR sale_date >= $3)
		  AND ($4::timestamptz IS NULL OR sale_date < $4)
		ORDER BY sale_date DESC
		LIMIT $5 OFFSET $6`
	rows, err := r.q.Query(ctx, query,
		filter.Status, filter.Channel, filter.From, filter.To, limitArg(filter.Limit), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// UpdateStatus cambia el estado. El CHECK de la tabla rechaza estados fuera del conjunto.
func (r *SaleRepo) UpdateStatus(ctx context.Context, id, status string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE sales SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update sale status: %w", mapPgError(err, ""))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetPreference guarda el id de preferencia de checkout.
func (r *SaleRepo) SetPreference(ctx context.Context, id, preferenceID string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE sales SET preference_id = $2, payment_method = 'mercadopago', updated_at = now() WHERE id = $1`,
		id, preferenceID,
	)
	if err != nil {
		return fmt.Errorf("set sale preference: %w", mapPgError(err, ""))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkPaid es la transición idempotente a Pagada: solo desde Pendiente o Carrito Abandonado.
func (r *SaleRepo) MarkPaid(ctx context.Context, id, paymentID string, paidAt time.Time) (bool, error) {
	query := `
		UPDATE sales
		SET status = 'Pagada', payment_id = $2, paid_at = $3, payment_method = 'mercadopago', updated_at = now()
		WHERE id = $1 AND status IN ('Pendiente', 'Carrito Abandonado')`
	cmd, err := r.q.Exec(ctx, query, id, paymentID, paidAt)
	if err != nil {
		return false, fmt.Errorf("mark sale paid: %w", mapPgError(err, ""))
	}
	return cmd.RowsAffected() == 1, nil
}

// MarkAbandoned marca los carritos online pendientes creados antes de olderThan.
func (r *SaleRepo) MarkAbandoned(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `
		UPDATE sales SET status = 'Carrito Abandonado', updated_at = now()
		WHERE channel = 'online' AND status = 'Pendiente' AND created_at < $1`
	cmd, err := r.q.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("mark abandoned carts: %w", mapPgError(err, ""))
	}
	return cmd.RowsAffected(), nil
}

// DeleteRestoringStock devuelve el stock a los lotes y elimina la venta (procedimiento remoto).
func (r *SaleRepo) DeleteRestoringStock(ctx context.Context, id string) error {
	return execProcedure(ctx, r.q, ProcRestoreStockAndDeleteSale, id)
}
