package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier es el subconjunto común de *pgxpool.Pool y pgx.Tx que usan los repositorios.
// Un mismo repositorio funciona fuera o dentro de una transacción según lo que reciba.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// limitArg convierte un límite no positivo en NULL (LIMIT NULL = sin límite).
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
