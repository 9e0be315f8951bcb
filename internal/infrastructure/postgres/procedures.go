package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

//go:embed migrations/*.sql migrations/procedures/*.sql
var migrationsFS embed.FS

// Procedimientos remotos que la API espera encontrar en la base.
const (
	ProcRestoreStockAndDeleteSale = "restore_stock_and_delete_sale"
	ProcTransferStock             = "transfer_stock"
	ProcListTransferHistory       = "list_transfer_history"
	ProcAddInsumoStock            = "add_insumo_stock"
	ProcListUsersAsAdmin          = "list_users_as_admin"
	ProcUpdateUserRoles           = "update_user_roles"
	ProcApproveAccessRequest      = "approve_access_request"
	ProcRejectAccessRequest       = "reject_access_request"
	ProcProductStatistics         = "product_statistics"
)

// Procedures lista todos los procedimientos remotos.
var Procedures = []string{
	ProcRestoreStockAndDeleteSale,
	ProcTransferStock,
	ProcListTransferHistory,
	ProcAddInsumoStock,
	ProcListUsersAsAdmin,
	ProcUpdateUserRoles,
	ProcApproveAccessRequest,
	ProcRejectAccessRequest,
	ProcProductStatistics,
}

// ProcedureSQL devuelve la definición SQL embebida del procedimiento ("" si no se conoce).
func ProcedureSQL(name string) string {
	b, err := migrationsFS.ReadFile("migrations/procedures/" + name + ".sql")
	if err != nil {
		return ""
	}
	return string(b)
}

// ApplyMigrations ejecuta el esquema y luego cada procedimiento, en orden alfabético.
// Todas las sentencias son idempotentes.
func ApplyMigrations(ctx context.Context, q Querier) error {
	for _, pattern := range []string{"migrations/*.sql", "migrations/procedures/*.sql"} {
		files, err := fs.Glob(migrationsFS, pattern)
		if err != nil {
			return fmt.Errorf("glob %s: %w", pattern, err)
		}
		sort.Strings(files)
		for _, f := range files {
			b, err := migrationsFS.ReadFile(f)
			if err != nil {
				return fmt.Errorf("read %s: %w", f, err)
			}
			// Sin argumentos pgx usa el protocolo simple, que admite varias sentencias.
			if _, err := q.Exec(ctx, string(b)); err != nil {
				return fmt.Errorf("apply %s: %w", f, err)
			}
		}
	}
	return nil
}

// MissingProcedures devuelve los procedimientos de Procedures que no existen en el esquema public.
func MissingProcedures(ctx context.Context, q Querier) ([]string, error) {
	rows, err := q.Query(ctx, `
		SELECT p.proname
		FROM pg_proc p
		JOIN pg_namespace n ON n.oid = p.pronamespace
		WHERE n.nspname = 'public' AND p.proname = ANY($1)`, Procedures)
	if err != nil {
		return nil, fmt.Errorf("list procedures: %w", err)
	}
	defer rows.Close()
	present := make(map[string]bool, len(Procedures))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan procedure: %w", err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var missing []string
	for _, p := range Procedures {
		if !present[p] {
			missing = append(missing, p)
		}
	}
	return missing, nil
}

func procedureStatement(name string, nargs int) string {
	params := make([]string, nargs)
	for i := range params {
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("SELECT * FROM %s(%s)", name, strings.Join(params, ", "))
}

// execProcedure invoca un procedimiento cuyo resultado no interesa.
func execProcedure(ctx context.Context, q Querier, name string, args ...any) error {
	_, err := q.Exec(ctx, procedureStatement(name, len(args)), args...)
	return mapPgError(err, name)
}

// queryProcedure invoca un procedimiento y llama scan por cada fila devuelta.
// Los errores de ejecución aparecen tanto en Query como en rows.Err(); ambos se mapean.
func queryProcedure(ctx context.Context, q Querier, name string, args []any, scan func(pgx.Rows) error) error {
	rows, err := q.Query(ctx, procedureStatement(name, len(args)), args...)
	if err != nil {
		return mapPgError(err, name)
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("scan %s: %w", name, err)
		}
	}
	return mapPgError(rows.Err(), name)
}
