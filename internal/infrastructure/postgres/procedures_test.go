package postgres

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcedureSQL_EveryProcedureIsEmbedded(t *testing.T) {
	for _, name := range Procedures {
		sql := ProcedureSQL(name)
		require.NotEmpty(t, sql, "falta la definición de %s", name)
		assert.Contains(t, sql, "CREATE OR REPLACE FUNCTION "+name+"(")
	}
}

func TestProcedureSQL_Unknown(t *testing.T) {
	assert.Empty(t, ProcedureSQL("no_existe"))
}

func TestMigrations_SchemaIsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	schema, err := migrationsFS.ReadFile("migrations/001_schema.sql")
	require.NoError(t, err)
	assert.Contains(t, string(schema), "warehouses_single_default", "índice de depósito predeterminado único")
	assert.Contains(t, string(schema), "current_qty >= 0 AND current_qty <= initial_qty")
}

func TestProcedureStatement(t *testing.T) {
	assert.Equal(t, "SELECT * FROM transfer_stock($1, $2, $3, $4)", procedureStatement(ProcTransferStock, 4))
	assert.Equal(t, "SELECT * FROM f()", procedureStatement("f", 0))
}

// execRecorder registra cada Exec; Query y QueryRow no se usan al migrar.
type execRecorder struct {
	Querier
	statements []string
	failOn     string
}

func (r *execRecorder) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	if r.failOn != "" && strings.Contains(sql, r.failOn) {
		return pgconn.CommandTag{}, errors.New("syntax error")
	}
	r.statements = append(r.statements, sql)
	return pgconn.CommandTag{}, nil
}

func TestApplyMigrations_EsquemaAntesQueProcedimientos(t *testing.T) {
	rec := &execRecorder{}
	require.NoError(t, ApplyMigrations(context.Background(), rec))

	require.Len(t, rec.statements, 1+len(Procedures))
	assert.Contains(t, rec.statements[0], "warehouses_single_default")
	for _, name := range Procedures {
		assert.Contains(t, strings.Join(rec.statements[1:], "\n"), "CREATE OR REPLACE FUNCTION "+name+"(")
	}
}

func TestApplyMigrations_CortaEnElPrimerError(t *testing.T) {
	rec := &execRecorder{failOn: "CREATE OR REPLACE FUNCTION " + ProcTransferStock + "("}

	err := ApplyMigrations(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ProcTransferStock)
}
