package postgres

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/tienda-erp-api/pkg/logger"
)

func tracerWithClock(buf *bytes.Buffer, elapsed time.Duration) *slowQueryTracer {
	tr := newSlowQueryTracer(100*time.Millisecond, logger.NewWithWriter(buf, "debug"))
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	calls := 0
	tr.now = func() time.Time {
		calls++
		if calls == 1 {
			return base
		}
		return base.Add(elapsed)
	}
	return tr
}

func TestSlowQueryTracer_RegistraConsultaLenta(t *testing.T) {
	var buf bytes.Buffer
	tr := tracerWithClock(&buf, 300*time.Millisecond)

	ctx := tr.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT *\n  FROM sales"})
	tr.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("SELECT 3")})

	out := buf.String()
	assert.Contains(t, out, "consulta lenta")
	assert.Contains(t, out, "SELECT * FROM sales")
}

func TestSlowQueryTracer_IgnoraConsultaRapida(t *testing.T) {
	var buf bytes.Buffer
	tr := tracerWithClock(&buf, 10*time.Millisecond)

	ctx := tr.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	tr.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})

	assert.Empty(t, buf.String())
}

func TestSlowQueryTracer_RegistraError(t *testing.T) {
	var buf bytes.Buffer
	tr := tracerWithClock(&buf, time.Millisecond)

	ctx := tr.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "CALL sp_delete_sale($1)"})
	tr.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: errors.New("boom")})

	assert.Contains(t, buf.String(), "consulta fallida")
}

func TestCompactSQL_Recorta(t *testing.T) {
	long := "SELECT " + strings.Repeat("x, ", 200)
	got := compactSQL(long)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len(got), 200+len("…"))
}
