package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-erp-api/pkg/logger"
)

type queryStartKey struct{}

type queryStart struct {
	at  time.Time
	sql string
}

// slowQueryTracer registra en Warn las consultas que superan threshold y en Error las que fallan.
type slowQueryTracer struct {
	threshold time.Duration
	log       *logger.Logger
	now       func() time.Time
}

var _ pgx.QueryTracer = (*slowQueryTracer)(nil)

func newSlowQueryTracer(threshold time.Duration, log *logger.Logger) *slowQueryTracer {
	return &slowQueryTracer{threshold: threshold, log: log, now: time.Now}
}

func (t *slowQueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{at: t.now(), sql: data.SQL})
}

func (t *slowQueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	elapsed := t.now().Sub(start.at)
	switch {
	case data.Err != nil:
		t.log.Error().Err(data.Err).Dur("elapsed", elapsed).Str("sql", compactSQL(start.sql)).Msg("consulta fallida")
	case elapsed >= t.threshold:
		t.log.Warn().Dur("elapsed", elapsed).Int64("rows", data.CommandTag.RowsAffected()).
			Str("sql", compactSQL(start.sql)).Msg("consulta lenta")
	}
}

// compactSQL colapsa espacios y recorta a 200 caracteres.
func compactSQL(sql string) string {
	s := strings.Join(strings.Fields(sql), " ")
	if len(s) > 200 {
		return s[:200] + "…"
	}
	return s
}
