package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
	"github.com/jhoicas/tienda-erp-api/pkg/logger"
)

// MaxAttempts intentos por trabajo antes de pasar a la DLQ.
const MaxAttempts = 3

// ErrUnknownJob tipo de trabajo sin handler.
var ErrUnknownJob = errors.New("worker: tipo de trabajo desconocido")

// PaymentMailer envía la notificación de pago aprobado.
type PaymentMailer interface {
	SendPaymentApproved(ctx context.Context, e ports.PaymentApprovedEmail) error
}

// Pool consume la cola de emails.
type Pool struct {
	rdb    *redis.Client
	mailer PaymentMailer
	log    *logger.Logger
	wg     sync.WaitGroup
}

// NewPool construye el pool.
func NewPool(rdb *redis.Client, mailer PaymentMailer, log *logger.Logger) *Pool {
	if log == nil {
		log = logger.Nop()
	}
	return &Pool{rdb: rdb, mailer: mailer, log: log.Component("worker")}
}

// Start lanza n goroutines bloqueadas en BRPOP (sin consumo de CPU en reposo).
// Terminan cuando ctx se cancela; Wait espera a que cierren.
func (p *Pool) Start(ctx context.Context, n int) {
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	p.log.Info().Int("workers", n).Msg("pool de workers iniciado")
}

// Wait bloquea hasta que todos los workers terminan.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		if ctx.Err() != nil {
			p.log.Debug().Int("worker", id).Msg("worker detenido")
			return
		}
		// BRPOP espera hasta 5 s y vuelve a revisar ctx.
		result, err := p.rdb.BRPop(ctx, 5*time.Second, QueueEmail).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				p.log.Warn().Err(err).Int("worker", id).Msg("BRPOP falló")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		p.process(ctx, result[0], []byte(result[1]))
	}
}

// process ejecuta el trabajo y, si falla, lo reencola o lo manda a la DLQ.
func (p *Pool) process(ctx context.Context, queue string, raw []byte) {
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		p.log.Error().Err(err).Str("queue", queue).Msg("trabajo ilegible")
		p.deadLetter(ctx, queue, raw)
		return
	}
	err := p.Handle(ctx, job)
	if err == nil {
		return
	}
	job.Attempts++
	ev := p.log.Warn().Err(err).Str("queue", queue).Str("type", job.Type).Int("attempts", job.Attempts)
	if job.Attempts >= MaxAttempts || errors.Is(err, ErrUnknownJob) {
		ev.Msg("trabajo descartado")
		encoded, _ := json.Marshal(job)
		p.deadLetter(ctx, queue, encoded)
		return
	}
	ev.Msg("trabajo reencolado")
	encoded, _ := json.Marshal(job)
	if err := p.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		p.log.Error().Err(err).Str("queue", queue).Msg("no se pudo reencolar")
	}
}

func (p *Pool) deadLetter(ctx context.Context, queue string, raw []byte) {
	if err := p.rdb.LPush(ctx, DLQPrefix+queue, raw).Err(); err != nil {
		p.log.Error().Err(err).Str("queue", queue).Msg("no se pudo escribir en la DLQ")
	}
}

// Handle despacha el trabajo a su handler.
func (p *Pool) Handle(ctx context.Context, job Job) error {
	switch job.Type {
	case JobPaymentApproved:
		var e ports.PaymentApprovedEmail
		if err := json.Unmarshal(job.Payload, &e); err != nil {
			return fmt.Errorf("%w: payload inválido: %v", ErrUnknownJob, err)
		}
		if err := p.mailer.SendPaymentApproved(ctx, e); err != nil {
			return err
		}
		p.log.Info().Str("sale_id", e.SaleID).Str("payment_id", e.PaymentID).Msg("email de pago enviado")
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownJob, job.Type)
	}
}
