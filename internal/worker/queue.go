// Package worker encola trabajos asíncronos en listas Redis y los consume con un pool de goroutines.
package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
)

const (
	// QueueEmail lista de emails pendientes.
	QueueEmail = "jobs:email"
	// DLQPrefix prefijo de las listas de trabajos descartados tras agotar los reintentos.
	DLQPrefix = "dlq:"

	JobPaymentApproved = "payment_approved"
)

// Job envoltorio de todos los trabajos.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

var _ ports.EmailQueue = (*Dispatcher)(nil)

// Dispatcher encola trabajos con LPUSH; el pool los toma con BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

// NewDispatcher construye el dispatcher.
func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueuePaymentApproved encola la notificación de pago aprobado.
func (d *Dispatcher) EnqueuePaymentApproved(ctx context.Context, e ports.PaymentApprovedEmail) error {
	return d.enqueue(ctx, QueueEmail, JobPaymentApproved, e)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
	raw, err := EncodeJob(jobType, payload)
	if err != nil {
		return err
	}
	if err := d.rdb.LPush(ctx, queue, raw).Err(); err != nil {
		return fmt.Errorf("worker: encolar %s: %w", jobType, err)
	}
	return nil
}

// EncodeJob serializa payload dentro de un Job.
func EncodeJob(jobType string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("worker: serializar payload: %w", err)
	}
	return json.Marshal(Job{Type: jobType, Payload: data})
}
