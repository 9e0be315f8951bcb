package fakes

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
)

var (
	_ ports.PaymentGateway = (*PaymentGateway)(nil)
	_ ports.Locker         = (*Locker)(nil)
	_ ports.EmailQueue     = (*EmailQueue)(nil)
	_ ports.PriceCache     = (*PriceCache)(nil)
	_ ports.LLMService     = (*LLM)(nil)
)

// PaymentGateway proveedor de pagos en memoria.
type PaymentGateway struct {
	mu sync.Mutex

	Payments     map[string]*ports.Payment
	GetErr       error
	SignatureErr error
	Session      ports.CheckoutSession

	Requests     []ports.CheckoutRequest
	GetCalls     int
	VerifyCalled bool
}

// NewPaymentGateway construye el fake.
func NewPaymentGateway() *PaymentGateway {
	return &PaymentGateway{
		Payments: map[string]*ports.Payment{},
		Session:  ports.CheckoutSession{PreferenceID: "pref-1", InitPoint: "https://checkout.example/pref-1"},
	}
}

func (g *PaymentGateway) CreatePreference(_ context.Context, req ports.CheckoutRequest) (*ports.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Requests = append(g.Requests, req)
	s := g.Session
	return &s, nil
}

func (g *PaymentGateway) GetPayment(_ context.Context, id string) (*ports.Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.GetCalls++
	if g.GetErr != nil {
		return nil, g.GetErr
	}
	p, ok := g.Payments[id]
	if !ok {
		return nil, errors.New("payment not found")
	}
	c := *p
	return &c, nil
}

func (g *PaymentGateway) VerifyNotification(_, _, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.VerifyCalled = true
	return g.SignatureErr
}

// Locker lock en memoria. Con Fail configurado Acquire siempre falla.
type Locker struct {
	mu   sync.Mutex
	held map[string]bool
	Fail error

	Acquired []string
}

// NewLocker construye el fake.
func NewLocker() *Locker { return &Locker{held: map[string]bool{}} }

func (l *Locker) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Fail != nil {
		return nil, l.Fail
	}
	if l.held[key] {
		return nil, errors.New("lock ocupado")
	}
	l.held[key] = true
	l.Acquired = append(l.Acquired, key)
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
	}, nil
}

// Held informa si la clave está tomada.
func (l *Locker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[key]
}

// EmailQueue cola de emails en memoria.
type EmailQueue struct {
	mu   sync.Mutex
	Sent []ports.PaymentApprovedEmail
	Err  error
}

func (q *EmailQueue) EnqueuePaymentApproved(_ context.Context, e ports.PaymentApprovedEmail) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return q.Err
	}
	q.Sent = append(q.Sent, e)
	return nil
}

// Count cantidad de emails encolados.
func (q *EmailQueue) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.Sent)
}

// PriceCache caché en memoria.
type PriceCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	Invalidated []string
	Hits        int
}

// NewPriceCache construye el fake.
func NewPriceCache() *PriceCache { return &PriceCache{entries: map[string][]byte{}} }

func (c *PriceCache) Get(_ context.Context, listID string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[listID]
	if ok {
		c.Hits++
	}
	return b, ok, nil
}

func (c *PriceCache) Set(_ context.Context, listID string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[listID] = append([]byte(nil), payload...)
	return nil
}

func (c *PriceCache) Invalidate(_ context.Context, listID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, listID)
	c.Invalidated = append(c.Invalidated, listID)
	return nil
}

// LLM modelo de lenguaje que devuelve una respuesta fija y registra el prompt.
type LLM struct {
	Reply string
	Err   error

	LastSystem   string
	LastQuestion string
}

func (m *LLM) Answer(_ context.Context, system, question string) (string, error) {
	m.LastSystem, m.LastQuestion = system, question
	return m.Reply, m.Err
}
