package fakes

import (
	"context"

	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

// TxRunner simula transacciones: si fn falla, el estado de lotes, ventas y depósitos vuelve atrás.
type TxRunner struct {
	s *Store

	Commits   int
	Rollbacks int
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner { return &TxRunner{s: s} }

func (r *TxRunner) run(fn func() error) error {
	snap := r.s.takeSnapshot()
	if err := fn(); err != nil {
		r.s.restore(snap)
		r.Rollbacks++
		return err
	}
	r.Commits++
	return nil
}

// RunSales ejecuta fn con los repos de lotes y ventas.
func (r *TxRunner) RunSales(ctx context.Context, fn func(repository.LotRepository, repository.SaleRepository) error) error {
	return r.run(func() error { return fn(&LotRepo{s: r.s}, &SaleRepo{s: r.s}) })
}

// RunWarehouses ejecuta fn con el repo de depósitos.
func (r *TxRunner) RunWarehouses(ctx context.Context, fn func(repository.WarehouseRepository) error) error {
	return r.run(func() error { return fn(&WarehouseRepo{s: r.s}) })
}
