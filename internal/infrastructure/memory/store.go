// Package memory implementa los puertos de persistencia sobre mapas en
// memoria. Respalda los tests y el modo sin base de datos; las transacciones
// se serializan con un mutex global y se revierten restaurando un snapshot.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Almacen-api/internal/application/ports"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// Store guarda todas las colecciones del dominio. Cada lectura y escritura
// trabaja sobre clones profundos: nada de lo que retorna comparte memoria
// con lo almacenado.
type Store struct {
	mu sync.RWMutex
	// txMu serializa las transacciones entre sí y contra Run concurrentes.
	txMu sync.Mutex

	products     map[string]*entity.Product
	transactions map[string]*entity.InventoryTransaction
	requests     map[string]*entity.Request
	debts        map[string]*entity.Debt
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:     make(map[string]*entity.Product),
		transactions: make(map[string]*entity.InventoryTransaction),
		requests:     make(map[string]*entity.Request),
		debts:        make(map[string]*entity.Debt),
	}
}

// Repos devuelve el bundle de repositorios respaldado por este almacén.
func (s *Store) Repos() ports.Repos {
	return ports.Repos{
		Products:     &productRepo{s: s},
		Transactions: &transactionRepo{s: s},
		Requests:     &requestRepo{s: s},
		Debts:        &debtRepo{s: s},
	}
}

// Run ejecuta fn como transacción serializable: toma un snapshot de todas
// las colecciones y lo restaura si fn falla.
func (s *Store) Run(_ context.Context, fn func(r ports.Repos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(s.Repos()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type storeSnapshot struct {
	products     map[string]*entity.Product
	transactions map[string]*entity.InventoryTransaction
	requests     map[string]*entity.Request
	debts        map[string]*entity.Debt
}

func (s *Store) snapshot() storeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := storeSnapshot{
		products:     make(map[string]*entity.Product, len(s.products)),
		transactions: make(map[string]*entity.InventoryTransaction, len(s.transactions)),
		requests:     make(map[string]*entity.Request, len(s.requests)),
		debts:        make(map[string]*entity.Debt, len(s.debts)),
	}
	for id, p := range s.products {
		snap.products[id] = cloneProduct(p)
	}
	for id, t := range s.transactions {
		snap.transactions[id] = cloneTransaction(t)
	}
	for id, r := range s.requests {
		snap.requests[id] = cloneRequest(r)
	}
	for id, d := range s.debts {
		snap.debts[id] = cloneDebt(d)
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.transactions = snap.transactions
	s.requests = snap.requests
	s.debts = snap.debts
}

// ── clones profundos ──────────────────────────────────────────────────────

func cloneProduct(p *entity.Product) *entity.Product {
	cp := *p
	if p.ExpectedUnitWeight != nil {
		w := *p.ExpectedUnitWeight
		cp.ExpectedUnitWeight = &w
	}
	return &cp
}

func cloneTransaction(t *entity.InventoryTransaction) *entity.InventoryTransaction {
	ct := *t
	return &ct
}

func cloneItem(it *entity.RequestItem) *entity.RequestItem {
	ci := *it
	if it.DeliveredWeight != nil {
		w := *it.DeliveredWeight
		ci.DeliveredWeight = &w
	}
	if it.ReturnedWeight != nil {
		w := *it.ReturnedWeight
		ci.ReturnedWeight = &w
	}
	return &ci
}

func cloneRequest(r *entity.Request) *entity.Request {
	cr := *r
	if r.CollectionDate != nil {
		t := *r.CollectionDate
		cr.CollectionDate = &t
	}
	if r.DeliveryDate != nil {
		t := *r.DeliveryDate
		cr.DeliveryDate = &t
	}
	if r.ReturnDate != nil {
		t := *r.ReturnDate
		cr.ReturnDate = &t
	}
	cr.Items = make([]*entity.RequestItem, 0, len(r.Items))
	for _, it := range r.Items {
		cr.Items = append(cr.Items, cloneItem(it))
	}
	return &cr
}

func cloneDebt(d *entity.Debt) *entity.Debt {
	cd := *d
	if d.RequestID != nil {
		v := *d.RequestID
		cd.RequestID = &v
	}
	if d.ItemID != nil {
		v := *d.ItemID
		cd.ItemID = &v
	}
	if d.ResolvedBy != nil {
		v := *d.ResolvedBy
		cd.ResolvedBy = &v
	}
	if d.ResolvedDate != nil {
		t := *d.ResolvedDate
		cd.ResolvedDate = &t
	}
	if d.DueDate != nil {
		t := *d.DueDate
		cd.DueDate = &t
	}
	cd.UpdatedAt = d.UpdatedAt
	return &cd
}
