// Package memory implementa los puertos del ledger en memoria. Se usa con STORAGE_DRIVER=memory
// (desarrollo, demos) y en los tests de los casos de uso.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	movements map[string]*entity.Movement
	products  map[string]*entity.Product
	stores    map[string]*entity.Store
	suppliers map[string]*entity.Supplier
	users     map[string]*entity.User
	seq       int64
}

func newState() *state {
	return &state{
		movements: map[string]*entity.Movement{},
		products:  map[string]*entity.Product{},
		stores:    map[string]*entity.Store{},
		suppliers: map[string]*entity.Supplier{},
		users:     map[string]*entity.User{},
	}
}

// clone copia el estado. Los movimientos se copian por valor porque las transacciones los
// reescriben; el resto solo se lee dentro de una tx.
func (s *state) clone() *state {
	c := &state{
		movements: make(map[string]*entity.Movement, len(s.movements)),
		products:  make(map[string]*entity.Product, len(s.products)),
		stores:    make(map[string]*entity.Store, len(s.stores)),
		suppliers: make(map[string]*entity.Supplier, len(s.suppliers)),
		users:     make(map[string]*entity.User, len(s.users)),
		seq:       s.seq,
	}
	for k, v := range s.movements {
		c.movements[k] = copyMovement(v)
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.stores {
		c.stores[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

// Store base de datos en memoria. Las transacciones se serializan con txMu (equivale a
// bloquear todas las filas de producto) y trabajan sobre una copia que se publica en Commit.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   *state
}

// NewStore crea una base vacía.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn sobre una copia del estado; si fn no falla y el contexto sigue vivo,
// la copia reemplaza al estado (commit). En cualquier otro caso se descarta (rollback).
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	tx := s.st.clone()
	s.mu.RUnlock()

	b := binding{store: s, tx: tx}
	if err := fn(&MovementRepo{b: b}, &ProductRepo{b: b}, &SupplierRepo{b: b}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = tx
	s.mu.Unlock()
	return nil
}

// Movements repositorio fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{b: binding{store: s}} }

// Products repositorio fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{b: binding{store: s}} }

// Stores repositorio fuera de transacción.
func (s *Store) Stores() *StoreRepo { return &StoreRepo{b: binding{store: s}} }

// Suppliers repositorio fuera de transacción.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{b: binding{store: s}} }

// Users repositorio fuera de transacción.
func (s *Store) Users() *UserRepo { return &UserRepo{b: binding{store: s}} }

// ReadRepos agrupa los repositorios de lectura para los casos de uso.
func (s *Store) ReadRepos() inventory.ReadRepos {
	return inventory.ReadRepos{
		Movements: s.Movements(),
		Products:  s.Products(),
		Stores:    s.Stores(),
		Suppliers: s.Suppliers(),
		Users:     s.Users(),
	}
}

// PutStore registra o reemplaza una tienda (seed).
func (s *Store) PutStore(v *entity.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *v
	s.st.stores[v.ID] = &c
}

// PutProduct registra o reemplaza un producto (seed).
func (s *Store) PutProduct(v *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *v
	s.st.products[v.ID] = &c
}

// PutSupplier registra o reemplaza un proveedor (seed).
func (s *Store) PutSupplier(v *entity.Supplier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *v
	s.st.suppliers[v.ID] = &c
}

// PutUser registra o reemplaza un usuario (seed).
func (s *Store) PutUser(v *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *v
	s.st.users[v.ID] = &c
}

// binding ata un repositorio a una tx (tx != nil) o al estado publicado.
type binding struct {
	store *Store
	tx    *state
}

func (b binding) read(fn func(st *state)) {
	if b.tx != nil {
		fn(b.tx)
		return
	}
	b.store.mu.RLock()
	defer b.store.mu.RUnlock()
	fn(b.store.st)
}

func (b binding) write(fn func(st *state)) {
	if b.tx != nil {
		fn(b.tx)
		return
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	fn(b.store.st)
}

func copyMovement(m *entity.Movement) *entity.Movement {
	c := *m
	return &c
}
