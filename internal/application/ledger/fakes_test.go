package ledger_test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/stock-ledger/internal/application/ledger"
	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: emulan el comportamiento transaccional de PostgreSQL.
// txMu serializa las transacciones (equivalente del SELECT FOR UPDATE por fila);
// en caso de error de fn se restaura el snapshot (equivalente del rollback).
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	txMu      sync.Mutex
	products  map[string]*entity.Product
	movements []*entity.StockMovement

	// knobs para inyectar fallos
	failMovementCreate error
}

func newMemStore(products ...*entity.Product) *memStore {
	s := &memStore{products: make(map[string]*entity.Product)}
	for _, p := range products {
		cp := *p
		s.products[p.ID] = &cp
	}
	return s
}

func (s *memStore) snapshot() (map[string]*entity.Product, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prods := make(map[string]*entity.Product, len(s.products))
	for id, p := range s.products {
		cp := *p
		prods[id] = &cp
	}
	return prods, len(s.movements)
}

func (s *memStore) restore(prods map[string]*entity.Product, nMovs int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = prods
	s.movements = s.movements[:nMovs]
}

func (s *memStore) product(id string) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (s *memStore) movementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

func (s *memStore) lastMovement() *entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.movements) == 0 {
		return nil
	}
	cp := *s.movements[len(s.movements)-1]
	return &cp
}

func (s *memStore) allMovements() []*entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.StockMovement, 0, len(s.movements))
	for _, m := range s.movements {
		cp := *m
		out = append(out, &cp)
	}
	return out
}

// fakeTxRunner serializa transacciones y revierte el snapshot si fn falla.
type fakeTxRunner struct {
	store *memStore
}

var _ ledger.TxRunner = (*fakeTxRunner)(nil)

func (r *fakeTxRunner) Run(_ context.Context, fn func(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
) error) error {
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()

	prods, nMovs := r.store.snapshot()
	err := fn(&fakeProductRepo{store: r.store}, &fakeMovementRepo{store: r.store})
	if err != nil {
		r.store.restore(prods, nMovs)
		return err
	}
	return nil
}

// fakeProductRepo implementación en memoria de repository.ProductRepository.
type fakeProductRepo struct {
	store *memStore
}

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

func (r *fakeProductRepo) Create(p *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.store.product(id), nil
}

func (r *fakeProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

// GetForUpdate: la exclusión la da txMu en fakeTxRunner.
func (r *fakeProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.store.product(id), nil
}

func (r *fakeProductRepo) Update(p *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) UpdateQuantity(productID string, quantity decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Quantity = quantity
	p.UpdatedAt = time.Now()
	return nil
}

func (r *fakeProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.store.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeProductRepo) ListBreachingThreshold(_ context.Context, fallback decimal.Decimal) ([]*entity.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, id := range ids {
		if p := r.store.product(id); p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeMovementRepo implementación en memoria de repository.StockMovementRepository.
type fakeMovementRepo struct {
	store *memStore
}

var _ repository.StockMovementRepository = (*fakeMovementRepo)(nil)

func (r *fakeMovementRepo) Create(m *entity.StockMovement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failMovementCreate != nil {
		return r.store.failMovementCreate
	}
	cp := *m
	r.store.movements = append(r.store.movements, &cp)
	return nil
}

func (r *fakeMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, m := range r.store.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMovementRepo) List(filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.StockMovement
	for _, m := range r.store.movements {
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		if filter.Kind != "" && m.Kind != filter.Kind {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeMovementRepo) LastByProduct(productID string) (*entity.StockMovement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := len(r.store.movements) - 1; i >= 0; i-- {
		if r.store.movements[i].ProductID == productID {
			cp := *r.store.movements[i]
			return &cp, nil
		}
	}
	return nil, nil
}

// newTestUseCase arma el caso de uso sobre el store dado, sin auditoría.
func newTestUseCase(store *memStore) *ledger.MovementUseCase {
	return ledger.NewMovementUseCase(
		&fakeTxRunner{store: store},
		&fakeProductRepo{store: store},
		&fakeMovementRepo{store: store},
		nil,
	)
}

// testProduct producto de prueba con cantidad y precio dados.
func testProduct(id string, quantity, price string) *entity.Product {
	now := time.Now()
	return &entity.Product{
		ID:        id,
		SKU:       "SKU-" + id,
		Name:      "Producto " + id,
		Price:     decimal.RequireFromString(price),
		Quantity:  decimal.RequireFromString(quantity),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
