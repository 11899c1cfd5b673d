package alerts_test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/inventory"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria para el reconciliador. El fake de alertas reproduce el
// índice único parcial (producto, tipo) sobre alertas open.
// ──────────────────────────────────────────────────────────────────────────────

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]*entity.Product

	// knobs para inyectar fallos
	failListBreaching error
	// barrier, si no es nil, ListBreachingThreshold avisa por entered y luego
	// espera barrier. Sirve para mantener una corrida "en curso" desde el test.
	barrier chan struct{}
	entered chan struct{}
}

var _ repository.ProductRepository = (*fakeCatalog)(nil)

func newFakeCatalog(products ...*entity.Product) *fakeCatalog {
	c := &fakeCatalog{products: make(map[string]*entity.Product)}
	for _, p := range products {
		cp := *p
		c.products[p.ID] = &cp
	}
	return c
}

func (c *fakeCatalog) setQuantity(id string, quantity decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[id].Quantity = quantity
}

func (c *fakeCatalog) Create(p *entity.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *p
	c.products[p.ID] = &cp
	return nil
}

func (c *fakeCatalog) GetByID(id string) (*entity.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (c *fakeCatalog) GetBySKU(string) (*entity.Product, error) { return nil, nil }

func (c *fakeCatalog) GetForUpdate(id string) (*entity.Product, error) { return c.GetByID(id) }

func (c *fakeCatalog) Update(p *entity.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *p
	c.products[p.ID] = &cp
	return nil
}

func (c *fakeCatalog) UpdateQuantity(productID string, quantity decimal.Decimal) error {
	c.setQuantity(productID, quantity)
	return nil
}

func (c *fakeCatalog) List(limit, offset int) ([]*entity.Product, error) { return nil, nil }

func (c *fakeCatalog) ListBreachingThreshold(_ context.Context, fallback decimal.Decimal) ([]*entity.Product, error) {
	if c.barrier != nil {
		c.entered <- struct{}{}
		<-c.barrier
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failListBreaching != nil {
		return nil, c.failListBreaching
	}
	var out []*entity.Product
	for _, p := range c.products {
		if !p.Active {
			continue
		}
		if inventory.BreachKind(p.Quantity, p.MinQuantity, fallback) != "" {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (c *fakeCatalog) ListByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*entity.Product
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeAlertRepo struct {
	mu     sync.Mutex
	alerts []*entity.StockAlert

	// knobs para inyectar fallos
	failOpenByProduct map[string]error // por ID de producto
	// hideOpenFromRead oculta las alertas open en ListOpenByProduct, simulando
	// una corrida concurrente que insertó entre la lectura y el Create.
	hideOpenFromRead bool
}

var _ repository.StockAlertRepository = (*fakeAlertRepo)(nil)

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{failOpenByProduct: make(map[string]error)}
}

func (r *fakeAlertRepo) Create(alert *entity.StockAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alerts {
		if a.State == entity.AlertStateOpen && a.ProductID == alert.ProductID && a.Kind == alert.Kind {
			return domain.ErrDuplicate
		}
	}
	cp := *alert
	r.alerts = append(r.alerts, &cp)
	return nil
}

func (r *fakeAlertRepo) GetByID(id string) (*entity.StockAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alerts {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAlertRepo) List(filter repository.AlertFilter) ([]*entity.StockAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.StockAlert
	for _, a := range r.alerts {
		if filter.ProductID != "" && a.ProductID != filter.ProductID {
			continue
		}
		if filter.Kind != "" && a.Kind != filter.Kind {
			continue
		}
		if filter.State != "" && a.State != filter.State {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeAlertRepo) ListOpenByProduct(productID string, kinds ...string) ([]*entity.StockAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failOpenByProduct[productID]; ok {
		return nil, err
	}
	if r.hideOpenFromRead {
		return nil, nil
	}
	var out []*entity.StockAlert
	for _, a := range r.alerts {
		if a.ProductID != productID || a.State != entity.AlertStateOpen {
			continue
		}
		if !containsKind(kinds, a.Kind) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeAlertRepo) ListProductIDsWithOpen(_ context.Context, kinds ...string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, a := range r.alerts {
		if a.State != entity.AlertStateOpen || !containsKind(kinds, a.Kind) {
			continue
		}
		if !seen[a.ProductID] {
			seen[a.ProductID] = true
			out = append(out, a.ProductID)
		}
	}
	return out, nil
}

func (r *fakeAlertRepo) MarkResolved(id string, resolvedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alerts {
		if a.ID == id {
			if a.State != entity.AlertStateOpen {
				return domain.ErrConflict
			}
			a.State = entity.AlertStateResolved
			at := resolvedAt
			a.ResolvedAt = &at
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeAlertRepo) UpdateState(id string, state string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alerts {
		if a.ID == id {
			if a.State != entity.AlertStateOpen {
				return domain.ErrConflict
			}
			a.State = state
			if state == entity.AlertStateResolved {
				resolvedAt := at
				a.ResolvedAt = &resolvedAt
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func containsKind(kinds []string, kind string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// byState alertas en el estado dado, para asserts.
func (r *fakeAlertRepo) byState(state string) []*entity.StockAlert {
	out, _ := r.List(repository.AlertFilter{State: state})
	return out
}

// alertProduct producto de prueba con umbral propio.
func alertProduct(id, quantity, minQuantity string, active bool) *entity.Product {
	now := time.Now()
	return &entity.Product{
		ID:          id,
		SKU:         "SKU-" + id,
		Name:        "Producto " + id,
		Price:       decimal.RequireFromString("10"),
		Quantity:    decimal.RequireFromString(quantity),
		MinQuantity: decimal.RequireFromString(minQuantity),
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
