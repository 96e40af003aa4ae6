package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*productRepo)(nil)

type productRepo struct {
	t *tx
}

// current devuelve una copia del producto visible en la tx (pendiente o confirmado) con su stock.
// Debe llamarse dentro de t.read.
func (r *productRepo) current(id string) *entity.Product {
	p, ok := r.t.products[id]
	if !ok {
		p, ok = r.t.s.products[id]
	}
	if !ok {
		return nil
	}
	cp := *p
	if st, ok := r.t.stock[id]; ok {
		cp.StockActual = st.Quantity
	} else if st, ok := r.t.s.stock[id]; ok {
		cp.StockActual = st.Quantity
	}
	return &cp
}

func (r *productRepo) Create(_ context.Context, product *entity.Product) error {
	if err := r.t.write(); err != nil {
		return err
	}
	var dup bool
	r.t.read(func() {
		_, idTaken := r.t.s.products[product.ID]
		_, codeTaken := r.t.s.codes[product.Code]
		dup = idTaken || codeTaken
	})
	if _, ok := r.t.newCodes[product.Code]; ok {
		dup = true
	}
	if _, ok := r.t.products[product.ID]; ok {
		dup = true
	}
	if dup {
		return domain.ErrDuplicate
	}
	cp := *product
	cp.StockActual = 0
	r.t.products[cp.ID] = &cp
	r.t.newCodes[cp.Code] = cp.ID
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.t.read(func() { out = r.current(id) })
	return out, nil
}

func (r *productRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	var out *entity.Product
	r.t.read(func() {
		id, ok := r.t.newCodes[code]
		if !ok {
			id, ok = r.t.s.codes[code]
		}
		if ok {
			out = r.current(id)
		}
	})
	return out, nil
}

func (r *productRepo) List(_ context.Context, q repository.ProductQuery) ([]*entity.Product, error) {
	var out []*entity.Product
	r.t.read(func() {
		seen := make(map[string]bool)
		add := func(id string) {
			if seen[id] {
				return
			}
			seen[id] = true
			if p := r.current(id); p != nil && (q.IncludeInactive || p.Active) {
				out = append(out, p)
			}
		}
		for id := range r.t.products {
			add(id)
		}
		for id := range r.t.s.products {
			add(id)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return paginate(out, q.Limit, q.Offset), nil
}

// update aplica f sobre la versión visible del producto y la deja pendiente.
func (r *productRepo) update(id string, f func(p *entity.Product)) error {
	if err := r.t.write(); err != nil {
		return err
	}
	var p *entity.Product
	r.t.read(func() { p = r.current(id) })
	if p == nil {
		return domain.ErrNotFound
	}
	f(p)
	p.StockActual = 0
	r.t.products[id] = p
	return nil
}

func (r *productRepo) UpdateThresholds(_ context.Context, id string, min, max int64, updatedAt time.Time) error {
	return r.update(id, func(p *entity.Product) {
		p.StockMin, p.StockMax, p.UpdatedAt = min, max, updatedAt
	})
}

func (r *productRepo) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	return r.update(id, func(p *entity.Product) { p.AverageCost = cost })
}

func (r *productRepo) SetActive(_ context.Context, id string, active bool, updatedAt time.Time) error {
	return r.update(id, func(p *entity.Product) {
		p.Active, p.UpdatedAt = active, updatedAt
	})
}
