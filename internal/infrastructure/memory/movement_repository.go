package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*movementRepo)(nil)

type movementRepo struct {
	t *tx
}

func (r *movementRepo) Append(_ context.Context, m *entity.Movement) error {
	if err := r.t.write(); err != nil {
		return err
	}
	cp := *m
	r.t.movements = append(r.t.movements, &cp)
	return nil
}

func (r *movementRepo) ListByProduct(_ context.Context, q repository.MovementQuery) ([]*entity.Movement, error) {
	var all []*entity.Movement
	r.t.read(func() {
		all = append(all, r.t.s.movements[q.ProductID]...)
	})
	for _, m := range r.t.movements {
		if m.ProductID == q.ProductID {
			all = append(all, m)
		}
	}

	out := make([]*entity.Movement, 0, len(all))
	for _, m := range all {
		if q.Kind != "" && m.Kind != q.Kind {
			continue
		}
		if q.From != nil && m.CreatedAt.Before(*q.From) {
			continue
		}
		if q.To != nil && m.CreatedAt.After(*q.To) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if q.Ascending {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].Sequence > out[j].Sequence
	})
	return paginate(out, q.Limit, q.Offset), nil
}
