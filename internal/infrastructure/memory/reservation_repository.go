package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ReservationRepository = (*reservationRepo)(nil)

type reservationRepo struct {
	t *tx
}

func cloneReservation(r *entity.Reservation) *entity.Reservation {
	cp := *r
	if r.ClosedAt != nil {
		at := *r.ClosedAt
		cp.ClosedAt = &at
	}
	return &cp
}

func (r *reservationRepo) current(id string) *entity.Reservation {
	if res, ok := r.t.reservations[id]; ok {
		return cloneReservation(res)
	}
	var out *entity.Reservation
	r.t.read(func() {
		if res, ok := r.t.s.reservations[id]; ok {
			out = cloneReservation(res)
		}
	})
	return out
}

// visible devuelve todas las reservas que ve la tx (pendientes sobre confirmadas).
func (r *reservationRepo) visible() []*entity.Reservation {
	var out []*entity.Reservation
	r.t.read(func() {
		for id, res := range r.t.s.reservations {
			if _, staged := r.t.reservations[id]; !staged {
				out = append(out, res)
			}
		}
	})
	for _, res := range r.t.reservations {
		out = append(out, res)
	}
	return out
}

func (r *reservationRepo) Create(_ context.Context, res *entity.Reservation) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if r.current(res.ID) != nil {
		return domain.ErrDuplicate
	}
	r.t.reservations[res.ID] = cloneReservation(res)
	r.t.newReservations[res.ID] = true
	return nil
}

func (r *reservationRepo) GetByID(_ context.Context, id string) (*entity.Reservation, error) {
	return r.current(id), nil
}

func (r *reservationRepo) GetForUpdate(_ context.Context, id string) (*entity.Reservation, error) {
	if err := r.t.write(); err != nil {
		return nil, err
	}
	return r.current(id), nil
}

func (r *reservationRepo) Close(_ context.Context, res *entity.Reservation) error {
	if err := r.t.write(); err != nil {
		return err
	}
	cur := r.current(res.ID)
	if cur == nil {
		return domain.ErrReservationNotFound
	}
	if !cur.IsActive() {
		return domain.ErrReservationAlreadyClosed
	}
	r.t.reservations[res.ID] = cloneReservation(res)
	return nil
}

func (r *reservationRepo) SumActive(_ context.Context, productID string) (int64, error) {
	var total int64
	for _, res := range r.visible() {
		if res.ProductID == productID && res.IsActive() {
			total += res.Quantity
		}
	}
	return total, nil
}

func (r *reservationRepo) List(_ context.Context, q repository.ReservationQuery) ([]*entity.Reservation, error) {
	out := []*entity.Reservation{}
	for _, res := range r.visible() {
		if q.ProductID != "" && res.ProductID != q.ProductID {
			continue
		}
		if q.HolderID != "" && res.HolderID != q.HolderID {
			continue
		}
		if q.State != "" && res.State != q.State {
			continue
		}
		out = append(out, cloneReservation(res))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, q.Limit, q.Offset), nil
}
