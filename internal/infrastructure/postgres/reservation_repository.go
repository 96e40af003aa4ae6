package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implementación de ReservationRepository sobre PostgreSQL.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador de reservas.
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

const reservationColumns = `
	id, product_id, holder_id, quantity, state, consumed_quantity, movement_id,
	created_by, created_at, closed_at, closed_by, close_reason`

func scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var (
		res        entity.Reservation
		state      string
		movementID *string
	)
	if err := row.Scan(
		&res.ID, &res.ProductID, &res.HolderID, &res.Quantity, &state, &res.ConsumedQuantity, &movementID,
		&res.CreatedBy, &res.CreatedAt, &res.ClosedAt, &res.ClosedBy, &res.CloseReason,
	); err != nil {
		return nil, err
	}
	res.State = entity.ReservationState(state)
	res.MovementID = derefString(movementID)
	return &res, nil
}

// Create inserta una reserva ACTIVE.
func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	query := `
		INSERT INTO reservations (id, product_id, holder_id, quantity, state, consumed_quantity,
			created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		res.ID, res.ProductID, res.HolderID, res.Quantity, string(res.State), res.ConsumedQuantity,
		res.CreatedBy, res.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepo) get(ctx context.Context, id, suffix string) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1` + suffix
	res, err := scanReservation(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

// GetByID obtiene una reserva por ID.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*entity.Reservation, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate obtiene la reserva bloqueando la fila.
func (r *ReservationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Reservation, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

// Close persiste el estado terminal; solo afecta filas que siguen ACTIVE.
func (r *ReservationRepo) Close(ctx context.Context, res *entity.Reservation) error {
	query := `
		UPDATE reservations
		SET state = $2, consumed_quantity = $3, movement_id = $4, closed_at = $5, closed_by = $6, close_reason = $7
		WHERE id = $1 AND state = 'ACTIVE'`
	tag, err := r.q.Exec(ctx, query,
		res.ID, string(res.State), res.ConsumedQuantity, nullIfEmpty(res.MovementID),
		res.ClosedAt, res.ClosedBy, res.CloseReason,
	)
	if err != nil {
		return fmt.Errorf("close reservation: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	cur, err := r.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}
	if cur == nil {
		return domain.ErrReservationNotFound
	}
	return domain.ErrReservationAlreadyClosed
}

// SumActive suma la cantidad retenida por reservas ACTIVE del producto.
func (r *ReservationRepo) SumActive(ctx context.Context, productID string) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0)::bigint FROM reservations WHERE product_id = $1 AND state = 'ACTIVE'`,
		productID,
	).Scan(&total)
	if err != nil {
		if isInvalidUUID(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("sum active reservations: %w", err)
	}
	return total, nil
}

// List reservas filtradas, más recientes primero.
func (r *ReservationRepo) List(ctx context.Context, q repository.ReservationQuery) ([]*entity.Reservation, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if q.ProductID != "" {
		where = append(where, "product_id = "+arg(q.ProductID))
	}
	if q.HolderID != "" {
		where = append(where, "holder_id = "+arg(q.HolderID))
	}
	if q.State != "" {
		where = append(where, "state = "+arg(string(q.State)))
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`
	if q.Limit > 0 {
		query += ` LIMIT ` + arg(q.Limit)
	}
	if q.Offset > 0 {
		query += ` OFFSET ` + arg(q.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return []*entity.Reservation{}, nil
		}
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	out := []*entity.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
