package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo log append-only de movimientos sobre PostgreSQL. No expone UPDATE ni DELETE.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador de movimientos.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Append inserta el movimiento. (product_id, sequence) es único.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (id, product_id, kind, quantity, delta, stock_before, stock_after,
			unit_cost, reason, reference, reservation_id, actor, sequence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	var cost decimal.NullDecimal
	if m.UnitCost != nil {
		cost = decimal.NullDecimal{Decimal: *m.UnitCost, Valid: true}
	}
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, string(m.Kind), m.Quantity, m.Delta, m.StockBefore, m.StockAfter,
		cost, m.Reason, m.Reference, nullIfEmpty(m.ReservationID), m.Actor, m.Sequence, m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// ListByProduct historial de un producto con filtros opcionales, ordenado por secuencia.
func (r *MovementRepo) ListByProduct(ctx context.Context, q repository.MovementQuery) ([]*entity.Movement, error) {
	var (
		sb   strings.Builder
		args []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	sb.WriteString(`
		SELECT id, product_id, kind, quantity, delta, stock_before, stock_after,
			unit_cost, reason, reference, reservation_id, actor, sequence, created_at
		FROM movements WHERE product_id = `)
	sb.WriteString(arg(q.ProductID))
	if q.Kind != "" {
		sb.WriteString(` AND kind = ` + arg(string(q.Kind)))
	}
	if q.From != nil {
		sb.WriteString(` AND created_at >= ` + arg(*q.From))
	}
	if q.To != nil {
		sb.WriteString(` AND created_at <= ` + arg(*q.To))
	}
	if q.Ascending {
		sb.WriteString(` ORDER BY sequence ASC`)
	} else {
		sb.WriteString(` ORDER BY sequence DESC`)
	}
	if q.Limit > 0 {
		sb.WriteString(` LIMIT ` + arg(q.Limit))
	}
	if q.Offset > 0 {
		sb.WriteString(` OFFSET ` + arg(q.Offset))
	}

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		if isInvalidUUID(err) {
			return []*entity.Movement{}, nil
		}
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	out := []*entity.Movement{}
	for rows.Next() {
		var (
			m             entity.Movement
			kind          string
			cost          decimal.NullDecimal
			reservationID *string
		)
		if err := rows.Scan(
			&m.ID, &m.ProductID, &kind, &m.Quantity, &m.Delta, &m.StockBefore, &m.StockAfter,
			&cost, &m.Reason, &m.Reference, &reservationID, &m.Actor, &m.Sequence, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Kind = entity.MovementKind(kind)
		if cost.Valid {
			c := cost.Decimal
			m.UnitCost = &c
		}
		m.ReservationID = derefString(reservationID)
		out = append(out, &m)
	}
	return out, rows.Err()
}
