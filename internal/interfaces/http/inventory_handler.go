package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// InventoryHandler maneja movimientos, reservas, disponibilidad y conciliación (protegido).
// Las lecturas puras pasan por reader (posiblemente cacheado); las mutaciones van al ledger.
type InventoryHandler struct {
	ledger *inventory.LedgerUseCase
	reader inventory.Reader
}

// NewInventoryHandler construye el handler. Si reader es nil se lee directo del ledger.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, reader inventory.Reader) *InventoryHandler {
	if reader == nil {
		reader = ledger
	}
	return &InventoryHandler{ledger: ledger, reader: reader}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  ENTRY/EXIT usan quantity como magnitud; ADJUSTMENT la usa como valor objetivo.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, type, quantity, unit_cost (entradas)"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.ledger.RegisterMovement(c.Context(), in, GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(usecase.ToMovementResult(out))
}

// History godoc
// @Summary      Historial de movimientos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        type    query  string  false  "ENTRY | EXIT | ADJUSTMENT"
// @Param        from    query  string  false  "RFC3339"
// @Param        to      query  string  false  "RFC3339"
// @Param        order   query  string  false  "asc | desc (por secuencia)"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/movements [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	q := repository.MovementQuery{
		ProductID: paramID(c),
		Limit:     c.QueryInt("limit", inventory.DefaultPageSize),
		Offset:    c.QueryInt("offset", 0),
		Ascending: strings.EqualFold(query(c, "order"), "asc"),
	}
	if t := query(c, "type"); t != "" {
		kind, err := inventory.ParseMovementKind(t)
		if err != nil {
			return writeError(c, err)
		}
		q.Kind = kind
	}
	var err error
	if q.From, err = parseTime(query(c, "from")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
	}
	if q.To, err = parseTime(query(c, "to")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
	}

	list, err := h.reader.History(c.Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, usecase.ToMovementResponse(m))
	}
	return c.JSON(dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	})
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Availability godoc
// @Summary      Disponibilidad de un producto
// @Description  stock_actual, reservado y disponible leídos de una sola vista consistente.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  inventory.Availability
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/availability [get]
func (h *InventoryHandler) Availability(c *fiber.Ctx) error {
	out, err := h.reader.Available(c.Context(), paramID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar stock con el historial
// @Description  Recalcula el stock desde los movimientos; si difiere registra un ajuste de conciliación.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  inventory.ReconcileResult
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/reconcile [post]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.ledger.Reconcile(c.Context(), paramID(c), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Productos cuya disponibilidad está por debajo del mínimo, con la cantidad sugerida de pedido.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) Replenishment(c *fiber.Ctx) error {
	list, err := h.ledger.Replenishment(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

// CreateReservation godoc
// @Summary      Crear reserva
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReservationRequest  true  "product_id, holder_id, quantity"
// @Success      201   {object}  dto.ReservationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations [post]
func (h *InventoryHandler) CreateReservation(c *fiber.Ctx) error {
	var in dto.CreateReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.ledger.CreateReservation(c.Context(), inventory.CreateReservationInput{
		ProductID: strings.TrimSpace(in.ProductID),
		HolderID:  in.HolderID,
		Quantity:  in.Quantity,
		Actor:     GetActor(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(usecase.ToReservationResponse(res))
}

// ListReservations godoc
// @Summary      Listar reservas
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        holder_id   query  string  false  "Filtrar por holder"
// @Param        state       query  string  false  "ACTIVE | RELEASED | CONSUMED"
// @Param        limit       query  int     false  "Límite"  default(50)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ReservationListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations [get]
func (h *InventoryHandler) ListReservations(c *fiber.Ctx) error {
	q := repository.ReservationQuery{
		ProductID: query(c, "product_id"),
		HolderID:  query(c, "holder_id"),
		State:     entity.ReservationState(strings.ToUpper(query(c, "state"))),
		Limit:     c.QueryInt("limit", inventory.DefaultPageSize),
		Offset:    c.QueryInt("offset", 0),
	}
	list, err := h.ledger.ListReservations(c.Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.ReservationResponse, 0, len(list))
	for _, r := range list {
		items = append(items, usecase.ToReservationResponse(r))
	}
	return c.JSON(dto.ReservationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	})
}

// GetReservation godoc
// @Summary      Obtener reserva
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations/{id} [get]
func (h *InventoryHandler) GetReservation(c *fiber.Ctx) error {
	res, err := h.ledger.GetReservation(c.Context(), paramID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(usecase.ToReservationResponse(res))
}

// ReleaseReservation godoc
// @Summary      Liberar reserva
// @Description  ACTIVE → RELEASED sin mover stock. Una reserva ya cerrada responde 409.
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la reserva"
// @Param        body  body  dto.ReleaseReservationRequest  false  "Motivo"
// @Success      200   {object}  dto.ReservationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations/{id}/release [post]
func (h *InventoryHandler) ReleaseReservation(c *fiber.Ctx) error {
	var in dto.ReleaseReservationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	res, err := h.ledger.ReleaseReservation(c.Context(), paramID(c), strings.TrimSpace(in.Reason), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(usecase.ToReservationResponse(res))
}

// ConsumeReservation godoc
// @Summary      Consumir reserva
// @Description  Registra la salida y cierra la reserva como CONSUMED (aunque el consumo sea parcial).
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la reserva"
// @Param        body  body  dto.ConsumeReservationRequest  true  "Cantidad consumida"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations/{id}/consume [post]
func (h *InventoryHandler) ConsumeReservation(c *fiber.Ctx) error {
	var in dto.ConsumeReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.ledger.ConsumeReservation(c.Context(), paramID(c), in.Quantity, GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(usecase.ToMovementResult(out))
}
