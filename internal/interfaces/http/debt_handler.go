package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/debt"
	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// DebtHandler expone el libro de deudas.
type DebtHandler struct {
	debts *debt.UseCase
}

// NewDebtHandler construye el handler de deudas.
func NewDebtHandler(uc *debt.UseCase) *DebtHandler {
	return &DebtHandler{debts: uc}
}

// Create registra una deuda manual.
// @Summary      Crear deuda manual
// @Tags         deudas
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateDebtRequest true "Deuda"
// @Success      201 {object} dto.DebtResponse
// @Failure      400 {object} dto.ErrorResponse
// @Router       /api/v1/debts [post]
func (h *DebtHandler) Create(c *fiber.Ctx) error {
	var body dto.CreateDebtRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cuerpo inválido"})
	}
	d, err := h.debts.CreateManual(c.Context(), GetUserID(c), body)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToDebtResponse(d))
}

// Get devuelve una deuda.
// @Summary      Obtener deuda
// @Tags         deudas
// @Produce      json
// @Param        id path string true "ID de la deuda"
// @Success      200 {object} dto.DebtResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /api/v1/debts/{id} [get]
func (h *DebtHandler) Get(c *fiber.Ctx) error {
	d, err := h.debts.Get(c.Context(), c.Params("id"), GetUserID(c), GetRole(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToDebtResponse(d))
}

// List devuelve deudas filtradas y paginadas.
// @Summary      Listar deudas
// @Tags         deudas
// @Produce      json
// @Param        status query string false "Estado"
// @Param        type query string false "Tipo"
// @Param        user_id query string false "Usuario (solo operador/admin)"
// @Param        limit query int false "Límite"
// @Param        offset query int false "Offset"
// @Success      200 {object} dto.PageResponse[dto.DebtResponse]
// @Router       /api/v1/debts [get]
func (h *DebtHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros inválidos"})
	}
	page.Normalize()

	f := repository.DebtFilter{
		UserID:    c.Query("user_id"),
		Status:    c.Query("status"),
		Type:      c.Query("type"),
		RequestID: c.Query("request_id"),
		Limit:     page.Limit,
		Offset:    page.Offset,
	}
	debts, total, err := h.debts.List(c.Context(), GetUserID(c), GetRole(c), f)
	if err != nil {
		return respondError(c, err)
	}

	items := make([]dto.DebtResponse, 0, len(debts))
	for _, d := range debts {
		items = append(items, dto.ToDebtResponse(d))
	}
	return c.JSON(dto.PageResponse[dto.DebtResponse]{
		Items: items, Total: total, Limit: page.Limit, Offset: page.Offset,
	})
}

// Resolve aplica la resolución de una deuda pendiente.
// @Summary      Resolver deuda
// @Tags         deudas
// @Accept       json
// @Produce      json
// @Param        id path string true "ID de la deuda"
// @Param        body body dto.ResolveDebtRequest true "Resolución"
// @Success      200 {object} dto.DebtResponse
// @Failure      409 {object} dto.ErrorResponse
// @Router       /api/v1/debts/{id}/resolve [post]
func (h *DebtHandler) Resolve(c *fiber.Ctx) error {
	var body dto.ResolveDebtRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cuerpo inválido"})
	}
	d, err := h.debts.Resolve(c.Context(), c.Params("id"), GetUserID(c), body)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToDebtResponse(d))
}

// Statistics resume deudas por estado con el monto pendiente.
// @Summary      Estadísticas de deudas
// @Tags         deudas
// @Produce      json
// @Success      200 {object} repository.DebtStatistics
// @Router       /api/v1/debts/statistics [get]
func (h *DebtHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.debts.Statistics(c.Context(), GetUserID(c), GetRole(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
