package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/request"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// RequestHandler expone el ciclo de vida de solicitudes.
type RequestHandler struct {
	requests *request.UseCase
}

// NewRequestHandler construye el handler de solicitudes.
func NewRequestHandler(uc *request.UseCase) *RequestHandler {
	return &RequestHandler{requests: uc}
}

// Create crea una solicitud de materiales.
// @Summary      Crear solicitud
// @Tags         solicitudes
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateRequestRequest true "Solicitud"
// @Success      201 {object} dto.RequestResponse
// @Failure      400 {object} dto.ErrorResponse
// @Router       /api/v1/requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var body dto.CreateRequestRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cuerpo inválido"})
	}
	req, err := h.requests.Submit(c.Context(), GetUserID(c), body)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToRequestResponse(req, nil))
}

// Get devuelve una solicitud.
// @Summary      Obtener solicitud
// @Tags         solicitudes
// @Produce      json
// @Param        id path string true "ID de la solicitud"
// @Success      200 {object} dto.RequestResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /api/v1/requests/{id} [get]
func (h *RequestHandler) Get(c *fiber.Ctx) error {
	req, err := h.requests.Get(c.Context(), c.Params("id"), GetUserID(c), GetRole(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req, nil))
}

// List devuelve solicitudes filtradas y paginadas.
// @Summary      Listar solicitudes
// @Tags         solicitudes
// @Produce      json
// @Param        status query string false "Estado"
// @Param        user_id query string false "Usuario (solo operador/admin)"
// @Param        limit query int false "Límite"
// @Param        offset query int false "Offset"
// @Success      200 {object} dto.PageResponse[dto.RequestResponse]
// @Router       /api/v1/requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros inválidos"})
	}
	page.Normalize()

	f := repository.RequestFilter{
		UserID: c.Query("user_id"),
		Status: c.Query("status"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	requests, total, err := h.requests.List(c.Context(), GetUserID(c), GetRole(c), f)
	if err != nil {
		return respondError(c, err)
	}

	items := make([]dto.RequestResponse, 0, len(requests))
	for _, req := range requests {
		items = append(items, dto.ToRequestResponse(req, nil))
	}
	return c.JSON(dto.PageResponse[dto.RequestResponse]{
		Items: items, Total: total, Limit: page.Limit, Offset: page.Offset,
	})
}

// Approve aprueba una solicitud apartando stock.
// @Summary      Aprobar solicitud
// @Tags         solicitudes
// @Accept       json
// @Produce      json
// @Param        id path string true "ID de la solicitud"
// @Param        body body dto.ApproveRequestRequest true "Cantidades aprobadas"
// @Success      200 {object} dto.RequestResponse
// @Failure      409 {object} dto.ErrorResponse
// @Router       /api/v1/requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *fiber.Ctx) error {
	var body dto.ApproveRequestRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cuerpo inválido"})
	}
	req, err := h.requests.Approve(c.Context(), c.Params("id"), GetUserID(c), body)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req, nil))
}

// Collect marca la solicitud como en recolección.
// @Summary      Iniciar recolección
// @Tags         solicitudes
// @Produce      json
// @Param        id path string true "ID de la solicitud"
// @Success      200 {object} dto.RequestResponse
// @Failure      409 {object} dto.ErrorResponse
// @Router       /api/v1/requests/{id}/collect [post]
func (h *RequestHandler) Collect(c *fiber.Ctx) error {
	req, err := h.requests.BeginCollection(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req, nil))
}

// Deliver registra la entrega con cantidades y pesos medidos.
// @Summary      Registrar entrega
// @Tags         solicitudes
// @Accept       json
// @Produce      json
// @Param        id path string true "ID de la solicitud"
// @Param        body body dto.RecordDeliveryRequest true "Entrega por ítem"
// @Success      200 {object} dto.RequestResponse
// @Failure      409 {object} dto.ErrorResponse
// @Router       /api/v1/requests/{id}/deliver [post]
func (h *RequestHandler) Deliver(c *fiber.Ctx) error {
	var body dto.RecordDeliveryRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cuerpo inválido"})
	}
	req, err := h.requests.RecordDelivery(c.Context(), c.Params("id"), GetUserID(c), body)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req, nil))
}

// Return registra la devolución con cantidades y pesos medidos.
// @Summary      Registrar devolución
// @Tags         solicitudes
// @Accept       json
// @Produce      json
// @Param        id path string true "ID de la solicitud"
// @Param        body body dto.RecordReturnRequest true "Devolución por ítem"
// @Success      200 {object} dto.RequestResponse
// @Failure      409 {object} dto.ErrorResponse
// @Router       /api/v1/requests/{id}/return [post]
func (h *RequestHandler) Return(c *fiber.Ctx) error {
	var body dto.RecordReturnRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cuerpo inválido"})
	}
	req, err := h.requests.RecordReturn(c.Context(), c.Params("id"), GetUserID(c), body)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req, nil))
}

// Cancel cancela una solicitud liberando los apartados si los hubiera.
// @Summary      Cancelar solicitud
// @Tags         solicitudes
// @Accept       json
// @Produce      json
// @Param        id path string true "ID de la solicitud"
// @Param        body body dto.CancelRequestRequest false "Motivo"
// @Success      200 {object} dto.RequestResponse
// @Failure      409 {object} dto.ErrorResponse
// @Router       /api/v1/requests/{id}/cancel [post]
func (h *RequestHandler) Cancel(c *fiber.Ctx) error {
	var body dto.CancelRequestRequest
	_ = c.BodyParser(&body)
	req, err := h.requests.Cancel(c.Context(), c.Params("id"), GetUserID(c), GetRole(c), body.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req, nil))
}

// CheckAvailability verifica el disponible sin reservar.
// @Summary      Verificar disponibilidad
// @Tags         solicitudes
// @Accept       json
// @Produce      json
// @Param        body body []dto.CreateRequestItem true "Ítems a verificar"
// @Success      200 {object} dto.AvailabilityResponse
// @Router       /api/v1/requests/check-availability [post]
func (h *RequestHandler) CheckAvailability(c *fiber.Ctx) error {
	var items []dto.CreateRequestItem
	if err := c.BodyParser(&items); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cuerpo inválido"})
	}
	resp, err := h.requests.CheckAvailability(c.Context(), items)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Statistics resume solicitudes por estado.
// @Summary      Estadísticas de solicitudes
// @Tags         solicitudes
// @Produce      json
// @Success      200 {object} repository.RequestStatistics
// @Router       /api/v1/requests/statistics [get]
func (h *RequestHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.requests.Statistics(c.Context(), GetUserID(c), GetRole(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// DeliveryNote descarga el acta de entrega en PDF.
// @Summary      Acta de entrega PDF
// @Tags         solicitudes
// @Produce      application/pdf
// @Param        id path string true "ID de la solicitud"
// @Success      200 {file} binary
// @Failure      409 {object} dto.ErrorResponse
// @Router       /api/v1/requests/{id}/delivery-note [get]
func (h *RequestHandler) DeliveryNote(c *fiber.Ctx) error {
	data, err := h.requests.DeliveryNote(c.Context(), c.Params("id"), GetUserID(c), GetRole(c))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="acta-entrega.pdf"`)
	return c.Send(data)
}
