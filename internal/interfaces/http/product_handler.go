package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/catalog"
	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/ledger"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// ProductHandler expone el catálogo y el libro de movimientos.
type ProductHandler struct {
	catalog *catalog.UseCase
	ledger  *ledger.UseCase
}

// NewProductHandler construye el handler de productos.
func NewProductHandler(c *catalog.UseCase, l *ledger.UseCase) *ProductHandler {
	return &ProductHandler{catalog: c, ledger: l}
}

// Create crea un producto.
// @Summary      Crear producto
// @Tags         productos
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateProductRequest true "Producto"
// @Success      201 {object} dto.ProductResponse
// @Failure      400 {object} dto.ErrorResponse
// @Router       /api/v1/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var body dto.CreateProductRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cuerpo inválido"})
	}
	p, err := h.catalog.Create(c.Context(), GetUserID(c), body)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToProductResponse(p))
}

// Get devuelve un producto.
// @Summary      Obtener producto
// @Tags         productos
// @Produce      json
// @Param        id path string true "ID del producto"
// @Success      200 {object} dto.ProductResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /api/v1/products/{id} [get]
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	p, err := h.catalog.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToProductResponse(p))
}

// List devuelve el catálogo filtrado y paginado.
// @Summary      Listar productos
// @Tags         productos
// @Produce      json
// @Param        category query string false "Categoría"
// @Param        search query string false "Búsqueda por nombre o descripción"
// @Param        limit query int false "Límite"
// @Param        offset query int false "Offset"
// @Success      200 {object} dto.PageResponse[dto.ProductResponse]
// @Router       /api/v1/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros inválidos"})
	}
	page.Normalize()

	f := repository.ProductFilter{
		Category:   c.Query("category"),
		Search:     c.Query("search"),
		OnlyActive: c.QueryBool("only_active", true),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	products, total, err := h.catalog.List(c.Context(), f)
	if err != nil {
		return respondError(c, err)
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, dto.ToProductResponse(p))
	}
	return c.JSON(dto.PageResponse[dto.ProductResponse]{
		Items: items, Total: total, Limit: page.Limit, Offset: page.Offset,
	})
}

// Update edita un producto.
// @Summary      Editar producto
// @Tags         productos
// @Accept       json
// @Produce      json
// @Param        id path string true "ID del producto"
// @Param        body body dto.UpdateProductRequest true "Campos a editar"
// @Success      200 {object} dto.ProductResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /api/v1/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var body dto.UpdateProductRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cuerpo inválido"})
	}
	p, err := h.catalog.Update(c.Context(), c.Params("id"), body)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToProductResponse(p))
}

// Deactivate retira un producto del catálogo.
// @Summary      Desactivar producto
// @Tags         productos
// @Param        id path string true "ID del producto"
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Router       /api/v1/products/{id} [delete]
func (h *ProductHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.catalog.Deactivate(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LowStock lista los productos con disponible bajo el mínimo.
// @Summary      Productos con stock bajo
// @Tags         productos
// @Produce      json
// @Success      200 {array} dto.ProductResponse
// @Router       /api/v1/products/low-stock [get]
func (h *ProductHandler) LowStock(c *fiber.Ctx) error {
	products, err := h.catalog.LowStock(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, dto.ToProductResponse(p))
	}
	return c.JSON(items)
}

// Adjust registra un movimiento manual de inventario.
// @Summary      Movimiento manual de inventario
// @Tags         productos
// @Accept       json
// @Produce      json
// @Param        id path string true "ID del producto"
// @Param        body body dto.StockAdjustmentRequest true "Movimiento"
// @Success      201 {object} dto.TransactionResponse
// @Failure      409 {object} dto.ErrorResponse
// @Router       /api/v1/products/{id}/adjust [post]
func (h *ProductHandler) Adjust(c *fiber.Ctx) error {
	var body dto.StockAdjustmentRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cuerpo inválido"})
	}
	tx, err := h.ledger.Apply(c.Context(), ledger.ApplyInput{
		ProductID:     c.Params("id"),
		Type:          body.Type,
		Quantity:      body.Quantity,
		ReferenceType: "manual",
		PerformedBy:   GetUserID(c),
		Notes:         body.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToTransactionResponse(tx))
}

// History devuelve el historial de movimientos del producto.
// @Summary      Historial de movimientos
// @Tags         productos
// @Produce      json
// @Param        id path string true "ID del producto"
// @Param        type query string false "Tipo de movimiento"
// @Param        limit query int false "Límite"
// @Param        offset query int false "Offset"
// @Success      200 {object} dto.PageResponse[dto.TransactionResponse]
// @Router       /api/v1/products/{id}/transactions [get]
func (h *ProductHandler) History(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros inválidos"})
	}
	page.Normalize()

	f := repository.TransactionFilter{
		Type:   c.Query("type"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	txs, total, err := h.ledger.History(c.Context(), c.Params("id"), f)
	if err != nil {
		return respondError(c, err)
	}

	items := make([]dto.TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		items = append(items, dto.ToTransactionResponse(tx))
	}
	return c.JSON(dto.PageResponse[dto.TransactionResponse]{
		Items: items, Total: total, Limit: page.Limit, Offset: page.Offset,
	})
}

// Balance devuelve las proyecciones recalculadas desde el libro.
// @Summary      Saldo recalculado del producto
// @Tags         productos
// @Produce      json
// @Param        id path string true "ID del producto"
// @Success      200 {object} map[string]any
// @Router       /api/v1/products/{id}/balance [get]
func (h *ProductHandler) Balance(c *fiber.Ctx) error {
	stock, reserved, err := h.ledger.Balance(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"product_id": c.Params("id"),
		"stock":      stock,
		"reserved":   reserved,
		"available":  stock.Sub(reserved),
	})
}
