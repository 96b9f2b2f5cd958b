package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidTransition = errors.New("transición de estado inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrAlreadyResolved   = errors.New("la deuda ya fue resuelta")
	ErrForbidden         = errors.New("acceso denegado")
	ErrDuplicate         = errors.New("recurso duplicado")
)
