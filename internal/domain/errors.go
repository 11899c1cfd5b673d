package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrNegativeStock = errors.New("el stock resultante sería negativo")
	ErrDuplicate     = errors.New("recurso duplicado")
	ErrConflict      = errors.New("conflicto con el estado actual")
	ErrUnauthorized  = errors.New("no autorizado")
	ErrForbidden     = errors.New("acceso denegado")
)
