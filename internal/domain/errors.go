package domain

import "errors"

// Errores de dominio (sin dependencias externas).
//
// Taxonomía:
//   - Errores de entrada (ErrInvalidInput): se rechazan antes de tocar estado.
//   - Reglas de negocio (ErrInsufficientStock, ErrInvalidState): recuperables,
//     la operación no deja efectos parciales.
//   - Violaciones de consistencia (ErrInvariantViolated): defectos; la clave
//     afectada queda en cuarentena y no admite más mutaciones.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidState      = errors.New("transición de estado inválida")
	ErrInvariantViolated = errors.New("invariante de balance violada")
)
