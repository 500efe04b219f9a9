package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// RecordTransactionRequest body para POST /api/stock/transactions.
type RecordTransactionRequest struct {
	ProductID       string          `json:"product_id"`
	WarehouseID     string          `json:"warehouse_id"`
	LocationID      string          `json:"location_id,omitempty"` // vacío = nivel bodega ("default")
	Type            string          `json:"type"`                  // IN, OUT, TRANSFER_IN, TRANSFER_OUT, ADJUSTMENT, COUNT
	Quantity        decimal.Decimal `json:"quantity"`
	PerformedBy     string          `json:"performed_by"`
	Reference       string          `json:"reference,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	TransactionDate *time.Time      `json:"transaction_date,omitempty"` // vacío = ahora
}

// TransferRequest body para POST /api/stock/transfers.
type TransferRequest struct {
	ProductID       string          `json:"product_id"`
	FromWarehouseID string          `json:"from_warehouse_id"`
	FromLocationID  string          `json:"from_location_id,omitempty"`
	ToWarehouseID   string          `json:"to_warehouse_id"`
	ToLocationID    string          `json:"to_location_id,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	PerformedBy     string          `json:"performed_by"`
	Reference       string          `json:"reference,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// ReserveRequest body para POST /api/stock/reservations.
type ReserveRequest struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	LocationID  string          `json:"location_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	ReservedBy  string          `json:"reserved_by"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
}

// CloseReservationRequest body para release/consume de una reserva.
type CloseReservationRequest struct {
	By string `json:"by"`
}

// ValidateStockRequest body para POST /api/stock/validate.
type ValidateStockRequest struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	LocationID  string          `json:"location_id,omitempty"`
	Operation   string          `json:"operation"` // withdraw | adjust
	Quantity    decimal.Decimal `json:"quantity"`
}

// ValidationMessage un error o advertencia de validación.
type ValidationMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult resultado de la capa de validación. Los fallos esperados de
// negocio se devuelven como datos, nunca como error de control de flujo.
type ValidationResult struct {
	IsValid  bool                `json:"is_valid"`
	Errors   []ValidationMessage `json:"errors"`
	Warnings []ValidationMessage `json:"warnings"`
}

// AddError agrega un error y marca el resultado como inválido.
func (r *ValidationResult) AddError(code, message string) {
	r.IsValid = false
	r.Errors = append(r.Errors, ValidationMessage{Code: code, Message: message})
}

// AddWarning agrega una advertencia (no bloquea la operación).
func (r *ValidationResult) AddWarning(code, message string) {
	r.Warnings = append(r.Warnings, ValidationMessage{Code: code, Message: message})
}

// LedgerEntryResponse asiento del libro en respuestas HTTP.
type LedgerEntryResponse struct {
	ID              string          `json:"id"`
	TransactionID   string          `json:"transaction_id"`
	ProductID       string          `json:"product_id"`
	WarehouseID     string          `json:"warehouse_id"`
	LocationID      string          `json:"location_id"`
	Type            string          `json:"type"`
	Quantity        decimal.Decimal `json:"quantity"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	PerformedBy     string          `json:"performed_by"`
	TransactionDate time.Time       `json:"transaction_date"`
	Reference       string          `json:"reference,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// NewLedgerEntryResponse mapea la entidad al DTO.
func NewLedgerEntryResponse(e *entity.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:              e.ID,
		TransactionID:   e.TransactionID,
		ProductID:       e.ProductID,
		WarehouseID:     e.WarehouseID,
		LocationID:      e.LocationID,
		Type:            e.Type,
		Quantity:        e.Quantity,
		PreviousBalance: e.PreviousBalance,
		NewBalance:      e.NewBalance,
		PerformedBy:     e.PerformedBy,
		TransactionDate: e.TransactionDate,
		Reference:       e.Reference,
		Notes:           e.Notes,
	}
}

// BalanceResponse saldo de stock en respuestas HTTP.
type BalanceResponse struct {
	ProductID         string          `json:"product_id"`
	WarehouseID       string          `json:"warehouse_id"`
	LocationID        string          `json:"location_id,omitempty"`
	TotalQuantity     decimal.Decimal `json:"total_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	LastUpdated       time.Time       `json:"last_updated"`
	LastUpdatedBy     string          `json:"last_updated_by,omitempty"`
}

// NewBalanceResponse mapea la entidad al DTO.
func NewBalanceResponse(b *entity.StockBalance) BalanceResponse {
	return BalanceResponse{
		ProductID:         b.ProductID,
		WarehouseID:       b.WarehouseID,
		LocationID:        b.LocationID,
		TotalQuantity:     b.TotalQuantity,
		AvailableQuantity: b.AvailableQuantity,
		ReservedQuantity:  b.ReservedQuantity,
		LastUpdated:       b.LastUpdated,
		LastUpdatedBy:     b.LastUpdatedBy,
	}
}

// ReservationResponse reserva en respuestas HTTP.
type ReservationResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	LocationID  string          `json:"location_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Status      string          `json:"status"`
	ReservedBy  string          `json:"reserved_by"`
	ReservedAt  time.Time       `json:"reserved_at"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
}

// NewReservationResponse mapea la entidad al DTO.
func NewReservationResponse(r *entity.StockReservation) ReservationResponse {
	return ReservationResponse{
		ID:          r.ID,
		ProductID:   r.ProductID,
		WarehouseID: r.WarehouseID,
		LocationID:  r.LocationID,
		Quantity:    r.Quantity,
		Status:      r.Status,
		ReservedBy:  r.ReservedBy,
		ReservedAt:  r.ReservedAt,
		ExpiresAt:   r.ExpiresAt,
	}
}
