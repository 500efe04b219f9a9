package validation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Operaciones validables.
const (
	OperationWithdraw = "withdraw"
	OperationAdjust   = "adjust"
)

// lowStockFactor umbral de advertencia: la operación dejaría el total por debajo
// del 20% del valor previo. Señal blanda de negocio, nunca bloqueante.
var lowStockFactor = decimal.NewFromFloat(0.2)

// StockValidator ejecuta las verificaciones previas a una mutación del libro o a
// una reserva. Nunca muta estado y es seguro invocarlo repetidamente; los fallos
// esperados se devuelven como datos en el resultado, no como error.
type StockValidator struct {
	query *ledger.QueryUseCase
}

// NewStockValidator construye el validador sobre las lecturas de saldo.
func NewStockValidator(query *ledger.QueryUseCase) *StockValidator {
	return &StockValidator{query: query}
}

// ValidateStockOperation valida una operación withdraw|adjust contra el saldo de
// la ubicación indicada (o el agregado de la bodega si no hay ubicación).
// Reglas: quantity > 0 en ambas; withdraw exige disponible >= quantity; advertencia
// cuando el total resultante queda por debajo del 20% del total previo.
func (v *StockValidator) ValidateStockOperation(ctx context.Context, productID, warehouseID string, quantity decimal.Decimal, operation, locationID string) (dto.ValidationResult, error) {
	result := dto.ValidationResult{IsValid: true}

	if productID == "" || warehouseID == "" {
		result.AddError("MISSING_IDENTIFIERS", "product_id y warehouse_id son obligatorios")
		return result, nil
	}
	if operation != OperationWithdraw && operation != OperationAdjust {
		result.AddError("UNKNOWN_OPERATION", fmt.Sprintf("operación desconocida: %q", operation))
		return result, nil
	}
	if !quantity.GreaterThan(decimal.Zero) {
		result.AddError("INVALID_QUANTITY", "la cantidad debe ser mayor que cero")
		return result, nil
	}

	balance, err := v.lookupBalance(ctx, productID, warehouseID, locationID)
	if err != nil {
		return dto.ValidationResult{}, err
	}
	available := decimal.Zero
	total := decimal.Zero
	if balance != nil {
		available = balance.AvailableQuantity
		total = balance.TotalQuantity
	}

	if operation == OperationWithdraw && available.LessThan(quantity) {
		result.AddError("INSUFFICIENT_STOCK",
			fmt.Sprintf("disponible %s, solicitado %s", available.String(), quantity.String()))
	}

	// Advertencia de stock bajo: reducción del total por debajo del 20% del previo.
	if total.GreaterThan(decimal.Zero) {
		projected := total.Sub(quantity)
		if projected.LessThan(total.Mul(lowStockFactor)) {
			result.AddWarning("LOW_STOCK",
				fmt.Sprintf("la operación dejaría el total en %s (menos del 20%% de %s)",
					projected.String(), total.String()))
		}
	}

	return result, nil
}

// lookupBalance resuelve el saldo relevante: específico si hay ubicación, agregado si no.
func (v *StockValidator) lookupBalance(ctx context.Context, productID, warehouseID, locationID string) (*entity.StockBalance, error) {
	if locationID != "" {
		return v.query.GetBalance(ctx, productID, warehouseID, locationID)
	}
	return v.query.GetAggregateBalance(ctx, productID, warehouseID)
}
