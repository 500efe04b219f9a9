package entity

// DefaultLocation ubicación centinela cuando el movimiento es a nivel de bodega
// (sin ubicación específica).
const DefaultLocation = "default"

// BalanceKey identifica de forma única un saldo de stock: producto × bodega × ubicación.
// Tipo compuesto usable como clave de mapa; reemplaza la concatenación de strings
// "productId_warehouseId_locationId" del modelo anterior.
type BalanceKey struct {
	ProductID   string
	WarehouseID string
	LocationID  string
}

// NewBalanceKey construye la clave normalizando la ubicación vacía a DefaultLocation.
func NewBalanceKey(productID, warehouseID, locationID string) BalanceKey {
	if locationID == "" {
		locationID = DefaultLocation
	}
	return BalanceKey{ProductID: productID, WarehouseID: warehouseID, LocationID: locationID}
}

// IsComplete indica si la clave tiene producto y bodega (mínimo obligatorio).
func (k BalanceKey) IsComplete() bool {
	return k.ProductID != "" && k.WarehouseID != ""
}
