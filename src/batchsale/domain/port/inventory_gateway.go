package port

import (
	"context"

	"storepos/src/batchsale/domain/entity"
)

// InventoryGateway define el contrato con el API remoto de inventario
// Cada mutación recibe una idempotency key generada por el cliente
type InventoryGateway interface {
	// ListStock retorna los items vendibles de una ubicación ("store")
	ListStock(ctx context.Context, location string) ([]entity.StockItem, error)

	// GetStockItem lee el nivel autoritativo de un item
	GetStockItem(ctx context.Context, stockID string) (*entity.StockItem, error)

	// CreateSale registra una venta y retorna el status HTTP recibido
	CreateSale(ctx context.Context, record entity.SaleRecord, idempotencyKey string) (int, error)

	// PatchStock fija el stock restante de un item
	PatchStock(ctx context.Context, stockID, name string, remaining int, idempotencyKey string) error

	// CreateNotification emite una notificación (stock bajo)
	CreateNotification(ctx context.Context, message, priority, idempotencyKey string) error
}
