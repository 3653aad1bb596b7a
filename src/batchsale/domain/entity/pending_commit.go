package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pasos de un commit de línea, usados también como sufijo de idempotency key
const (
	StepSale         = "sale"
	StepStock        = "stock"
	StepNotification = "notification"
)

// PendingCommit commit de línea en curso
// Se persiste junto con la sesión para que un reintento retome en el primer
// paso incompleto en lugar de volver a registrar la venta
type PendingCommit struct {
	RequestID        string          `json:"request_id"`
	StockID          string          `json:"stock_id"`
	Name             string          `json:"name"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Remaining        int             `json:"remaining"`
	RestockLevel     int             `json:"restock_level"`
	SaleRecorded     bool            `json:"sale_recorded"`
	StockPatched     bool            `json:"stock_patched"`
	NotificationSent bool            `json:"notification_sent"`
	CreatedAt        time.Time       `json:"created_at"`
}

// NewPendingCommit crea el commit pendiente a partir del nivel de stock recién leído
func NewPendingCommit(requestID string, fresh StockItem, quantity int, unitPrice decimal.Decimal) PendingCommit {
	return PendingCommit{
		RequestID:    requestID,
		StockID:      fresh.ID,
		Name:         fresh.Name,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		Remaining:    fresh.CurentStock - quantity,
		RestockLevel: fresh.RestockLevel,
		CreatedAt:    time.Now(),
	}
}

// Matches indica si la línea candidata corresponde a este commit
// El precio se compara por valor: "95" y "95.0" son el mismo
func (p PendingCommit) Matches(stockID string, quantity int, unitPrice decimal.Decimal) bool {
	return p.StockID == stockID && p.Quantity == quantity && p.UnitPrice.Equal(unitPrice)
}

// NeedsNotification indica si el nivel restante dispara aviso de stock bajo
func (p PendingCommit) NeedsNotification() bool {
	return p.Remaining < p.RestockLevel
}

// IdempotencyKey clave por paso enviada al API remoto
func (p PendingCommit) IdempotencyKey(step string) string {
	return p.RequestID + "-" + step
}

// Total monto de la línea
func (p PendingCommit) Total() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// RemainingItem item de stock con el nivel restante aplicado
func (p PendingCommit) RemainingItem(price decimal.Decimal) StockItem {
	return StockItem{
		ID:           p.StockID,
		Name:         p.Name,
		Price:        price,
		CurentStock:  p.Remaining,
		RestockLevel: p.RestockLevel,
	}
}

// Line construye la línea confirmada
func (p PendingCommit) Line() (*BatchSaleItem, error) {
	return NewBatchSaleItem(p.StockID, p.Name, p.Quantity, p.UnitPrice)
}
