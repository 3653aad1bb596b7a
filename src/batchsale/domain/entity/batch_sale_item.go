package entity

import (
	"github.com/shopspring/decimal"
)

// BatchSaleItem línea confirmada dentro de una venta por lote
// Solo se agrega, nunca se edita ni se elimina
type BatchSaleItem struct {
	StockID     string          `json:"stock_id"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// NewBatchSaleItem crea una línea confirmada
// Validaciones mínimas, cálculo de total
func NewBatchSaleItem(stockID, name string, quantity int, unitPrice decimal.Decimal) (*BatchSaleItem, error) {
	if stockID == "" {
		return nil, ErrStockIDRequired
	}
	if name == "" {
		return nil, ErrProductNameRequired
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if unitPrice.LessThan(decimal.Zero) {
		return nil, ErrInvalidPrice
	}

	return &BatchSaleItem{
		StockID:     stockID,
		Name:        name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalAmount: unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}
