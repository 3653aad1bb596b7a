package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CandidateLine línea en edición, todavía no confirmada
// Cantidad y precio se guardan como texto libre tal cual los tipea el operador
type CandidateLine struct {
	StockID  string `json:"stock_id"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
}

// QuantityValue cantidad parseada; texto inválido vale 0
func (c CandidateLine) QuantityValue() decimal.Decimal {
	return parseOrZero(c.Quantity)
}

// PriceValue precio parseado; texto inválido vale 0
func (c CandidateLine) PriceValue() decimal.Decimal {
	return parseOrZero(c.Price)
}

// Total cantidad × precio
func (c CandidateLine) Total() decimal.Decimal {
	return c.QuantityValue().Mul(c.PriceValue())
}

// WholeQuantity retorna la cantidad como entero si es >= 1 y sin decimales
func (c CandidateLine) WholeQuantity() (int, bool) {
	q := c.QuantityValue()
	if !q.IsInteger() || q.LessThan(decimal.NewFromInt(1)) {
		return 0, false
	}
	return int(q.IntPart()), true
}

// IsEmpty indica si la línea está en su estado inicial
func (c CandidateLine) IsEmpty() bool {
	return c.StockID == "" && c.Quantity == "" && c.Price == ""
}

func parseOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
