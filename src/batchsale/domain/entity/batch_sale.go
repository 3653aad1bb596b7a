package entity

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BatchSale venta por lote en construcción (Aggregate Root)
// Guarda UNA sola lista de líneas; totales y listas separadas por comas se
// derivan de ella, así índice i siempre describe la misma línea
type BatchSale struct {
	Items         []BatchSaleItem `json:"addedItems"`
	Buyer         BuyerForm       `json:"formData"`
	Pending       *PendingCommit  `json:"pendingCommit,omitempty"`
	SaveRequestID string          `json:"saveRequestId,omitempty"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// WireLists listas paralelas en el formato legacy del API
type WireLists struct {
	SalesIDFromNames  string `json:"salesIdFromNames"`
	SalesItems        string `json:"salesItems"`
	SalesQuantityList string `json:"salesQuantityList"`
}

// NewBatchSale crea una venta por lote vacía
func NewBatchSale() *BatchSale {
	return &BatchSale{
		Items: []BatchSaleItem{},
		Buyer: NewBuyerForm(),
	}
}

// AddItem agrega una línea confirmada (DDD: modificar aggregate)
func (b *BatchSale) AddItem(item BatchSaleItem) error {
	if b.Contains(item.StockID) {
		return ErrItemAlreadySelected
	}
	b.Items = append(b.Items, item)
	b.Touch()
	return nil
}

// Touch marca un cambio en el contenido del lote
// El request id de guardado queda invalidado: un lote distinto no reusa la key
func (b *BatchSale) Touch() {
	b.SaveRequestID = ""
	b.UpdatedAt = time.Now()
}

// Contains indica si el stock ya fue confirmado en este lote
func (b *BatchSale) Contains(stockID string) bool {
	for _, item := range b.Items {
		if item.StockID == stockID {
			return true
		}
	}
	return false
}

// SelectedIDs ids ya confirmados, en orden
func (b *BatchSale) SelectedIDs() []string {
	ids := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		ids = append(ids, item.StockID)
	}
	return ids
}

// SalesTotal suma de los totales de línea
func (b *BatchSale) SalesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.TotalAmount)
	}
	return total
}

// SalesQuantity suma de las cantidades de línea
func (b *BatchSale) SalesQuantity() int {
	qty := 0
	for _, item := range b.Items {
		qty += item.Quantity
	}
	return qty
}

// WireLists traduce las líneas al formato separado por comas del API.
// Único punto donde existe esa convención.
func (b *BatchSale) WireLists() WireLists {
	ids := make([]string, 0, len(b.Items))
	names := make([]string, 0, len(b.Items))
	quantities := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		ids = append(ids, item.StockID)
		names = append(names, item.Name)
		quantities = append(quantities, strconv.Itoa(item.Quantity))
	}
	return WireLists{
		SalesIDFromNames:  strings.Join(ids, ", "),
		SalesItems:        strings.Join(names, ", "),
		SalesQuantityList: strings.Join(quantities, ","),
	}
}

// TotalItems retorna el número de líneas confirmadas
func (b *BatchSale) TotalItems() int {
	return len(b.Items)
}

// IsEmpty indica si no hay líneas confirmadas
func (b *BatchSale) IsEmpty() bool {
	return len(b.Items) == 0
}

// ShouldPersist indica si la sesión tiene algo que sobreviva a un reinicio
func (b *BatchSale) ShouldPersist() bool {
	return len(b.Items) > 0 || b.Pending != nil
}

// MissingBuyerField retorna el primer campo obligatorio vacío
func (b *BatchSale) MissingBuyerField(required []string) (string, bool) {
	for _, name := range required {
		value, ok := b.Buyer.Field(name)
		if !ok || strings.TrimSpace(value) == "" {
			return name, true
		}
	}
	return "", false
}
