package response

import (
	"time"

	"storepos/src/batchsale/domain/entity"

	"github.com/shopspring/decimal"
)

// CandidateResponse línea candidata con su total calculado
type CandidateResponse struct {
	StockID  string          `json:"stock_id"`
	Quantity string          `json:"quantity"`
	Price    string          `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// BatchSaleResponse estado completo de la venta por lote
type BatchSaleResponse struct {
	AddedItems    []entity.BatchSaleItem `json:"addedItems"`
	SalesTotal    decimal.Decimal        `json:"salesTotal"`
	SalesQuantity int                    `json:"salesQuantity"`
	entity.WireLists
	FormData        entity.BuyerForm      `json:"formData"`
	ReceiptAttached bool                  `json:"receiptAttached"`
	Candidate       CandidateResponse     `json:"candidate"`
	Status          string                `json:"status"`
	PendingCommit   *entity.PendingCommit `json:"pendingCommit,omitempty"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// StockOption item del snapshot marcado si ya está en el lote
type StockOption struct {
	entity.StockItem
	AlreadySelected bool `json:"already_selected"`
}

// StockResponse estado del snapshot y resultado de búsqueda
type StockResponse struct {
	Status string        `json:"status"`
	Error  string        `json:"error,omitempty"`
	Items  []StockOption `json:"items"`
}

// CommitLineResponse resultado de agregar una línea
type CommitLineResponse struct {
	Line          entity.BatchSaleItem `json:"line"`
	Remaining     int                  `json:"remaining"`
	LowStock      bool                 `json:"low_stock"`
	TotalItems    int                  `json:"total_items"`
	SalesTotal    decimal.Decimal      `json:"salesTotal"`
	SalesQuantity int                  `json:"salesQuantity"`
	RequestID     string               `json:"request_id"`
}

// FinalSaveResponse resultado del guardado final
type FinalSaveResponse struct {
	RequestID     string          `json:"request_id"`
	TotalItems    int             `json:"total_items"`
	SalesTotal    decimal.Decimal `json:"salesTotal"`
	SalesQuantity int             `json:"salesQuantity"`
	entity.WireLists
}
