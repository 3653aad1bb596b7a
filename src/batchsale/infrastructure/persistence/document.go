package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"storepos/src/batchsale/domain/entity"

	"github.com/shopspring/decimal"
)

// sessionDocument forma persistida de la venta por lote
// Conserva los campos derivados (totales y listas) con los nombres del
// almacenamiento original; al hidratar solo se leen las líneas
type sessionDocument struct {
	AddedItems    []entity.BatchSaleItem `json:"addedItems"`
	SalesTotal    decimal.Decimal        `json:"salesTotal"`
	SalesQuantity int                    `json:"salesQuantity"`
	entity.WireLists
	FormData      entity.BuyerForm      `json:"formData"`
	PendingCommit *entity.PendingCommit `json:"pendingCommit,omitempty"`
	SaveRequestID string                `json:"saveRequestId,omitempty"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

func encodeSession(sale *entity.BatchSale) ([]byte, error) {
	doc := sessionDocument{
		AddedItems:    sale.Items,
		SalesTotal:    sale.SalesTotal(),
		SalesQuantity: sale.SalesQuantity(),
		WireLists:     sale.WireLists(),
		FormData:      sale.Buyer,
		PendingCommit: sale.Pending,
		SaveRequestID: sale.SaveRequestID,
		UpdatedAt:     sale.UpdatedAt,
	}
	if doc.AddedItems == nil {
		doc.AddedItems = []entity.BatchSaleItem{}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("error marshalling batch sale: %w", err)
	}
	return data, nil
}

func decodeSession(data []byte) (*entity.BatchSale, error) {
	var doc sessionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error unmarshalling batch sale: %w", err)
	}

	sale := entity.NewBatchSale()
	if doc.AddedItems != nil {
		sale.Items = doc.AddedItems
	}
	sale.Buyer = doc.FormData
	if sale.Buyer.SaleType == "" {
		sale.Buyer.SaleType = entity.SaleTypeLine
	}
	sale.Pending = doc.PendingCommit
	sale.SaveRequestID = doc.SaveRequestID
	sale.UpdatedAt = doc.UpdatedAt
	return sale, nil
}
