package entity

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// SaleRecord registro de venta enviado como multipart a /sales/create
type SaleRecord struct {
	Buyer        BuyerForm
	SaleType     string
	ProductID    string
	Quantity     int
	TotalAmount  decimal.Decimal
	EachQuantity string
	ItemList     string
}

// FormField par nombre/valor del formulario multipart
type FormField struct {
	Name  string
	Value string
}

// NewLineSaleRecord registro individual de una línea del lote
func NewLineSaleRecord(buyer BuyerForm, pending PendingCommit) SaleRecord {
	saleType := buyer.SaleType
	if saleType == "" {
		saleType = SaleTypeLine
	}
	return SaleRecord{
		Buyer:       buyer,
		SaleType:    saleType,
		ProductID:   pending.StockID,
		Quantity:    pending.Quantity,
		TotalAmount: pending.Total(),
	}
}

// NewBatchSaleRecord registro combinado del lote completo
func NewBatchSaleRecord(sale *BatchSale) SaleRecord {
	lists := sale.WireLists()
	return SaleRecord{
		Buyer:        sale.Buyer,
		SaleType:     SaleTypeBatch,
		ProductID:    lists.SalesIDFromNames,
		Quantity:     sale.SalesQuantity(),
		TotalAmount:  sale.SalesTotal(),
		EachQuantity: lists.SalesQuantityList,
		ItemList:     lists.SalesItems,
	}
}

// Fields campos del formulario en orden estable; los vacíos opcionales se omiten
func (r SaleRecord) Fields() []FormField {
	fields := []FormField{
		{Name: FieldFullName, Value: r.Buyer.FullName},
		{Name: FieldContact, Value: r.Buyer.Contact},
		{Name: FieldPaymentMethod, Value: r.Buyer.PaymentMethod},
		{Name: FieldTransactionID, Value: r.Buyer.TransactionID},
		{Name: FieldSaleType, Value: r.SaleType},
		{Name: "Product_id", Value: r.ProductID},
		{Name: "Quantity", Value: strconv.Itoa(r.Quantity)},
		{Name: "Total_amount", Value: r.TotalAmount.String()},
	}
	if r.EachQuantity != "" {
		fields = append(fields, FormField{Name: "EachQuantity", Value: r.EachQuantity})
	}
	if r.ItemList != "" {
		fields = append(fields, FormField{Name: "Item_List", Value: r.ItemList})
	}
	return fields
}
