package entity

// Nombres de campo del formulario tal como viajan al API remoto
const (
	FieldFullName      = "Full_name"
	FieldContact       = "Contact"
	FieldPaymentMethod = "Payment_method"
	FieldTransactionID = "Transaction_id"
	FieldSaleType      = "Sale_type"
	FieldReceipt       = "Receipt"
)

// Tipos de venta
const (
	SaleTypeLine  = "Batch"
	SaleTypeBatch = "Batch Sale"
)

// Receipt comprobante subido por el operador
// Solo vive en memoria: los bytes no se persisten entre reinicios
type Receipt struct {
	Filename    string
	ContentType string
	Data        []byte
}

// BuyerForm datos del comprador y del pago
type BuyerForm struct {
	FullName       string   `json:"Full_name"`
	Contact        string   `json:"Contact"`
	PaymentMethod  string   `json:"Payment_method"`
	TransactionID  string   `json:"Transaction_id"`
	SaleType       string   `json:"Sale_type"`
	ReceiptPreview string   `json:"ReceiptPreview,omitempty"`
	Receipt        *Receipt `json:"-"`
}

// NewBuyerForm formulario vacío con el tipo de venta por defecto
func NewBuyerForm() BuyerForm {
	return BuyerForm{SaleType: SaleTypeLine}
}

// Field obtiene un campo por su nombre de formulario
func (f BuyerForm) Field(name string) (string, bool) {
	switch name {
	case FieldFullName:
		return f.FullName, true
	case FieldContact:
		return f.Contact, true
	case FieldPaymentMethod:
		return f.PaymentMethod, true
	case FieldTransactionID:
		return f.TransactionID, true
	case FieldSaleType:
		return f.SaleType, true
	}
	return "", false
}

// HasReceipt indica si hay bytes de comprobante en memoria
func (f BuyerForm) HasReceipt() bool {
	return f.Receipt != nil && len(f.Receipt.Data) > 0
}
