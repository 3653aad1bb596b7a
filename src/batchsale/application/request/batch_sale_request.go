package request

// BuyerUpdateRequest actualización parcial del formulario del comprador
// Solo se aplican los campos presentes
type BuyerUpdateRequest struct {
	FullName      *string `json:"Full_name"`
	Contact       *string `json:"Contact"`
	PaymentMethod *string `json:"Payment_method"`
	TransactionID *string `json:"Transaction_id"`
	SaleType      *string `json:"Sale_type"`
}

// CandidateRequest edición de la línea candidata
// Se aplica en orden: item, cantidad, precio (el último que escribe el precio gana)
type CandidateRequest struct {
	StockID  *string   `json:"stock_id"`
	Quantity *FreeText `json:"quantity"`
	Price    *FreeText `json:"price"`
}
