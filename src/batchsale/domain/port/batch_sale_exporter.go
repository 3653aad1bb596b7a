package port

import "storepos/src/batchsale/domain/entity"

// BatchSaleExporter genera un archivo con las líneas del lote
type BatchSaleExporter interface {
	Export(sale entity.BatchSale) ([]byte, error)
	ContentType() string
	Extension() string
}
