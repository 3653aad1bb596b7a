package usecase

import (
	"fmt"

	"storepos/src/batchsale/domain/entity"
	"storepos/src/batchsale/domain/port"
)

// ExportBatchSaleUseCase exporta las líneas confirmadas
type ExportBatchSaleUseCase struct {
	exporter port.BatchSaleExporter
}

// NewExportBatchSaleUseCase crea una nueva instancia del caso de uso
func NewExportBatchSaleUseCase(exporter port.BatchSaleExporter) *ExportBatchSaleUseCase {
	return &ExportBatchSaleUseCase{exporter: exporter}
}

// Execute genera el archivo; un lote vacío no se exporta
func (uc *ExportBatchSaleUseCase) Execute(sale entity.BatchSale) ([]byte, error) {
	if sale.IsEmpty() {
		return nil, entity.ErrEmptyBatch
	}
	data, err := uc.exporter.Export(sale)
	if err != nil {
		return nil, fmt.Errorf("error exporting batch sale: %w", err)
	}
	return data, nil
}

// ContentType tipo MIME del archivo generado
func (uc *ExportBatchSaleUseCase) ContentType() string {
	return uc.exporter.ContentType()
}

// Filename nombre sugerido para la descarga
func (uc *ExportBatchSaleUseCase) Filename() string {
	return "batch-sale" + uc.exporter.Extension()
}
