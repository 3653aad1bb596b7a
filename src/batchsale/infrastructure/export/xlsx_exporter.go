package export

import (
	"fmt"

	"storepos/src/batchsale/domain/entity"
	"storepos/src/batchsale/domain/port"

	"github.com/xuri/excelize/v2"
)

const (
	// SheetName hoja con las líneas del lote
	SheetName = "Batch Sale"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []interface{}{"Stock ID", "Name", "Quantity", "Unit Price", "Total"}

// XLSXExporter exporta el lote a una planilla
type XLSXExporter struct{}

// NewXLSXExporter crea el exporter
func NewXLSXExporter() port.BatchSaleExporter {
	return &XLSXExporter{}
}

// Export escribe encabezado, una fila por línea y la fila de totales
func (e *XLSXExporter) Export(sale entity.BatchSale) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	row := 1
	if err := setRow(f, row, header); err != nil {
		return nil, err
	}

	for _, item := range sale.Items {
		row++
		values := []interface{}{
			item.StockID,
			item.Name,
			item.Quantity,
			item.UnitPrice.InexactFloat64(),
			item.TotalAmount.InexactFloat64(),
		}
		if err := setRow(f, row, values); err != nil {
			return nil, err
		}
	}

	row++
	totals := []interface{}{"Total", "", sale.SalesQuantity(), "", sale.SalesTotal().InexactFloat64()}
	if err := setRow(f, row, totals); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ContentType tipo MIME de xlsx
func (e *XLSXExporter) ContentType() string {
	return xlsxContentType
}

// Extension extensión del archivo
func (e *XLSXExporter) Extension() string {
	return ".xlsx"
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
