// Package xlsx genera planillas Excel con excelize.
package xlsx

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
)

var _ ports.SpreadsheetExporter = (*Exporter)(nil)

// Exporter implementa ports.SpreadsheetExporter: una hoja por SpreadsheetSheet,
// encabezados en negrita en la fila 1.
type Exporter struct{}

// NewExporter construye el exportador.
func NewExporter() *Exporter { return &Exporter{} }

// Export escribe las hojas y devuelve el archivo XLSX.
func (e *Exporter) Export(sheets []ports.SpreadsheetSheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx: sin hojas")
	}
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}

	for i, sh := range sheets {
		if i == 0 {
			// La hoja por defecto "Sheet1" se renombra.
			if err := f.SetSheetName(f.GetSheetName(0), sh.Name); err != nil {
				return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return nil, fmt.Errorf("xlsx: hoja %q: %w", sh.Name, err)
		}

		for c, h := range sh.Headers {
			cell, _ := excelize.CoordinatesToCellName(c+1, 1)
			if err := f.SetCellValue(sh.Name, cell, h); err != nil {
				return nil, err
			}
		}
		if len(sh.Headers) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(sh.Headers), 1)
			if err := f.SetCellStyle(sh.Name, "A1", last, bold); err != nil {
				return nil, err
			}
			lastCol, _ := excelize.ColumnNumberToName(len(sh.Headers))
			_ = f.SetColWidth(sh.Name, "A", lastCol, 18)
		}

		for r, row := range sh.Rows {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
				if err := f.SetCellValue(sh.Name, cell, v); err != nil {
					return nil, err
				}
			}
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}
