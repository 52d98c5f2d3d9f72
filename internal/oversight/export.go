package oversight

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"medstock/m/internal/format"
)

const sheetName = "Facilities"

var exportHeaders = []string{
	"ID", "Name", "Ward", "LGA", "State", "Status", "Stock Status",
	"Staff", "Patients Served", "Inventory Value", "Last Report",
}

var columnWidths = []float64{10, 32, 16, 16, 12, 10, 14, 8, 16, 18, 14}

// ExportXLSX renders the filtered facility list as an Excel workbook.
func (s *Service) ExportXLSX(ctx context.Context, filter Filter) ([]byte, error) {
	const op = "oversight.Service.ExportXLSX"

	facilities, err := s.Facilities(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("close workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("%s: name sheet: %w", op, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: header style: %w", op, err)
	}

	for col, header := range exportHeaders {
		if err := setCell(f, col+1, 1, header); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := f.SetColWidth(sheetName, name, name, columnWidths[col]); err != nil {
			return nil, fmt.Errorf("%s: column width: %w", op, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("%s: apply header style: %w", op, err)
	}

	for i, fac := range facilities {
		row := i + 2
		values := []any{
			fac.ID, fac.Name, fac.Ward, fac.LGA, fac.State, string(fac.Status), string(fac.StockStatus),
			fac.StaffCount, fac.PatientsServed, format.Currency(fac.InventoryValue),
			fac.LastReportAt.Format("2006-01-02"),
		}
		for col, v := range values {
			if err := setCell(f, col+1, row, v); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("%s: freeze header: %w", op, err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("%s: write workbook: %w", op, err)
	}

	s.logger.Info("facility export generated", zap.Int("rows", len(facilities)))
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheetName, cell, value)
}
