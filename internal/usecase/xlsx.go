package usecase

import (
	"bytes"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"txapp-service/pkg/money"
)

// builtin number format "0.00"
const amountNumFmt = 2

// sheet is one worksheet of an export
type sheet struct {
	name     string
	headings []string
	rows     [][]interface{}
}

// setCell writes decimal amounts as numbers carrying exactly two decimals
func setCell(f *excelize.File, sheetName, cell string, value interface{}, amountStyle int) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return f.SetCellValue(sheetName, cell, value)
	}
	if err := f.SetCellFloat(sheetName, cell, d.Round(money.Places).InexactFloat64(), money.Places, 64); err != nil {
		return err
	}
	return f.SetCellStyle(sheetName, cell, cell, amountStyle)
}

// renderXLSX writes the sheets into a workbook, headings on row 1
func renderXLSX(sheets ...sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: amountNumFmt})
	if err != nil {
		return nil, err
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, err
		}

		for col, h := range s.headings {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(s.name, cell, h)
		}
		for rowNo, row := range s.rows {
			for col, value := range row {
				cell, err := excelize.CoordinatesToCellName(col+1, rowNo+2)
				if err != nil {
					return nil, err
				}
				if err := setCell(f, s.name, cell, value, amountStyle); err != nil {
					return nil, err
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
