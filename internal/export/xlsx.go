package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lead-export/internal/model"
)

// SheetName is the worksheet that holds exported leads.
const SheetName = "Leads"

// WriteXLSX writes leads as a single-sheet workbook with the same columns
// as WriteCSV.
func WriteXLSX(w io.Writer, leads []model.Lead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx export: add sheet")
	}

	addRow(sheet, model.LeadColumns)
	for _, l := range leads {
		addRow(sheet, l.Row())
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "xlsx export: write workbook")
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
