// Package export serializes leads for download.
package export

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-export/internal/model"
)

// WriteCSV writes a header row followed by one row per lead. Fields holding
// a comma, quote or newline are quoted with inner quotes doubled.
func WriteCSV(w io.Writer, leads []model.Lead) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(model.LeadColumns); err != nil {
		return eris.Wrap(err, "csv export: write header")
	}

	for _, l := range leads {
		if err := cw.Write(l.Row()); err != nil {
			return eris.Wrap(err, "csv export: write row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "csv export: flush")
}
