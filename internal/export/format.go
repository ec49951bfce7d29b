package export

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/lead-export/internal/model"
)

// Format is a download file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a user-supplied format name to a Format. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", eris.Errorf("export: unsupported format %q", s)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Write serializes leads in the given format.
func Write(w io.Writer, f Format, leads []model.Lead) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, leads)
	case FormatXLSX:
		return WriteXLSX(w, leads)
	default:
		return eris.Errorf("export: unsupported format %q", string(f))
	}
}

// Filename suggests a download name such as
// "leads-ux-designer-20261019-142501.csv".
func Filename(keywords string, f Format, at time.Time) string {
	name := "leads"
	if slug := slugify(keywords); slug != "" {
		name += "-" + slug
	}
	return fmt.Sprintf("%s-%s.%s", name, at.UTC().Format("20060102-150405"), f)
}

const maxSlugLen = 40

// slugify folds accents, lowercases and keeps [a-z0-9] joined by dashes.
func slugify(s string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sep := dash && b.Len() > 0
			if sep && b.Len()+2 > maxSlugLen || b.Len()+1 > maxSlugLen {
				return b.String()
			}
			if sep {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	return b.String()
}
