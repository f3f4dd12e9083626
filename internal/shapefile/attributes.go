package shapefile

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
)

type column struct {
	name      string
	kind      byte
	precision int
}

func readColumns(r shp.SequentialReader, dec textDecoder) []column {
	fields := r.Fields()
	columns := make([]column, 0, len(fields))
	for _, f := range fields {
		columns = append(columns, column{
			name:      dec.decode(strings.TrimRight(f.String(), "\x00 ")),
			kind:      f.Fieldtype,
			precision: int(f.Precision),
		})
	}
	return columns
}

// value converts one raw DBF cell to its JSON representation.
func (c column) value(raw string, dec textDecoder) any {
	text := strings.Trim(raw, "\x00 ")
	switch c.kind {
	case 'N', 'F':
		return numeric(text, c.precision)
	case 'L':
		return logical(text)
	case 'D':
		return date(text)
	default:
		return dec.decode(text)
	}
}

func numeric(text string, precision int) any {
	if text == "" || strings.Trim(text, "*") == "" {
		return nil
	}
	if precision == 0 && !strings.ContainsAny(text, ".eE") {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n
		}
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}
	return text
}

func logical(text string) any {
	switch strings.ToUpper(text) {
	case "T", "Y":
		return true
	case "F", "N":
		return false
	default:
		return nil
	}
}

// date renders a DBF YYYYMMDD date as YYYY-MM-DD; other content is kept verbatim.
func date(text string) any {
	if text == "" || strings.Trim(text, "0") == "" {
		return nil
	}
	if len(text) != 8 {
		return text
	}
	if _, err := strconv.Atoi(text); err != nil {
		return text
	}
	return text[:4] + "-" + text[4:6] + "-" + text[6:]
}
