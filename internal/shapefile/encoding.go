package shapefile

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// dbfLanguageDriverOffset is the header byte holding the DBF code page mark.
const dbfLanguageDriverOffset = 29

// languageDrivers maps common DBF language driver ids to their code page.
var languageDrivers = map[byte]*charmap.Charmap{
	0x01: charmap.CodePage437,
	0x02: charmap.CodePage850,
	0x03: charmap.Windows1252,
	0x57: charmap.Windows1252,
	0x58: charmap.Windows1252,
	0x64: charmap.CodePage852,
	0x65: charmap.CodePage866,
	0x7D: charmap.Windows1255,
	0x7E: charmap.Windows1256,
	0xC8: charmap.Windows1250,
	0xC9: charmap.Windows1251,
	0xCA: charmap.Windows1254,
	0xCB: charmap.Windows1253,
}

// textDecoder converts raw DBF bytes to UTF-8. A nil enc means UTF-8 when the
// bytes are valid UTF-8 and Windows-1252 otherwise.
type textDecoder struct {
	name string
	enc  encoding.Encoding
}

func (d textDecoder) decode(raw string) string {
	if d.enc == nil {
		if utf8.ValidString(raw) {
			return raw
		}
		return decodeWith(charmap.Windows1252, raw)
	}
	return decodeWith(d.enc, raw)
}

func decodeWith(enc encoding.Encoding, raw string) string {
	out, err := enc.NewDecoder().String(raw)
	if err != nil {
		return strings.ToValidUTF8(raw, "\uFFFD")
	}
	return out
}

// resolveDecoder picks the attribute encoding from the .cpg beside base, then
// from the DBF language driver byte.
func resolveDecoder(base string) (textDecoder, error) {
	if cpg, ok := sidecar(base, ".cpg"); ok {
		data, err := os.ReadFile(cpg)
		if err != nil {
			return textDecoder{}, fmt.Errorf("read code page: %w", err)
		}
		if label := strings.TrimSpace(string(data)); label != "" {
			if dec, ok := lookupEncoding(label); ok {
				return dec, nil
			}
		}
	}
	if dbf, ok := sidecar(base, ".dbf"); ok {
		if id, ok := languageDriver(dbf); ok {
			if cm, ok := languageDrivers[id]; ok {
				return textDecoder{name: cm.String(), enc: cm}, nil
			}
		}
	}
	return textDecoder{name: "auto"}, nil
}

// lookupEncoding resolves .cpg labels such as "UTF-8", "1252", "ANSI 1252" or
// "ISO-8859-1".
func lookupEncoding(label string) (textDecoder, bool) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	normalized = strings.TrimSpace(strings.TrimPrefix(normalized, "ansi"))
	if normalized == "utf-8" || normalized == "utf8" || normalized == "65001" {
		return textDecoder{name: "UTF-8", enc: unicode.UTF8}, true
	}
	candidates := []string{normalized}
	if n, err := strconv.Atoi(normalized); err == nil {
		switch {
		case n >= 1250 && n <= 1258, n == 874:
			candidates = append(candidates, "windows-"+normalized)
		case n >= 28591 && n <= 28605:
			candidates = append(candidates, "iso-8859-"+strconv.Itoa(n-28590))
		default:
			candidates = append(candidates, "cp"+normalized, "ibm"+normalized)
		}
	}
	if strings.HasPrefix(normalized, "8859") {
		candidates = append(candidates, "iso-8859-"+strings.TrimLeft(strings.TrimPrefix(normalized, "8859"), "-_"))
	}
	for _, candidate := range candidates {
		if enc, err := htmlindex.Get(candidate); err == nil && enc != nil {
			return textDecoder{name: label, enc: enc}, true
		}
		if enc, err := ianaindex.IANA.Encoding(candidate); err == nil && enc != nil {
			return textDecoder{name: label, enc: enc}, true
		}
	}
	return textDecoder{}, false
}

func languageDriver(dbfPath string) (byte, bool) {
	f, err := os.Open(dbfPath)
	if err != nil {
		return 0, false
	}
	defer f.Close()
	header := make([]byte, dbfLanguageDriverOffset+1)
	if _, err := io.ReadFull(f, header); err != nil {
		return 0, false
	}
	id := header[dbfLanguageDriverOffset]
	return id, id != 0
}
