package fileio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readCSV reads CSV with headerRow (1-based), auto-detecting encoding and converting to UTF-8.
// Valid UTF-8 always wins; otherwise chardet picks between Windows-1251, KOI8-R and Latin-1
// (ISO-8859-1 / Windows-1252, which is what spreadsheet exports usually are).
// A leading BOM is honored and stripped.
func readCSV(r io.Reader, headerRow int) (*Table, error) {
	br := bufio.NewReader(r)

	peek, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}
	dec := transform.NewReader(br, unicode.BOMOverride(decoderFor(detectCharset(peek)).NewDecoder()))

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.Comma = sniffDelimiter(peek)

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return buildTable(rows, headerRow)
}

func detectCharset(peek []byte) string {
	if len(peek) == 0 || validUTF8Prefix(peek) {
		return "utf-8"
	}
	det, err := chardet.NewTextDetector().DetectBest(peek)
	if err != nil || det == nil {
		return "iso-8859-1"
	}
	return strings.ToLower(det.Charset)
}

func decoderFor(cs string) encoding.Encoding {
	switch cs {
	case "windows-1251", "cp1251":
		return charmap.Windows1251
	case "koi8-r":
		return charmap.KOI8R
	case "windows-1252", "cp1252":
		return charmap.Windows1252
	case "utf-8":
		return encoding.Nop
	default:
		// всё прочее однобайтовое читаем как latin1
		return charmap.ISO8859_1
	}
}

// validUTF8Prefix tolerates a multi-byte rune cut off by the peek window.
func validUTF8Prefix(b []byte) bool {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return true
		}
		b = b[:len(b)-1]
	}
	return utf8.Valid(b)
}

// sniffDelimiter picks ';' or tab when the first line clearly uses them instead of commas.
func sniffDelimiter(peek []byte) rune {
	line := string(peek)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	best, n := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t'} {
		if c := strings.Count(line, string(d)); c > n {
			best, n = d, c
		}
	}
	return best
}
