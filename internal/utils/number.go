package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var rxKeepNums = regexp.MustCompile(`[^\d\.\-]`)

// ParseDecimal парсит "0.6", "0,6", " 0,75 ", "60%" (NBSP/NNBSP) и т.п.
// Проценты переводятся в долю: "60%" → 0.6.
func ParseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	percent := strings.HasSuffix(s, "%")
	// убрать неразрывные/узкие пробелы и обычные пробелы
	repl := strings.NewReplacer("\u00A0", "", "\u202F", "", " ", "", "\t", "", ",", ".")
	s = repl.Replace(s)
	// оставить только цифры, точку и минус (на случай мусора)
	s = rxKeepNums.ReplaceAllString(s, "")
	if s == "" || s == "-" || s == "." {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if percent {
		f /= 100
	}
	return f, true
}
