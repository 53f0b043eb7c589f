package service

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Ratio возвращает 2*M/T: M — символы в совпавших блоках (рекурсивный поиск
// самого длинного общего блока), T — суммарная длина строк в рунах.
// Две пустые строки дают 1. Регистр учитывается.
func Ratio(a, b string) float64 {
	return ratioRunes(splitRunes(a), splitRunes(b))
}

// Similarity — Ratio по строкам в нижнем регистре.
func Similarity(a, b string) float64 {
	return Ratio(strings.ToLower(a), strings.ToLower(b))
}

func ratioRunes(a, b []string) float64 {
	return difflib.NewMatcher(a, b).Ratio()
}

// splitRunes режет строку на последовательность символов для difflib.
func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
