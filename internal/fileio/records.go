package fileio

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"partcompare-service/internal/compare/model"
)

var ErrMissingColumn = errors.New("column not found")

var rxHeaderJunk = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// нормализуем имя колонки: нижний регистр, убираем служ.символы/множественные пробелы
func normHeaderKey(s string) string {
	s = strings.ToLower(normalizeCell(s))
	s = rxHeaderJunk.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// ResolveKey ищет реальный заголовок по желаемому имени.
// Поддерживает варианты через "|" (например: "Part Number|Part No").
// Порядок: точное совпадение, совпадение после нормализации, вхождение.
func ResolveKey(headers []string, want string) string {
	want = strings.TrimSpace(want)
	if want == "" {
		return ""
	}
	alts := strings.Split(want, "|")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}

	for _, a := range alts {
		for _, h := range headers {
			if h == a {
				return h
			}
		}
	}

	nAlts := make([]string, 0, len(alts))
	for _, a := range alts {
		if n := normHeaderKey(a); n != "" {
			nAlts = append(nAlts, n)
		}
	}
	for _, n := range nAlts {
		for _, h := range headers {
			if normHeaderKey(h) == n {
				return h
			}
		}
	}

	// частичное по целым словам: "part number (new)" содержит "part number",
	// а "part notes" не содержит "part no"
	bestKey, bestScore := "", 0
	for _, h := range headers {
		hw := strings.Fields(normHeaderKey(h))
		score := 0
		for _, n := range nAlts {
			nw := strings.Fields(n)
			if containsWords(hw, nw) || (len(strings.Join(hw, "")) >= 4 && containsWords(nw, hw)) {
				score = max(score, len(n))
			}
		}
		if score > bestScore {
			bestScore, bestKey = score, h
		}
	}
	return bestKey
}

// containsWords — слова sub идут подряд внутри words.
func containsWords(words, sub []string) bool {
	if len(sub) == 0 || len(sub) > len(words) {
		return false
	}
	for i := 0; i+len(sub) <= len(words); i++ {
		if slices.Equal(words[i:i+len(sub)], sub) {
			return true
		}
	}
	return false
}

// Records переводит таблицу в записи по маппингу. Пустые номера и описания
// здесь не отбрасываются: это делает очистка в сервисе (и считает их).
func Records(t *Table, m model.Mapping) (model.PartDataset, error) {
	idKey := ResolveKey(t.Headers, m.IDKey)
	if idKey == "" {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, m.IDKey)
	}
	descKey := ResolveKey(t.Headers, m.DescKey)
	if descKey == "" || descKey == idKey {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, m.DescKey)
	}

	out := make(model.PartDataset, 0, len(t.Rows))
	for _, rec := range t.Rows {
		id, desc := rec[idKey], rec[descKey]
		// пропуск повторённой шапки (склеенные выгрузки)
		if id == idKey && desc == descKey {
			continue
		}
		out = append(out, model.PartRecord{Identifier: id, Description: desc})
	}
	return out, nil
}
