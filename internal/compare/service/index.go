package service

import (
	"strings"

	"partcompare-service/internal/compare/model"
)

// profile — описание записи, подготовленное один раз: руны в нижнем
// регистре и их гистограмма для верхних оценок схожести.
type profile struct {
	rec   model.PartRecord
	runes []string
	hist  map[string]int
}

func newProfile(r model.PartRecord) profile {
	runes := splitRunes(strings.ToLower(r.Description))
	hist := make(map[string]int, len(runes))
	for _, s := range runes {
		hist[s]++
	}
	return profile{rec: r, runes: runes, hist: hist}
}

func buildProfiles(ds model.PartDataset) []profile {
	out := make([]profile, len(ds))
	for i, r := range ds {
		out[i] = newProfile(r)
	}
	return out
}

func calcRatio(matches, length int) float64 {
	if length > 0 {
		return 2.0 * float64(matches) / float64(length)
	}
	return 1.0
}

// lengthBound: совпасть может не больше символов, чем в короткой строке.
func lengthBound(a, b profile) float64 {
	la, lb := len(a.runes), len(b.runes)
	return calcRatio(min(la, lb), la+lb)
}

// histBound: пересечение мультимножеств символов ограничивает M сверху.
func histBound(a, b profile) float64 {
	small, big := a.hist, b.hist
	if len(big) < len(small) {
		small, big = big, small
	}
	inter := 0
	for s, n := range small {
		inter += min(n, big[s])
	}
	return calcRatio(inter, len(a.runes)+len(b.runes))
}

// canBeat сообщает, может ли кандидат вообще выиграть: точный ratio не
// превышает ни одну из оценок, поэтому отсечение не меняет результат.
func canBeat(o, c profile, best, threshold float64) bool {
	if ub := lengthBound(o, c); ub <= best || ub < threshold {
		return false
	}
	if ub := histBound(o, c); ub <= best || ub < threshold {
		return false
	}
	return true
}
