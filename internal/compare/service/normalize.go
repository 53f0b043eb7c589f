package service

import (
	"strings"

	"partcompare-service/internal/compare/model"
)

// Normalize убирает строки без номера или описания и схлопывает точные
// дубли (номер+описание), сохраняя порядок первого появления.
// Значения не обрезаются: сравнение дальше идёт по исходному тексту.
func Normalize(ds model.PartDataset) (out model.PartDataset, dropped, duplicates int) {
	out = make(model.PartDataset, 0, len(ds))
	seen := make(map[model.PartRecord]struct{}, len(ds))
	for _, r := range ds {
		if !valid(r) {
			dropped++
			continue
		}
		if _, ok := seen[r]; ok {
			duplicates++
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out, dropped, duplicates
}

func valid(r model.PartRecord) bool {
	return strings.TrimSpace(r.Identifier) != "" && strings.TrimSpace(r.Description) != ""
}

// dedupResults оставляет первое вхождение каждой строки результата.
func dedupResults(rows []model.MatchResult) model.ResultSet {
	out := make(model.ResultSet, 0, len(rows))
	seen := make(map[[4]string]struct{}, len(rows))
	for _, r := range rows {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
