package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"partcompare-service/internal/compare/model"
)

// Match — сравнение исходного списка с новым по описаниям.
// Для каждой исходной записи берётся первая запись нового списка с
// максимальной схожестью не ниже threshold; пара попадает в результат,
// только если номера различаются.
func Match(original, comparison model.PartDataset, threshold float64) model.ResultSet {
	a, _, _ := Normalize(original)
	b, _, _ := Normalize(comparison)
	res, _, _ := matchNormalized(context.Background(), a, b, model.Options{Threshold: threshold, Workers: 1})
	return res
}

type counters struct {
	compared int
	pruned   int
}

func (c *counters) add(o counters) {
	c.compared += o.compared
	c.pruned += o.pruned
}

type matcher struct {
	cands     []profile
	threshold float64
	prefilter bool
}

// best проходит кандидатов по порядку. Строгое ">" оставляет победителем
// самого раннего из равных.
func (m *matcher) best(o profile, cnt *counters) (*profile, float64) {
	var best *profile
	bestScore := 0.0
	for i := range m.cands {
		c := &m.cands[i]
		if m.prefilter && !canBeat(o, *c, bestScore, m.threshold) {
			cnt.pruned++
			continue
		}
		cnt.compared++
		score := ratioRunes(o.runes, c.runes)
		if score > bestScore && score >= m.threshold {
			best, bestScore = c, score
		}
	}
	return best, bestScore
}

func (m *matcher) one(o profile, cnt *counters) (model.MatchResult, bool) {
	c, score := m.best(o, cnt)
	if c == nil || c.rec.Identifier == o.rec.Identifier {
		return model.MatchResult{}, false
	}
	return model.MatchResult{
		OriginalDescription: o.rec.Description,
		OriginalIdentifier:  o.rec.Identifier,
		MatchedDescription:  c.rec.Description,
		MatchedIdentifier:   c.rec.Identifier,
		Score:               score,
	}, true
}

// matchNormalized ожидает уже очищенные наборы.
func matchNormalized(ctx context.Context, a, b model.PartDataset, opt model.Options) (model.ResultSet, counters, error) {
	var total counters
	if len(a) == 0 || len(b) == 0 {
		return model.ResultSet{}, total, ctx.Err()
	}

	m := &matcher{cands: buildProfiles(b), threshold: opt.Threshold, prefilter: opt.Prefilter}
	origs := buildProfiles(a)

	// слот на каждую исходную запись: порядок результата = порядок A
	slots := make([]*model.MatchResult, len(origs))

	workers := opt.Workers
	if workers > len(origs) {
		workers = len(origs)
	}
	if workers <= 1 {
		for i, o := range origs {
			if err := ctx.Err(); err != nil {
				return nil, total, err
			}
			if r, ok := m.one(o, &total); ok {
				slots[i] = &r
			}
		}
		return collect(slots), total, nil
	}

	chunks := splitRanges(len(origs), workers*4)
	perChunk := make([]counters, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for ci, rg := range chunks {
		g.Go(func() error {
			cnt := &perChunk[ci]
			for i := rg[0]; i < rg[1]; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if r, ok := m.one(origs[i], cnt); ok {
					slots[i] = &r
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, total, err
	}
	for _, c := range perChunk {
		total.add(c)
	}
	return collect(slots), total, nil
}

func collect(slots []*model.MatchResult) model.ResultSet {
	raw := make([]model.MatchResult, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			raw = append(raw, *s)
		}
	}
	return dedupResults(raw)
}

// splitRanges делит [0,n) на не более чем parts смежных полуинтервалов.
func splitRanges(n, parts int) [][2]int {
	if parts > n {
		parts = n
	}
	if parts < 1 {
		parts = 1
	}
	size := (n + parts - 1) / parts
	out := make([][2]int, 0, parts)
	for lo := 0; lo < n; lo += size {
		out = append(out, [2]int{lo, min(lo+size, n)})
	}
	return out
}
