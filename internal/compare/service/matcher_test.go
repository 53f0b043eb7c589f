package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partcompare-service/internal/compare/model"
)

func rec(id, desc string) model.PartRecord {
	return model.PartRecord{Identifier: id, Description: desc}
}

var (
	materials = []string{"Steel", "Brass", "Nylon", "Rubber", "Plastic", "Aluminium", "Copper"}
	items     = []string{"Bolt", "Nut", "Washer", "Seal", "Cap", "Bracket", "Hinge", "Gasket", "Spring"}
	finishes  = []string{"", " Zinc Plated", " Black", " Stainless", " Heavy Duty"}
)

// fakeParts строит детерминированный список деталей.
func fakeParts(seed int64, n int, prefix string) model.PartDataset {
	f := gofakeit.New(seed)
	out := make(model.PartDataset, 0, n)
	for i := 0; i < n; i++ {
		desc := fmt.Sprintf("%s %s %dmm%s",
			f.RandomString(materials), f.RandomString(items), f.Number(2, 24), f.RandomString(finishes))
		out = append(out, rec(f.Numerify(prefix+"-####"), desc))
	}
	return out
}

// uniqueDescriptions оставляет записи с описаниями, различными без учёта регистра.
func uniqueDescriptions(ds model.PartDataset) model.PartDataset {
	seen := map[string]bool{}
	out := model.PartDataset{}
	for _, r := range ds {
		k := strings.ToLower(r.Description)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

func TestMatchConcreteScenario(t *testing.T) {
	original := model.PartDataset{rec("A1", "Steel Bolt 10mm"), rec("A2", "Plastic Cap")}
	comparison := model.PartDataset{rec("B1", "Steel Bolt 10mm"), rec("B2", "Rubber Seal")}

	got := Match(original, comparison, 0.6)

	require.Len(t, got, 1)
	assert.Equal(t, model.MatchResult{
		OriginalDescription: "Steel Bolt 10mm",
		OriginalIdentifier:  "A1",
		MatchedDescription:  "Steel Bolt 10mm",
		MatchedIdentifier:   "B1",
		Score:               1,
	}, got[0])
}

func TestMatchSameIdentifierExcluded(t *testing.T) {
	original := model.PartDataset{rec("A1", "Steel Bolt 10mm")}
	comparison := model.PartDataset{rec("A1", "Steel Bolt 10mm"), rec("B9", "Steel Bolt 12mm")}

	assert.Empty(t, Match(original, comparison, 0.6))
}

func TestMatchThresholdOneNeedsExactText(t *testing.T) {
	original := model.PartDataset{rec("A1", "Steel Bolt 10mm")}

	assert.Empty(t, Match(original, model.PartDataset{rec("B1", "Steel Bolt 12mm")}, 1))

	got := Match(original, model.PartDataset{rec("B1", "STEEL BOLT 10MM")}, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "B1", got[0].MatchedIdentifier)
}

func TestMatchEmptyInputs(t *testing.T) {
	ds := model.PartDataset{rec("A1", "Steel Bolt")}

	assert.Empty(t, Match(nil, ds, 0.6))
	assert.Empty(t, Match(ds, nil, 0.6))
	assert.Empty(t, Match(ds, model.PartDataset{rec("", "Steel Bolt"), rec("B1", " ")}, 0))
}

func TestMatchZeroScoreNeverSelected(t *testing.T) {
	// строгое ">" против начального 0: кандидат со схожестью 0 не выбирается
	got := Match(model.PartDataset{rec("A1", "abc")}, model.PartDataset{rec("B1", "xyz"), rec("B2", "qrs")}, 0)
	assert.Empty(t, got)
}

func TestMatchThresholdZeroTakesBestPositive(t *testing.T) {
	got := Match(model.PartDataset{rec("A1", "abc")}, model.PartDataset{rec("B1", "xyz"), rec("B2", "xbz"), rec("B3", "ybz")}, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "B2", got[0].MatchedIdentifier)
}

func TestMatchTieBreakEarliestWins(t *testing.T) {
	original := model.PartDataset{rec("A1", "Steel Bolt")}
	comparison := model.PartDataset{rec("B1", "steel bolt"), rec("B2", "STEEL BOLT"), rec("B3", "Rubber Seal")}

	got := Match(original, comparison, 0.6)
	require.Len(t, got, 1)
	assert.Equal(t, "B1", got[0].MatchedIdentifier)

	reordered := model.PartDataset{comparison[2], comparison[1], comparison[0]}
	got = Match(original, reordered, 0.6)
	require.Len(t, got, 1)
	assert.Equal(t, "B2", got[0].MatchedIdentifier)
}

func TestMatchReorderWithoutTies(t *testing.T) {
	original := model.PartDataset{rec("A1", "Steel Bolt 10mm")}
	base := model.PartDataset{rec("B1", "Steel Bolt 12mm"), rec("B2", "Steel Nut 10mm"), rec("B3", "Rubber Seal")}
	perms := [][]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}

	for _, p := range perms {
		cmp := model.PartDataset{base[p[0]], base[p[1]], base[p[2]]}
		got := Match(original, cmp, 0.6)
		require.Len(t, got, 1, "perm %v", p)
		assert.Equal(t, "B1", got[0].MatchedIdentifier, "perm %v", p)
	}
}

func TestMatchSelfComparisonIsEmpty(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		ds := uniqueDescriptions(fakeParts(seed, 40, "P"))
		for _, th := range []float64{0, 0.3, 0.6, 0.9, 1} {
			assert.Empty(t, Match(ds, ds, th), "seed %d threshold %v", seed, th)
		}
	}
}

func TestMatchMonotonicInThreshold(t *testing.T) {
	a := fakeParts(11, 60, "A")
	b := fakeParts(12, 60, "B")
	thresholds := []float64{0, 0.2, 0.4, 0.6, 0.7, 0.8, 0.9, 0.95, 1}

	prev := Match(a, b, thresholds[0])
	for _, th := range thresholds[1:] {
		cur := Match(a, b, th)
		assert.GreaterOrEqual(t, len(prev), len(cur), "threshold %v", th)
		// при более строгом пороге выбирается тот же лучший кандидат
		keys := map[[4]string]bool{}
		for _, r := range prev {
			keys[r.Key()] = true
		}
		for _, r := range cur {
			assert.True(t, keys[r.Key()], "row %+v missing at lower threshold", r)
		}
		prev = cur
	}
}

func TestMatchInvariants(t *testing.T) {
	a := fakeParts(21, 80, "A")
	b := fakeParts(22, 80, "B")
	// часть номеров совпадает, чтобы проверить исключение одинаковых номеров
	for i := 0; i < 20; i++ {
		b[i].Identifier = a[i].Identifier
	}

	const th = 0.7
	got := Match(a, b, th)
	require.NotEmpty(t, got)

	seen := map[[4]string]bool{}
	for _, r := range got {
		assert.NotEqual(t, r.OriginalIdentifier, r.MatchedIdentifier)
		assert.GreaterOrEqual(t, r.Score, th)
		assert.Equal(t, Similarity(r.OriginalDescription, r.MatchedDescription), r.Score)
		assert.False(t, seen[r.Key()], "duplicate row %+v", r)
		seen[r.Key()] = true
	}
}

func TestMatchDuplicatedInputsDoNotAddRows(t *testing.T) {
	a := fakeParts(31, 30, "A")
	b := fakeParts(32, 30, "B")
	want := Match(a, b, 0.6)

	doubled := func(ds model.PartDataset) model.PartDataset {
		out := append(model.PartDataset{}, ds...)
		return append(out, ds...)
	}
	assert.Equal(t, want, Match(doubled(a), b, 0.6))
	assert.Equal(t, want, Match(a, doubled(b), 0.6))
	assert.Equal(t, want, Match(doubled(a), doubled(b), 0.6))
}

func TestMatchDistinctOriginalsKeepOwnRows(t *testing.T) {
	// записи, различные по номеру или регистру описания, дают отдельные строки
	original := model.PartDataset{rec("A1", "Bolt"), rec("A1", "bolt"), rec("A2", "Bolt")}
	comparison := model.PartDataset{rec("B1", "BOLT")}

	got := Match(original, comparison, 0.6)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"Bolt", "bolt", "Bolt"},
		[]string{got[0].OriginalDescription, got[1].OriginalDescription, got[2].OriginalDescription})
}

func TestMatchNormalizedPrefilterAndWorkersKeepResults(t *testing.T) {
	a, _, _ := Normalize(fakeParts(41, 120, "A"))
	b, _, _ := Normalize(fakeParts(42, 90, "B"))
	ctx := context.Background()

	for _, th := range []float64{0, 0.5, 0.6, 0.8, 1} {
		base, baseCnt, err := matchNormalized(ctx, a, b, model.Options{Threshold: th, Workers: 1})
		require.NoError(t, err)
		assert.Zero(t, baseCnt.pruned)
		assert.Equal(t, len(a)*len(b), baseCnt.compared)

		for _, opt := range []model.Options{
			{Threshold: th, Workers: 1, Prefilter: true},
			{Threshold: th, Workers: 4},
			{Threshold: th, Workers: 7, Prefilter: true},
		} {
			got, cnt, err := matchNormalized(ctx, a, b, opt)
			require.NoError(t, err)
			assert.Equal(t, base, got, "opts %+v", opt)
			assert.Equal(t, len(a)*len(b), cnt.compared+cnt.pruned)
		}
	}
}

func TestMatchNormalizedShuffledOriginalOrder(t *testing.T) {
	a, _, _ := Normalize(fakeParts(51, 50, "A"))
	b, _, _ := Normalize(fakeParts(52, 50, "B"))
	rnd := rand.New(rand.NewSource(7))
	rnd.Shuffle(len(a), func(i, j int) { a[i], a[j] = a[j], a[i] })

	seq, _, err := matchNormalized(context.Background(), a, b, model.Options{Threshold: 0.6, Workers: 1})
	require.NoError(t, err)
	par, _, err := matchNormalized(context.Background(), a, b, model.Options{Threshold: 0.6, Workers: 5, Prefilter: true})
	require.NoError(t, err)
	assert.Equal(t, seq, par)
}

func TestSplitRanges(t *testing.T) {
	assert.Equal(t, [][2]int{{0, 4}, {4, 8}, {8, 10}}, splitRanges(10, 3))
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}}, splitRanges(2, 8))
	assert.Equal(t, [][2]int{{0, 5}}, splitRanges(5, 0))
}
