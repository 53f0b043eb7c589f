package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"partcompare-service/internal/compare/model"
)

var ErrInvalidThreshold = errors.New("threshold must be within [0, 1]")

// Run — основная сверка: очистка обоих списков, сопоставление A→B,
// статистика по отброшенным строкам.
func Run(ctx context.Context, a, b model.PartDataset, opt model.Options) (model.Report, error) {
	if math.IsNaN(opt.Threshold) || opt.Threshold < 0 || opt.Threshold > 1 {
		return model.Report{}, fmt.Errorf("%w: got %v", ErrInvalidThreshold, opt.Threshold)
	}
	if opt.Workers < 1 {
		opt.Workers = 1
	}

	na, dropA, dupA := Normalize(a)
	nb, dropB, dupB := Normalize(b)

	res, cnt, err := matchNormalized(ctx, na, nb, opt)
	if err != nil {
		return model.Report{}, fmt.Errorf("match: %w", err)
	}

	return model.Report{
		Results: res,
		Opts:    opt,
		Stats: model.Stats{
			OriginalRows:         len(na),
			ComparisonRows:       len(nb),
			OriginalDropped:      dropA,
			ComparisonDropped:    dropB,
			OriginalDuplicates:   dupA,
			ComparisonDuplicates: dupB,
			Compared:             cnt.compared,
			Pruned:               cnt.pruned,
		},
	}, nil
}
