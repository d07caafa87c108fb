package calculator

import (
	"fmt"
	"sort"

	"MarketAnalytics/internal/model"

	"gonum.org/v1/gonum/stat"
)

// PairCorrelation computes the Pearson correlation of two return series over the
// timestamps where both have a value. Fewer than two common rows, or a side that
// is constant over them, is ErrInsufficientOverlap: the pair has no usable overlap.
func PairCorrelation(a, b model.Series) (float64, error) {
	xs, ys := AlignPair(a, b)
	if len(xs) < 2 {
		return 0, fmt.Errorf("%d common rows: %w", len(xs), model.ErrInsufficientOverlap)
	}
	if stat.StdDev(xs, nil) == 0 || stat.StdDev(ys, nil) == 0 {
		return 0, fmt.Errorf("constant returns over %d common rows: %w", len(xs), model.ErrInsufficientOverlap)
	}
	return stat.Correlation(xs, ys, nil), nil
}

// CorrelationMatrix builds the symmetric correlation matrix of the given return
// series, ordered by asset id. The diagonal is 1; pairs that cannot be correlated
// are left nil.
func CorrelationMatrix(returnsByAsset map[string]model.Series) model.CorrelationMatrix {
	assets := make([]string, 0, len(returnsByAsset))
	for id := range returnsByAsset {
		assets = append(assets, id)
	}
	sort.Strings(assets)

	values := make([][]*float64, len(assets))
	for i := range values {
		values[i] = make([]*float64, len(assets))
		values[i][i] = model.Float(1.0)
	}
	for i := 0; i < len(assets); i++ {
		for j := i + 1; j < len(assets); j++ {
			c, err := PairCorrelation(returnsByAsset[assets[i]], returnsByAsset[assets[j]])
			if err != nil {
				continue
			}
			values[i][j] = model.Float(c)
			values[j][i] = model.Float(c)
		}
	}
	return model.CorrelationMatrix{Assets: assets, Values: values}
}
