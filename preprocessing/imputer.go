package preprocessing

import (
	"sort"

	"github.com/YuminosukeSato/housepricer/dataset"
	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

// MedianImputer は数値列の欠損値を学習時の中央値で置き換える
type MedianImputer struct {
	// Median は学習時の中央値
	Median float64
	fitted bool
}

// Fit は観測された値から中央値を学習する
//
// 値の個数が偶数の場合は中央の2つの値の平均を中央値とします。
// 観測値が1つもない列は統計量を学習できないためValueErrorになります。
func (m *MedianImputer) Fit(column string, values []dataset.NullFloat64) error {
	observed := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid {
			observed = append(observed, v.Float64)
		}
	}
	if len(observed) == 0 {
		return errors.NewValueError("MedianImputer.Fit", "column "+column+" has no observed values")
	}
	sort.Float64s(observed)
	n := len(observed)
	if n%2 == 1 {
		m.Median = observed[n/2]
	} else {
		m.Median = (observed[n/2-1] + observed[n/2]) / 2
	}
	m.fitted = true
	return nil
}

// Transform は欠損値を中央値で埋めた新しいスライスを返す
func (m *MedianImputer) Transform(values []dataset.NullFloat64) ([]float64, error) {
	if !m.fitted {
		return nil, errors.NewNotFittedError("MedianImputer", "Transform")
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = m.Value(v)
	}
	return out, nil
}

// Value は1つの値を補完する
func (m *MedianImputer) Value(v dataset.NullFloat64) float64 {
	if v.Valid {
		return v.Float64
	}
	return m.Median
}

// ModeImputer はカテゴリ列の欠損値を学習時の最頻値で置き換える
type ModeImputer struct {
	// Mode は学習時の最頻値
	Mode   string
	fitted bool
}

// Fit は観測された値から最頻値を学習する
//
// 同数の場合は辞書順で最小のカテゴリを選びます。
func (m *ModeImputer) Fit(column string, values []dataset.NullString) error {
	counts := make(map[string]int)
	for _, v := range values {
		if v.Valid {
			counts[v.String]++
		}
	}
	if len(counts) == 0 {
		return errors.NewValueError("ModeImputer.Fit", "column "+column+" has no observed values")
	}
	best, bestCount := "", -1
	for category, count := range counts {
		if count > bestCount || (count == bestCount && category < best) {
			best, bestCount = category, count
		}
	}
	m.Mode = best
	m.fitted = true
	return nil
}

// Transform は欠損値を最頻値で埋めた新しいスライスを返す
func (m *ModeImputer) Transform(values []dataset.NullString) ([]string, error) {
	if !m.fitted {
		return nil, errors.NewNotFittedError("ModeImputer", "Transform")
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = m.Value(v)
	}
	return out, nil
}

// Value は1つの値を補完する
func (m *ModeImputer) Value(v dataset.NullString) string {
	if v.Valid {
		return v.String
	}
	return m.Mode
}
