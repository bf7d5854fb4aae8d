// Package preprocessing は学習時に統計量を確定させる特徴量パイプラインを提供します。
//
// 数値列は中央値で補完してから標準化し、カテゴリ列は最頻値で補完してから
// One-Hot エンコードします。学習した統計量は不変の値オブジェクト FeatureState
// にまとめられ、推論時の変換は全てこの値を通して行われます。
package preprocessing

import (
	"context"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/housepricer/core/parallel"
	"github.com/YuminosukeSato/housepricer/dataset"
	"github.com/YuminosukeSato/housepricer/pkg/errors"
	"github.com/YuminosukeSato/housepricer/pkg/log"
)

// parallelThreshold を超える行数の変換は行単位のチャンクに分けて並列に行う
const parallelThreshold = 2048

// NumericStats は数値列1つ分の学習時統計量
type NumericStats struct {
	Column string  `json:"column"`
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
}

// CategoricalStats はカテゴリ列1つ分の学習時統計量
type CategoricalStats struct {
	Column     string   `json:"column"`
	Mode       string   `json:"mode"`
	Categories []string `json:"categories"`
}

// FeatureState は学習時に確定した全ての前処理統計量を保持する不変の値オブジェクト
//
// 出力の列順は「数値列（定義順）→ カテゴリ列ごとの語彙（辞書順）」で固定されます。
type FeatureState struct {
	Numeric     []NumericStats     `json:"numeric"`
	Categorical []CategoricalStats `json:"categorical"`
}

// FitTransform は学習データから統計量を学習し、同じデータを変換する
//
// 対象の列は dataset.NumericFeatures と dataset.CategoricalFeatures です。
//
// 戻り値:
//   - *mat.Dense: n_samples × (数値列数 + 語彙サイズ) の特徴量行列
//   - FeatureState: 学習した統計量
//   - error: 必須列がない場合はSchemaError、観測値のない列はValueError、
//     空のテーブルは ErrEmptyData を含むModelError
func FitTransform(t *dataset.Table) (*mat.Dense, FeatureState, error) {
	return FitTransformContext(context.Background(), t)
}

// FitTransformContext はキャンセル可能なFitTransform
func FitTransformContext(ctx context.Context, t *dataset.Table) (*mat.Dense, FeatureState, error) {
	state, err := Fit(t)
	if err != nil {
		return nil, FeatureState{}, err
	}
	X, err := state.TransformContext(ctx, t)
	if err != nil {
		return nil, FeatureState{}, err
	}
	return X, state, nil
}

// Fit は学習データから統計量だけを学習する
func Fit(t *dataset.Table) (FeatureState, error) {
	n := t.Len()
	if n == 0 {
		return FeatureState{}, errors.NewModelError("FeatureState.Fit", "empty data", errors.ErrEmptyData)
	}

	var state FeatureState

	imputed := mat.NewDense(n, len(dataset.NumericFeatures), nil)
	medians := make([]float64, len(dataset.NumericFeatures))
	for j, name := range dataset.NumericFeatures {
		values, err := t.Numeric(name)
		if err != nil {
			return FeatureState{}, err
		}
		var imputer MedianImputer
		if err := imputer.Fit(name, values); err != nil {
			return FeatureState{}, err
		}
		col, err := imputer.Transform(values)
		if err != nil {
			return FeatureState{}, err
		}
		imputed.SetCol(j, col)
		medians[j] = imputer.Median
	}

	scaler := NewStandardScaler()
	if err := scaler.Fit(imputed); err != nil {
		return FeatureState{}, err
	}
	for j, name := range dataset.NumericFeatures {
		state.Numeric = append(state.Numeric, NumericStats{
			Column: name,
			Median: medians[j],
			Mean:   scaler.Mean[j],
			Std:    scaler.Std[j],
		})
	}

	for _, name := range dataset.CategoricalFeatures {
		values, err := t.Text(name)
		if err != nil {
			return FeatureState{}, err
		}
		var imputer ModeImputer
		if err := imputer.Fit(name, values); err != nil {
			return FeatureState{}, err
		}
		col, err := imputer.Transform(values)
		if err != nil {
			return FeatureState{}, err
		}
		var encoder OneHotEncoder
		if err := encoder.Fit(col); err != nil {
			return FeatureState{}, err
		}
		state.Categorical = append(state.Categorical, CategoricalStats{
			Column:     name,
			Mode:       imputer.Mode,
			Categories: encoder.Categories,
		})
	}

	log.GetLoggerWithName("preprocessing").Debug("Fitted feature pipeline",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.FeaturesKey, state.Width())

	return state, nil
}

// Transform は学習時の統計量でテーブルを変換する
//
// 同じ state と入力に対して常に同じ結果を返す純粋関数です。
// 語彙にないカテゴリは全て0のブロックになります。
func (s FeatureState) Transform(t *dataset.Table) (*mat.Dense, error) {
	return s.TransformContext(context.Background(), t)
}

// TransformContext はキャンセル可能なTransform。大きな入力は並列に変換する
func (s FeatureState) TransformContext(ctx context.Context, t *dataset.Table) (*mat.Dense, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	n := t.Len()
	if n == 0 {
		return nil, errors.NewModelError("FeatureState.Transform", "empty data", errors.ErrEmptyData)
	}

	numeric := make([][]dataset.NullFloat64, len(s.Numeric))
	imputers := make([]MedianImputer, len(s.Numeric))
	means := make([]float64, len(s.Numeric))
	stds := make([]float64, len(s.Numeric))
	for j, st := range s.Numeric {
		values, err := t.Numeric(st.Column)
		if err != nil {
			return nil, err
		}
		numeric[j] = values
		imputers[j] = MedianImputer{Median: st.Median, fitted: true}
		means[j], stds[j] = st.Mean, st.Std
	}
	scaler, err := NewStandardScalerFromStats(means, stds)
	if err != nil {
		return nil, err
	}

	categorical := make([][]dataset.NullString, len(s.Categorical))
	modes := make([]ModeImputer, len(s.Categorical))
	encoders := make([]*OneHotEncoder, len(s.Categorical))
	for k, st := range s.Categorical {
		values, err := t.Text(st.Column)
		if err != nil {
			return nil, err
		}
		categorical[k] = values
		modes[k] = ModeImputer{Mode: st.Mode, fitted: true}
		encoders[k] = NewOneHotEncoderFromCategories(st.Categories)
	}

	out := mat.NewDense(n, s.Width(), nil)
	err = parallel.ParallelizeWithThreshold(ctx, n, parallelThreshold, func(ctx context.Context, start, end int) error {
		for i := start; i < end; i++ {
			row := out.RawRowView(i)
			for j := range numeric {
				row[j] = scaler.TransformValue(j, imputers[j].Value(numeric[j][i]))
			}
			offset := len(numeric)
			for k := range categorical {
				w := encoders[k].Width()
				encoders[k].EncodeInto(row[offset:offset+w], modes[k].Value(categorical[k][i]))
				offset += w
			}
		}
		return ctx.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Width は出力する特徴量の数を返す
func (s FeatureState) Width() int {
	w := len(s.Numeric)
	for _, c := range s.Categorical {
		w += len(c.Categories)
	}
	return w
}

// FeatureNames は出力列の名前を出力順に返す。カテゴリ列は "列名_カテゴリ" の形式
func (s FeatureState) FeatureNames() []string {
	names := make([]string, 0, s.Width())
	for _, st := range s.Numeric {
		names = append(names, st.Column)
	}
	for _, st := range s.Categorical {
		for _, c := range st.Categories {
			names = append(names, st.Column+"_"+c)
		}
	}
	return names
}

// Validate は統計量が変換に使える状態かを検証する
func (s FeatureState) Validate() error {
	if len(s.Numeric) == 0 && len(s.Categorical) == 0 {
		return errors.NewNotFittedError("FeatureState", "Transform")
	}
	for _, st := range s.Numeric {
		if err := errors.CheckNumericalStability("FeatureState.Validate", []float64{st.Median, st.Mean, st.Std}, 0); err != nil {
			return err
		}
		if st.Std < 0 {
			return errors.NewValueError("FeatureState.Validate", "negative standard deviation for "+st.Column)
		}
	}
	for _, st := range s.Categorical {
		if len(st.Categories) == 0 {
			return errors.NewValueError("FeatureState.Validate", "empty vocabulary for "+st.Column)
		}
		if !sort.StringsAreSorted(st.Categories) {
			return errors.NewValueError("FeatureState.Validate", "vocabulary for "+st.Column+" is not sorted")
		}
	}
	return nil
}
