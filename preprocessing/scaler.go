package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/housepricer/core/model"
	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

// StandardScaler は各特徴量を平均0、標準偏差1に変換するスケーラー
//
// 標準偏差は母標準偏差（n で割る）です。学習時の標準偏差が0の特徴量は
// 入力値に関わらず常に0へ変換され、NaN や無限大を生みません。
type StandardScaler struct {
	state *model.StateManager

	// Mean は各特徴量の平均値
	Mean []float64

	// Std は各特徴量の標準偏差
	Std []float64
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler()
//	err := scaler.Fit(X)
//	XScaled, err := scaler.Transform(X)
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{state: model.NewStateManager()}
}

// NewStandardScalerFromStats は学習済みの統計量からStandardScalerを復元する
func NewStandardScalerFromStats(mean, std []float64) (*StandardScaler, error) {
	if len(mean) != len(std) {
		return nil, errors.NewDimensionError("NewStandardScalerFromStats", len(mean), len(std), 1)
	}
	s := NewStandardScaler()
	s.Mean = append([]float64(nil), mean...)
	s.Std = append([]float64(nil), std...)
	s.state.SetFitted(len(mean), 0)
	return s, nil
}

// Fit は訓練データから統計情報（平均、標準偏差）を計算する
//
// パラメータ:
//   - X: 訓練データ (n_samples × n_features の行列)
//
// 戻り値:
//   - error: データが空の場合は ErrEmptyData を含むModelError
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.Mean = make([]float64, c)
	s.Std = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		s.Mean[j], s.Std[j] = stat.PopMeanStdDev(col, nil)
		// 丸め誤差程度の広がりは定数列とみなす
		if s.Std[j] <= errors.NoiseFloor(s.Mean[j], r) {
			s.Std[j] = 0
		}
	}
	if err := errors.CheckNumericalStability("StandardScaler.Fit", s.Std, 0); err != nil {
		return err
	}

	s.state.SetFitted(c, r)
	return nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する
//
// パラメータ:
//   - X: 変換するデータ
//
// 戻り値:
//   - *mat.Dense: 標準化されたデータ
//   - error: 未学習、または列数が学習時と異なる場合
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.state.RequireFitted("StandardScaler", "Transform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if err := s.state.RequireFeatures("StandardScaler.Transform", c); err != nil {
		return nil, err
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, s.scale(j, X.At(i, j)))
		}
	}
	return result, nil
}

// TransformValue は1つの値を列 j の統計量で標準化する
func (s *StandardScaler) TransformValue(j int, x float64) float64 {
	return s.scale(j, x)
}

func (s *StandardScaler) scale(j int, x float64) float64 {
	// 標準偏差0の特徴量は常に0
	return errors.SafeDivide(x-s.Mean[j], s.Std[j])
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// IsFitted は学習済みかどうかを返す
func (s *StandardScaler) IsFitted() bool {
	return s.state.IsFitted()
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return "StandardScaler()"
	}
	return fmt.Sprintf("StandardScaler(n_features=%d)", len(s.Mean))
}
