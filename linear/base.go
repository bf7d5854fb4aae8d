// Package linear は切片付きの線形回帰モデルを提供します。
//
// LinearRegression は最小二乗解を SVD による擬似逆行列で求めるため、
// One-Hot 列の共線性などでランク落ちした計画行列でも失敗しません。
// Ridge と Lasso は同じ契約を持つ正則化版です。
package linear

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/housepricer/core/model"
	"github.com/YuminosukeSato/housepricer/metrics"
	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

// linearModel は各回帰モデルが共有する係数・切片・学習状態
type linearModel struct {
	name      string
	state     *model.StateManager
	coef      *mat.VecDense
	intercept float64
}

func newLinearModel(name string) linearModel {
	return linearModel{name: name, state: model.NewStateManager()}
}

// IsFitted はモデルが学習済みかどうかを返す
func (m *linearModel) IsFitted() bool {
	return m.state.IsFitted()
}

// Coef は学習された係数のコピーを返す。未学習なら nil
func (m *linearModel) Coef() []float64 {
	if m.coef == nil {
		return nil
	}
	return mat.Col(nil, 0, m.coef)
}

// Intercept は学習された切片を返す
func (m *linearModel) Intercept() float64 {
	return m.intercept
}

// Predict は X · coef + intercept を計算する
//
// 戻り値:
//   - mat.Matrix: n_samples × 1 の予測値（*mat.VecDense）
//   - error: 未学習、列数の不一致、または非有限の予測値
func (m *linearModel) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := m.state.RequireFitted(m.name, "Predict"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if err := m.state.RequireFeatures(m.name+".Predict", c); err != nil {
		return nil, err
	}

	pred := mat.NewVecDense(r, nil)
	pred.MulVec(X, m.coef)
	for i := 0; i < r; i++ {
		pred.SetVec(i, pred.AtVec(i)+m.intercept)
	}
	if err := errors.CheckNumericalStability(m.name+".Predict", pred.RawVector().Data, 0); err != nil {
		return nil, err
	}
	return pred, nil
}

// Score はモデルの決定係数（R²）を計算する
func (m *linearModel) Score(X, y mat.Matrix) (float64, error) {
	if err := m.state.RequireFitted(m.name, "Score"); err != nil {
		return 0, err
	}
	yPred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	yTrue, err := metrics.ColumnVector(m.name+".Score", y)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(yTrue, yPred.(*mat.VecDense))
}

// ExportWeights は学習済みの重みをシリアライズ用の構造体にして返す
func (m *linearModel) ExportWeights() (*model.Weights, error) {
	if err := m.state.RequireFitted(m.name, "ExportWeights"); err != nil {
		return nil, err
	}
	w := &model.Weights{
		ModelType:    m.name,
		Version:      model.WeightsVersion,
		Coefficients: m.Coef(),
		Intercept:    m.intercept,
	}
	return w, w.Validate()
}

// setSolution は解を保存し、非有限の係数を拒否する
func (m *linearModel) setSolution(coef *mat.VecDense, intercept float64, nSamples int) error {
	data := mat.Col(nil, 0, coef)
	if err := errors.CheckNumericalStability(m.name+".Fit", data, 0); err != nil {
		return err
	}
	if err := errors.CheckScalar(m.name+".Fit", intercept, 0); err != nil {
		return err
	}
	m.coef = mat.NewVecDense(len(data), data)
	m.intercept = intercept
	m.state.SetFitted(len(data), nSamples)
	return nil
}

// centered は入力を検証し、列平均を引いた X と平均を引いた y を返す
//
// 切片は intercept = mean(y) - mean(X) · coef で復元します。
func centered(op string, X, y mat.Matrix) (Xc *mat.Dense, yc *mat.VecDense, xMean []float64, yMean float64, err error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, nil, nil, 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	ry, cy := y.Dims()
	if ry != r {
		return nil, nil, nil, 0, errors.NewDimensionError(op, r, ry, 0)
	}
	if cy != 1 {
		return nil, nil, nil, 0, errors.NewValueError(op, "y must be a column vector")
	}

	Xc = mat.DenseCopyOf(X)
	xMean = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, Xc)
		xMean[j] = stat.Mean(col, nil)
		for i := range col {
			col[i] -= xMean[j]
		}
		Xc.SetCol(j, col)
	}
	if err := errors.CheckNumericalStability(op, Xc.RawMatrix().Data, 0); err != nil {
		return nil, nil, nil, 0, err
	}

	yData := mat.Col(nil, 0, y)
	yMean = stat.Mean(yData, nil)
	for i := range yData {
		yData[i] -= yMean
	}
	if err := errors.CheckNumericalStability(op, yData, 0); err != nil {
		return nil, nil, nil, 0, err
	}
	return Xc, mat.NewVecDense(r, yData), xMean, yMean, nil
}

func interceptFor(xMean []float64, yMean float64, coef *mat.VecDense) float64 {
	return yMean - mat.Dot(mat.NewVecDense(len(xMean), xMean), coef)
}
