package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/housepricer/core/model"
	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

// NewFromWeights は保存された重みから学習済みモデルを復元する
//
// 復元したモデルは Predict と Score だけを目的とし、再学習は不要です。
//
// パラメータ:
//   - w: ExportWeights で書き出した重み
//
// 戻り値:
//   - model.Regressor: ModelType に対応する学習済みモデル
//   - error: 重みが不正、または未知の ModelType の場合
func NewFromWeights(w *model.Weights) (model.Regressor, error) {
	if w == nil {
		return nil, errors.NewValueError("NewFromWeights", "nil weights")
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	coef := mat.NewVecDense(len(w.Coefficients), append([]float64(nil), w.Coefficients...))

	var base *linearModel
	var reg model.Regressor
	switch w.ModelType {
	case "LinearRegression":
		lr := NewLinearRegression()
		base, reg = &lr.linearModel, lr
	case "Ridge":
		rg := NewRidge(WithAlpha(w.Hyperparameters["alpha"]))
		base, reg = &rg.linearModel, rg
	case "Lasso":
		opts := []Option{WithAlpha(w.Hyperparameters["alpha"])}
		if v, ok := w.Hyperparameters["max_iter"]; ok {
			opts = append(opts, WithMaxIter(int(v)))
		}
		if v, ok := w.Hyperparameters["tol"]; ok {
			opts = append(opts, WithTol(v))
		}
		ls := NewLasso(opts...)
		base, reg = &ls.linearModel, ls
	default:
		return nil, errors.NewValueError("NewFromWeights", "unknown model type "+w.ModelType)
	}

	if err := base.setSolution(coef, w.Intercept, 0); err != nil {
		return nil, err
	}
	return reg, nil
}
