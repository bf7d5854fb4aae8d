package linear

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/housepricer/core/model"
	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

// Lasso は L1 正則化付きの線形回帰モデル
//
// 目的関数: (1 / (2·n_samples)) · ||y - Xw - b||² + alpha · ||w||₁
// 巡回座標降下法で解きます。
type Lasso struct {
	linearModel

	// Alpha は正則化の強さ（0以上）
	Alpha float64
	// MaxIter は座標降下の最大反復回数
	MaxIter int
	// Tol は収束判定の許容誤差（係数の最大更新量 / 係数の最大絶対値）
	Tol float64
	// NIter は実際に行った反復回数
	NIter int
}

// NewLasso は新しいLassoモデルを作成する
func NewLasso(opts ...Option) *Lasso {
	cfg := newConfig(opts)
	return &Lasso{
		linearModel: newLinearModel("Lasso"),
		Alpha:       cfg.alpha,
		MaxIter:     cfg.maxIter,
		Tol:         cfg.tol,
	}
}

// Fit は座標降下法で係数を求める
//
// MaxIter 回で収束しなかった場合は ConvergenceWarning を発生させ、
// その時点の係数で学習済みになります。
func (l *Lasso) Fit(X, y mat.Matrix) error {
	if l.Alpha < 0 {
		return errors.NewValueError("Lasso.Fit", "alpha must be non-negative")
	}
	if l.MaxIter <= 0 {
		return errors.NewValueError("Lasso.Fit", "max_iter must be positive")
	}
	Xc, yc, xMean, yMean, err := centered("Lasso.Fit", X, y)
	if err != nil {
		return err
	}
	r, c := Xc.Dims()
	n := float64(r)

	// 各列の二乗和 / n
	z := make([]float64, c)
	for j := 0; j < c; j++ {
		col := Xc.ColView(j)
		z[j] = mat.Dot(col, col) / n
	}

	w := make([]float64, c)
	resid := mat.VecDenseCopyOf(yc)
	converged := false

	for iter := 1; iter <= l.MaxIter; iter++ {
		l.NIter = iter
		maxDelta, wMax := 0.0, 0.0
		for j := 0; j < c; j++ {
			if z[j] == 0 {
				continue
			}
			col := Xc.ColView(j)
			old := w[j]
			rho := mat.Dot(col, resid)/n + z[j]*old
			w[j] = softThreshold(rho, l.Alpha) / z[j]
			if d := w[j] - old; d != 0 {
				resid.AddScaledVec(resid, -d, col)
				maxDelta = math.Max(maxDelta, math.Abs(d))
			}
			wMax = math.Max(wMax, math.Abs(w[j]))
		}
		if err := errors.CheckNumericalStability("Lasso.Fit", w, iter); err != nil {
			return err
		}
		if wMax == 0 || maxDelta/wMax < l.Tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("Lasso", l.MaxIter,
			fmt.Sprintf("coordinate descent did not converge; consider increasing max_iter or alpha (alpha=%g)", l.Alpha)))
	}

	coef := mat.NewVecDense(c, w)
	return l.setSolution(coef, interceptFor(xMean, yMean, coef), r)
}

func softThreshold(x, lambda float64) float64 {
	switch {
	case x > lambda:
		return x - lambda
	case x < -lambda:
		return x + lambda
	default:
		return 0
	}
}

// ExportWeights は重みとハイパーパラメータを返す
func (l *Lasso) ExportWeights() (*model.Weights, error) {
	w, err := l.linearModel.ExportWeights()
	if err != nil {
		return nil, err
	}
	w.Hyperparameters = map[string]float64{
		"alpha":    l.Alpha,
		"max_iter": float64(l.MaxIter),
		"tol":      l.Tol,
	}
	return w, nil
}
