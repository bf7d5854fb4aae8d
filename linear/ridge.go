package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/housepricer/core/model"
	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

// Ridge は L2 正則化付きの線形回帰モデル
//
// 目的関数: ||y - Xw - b||² + alpha · ||w||²（切片 b は正則化しない）
type Ridge struct {
	linearModel

	// Alpha は正則化の強さ（0以上）
	Alpha float64
}

// NewRidge は新しいRidgeモデルを作成する
//
// 使用例:
//
//	ridge := linear.NewRidge(linear.WithAlpha(0.5))
//	err := ridge.Fit(X, y)
func NewRidge(opts ...Option) *Ridge {
	cfg := newConfig(opts)
	return &Ridge{linearModel: newLinearModel("Ridge"), Alpha: cfg.alpha}
}

// Fit は閉形式 (XcᵀXc + alpha·I) w = Xcᵀyc をコレスキー分解で解く
//
// alpha が0の場合は LinearRegression と同じ擬似逆行列の解になります。
func (rg *Ridge) Fit(X, y mat.Matrix) error {
	if rg.Alpha < 0 {
		return errors.NewValueError("Ridge.Fit", "alpha must be non-negative")
	}
	Xc, yc, xMean, yMean, err := centered("Ridge.Fit", X, y)
	if err != nil {
		return err
	}
	r, c := Xc.Dims()

	var coef *mat.VecDense
	if rg.Alpha == 0 {
		coef, _, _, err = pinvSolve(Xc, yc)
		if err != nil {
			return err
		}
	} else {
		var gram mat.SymDense
		gram.SymOuterK(1, Xc.T())
		for j := 0; j < c; j++ {
			gram.SetSym(j, j, gram.At(j, j)+rg.Alpha)
		}

		var chol mat.Cholesky
		if ok := chol.Factorize(&gram); !ok {
			return errors.NewModelError("Ridge.Fit", "cholesky", errors.New("regularized gram matrix is not positive definite"))
		}
		var xty mat.VecDense
		xty.MulVec(Xc.T(), yc)
		coef = mat.NewVecDense(c, nil)
		if err := chol.SolveVecTo(coef, &xty); err != nil {
			return errors.NewModelError("Ridge.Fit", "solve", err)
		}
	}
	return rg.setSolution(coef, interceptFor(xMean, yMean, coef), r)
}

// ExportWeights は重みと alpha を返す
func (rg *Ridge) ExportWeights() (*model.Weights, error) {
	w, err := rg.linearModel.ExportWeights()
	if err != nil {
		return nil, err
	}
	w.Hyperparameters = map[string]float64{"alpha": rg.Alpha}
	return w, nil
}
