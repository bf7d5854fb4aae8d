package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/housepricer/pkg/errors"
	"github.com/YuminosukeSato/housepricer/pkg/log"
)

// LinearRegression は正則化なしの最小二乗線形回帰モデル
type LinearRegression struct {
	linearModel

	// Rank は中心化した計画行列の数値ランク
	Rank int
	// Singular は中心化した計画行列の特異値（降順）
	Singular []float64
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{linearModel: newLinearModel("LinearRegression")}
}

// Fit はモデルを訓練データで学習させる
//
// 中心化した系 Xc · w = yc の最小ノルム最小二乗解を擬似逆行列
// w = V · diag(1/s) · Uᵀ · yc で求めます。相対閾値
// eps · max(n_samples, n_features) · s_max 以下の特異値は0とみなすため、
// ランク落ちした X でもエラーになりません。
//
// パラメータ:
//   - X: 特徴量行列 (n_samples × n_features)
//   - y: 目的変数 (n_samples × 1)
//
// 戻り値:
//   - error: 空の入力、次元の不一致、SVDの失敗、非有限の解
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	Xc, yc, xMean, yMean, err := centered("LinearRegression.Fit", X, y)
	if err != nil {
		return err
	}
	r, c := Xc.Dims()

	coef, rank, singular, err := pinvSolve(Xc, yc)
	if err != nil {
		return err
	}
	if err := lr.setSolution(coef, interceptFor(xMean, yMean, coef), r); err != nil {
		return err
	}
	lr.Rank = rank
	lr.Singular = singular

	if rank < c {
		log.GetLoggerWithName("linear").Debug("Rank-deficient design matrix, using minimum-norm solution",
			log.ModelNameKey, "LinearRegression",
			log.FeaturesKey, c,
			"rank", rank)
	}
	return nil
}

// pinvSolve は Xc · w = yc の最小ノルム最小二乗解を返す
func pinvSolve(Xc *mat.Dense, yc *mat.VecDense) (*mat.VecDense, int, []float64, error) {
	r, c := Xc.Dims()
	coef := mat.NewVecDense(c, nil)

	var svd mat.SVD
	if ok := svd.Factorize(Xc, mat.SVDThin); !ok {
		return nil, 0, nil, errors.NewModelError("LinearRegression.Fit", "svd", errors.New("SVD factorization failed to converge"))
	}
	s := svd.Values(nil)
	if len(s) == 0 || s[0] == 0 {
		// 全ての列が定数: 係数は0、切片は y の平均
		return coef, 0, s, nil
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	cutoff := s[0] * float64(max(r, c)) * eps
	rank := 0
	for i, sv := range s {
		if sv <= cutoff {
			continue
		}
		rank++
		// coef += v_i * (u_iᵀ yc / s_i)
		proj := mat.Dot(u.ColView(i), yc) / sv
		coef.AddScaledVec(coef, proj, v.ColView(i))
	}
	return coef, rank, s, nil
}

// eps は float64 の計算機イプシロン
var eps = math.Nextafter(1, 2) - 1
