// Package model は回帰モデルが共有するインターフェース、学習状態の管理、
// 重みのシリアライズ形式を提供します。
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer は決定係数を計算できるモデルのインターフェース
type Scorer interface {
	// Score は予測の決定係数 R^2 を返す
	Score(X, y mat.Matrix) (float64, error)
}

// WeightExporter は学習済みの重みを書き出せるモデルのインターフェース。
// 書き出した重みはモデル成果物（JSON）に保存され、プロセスを跨いで再利用されます。
type WeightExporter interface {
	ExportWeights() (*Weights, error)
}

// Regressor は価格推定に使う回帰モデルが満たすべきインターフェース
type Regressor interface {
	Fitter
	Predictor
	Scorer
	WeightExporter

	// IsFitted はモデルが学習済みかどうかを返す
	IsFitted() bool
}
