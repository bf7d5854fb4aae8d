// Package pipeline は前処理の統計量と回帰モデルの重みを1つの成果物に束ね、
// 学習ジョブと推論の入口を提供します。
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/housepricer/cleaning"
	"github.com/YuminosukeSato/housepricer/core/model"
	"github.com/YuminosukeSato/housepricer/dataset"
	"github.com/YuminosukeSato/housepricer/linear"
	"github.com/YuminosukeSato/housepricer/metrics"
	"github.com/YuminosukeSato/housepricer/pkg/errors"
	"github.com/YuminosukeSato/housepricer/pkg/log"
	"github.com/YuminosukeSato/housepricer/preprocessing"
)

// ArtifactVersion は成果物フォーマットのバージョン
const ArtifactVersion = "1"

// Fitted は1回の学習で作られる不変の成果物
//
// 前処理の統計量（中央値・平均・標準偏差・最頻値・語彙）と回帰係数を全て保持します。
// 作成後に変更されることはなく、複数のゴルーチンから同時に読み取れます。
type Fitted struct {
	ID           uuid.UUID                  `json:"id"`
	Version      string                     `json:"version"`
	TrainedAt    time.Time                  `json:"trained_at"`
	Regressor    string                     `json:"regressor"`
	TrainSamples int                        `json:"train_samples"`
	Features     preprocessing.FeatureState `json:"features"`
	Weights      model.Weights              `json:"weights"`
	Metrics      *metrics.Report            `json:"metrics,omitempty"`

	model model.Regressor
}

// Options は学習の設定
type Options struct {
	// Regressor は "linear"（既定）、"ridge"、"lasso" のいずれか
	Regressor string
	// Alpha は ridge / lasso の正則化の強さ
	Alpha float64
	// MaxIter と Tol は lasso の座標降下の設定（0なら既定値）
	MaxIter int
	Tol     float64
}

func (o Options) linearOptions() []linear.Option {
	var opts []linear.Option
	if o.Alpha > 0 {
		opts = append(opts, linear.WithAlpha(o.Alpha))
	}
	if o.MaxIter > 0 {
		opts = append(opts, linear.WithMaxIter(o.MaxIter))
	}
	if o.Tol > 0 {
		opts = append(opts, linear.WithTol(o.Tol))
	}
	return opts
}

// Train は前処理の統計量を学習し、変換した特徴量で回帰モデルを学習する
//
// パラメータ:
//   - train: cleaning.Clean 済みでターゲット（Price）を持つテーブル
//   - opts: 回帰モデルの設定
//
// 戻り値:
//   - *Fitted: 新しい成果物
//   - error: ターゲットがない場合はSchemaError、その他は前処理・学習のエラー
func Train(ctx context.Context, train *dataset.Table, opts Options) (*Fitted, error) {
	y, ok := train.Target()
	if !ok {
		return nil, errors.NewSchemaError("Train", dataset.ColPrice)
	}
	X, state, err := preprocessing.FitTransformContext(ctx, train)
	if err != nil {
		return nil, err
	}

	reg, err := linear.New(opts.Regressor, opts.linearOptions()...)
	if err != nil {
		return nil, err
	}
	if err := reg.Fit(X, mat.NewDense(len(y), 1, append([]float64(nil), y...))); err != nil {
		return nil, err
	}
	w, err := reg.ExportWeights()
	if err != nil {
		return nil, err
	}
	w.Features = state.FeatureNames()

	f := &Fitted{
		ID:           uuid.New(),
		Version:      ArtifactVersion,
		TrainedAt:    time.Now().UTC(),
		Regressor:    linear.Kind(opts.Regressor),
		TrainSamples: train.Len(),
		Features:     state,
		Weights:      *w,
		model:        reg,
	}

	log.GetLoggerWithName("pipeline").Info("Trained model",
		log.ModelIDKey, f.ID.String(),
		log.ModelNameKey, f.Regressor,
		log.SamplesKey, f.TrainSamples,
		log.FeaturesKey, state.Width())
	return f, nil
}

// WithMetrics は評価結果を付けたコピーを返す
func (f *Fitted) WithMetrics(report metrics.Report) *Fitted {
	out := *f
	out.Metrics = &report
	return &out
}

// Predict はテーブルの各行の価格を推定する
//
// 前処理は学習時の統計量による変換だけで、再学習は一切行いません。
func (f *Fitted) Predict(t *dataset.Table) ([]float64, error) {
	return f.PredictContext(context.Background(), t)
}

// PredictContext はキャンセル可能なPredict
func (f *Fitted) PredictContext(ctx context.Context, t *dataset.Table) ([]float64, error) {
	if f == nil || f.model == nil {
		return nil, errors.NewNotFittedError("Fitted", "Predict")
	}
	X, err := f.Features.TransformContext(ctx, t)
	if err != nil {
		return nil, err
	}
	pred, err := f.model.Predict(X)
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, 0, pred), nil
}

// PredictOne は1件の推論レコードの価格を推定する
//
// 手順: 敷地面積などの正規化 → 学習時統計量での変換 → 回帰モデルの予測。
// 結果は常に有限の値で、そうでなければNumericalInstabilityErrorを返します。
func PredictOne(ctx context.Context, f *Fitted, rec dataset.Record) (float64, error) {
	table, err := cleaning.NormalizeRecord(rec)
	if err != nil {
		return 0, err
	}
	preds, err := f.PredictContext(ctx, table)
	if err != nil {
		return 0, err
	}
	if err := errors.CheckScalar("PredictOne", preds[0], 0); err != nil {
		return 0, err
	}
	return preds[0], nil
}

// Evaluate はラベル付きテーブルで成果物を評価する
func (f *Fitted) Evaluate(ctx context.Context, t *dataset.Table) (metrics.Report, []float64, error) {
	y, ok := t.Target()
	if !ok {
		return metrics.Report{}, nil, errors.NewSchemaError("Evaluate", dataset.ColPrice)
	}
	pred, err := f.PredictContext(ctx, t)
	if err != nil {
		return metrics.Report{}, nil, err
	}
	report, err := metrics.Evaluate(y, pred)
	if err != nil {
		return metrics.Report{}, nil, err
	}
	return report, pred, nil
}

// Info は成果物のメタデータ
type Info struct {
	ID           string          `json:"id"`
	Version      string          `json:"version"`
	TrainedAt    time.Time       `json:"trained_at"`
	Regressor    string          `json:"regressor"`
	TrainSamples int             `json:"train_samples"`
	Features     []string        `json:"features"`
	Metrics      *metrics.Report `json:"metrics,omitempty"`
}

// Info は成果物のメタデータを返す
func (f *Fitted) Info() Info {
	return Info{
		ID:           f.ID.String(),
		Version:      f.Version,
		TrainedAt:    f.TrainedAt,
		Regressor:    f.Regressor,
		TrainSamples: f.TrainSamples,
		Features:     f.Features.FeatureNames(),
		Metrics:      f.Metrics,
	}
}
