// Package predict は学習済みの成果物を1つ保持し、1件ずつ価格を推定する窓口を提供します。
//
// Service はプロセスの起動時に一度だけ成果物を読み込み、以後は読み取り専用で
// 共有します。読み込みに失敗してもプロセスは止まらず、予測だけが
// errors.ErrModelUnavailable で拒否されます。
package predict

import (
	"context"

	"github.com/YuminosukeSato/housepricer/dataset"
	"github.com/YuminosukeSato/housepricer/internal/observability"
	"github.com/YuminosukeSato/housepricer/pipeline"
	"github.com/YuminosukeSato/housepricer/pkg/errors"
	"github.com/YuminosukeSato/housepricer/pkg/log"
)

// Predictor は HTTP 層から見た予測の窓口
type Predictor interface {
	// Predict は1件のレコードの価格（ZAR）を返す
	Predict(ctx context.Context, rec dataset.Record) (float64, error)
	// Ready は成果物が読み込まれているかを返す
	Ready() bool
	// Info は成果物のメタデータを返す。未読み込みなら false
	Info() (pipeline.Info, bool)
}

// Service は読み込んだ成果物をプロセスの寿命の間保持する
type Service struct {
	fitted *pipeline.Fitted
	logger log.Logger
}

// NewService は学習済みの成果物から Service を作る。f が nil なら利用不可の状態になる
func NewService(f *pipeline.Fitted) *Service {
	observability.SetModelLoaded(f != nil)
	return &Service{fitted: f, logger: log.GetLoggerWithName("predict")}
}

// LoadService は成果物をファイルから読み込む
//
// 読み込みに失敗した場合は原因をログに残し、利用不可の Service を返します。
// エラーは返しません。
func LoadService(path string, logger log.Logger) *Service {
	if logger == nil {
		logger = log.GetLoggerWithName("predict")
	}
	f, err := pipeline.Load(path)
	if err != nil {
		logger.Error("Failed to load model", err, log.ModelPathKey, path)
		observability.SetModelLoaded(false)
		return &Service{logger: logger}
	}
	logger.Info("Model loaded",
		log.ModelPathKey, path,
		log.ModelIDKey, f.ID.String(),
		log.FeaturesKey, f.Features.Width())
	observability.SetModelLoaded(true)
	return &Service{fitted: f, logger: logger}
}

// Ready は成果物が読み込まれているかを返す
func (s *Service) Ready() bool { return s.fitted != nil }

// Info は成果物のメタデータを返す
func (s *Service) Info() (pipeline.Info, bool) {
	if s.fitted == nil {
		return pipeline.Info{}, false
	}
	return s.fitted.Info(), true
}

// Predict は1件のレコードの価格を推定する
//
// 戻り値:
//   - float64: 推定価格（ZAR）。常に有限の値
//   - error: 成果物がなければ ErrModelUnavailable。変換や予測の失敗（panic を含む）は
//     原因を保持した PredictionError
func (s *Service) Predict(ctx context.Context, rec dataset.Record) (float64, error) {
	if s.fitted == nil {
		observability.ObservePrediction("unavailable")
		return 0, errors.WithStack(errors.ErrModelUnavailable)
	}
	price, err := s.predict(ctx, rec)
	if err != nil {
		observability.ObservePrediction("error")
		s.logger.Warn("Prediction failed", err, log.ModelIDKey, s.fitted.ID.String())
		return 0, errors.NewPredictionError(err)
	}
	observability.ObservePrediction("ok")
	s.logger.Debug("Predicted price",
		log.OperationKey, log.OperationPredict,
		log.PredictedPriceKey, price)
	return price, nil
}

func (s *Service) predict(ctx context.Context, rec dataset.Record) (price float64, err error) {
	defer errors.Recover(&err, "Service.Predict")
	return pipeline.PredictOne(ctx, s.fitted, rec)
}
