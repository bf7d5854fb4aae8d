package pipeline

import (
	"context"
	"time"

	"github.com/YuminosukeSato/housepricer/cleaning"
	"github.com/YuminosukeSato/housepricer/dataset"
	"github.com/YuminosukeSato/housepricer/pkg/log"
	"github.com/YuminosukeSato/housepricer/report"
)

// RunConfig は学習ジョブ全体の設定
type RunConfig struct {
	TrainPath string
	TestPath  string
	ModelPath string
	// PlotPath が空でなければ予測値と実測値の散布図を書き出す
	PlotPath string
	// TestSize と Seed はテストCSVにラベルがない場合の分割設定
	TestSize float64
	Seed     int64
	Options  Options
}

// RunResult は学習ジョブの結果
type RunResult struct {
	Fitted       *Fitted
	TrainSummary cleaning.Summary
	TestSummary  cleaning.Summary
	// Split はテストCSVにラベルがなく学習データを分割して評価した場合 true
	Split bool
}

// Run はオフラインの学習ジョブを実行する
//
// 読み込み → クリーニング → 分割またはホールドアウト → 学習 → 評価 → 保存
// の順に処理します。テストCSVに Price 列がない場合は、学習データを
// TestSize（既定 0.2）と Seed（既定 42）で再現可能に分割して評価します。
func Run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	logger := log.GetLoggerWithName("pipeline")
	start := time.Now()
	if cfg.TestSize == 0 {
		cfg.TestSize = dataset.DefaultTestSize
	}
	if cfg.Seed == 0 {
		cfg.Seed = dataset.DefaultSeed
	}

	logger.Info("Loading data", log.DataPathKey, cfg.TrainPath, "test_path", cfg.TestPath)
	rawTrain, rawTest, err := dataset.LoadTrainTest(ctx, cfg.TrainPath, cfg.TestPath)
	if err != nil {
		return nil, err
	}

	logger.Info("Cleaning data")
	train, trainSummary, err := cleaning.Clean(rawTrain)
	if err != nil {
		return nil, err
	}
	test, testSummary, err := cleaning.Clean(rawTest)
	if err != nil {
		return nil, err
	}

	result := &RunResult{TrainSummary: trainSummary, TestSummary: testSummary}
	if _, ok := test.Target(); !ok {
		logger.Info("No Price column in test set. Splitting train set for validation.",
			log.RandomSeedKey, cfg.Seed)
		train, test, err = dataset.TrainTestSplit(train, cfg.TestSize, cfg.Seed)
		if err != nil {
			return nil, err
		}
		result.Split = true
	}

	logger.Info("Training model", log.SamplesKey, train.Len(), "columns", train.Columns())
	fitted, err := Train(ctx, train, cfg.Options)
	if err != nil {
		return nil, err
	}

	logger.Info("Evaluating model", log.SamplesKey, test.Len())
	rep, pred, err := fitted.Evaluate(ctx, test)
	if err != nil {
		return nil, err
	}
	fitted = fitted.WithMetrics(rep)
	logger.Info("Evaluation finished",
		log.RMSEKey, rep.RMSE,
		log.MAEKey, rep.MAE,
		log.R2ScoreKey, rep.R2)

	if err := Save(fitted, cfg.ModelPath); err != nil {
		return nil, err
	}
	logger.Info("Model saved",
		log.ModelPathKey, cfg.ModelPath,
		log.ModelIDKey, fitted.ID.String(),
		log.DurationMsKey, time.Since(start).Milliseconds())

	if cfg.PlotPath != "" {
		y, _ := test.Target()
		if err := report.PredictionPlot(y, pred, cfg.PlotPath); err != nil {
			return nil, err
		}
		logger.Info("Wrote prediction plot", "plot_path", cfg.PlotPath)
	}

	result.Fitted = fitted
	return result, nil
}
