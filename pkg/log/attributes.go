// Package log defines standard attribute keys for the training job and the
// prediction service.
//
// Using these keys keeps fields consistent between the offline training run,
// the HTTP layer and the prediction facade, so a single query over the log
// stream can follow one artifact from fit to serving.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator or transformer.
	// Examples: "LinearRegression", "FeaturePipeline"
	ModelNameKey = "model.name"

	// ModelIDKey is the unique identifier of a fitted artifact.
	ModelIDKey = "model.id"

	// ModelPathKey is the file the artifact was read from or written to.
	ModelPathKey = "model.path"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "fit_transform", "evaluate"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of transformed feature columns.
	FeaturesKey = "data.features"

	// DroppedRowsKey counts rows removed by cleaning.
	DroppedRowsKey = "data.dropped_rows"

	// ColumnKey names the column a message is about.
	ColumnKey = "data.column"

	// DataPathKey is the CSV file being read.
	DataPathKey = "data.path"
)

// Performance and Evaluation Metrics
const (
	DurationMsKey = "perf.duration_ms"

	RMSEKey = "metrics.rmse"

	MAEKey = "metrics.mae"

	// R2ScoreKey records R² coefficient of determination.
	// Range typically [-∞, 1.0], with 1.0 being perfect prediction.
	R2ScoreKey = "metrics.r2_score"

	// IterationKey records the current iteration of an iterative solver.
	IterationKey = "training.iteration"
)

// Prediction Context
const (
	// PredsKey indicates the number of predictions made.
	PredsKey = "preds.count"

	// PredictedPriceKey is the scalar returned by the facade.
	PredictedPriceKey = "preds.price"
)

// Error Context
const (
	ErrorCodeKey = "error.code"

	ErrorTypeKey = "error.type"

	// StacktraceKey contains the cockroachdb/errors stack trace.
	// Populated automatically when an error is logged.
	StacktraceKey = "error.stacktrace"
)

// Configuration
const (
	RegularizationKey = "hyperparams.alpha"

	// RandomSeedKey records the split seed for reproducibility.
	RandomSeedKey = "config.random_seed"

	ConfigVersionKey = "config.version"
)

// Standard attribute values.
const (
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationEvaluate     = "evaluate"
	OperationClean        = "clean"
	OperationLoad         = "load"

	PhaseTraining      = "training"
	PhaseValidation    = "validation"
	PhaseInference     = "inference"
	PhasePreprocessing = "preprocessing"

	ErrorModelUnavailable = "MODEL_UNAVAILABLE"
	ErrorPrediction       = "PREDICTION_FAILED"
	ErrorSchema           = "SCHEMA_ERROR"
	ErrorDataFileMissing  = "DATA_FILE_MISSING"
)
