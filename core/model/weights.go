package model

import (
	"encoding/json"

	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

// WeightsVersion は現在の重みフォーマットのバージョン
const WeightsVersion = "1"

// Weights は線形モデルの重みを表す構造体（シリアライゼーション用）
type Weights struct {
	// ModelType はモデルの種類（LinearRegression, Ridge, Lasso）
	ModelType string `json:"model_type"`

	// Version は重みフォーマットのバージョン（互換性チェック用）
	Version string `json:"version"`

	// Coefficients は特徴量ごとの係数
	Coefficients []float64 `json:"coefficients"`

	// Intercept は切片
	Intercept float64 `json:"intercept"`

	// Features は係数に対応する特徴量の名前（オプション）
	Features []string `json:"features,omitempty"`

	// Hyperparameters はモデルのハイパーパラメータ（alpha等）
	Hyperparameters map[string]float64 `json:"hyperparameters,omitempty"`
}

// ToJSON はWeightsをJSON形式にシリアライズ
func (w *Weights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(w, "", "  ")
}

// FromJSON はJSON形式からWeightsをデシリアライズし、妥当性を検証します
func (w *Weights) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, w); err != nil {
		return errors.Wrap(err, "decode weights")
	}
	return w.Validate()
}

// Validate はWeightsの妥当性を検証
//
// 検証内容:
//   - model_type と version が空でないこと
//   - 係数が1つ以上あり、全て有限であること
//   - Features を持つ場合は係数と同じ長さであること
func (w *Weights) Validate() error {
	if w.ModelType == "" {
		return errors.NewValueError("Weights.Validate", "model_type is required")
	}
	if w.Version == "" {
		return errors.NewValueError("Weights.Validate", "version is required")
	}
	if len(w.Coefficients) == 0 {
		return errors.NewValueError("Weights.Validate", "fitted model must have coefficients")
	}
	if len(w.Features) > 0 && len(w.Features) != len(w.Coefficients) {
		return errors.NewDimensionError("Weights.Validate", len(w.Features), len(w.Coefficients), 0)
	}
	if err := errors.CheckNumericalStability("Weights.Validate", w.Coefficients, 0); err != nil {
		return err
	}
	return errors.CheckScalar("Weights.Validate", w.Intercept, 0)
}

// Clone はWeightsのディープコピーを作成
func (w *Weights) Clone() *Weights {
	clone := &Weights{
		ModelType:    w.ModelType,
		Version:      w.Version,
		Intercept:    w.Intercept,
		Coefficients: append([]float64(nil), w.Coefficients...),
		Features:     append([]string(nil), w.Features...),
	}
	if w.Hyperparameters != nil {
		clone.Hyperparameters = make(map[string]float64, len(w.Hyperparameters))
		for k, v := range w.Hyperparameters {
			clone.Hyperparameters[k] = v
		}
	}
	return clone
}
