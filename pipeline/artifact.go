package pipeline

import (
	"github.com/YuminosukeSato/housepricer/core/model"
	"github.com/YuminosukeSato/housepricer/linear"
	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

// Save は成果物を1つのJSONファイルとして保存する
func Save(f *Fitted, path string) error {
	if f == nil {
		return errors.NewValueError("Save", "nil artifact")
	}
	return model.SaveJSON(f, path)
}

// Load は成果物を読み込み、検証してから回帰モデルを復元する
//
// 検証内容:
//   - フォーマットのバージョンが一致すること
//   - 前処理の統計量が有効であること
//   - 係数の数が前処理の出力幅と一致すること
func Load(path string) (*Fitted, error) {
	var f Fitted
	if err := model.LoadJSON(&f, path); err != nil {
		return nil, err
	}
	if f.Version != ArtifactVersion {
		return nil, errors.NewValueError("Load", "unsupported artifact version "+f.Version)
	}
	if err := f.Features.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid feature state")
	}
	if len(f.Weights.Coefficients) != f.Features.Width() {
		return nil, errors.NewDimensionError("Load", f.Features.Width(), len(f.Weights.Coefficients), 1)
	}
	reg, err := linear.NewFromWeights(&f.Weights)
	if err != nil {
		return nil, errors.Wrap(err, "invalid weights")
	}
	f.model = reg
	return &f, nil
}
