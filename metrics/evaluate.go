package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

// Report は1回の評価結果
type Report struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
	// N は評価に使ったサンプル数
	N int `json:"n"`
}

// Evaluate は実測値と予測値から RMSE、MAE、R² をまとめて計算する
//
// パラメータ:
//   - yTrue: 実測値
//   - yPred: 予測値（yTrue と同じ長さ）
//
// 戻り値:
//   - Report: 評価結果
//   - error: 空の入力や長さの不一致
//
// 使用例:
//
//	report, err := metrics.Evaluate(yTest, yPred)
//	fmt.Println(report)
func Evaluate(yTrue, yPred []float64) (Report, error) {
	if len(yTrue) == 0 || len(yPred) == 0 {
		return Report{}, errors.NewValueError("Evaluate", "empty vector")
	}
	if len(yTrue) != len(yPred) {
		return Report{}, errors.NewDimensionError("Evaluate", len(yTrue), len(yPred), 0)
	}
	a := mat.NewVecDense(len(yTrue), append([]float64(nil), yTrue...))
	b := mat.NewVecDense(len(yPred), append([]float64(nil), yPred...))

	rmse, err := RMSE(a, b)
	if err != nil {
		return Report{}, err
	}
	mae, err := MAE(a, b)
	if err != nil {
		return Report{}, err
	}
	r2, err := R2Score(a, b)
	if err != nil {
		return Report{}, err
	}
	return Report{RMSE: rmse, MAE: mae, R2: r2, N: len(yTrue)}, nil
}

// String は学習ジョブの出力形式で結果を整形する
func (r Report) String() string {
	return fmt.Sprintf("RMSE: %s\nMAE: %s\nR2 Score: %.4f", FormatThousands(r.RMSE), FormatThousands(r.MAE), r.R2)
}

// FormatThousands は小数2桁で3桁区切りの文字列にする（例: 1,234,567.89）
func FormatThousands(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	var out []byte
	for i := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, intPart[i])
	}
	if neg {
		return "-" + string(out) + frac
	}
	return string(out) + frac
}
