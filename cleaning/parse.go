// Package cleaning は生のCSVフレームを型付きのテーブルへ正規化します。
// 値ごとのパース失敗はエラーにせず欠損値として扱い、補完は後段の
// preprocessing に任せます。
package cleaning

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/housepricer/dataset"
)

// HectareToSquareMeters はヘクタールを平方メートルへ換算する係数
const HectareToSquareMeters = 10000.0

// ParseErfSize は敷地面積の生の値を平方メートルの数値へ正規化します。
//
// この関数は全域関数で、エラーを返しません。解釈できない値は欠損になります。
//
// 文字列の場合の規則:
//   - 部分文字列 " m²" を取り除き、続けて全ての空白を取り除く
//   - 残りが "ha" を含む場合は "ha" を取り除いて数値化し 10000 倍する
//   - それ以外はそのまま数値化する
//
// パラメータ:
//   - v: nil、数値型、json.Number、または文字列
//
// 戻り値:
//   - dataset.NullFloat64: 正規化した値。NaN や無限大も欠損として扱う
//
// 使用例:
//
//	cleaning.ParseErfSize("500 m²")  // 500
//	cleaning.ParseErfSize("1.5 ha")  // 15000
//	cleaning.ParseErfSize("unknown") // 欠損
func ParseErfSize(v any) dataset.NullFloat64 {
	s, isString := v.(string)
	if !isString {
		return ParseNumber(v)
	}
	s = strings.ReplaceAll(s, " m²", "")
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, "ha") {
		f, ok := parseFloat(strings.ReplaceAll(s, "ha", ""))
		if !ok {
			return dataset.NullFloat64{}
		}
		return finite(f * HectareToSquareMeters)
	}
	f, ok := parseFloat(s)
	if !ok {
		return dataset.NullFloat64{}
	}
	return finite(f)
}

// ParseNumber は寝室数・浴室数・価格などの数値を正規化します。
// ParseErfSize と同じく全域関数で、解釈できない値は欠損になります。
func ParseNumber(v any) dataset.NullFloat64 {
	switch x := v.(type) {
	case nil:
		return dataset.NullFloat64{}
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return finite(float64(x))
	case int8:
		return finite(float64(x))
	case int16:
		return finite(float64(x))
	case int32:
		return finite(float64(x))
	case int64:
		return finite(float64(x))
	case uint:
		return finite(float64(x))
	case uint8:
		return finite(float64(x))
	case uint16:
		return finite(float64(x))
	case uint32:
		return finite(float64(x))
	case uint64:
		return finite(float64(x))
	case json.Number:
		f, ok := parseFloat(x.String())
		if !ok {
			return dataset.NullFloat64{}
		}
		return finite(f)
	case dataset.NullFloat64:
		if !x.Valid {
			return x
		}
		return finite(x.Float64)
	case string:
		if dataset.IsNA(x) {
			return dataset.NullFloat64{}
		}
		f, ok := parseFloat(strings.TrimSpace(x))
		if !ok {
			return dataset.NullFloat64{}
		}
		return finite(f)
	default:
		return dataset.NullFloat64{}
	}
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func finite(f float64) dataset.NullFloat64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return dataset.NullFloat64{}
	}
	return dataset.NullFloat64{Float64: f, Valid: true}
}
