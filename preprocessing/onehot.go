package preprocessing

import (
	"sort"

	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

// OneHotEncoder はカテゴリ値を学習時の語彙に対する指示ベクトルへ変換する
//
// 語彙は学習時に観測したカテゴリを辞書順に並べたものです。
// 語彙にないカテゴリは全て0のベクトルになり、エラーにはなりません。
type OneHotEncoder struct {
	// Categories は学習時の語彙（辞書順）
	Categories []string
}

// NewOneHotEncoderFromCategories は学習済みの語彙からエンコーダを復元する
func NewOneHotEncoderFromCategories(categories []string) *OneHotEncoder {
	e := &OneHotEncoder{Categories: append([]string(nil), categories...)}
	sort.Strings(e.Categories)
	return e
}

// Fit は語彙を学習する
func (e *OneHotEncoder) Fit(values []string) error {
	if len(values) == 0 {
		return errors.NewModelError("OneHotEncoder.Fit", "empty data", errors.ErrEmptyData)
	}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	e.Categories = make([]string, 0, len(seen))
	for v := range seen {
		e.Categories = append(e.Categories, v)
	}
	sort.Strings(e.Categories)
	return nil
}

// Width は出力ベクトルの長さ（語彙のサイズ）を返す
func (e *OneHotEncoder) Width() int {
	return len(e.Categories)
}

// EncodeInto は value の指示ベクトルを dst に書き込む。dst の長さは Width() であること
//
// 戻り値:
//   - bool: value が語彙に含まれていた場合 true
func (e *OneHotEncoder) EncodeInto(dst []float64, value string) bool {
	for i := range dst {
		dst[i] = 0
	}
	i := sort.SearchStrings(e.Categories, value)
	if i < len(e.Categories) && e.Categories[i] == value {
		dst[i] = 1
		return true
	}
	return false
}
