package cleaning

import (
	"sort"

	"github.com/YuminosukeSato/housepricer/dataset"
	"github.com/YuminosukeSato/housepricer/pkg/errors"
	"github.com/YuminosukeSato/housepricer/pkg/log"
)

// DroppedColumns は学習にもサービングにも使わない列
var DroppedColumns = []string{dataset.ColLocation, dataset.ColID, dataset.ColListingDate}

// Summary はCleanの実行結果の要約
type Summary struct {
	// RowsIn は入力の行数
	RowsIn int
	// RowsDropped は価格が欠損していたため除外した行数
	RowsDropped int
	// Degraded は列ごとに、欠損ではない生の値が解釈できず欠損になった件数
	Degraded map[string]int
}

// Clean は生のフレームを型付きテーブルへ変換します。
//
// 処理内容:
//   - Location, ID, Listing Date 列があれば削除する
//   - Erf Size は ParseErfSize、Bedrooms と Bathrooms は ParseNumber で正規化する
//   - その他の列はテキスト列として保持する
//   - Price 列がある場合、価格が欠損している行を除外し、価格をターゲットにする
//
// 欠損値の補完は行いません。入力のフレームは変更されません。
// 結果の行数は常に len(raw) - (価格が欠損した行数) になります。
func Clean(raw *dataset.Frame) (*dataset.Table, Summary, error) {
	summary := Summary{RowsIn: raw.Len(), Degraded: map[string]int{}}
	frame := raw.Drop(DroppedColumns...)

	keep := make([]bool, frame.Len())
	for i := range keep {
		keep[i] = true
	}
	var price []dataset.NullFloat64
	if frame.Has(dataset.ColPrice) {
		cells, err := frame.Column(dataset.ColPrice)
		if err != nil {
			return nil, summary, err
		}
		price = make([]dataset.NullFloat64, len(cells))
		for i, cell := range cells {
			price[i] = ParseNumber(cell)
			if !price[i].Valid {
				keep[i] = false
				summary.RowsDropped++
				if !dataset.IsNA(cell) {
					summary.Degraded[dataset.ColPrice]++
				}
			}
		}
	}

	kept := make([]int, 0, frame.Len()-summary.RowsDropped)
	for i, k := range keep {
		if k {
			kept = append(kept, i)
		}
	}

	table := dataset.NewTable(len(kept))
	for _, name := range frame.Columns() {
		if name == dataset.ColPrice {
			continue
		}
		cells, err := frame.Column(name)
		if err != nil {
			return nil, summary, err
		}
		switch name {
		case dataset.ColErfSize, dataset.ColBedrooms, dataset.ColBathrooms:
			parse := ParseNumber
			if name == dataset.ColErfSize {
				parse = ParseErfSize
			}
			values := make([]dataset.NullFloat64, len(kept))
			for k, i := range kept {
				if dataset.IsNA(cells[i]) {
					continue
				}
				values[k] = parse(cells[i])
				if !values[k].Valid {
					summary.Degraded[name]++
				}
			}
			err = table.AddNumeric(name, values)
		default:
			values := make([]dataset.NullString, len(kept))
			for k, i := range kept {
				if !dataset.IsNA(cells[i]) {
					values[k] = dataset.Text(cells[i])
				}
			}
			err = table.AddText(name, values)
		}
		if err != nil {
			return nil, summary, err
		}
	}

	if price != nil {
		y := make([]float64, len(kept))
		for k, i := range kept {
			y[k] = price[i].Float64
		}
		if err := table.SetTarget(y); err != nil {
			return nil, summary, err
		}
	}

	for _, name := range []string{dataset.ColErfSize, dataset.ColBedrooms, dataset.ColBathrooms, dataset.ColPrice} {
		if n := summary.Degraded[name]; n > 0 {
			errors.Warn(errors.NewDataConversionWarning(name, n, degradeReason(name)))
		}
	}

	log.GetLoggerWithName("cleaning").Debug("Cleaned dataset",
		log.OperationKey, log.OperationClean,
		log.SamplesKey, table.Len(),
		log.DroppedRowsKey, summary.RowsDropped)

	return table, summary, nil
}

func degradeReason(column string) string {
	if column == dataset.ColPrice {
		return "unparseable price; row dropped"
	}
	return "unparseable value; treated as missing"
}

// NormalizeRecord は推論用の1レコードをテーブルへ変換します。
//
// 行の除外や列の削除は行わず、敷地面積と数値列の正規化だけを適用します。
// レコードに存在しないキーはテーブルにも現れず、後段の変換でSchemaErrorになります。
func NormalizeRecord(rec dataset.Record) (*dataset.Table, error) {
	return NormalizeRecords([]dataset.Record{rec})
}

// NormalizeRecords は複数の推論レコードをテーブルへ変換します。
// 列は最初のレコードのキーで決まり、以降のレコードで欠けたキーは欠損値になります。
func NormalizeRecords(recs []dataset.Record) (*dataset.Table, error) {
	if len(recs) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	table := dataset.NewTable(len(recs))
	for _, name := range recordColumns(recs[0]) {
		var err error
		switch name {
		case dataset.ColErfSize, dataset.ColBedrooms, dataset.ColBathrooms, dataset.ColPrice:
			parse := ParseNumber
			if name == dataset.ColErfSize {
				parse = ParseErfSize
			}
			values := make([]dataset.NullFloat64, len(recs))
			for i, rec := range recs {
				values[i] = parse(rec[name])
			}
			err = table.AddNumeric(name, values)
		default:
			values := make([]dataset.NullString, len(recs))
			for i, rec := range recs {
				values[i] = toNullString(rec[name])
			}
			err = table.AddText(name, values)
		}
		if err != nil {
			return nil, err
		}
	}
	return table, nil
}

// recordColumns は既知の列を学習時の順に並べ、残りの列をその後ろに続けます。
func recordColumns(rec dataset.Record) []string {
	known := append(append([]string{}, dataset.NumericFeatures...), dataset.CategoricalFeatures...)
	cols := make([]string, 0, len(rec))
	seen := make(map[string]bool, len(rec))
	for _, name := range known {
		if _, ok := rec[name]; ok {
			cols = append(cols, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range rec {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(cols, rest...)
}

func toNullString(v any) dataset.NullString {
	switch x := v.(type) {
	case nil:
		return dataset.NullString{}
	case string:
		if dataset.IsNA(x) {
			return dataset.NullString{}
		}
		return dataset.Text(x)
	case dataset.NullString:
		return x
	default:
		return dataset.NullString{}
	}
}
