package model

import (
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

// SaveJSON は値をJSONとしてファイルに保存する
//
// 一時ファイルに書き出してからリネームするため、読み込み側が
// 書きかけのファイルを見ることはありません。
//
// パラメータ:
//   - v: 保存する値（JSONでエンコード可能な構造体）
//   - filename: 保存先のファイルパス（親ディレクトリは自動作成）
//
// 戻り値:
//   - error: 保存に失敗した場合のエラー
//
// 使用例:
//
//	err := model.SaveJSON(fitted, "models/house_price_model.json")
func SaveJSON(v interface{}, filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(filename)+"-*")
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := SaveToWriter(v, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close file")
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return errors.Wrapf(err, "failed to move artifact into %s", filename)
	}
	return nil
}

// LoadJSON はファイルからJSONを読み込む
//
// パラメータ:
//   - v: 読み込み先（ポインタ）
//   - filename: 読み込み元のファイルパス
//
// 戻り値:
//   - error: 読み込みに失敗した場合のエラー。ファイルが存在しない場合は
//     fs.ErrNotExist を errors.Is で判定できます。
func LoadJSON(v interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(err, "artifact not found at %s", filename)
		}
		return errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	return LoadFromReader(v, file)
}

// SaveToWriter は値をio.WriterにJSONで書き出す
func SaveToWriter(v interface{}, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadFromReader はio.ReaderからJSONを読み込む。未知のフィールドはエラーになります。
func LoadFromReader(v interface{}, r io.Reader) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}
