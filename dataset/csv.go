package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

// ReadCSV reads a CSV file with a header row into a Frame. A path that does
// not exist fails with DataFileMissingError.
func ReadCSV(path string) (*Frame, error) {
	return readCSV("", path)
}

func readCSV(role, path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewDataFileMissingError(role, path)
		}
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	frame, err := ParseCSV(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return frame, nil
}

// ParseCSV parses CSV text with a header row. Rows with a different number of
// cells than the header are rejected by the reader.
func ParseCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV")
	}
	return NewFrame(header, rows)
}

// LoadTrainTest reads the training and test CSVs concurrently. Both files
// must exist; the first missing one is reported as DataFileMissingError
// naming its path.
func LoadTrainTest(ctx context.Context, trainPath, testPath string) (train, test *Frame, err error) {
	for _, f := range []struct{ role, path string }{{"Training", trainPath}, {"Testing", testPath}} {
		if _, statErr := os.Stat(f.path); errors.Is(statErr, fs.ErrNotExist) {
			return nil, nil, errors.NewDataFileMissingError(f.role, f.path)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		train, err = readCSV("Training", trainPath)
		return err
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		test, err = readCSV("Testing", testPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return train, test, nil
}
