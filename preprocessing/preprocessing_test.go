package preprocessing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/housepricer/dataset"
	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

func f(v float64) dataset.NullFloat64 { return dataset.Float(v) }
func s(v string) dataset.NullString { return dataset.Text(v) }

var na = dataset.NullFloat64{}

func buildTable(t *testing.T, beds, baths, erf []dataset.NullFloat64, types []dataset.NullString) *dataset.Table {
	t.Helper()
	tbl := dataset.NewTable(len(beds))
	require.NoError(t, tbl.AddNumeric(dataset.ColBedrooms, beds))
	require.NoError(t, tbl.AddNumeric(dataset.ColBathrooms, baths))
	require.NoError(t, tbl.AddNumeric(dataset.ColErfSize, erf))
	require.NoError(t, tbl.AddText(dataset.ColPropertyType, types))
	return tbl
}

func trainingTable(t *testing.T) *dataset.Table {
	return buildTable(t,
		[]dataset.NullFloat64{f(3), f(4), f(2), na},
		[]dataset.NullFloat64{f(2), f(3), f(1), f(2)},
		[]dataset.NullFloat64{f(500), f(10000), na, f(300)},
		[]dataset.NullString{s("House"), s("House"), s("Apartment"), {}},
	)
}

func TestMedianImputer(t *testing.T) {
	tests := []struct {
		name   string
		values []dataset.NullFloat64
		want   float64
	}{
		{"odd", []dataset.NullFloat64{f(3), f(1), f(2)}, 2},
		{"even", []dataset.NullFloat64{f(4), f(1), f(2), f(3)}, 2.5},
		{"with missing", []dataset.NullFloat64{na, f(10), na}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m MedianImputer
			require.NoError(t, m.Fit("x", tt.values))
			assert.Equal(t, tt.want, m.Median)

			out, err := m.Transform([]dataset.NullFloat64{na, f(7)})
			require.NoError(t, err)
			assert.Equal(t, []float64{tt.want, 7}, out)
		})
	}
}

func TestMedianImputerAllMissing(t *testing.T) {
	var m MedianImputer
	err := m.Fit("Erf Size", []dataset.NullFloat64{na, na})
	var valueErr *errors.ValueError
	assert.True(t, errors.As(err, &valueErr))

	_, err = m.Transform(nil)
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))
}

func TestModeImputerTieBreak(t *testing.T) {
	var m ModeImputer
	require.NoError(t, m.Fit("Type", []dataset.NullString{s("Townhouse"), s("House"), s("Townhouse"), s("House"), {}}))
	assert.Equal(t, "House", m.Mode)

	out, err := m.Transform([]dataset.NullString{{}, s("Flat")})
	require.NoError(t, err)
	assert.Equal(t, []string{"House", "Flat"}, out)
}

func TestStandardScaler(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
		4, 5,
	})
	scaler := NewStandardScaler()
	out, err := scaler.FitTransform(X)
	require.NoError(t, err)

	assert.InDelta(t, 2.5, scaler.Mean[0], 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), scaler.Std[0], 1e-12)
	assert.Equal(t, 0.0, scaler.Std[1])
	for i := 0; i < 4; i++ {
		assert.Equal(t, 0.0, out.At(i, 1), "zero-variance column must standardize to 0")
	}

	unseen, err := scaler.Transform(mat.NewDense(1, 2, []float64{100, 1e9}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, unseen.At(0, 1))
	assert.False(t, math.IsNaN(unseen.At(0, 0)))

	_, err = scaler.Transform(mat.NewDense(1, 3, nil))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestStandardScalerTinySpread(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1e-12, 0.1,
		2e-12, 0.1,
		3e-12, 0.1,
		4e-12, 0.1,
	})
	scaler := NewStandardScaler()
	out, err := scaler.FitTransform(X)
	require.NoError(t, err)

	assert.InDelta(t, math.Sqrt(1.25)*1e-12, scaler.Std[0], 1e-24)
	assert.InDelta(t, -1.5/math.Sqrt(1.25), out.At(0, 0), 1e-9)
	assert.InDelta(t, 1.5/math.Sqrt(1.25), out.At(3, 0), 1e-9)

	assert.Equal(t, 0.0, scaler.Std[1])
	for i := 0; i < 4; i++ {
		assert.Equal(t, 0.0, out.At(i, 1))
	}
}

func TestStandardScalerNotFitted(t *testing.T) {
	_, err := NewStandardScaler().Transform(mat.NewDense(1, 1, nil))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))
}

func TestOneHotEncoder(t *testing.T) {
	var e OneHotEncoder
	require.NoError(t, e.Fit([]string{"House", "Apartment", "House", "Townhouse"}))
	assert.Equal(t, []string{"Apartment", "House", "Townhouse"}, e.Categories)

	dst := make([]float64, e.Width())
	assert.True(t, e.EncodeInto(dst, "House"))
	assert.Equal(t, []float64{0, 1, 0}, dst)
	assert.False(t, e.EncodeInto(dst, "Castle"))
	assert.Equal(t, []float64{0, 0, 0}, dst)
}

func TestFitTransform(t *testing.T) {
	X, state, err := FitTransform(trainingTable(t))
	require.NoError(t, err)

	rows, cols := X.Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 5, cols)
	assert.Equal(t, []string{"Bedrooms", "Bathrooms", "Erf Size", "Type of Property_Apartment", "Type of Property_House"}, state.FeatureNames())

	assert.Equal(t, 3.0, state.Numeric[0].Median)
	assert.Equal(t, 500.0, state.Numeric[2].Median)
	assert.Equal(t, "House", state.Categorical[0].Mode)

	// imputed categorical row 3 takes the mode
	assert.Equal(t, []float64{0, 1}, mat.Row(nil, 3, X)[3:])

	for j := 0; j < 3; j++ {
		col := mat.Col(nil, j, X)
		sum := 0.0
		for _, v := range col {
			sum += v
		}
		assert.InDelta(t, 0, sum, 1e-9, "standardized column %d has zero mean", j)
	}
}

func TestTransformIdempotentAndUnknownCategory(t *testing.T) {
	_, state, err := FitTransform(trainingTable(t))
	require.NoError(t, err)

	record := buildTable(t,
		[]dataset.NullFloat64{f(3)},
		[]dataset.NullFloat64{f(2)},
		[]dataset.NullFloat64{f(500)},
		[]dataset.NullString{s("Castle")},
	)
	first, err := state.Transform(record)
	require.NoError(t, err)
	second, err := state.Transform(record)
	require.NoError(t, err)

	assert.True(t, mat.Equal(first, second))
	assert.Equal(t, []float64{0, 0}, mat.Row(nil, 0, first)[3:])
}

func TestTransformDegenerateFeature(t *testing.T) {
	train := buildTable(t,
		[]dataset.NullFloat64{f(3), f(3), f(3)},
		[]dataset.NullFloat64{f(1), f(2), f(3)},
		[]dataset.NullFloat64{f(100), f(200), f(300)},
		[]dataset.NullString{s("House"), s("House"), s("House")},
	)
	_, state, err := FitTransform(train)
	require.NoError(t, err)
	assert.Equal(t, 0.0, state.Numeric[0].Std)

	X, err := state.Transform(buildTable(t,
		[]dataset.NullFloat64{f(7)},
		[]dataset.NullFloat64{f(2)},
		[]dataset.NullFloat64{f(200)},
		[]dataset.NullString{s("House")},
	))
	require.NoError(t, err)
	assert.Equal(t, 0.0, X.At(0, 0))
	for _, v := range X.RawMatrix().Data {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func TestTransformMissingColumn(t *testing.T) {
	_, state, err := FitTransform(trainingTable(t))
	require.NoError(t, err)

	partial := dataset.NewTable(1)
	require.NoError(t, partial.AddNumeric(dataset.ColBedrooms, []dataset.NullFloat64{f(3)}))

	_, err = state.Transform(partial)
	var schemaErr *errors.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, dataset.ColBathrooms, schemaErr.Column)
}

func TestFitMissingColumn(t *testing.T) {
	tbl := dataset.NewTable(1)
	require.NoError(t, tbl.AddNumeric(dataset.ColBedrooms, []dataset.NullFloat64{f(3)}))

	_, _, err := FitTransform(tbl)
	var schemaErr *errors.SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestFitEmpty(t *testing.T) {
	_, _, err := FitTransform(dataset.NewTable(0))
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestTransformLargeBatchParallel(t *testing.T) {
	_, state, err := FitTransform(trainingTable(t))
	require.NoError(t, err)

	n := parallelThreshold*2 + 17
	beds := make([]dataset.NullFloat64, n)
	baths := make([]dataset.NullFloat64, n)
	erf := make([]dataset.NullFloat64, n)
	types := make([]dataset.NullString, n)
	for i := 0; i < n; i++ {
		beds[i], baths[i], erf[i] = f(float64(i%5)), f(2), na
		types[i] = s("Apartment")
	}
	big := buildTable(t, beds, baths, erf, types)

	X, err := state.TransformContext(context.Background(), big)
	require.NoError(t, err)
	single, err := state.Transform(big.Slice(n-1, n))
	require.NoError(t, err)
	assert.Equal(t, mat.Row(nil, 0, single), mat.Row(nil, n-1, X))
}

func TestFeatureStateValidate(t *testing.T) {
	assert.Error(t, FeatureState{}.Validate())
	bad := FeatureState{Categorical: []CategoricalStats{{Column: "c", Categories: []string{"b", "a"}}}}
	assert.Error(t, bad.Validate())
}
