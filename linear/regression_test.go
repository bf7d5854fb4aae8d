package linear

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/housepricer/core/model"
	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

func column(v ...float64) *mat.Dense { return mat.NewDense(len(v), 1, v) }

func TestLinearRegressionExactFit(t *testing.T) {
	// y = 1 + 2*x1 + 3*x2
	X := mat.NewDense(5, 2, []float64{
		1, 1,
		2, 1,
		3, 2,
		4, 3,
		5, 5,
	})
	y := column(6, 8, 13, 18, 26)

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	assert.InDeltaSlice(t, []float64{2, 3}, lr.Coef(), 1e-9)
	assert.InDelta(t, 1.0, lr.Intercept(), 1e-9)
	assert.Equal(t, 2, lr.Rank)

	score, err := lr.Score(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-12)
}

func TestLinearRegressionRankDeficient(t *testing.T) {
	// duplicated column: the minimum-norm solution splits the weight evenly
	X := mat.NewDense(4, 2, []float64{
		1, 1,
		2, 2,
		3, 3,
		4, 4,
	})
	y := column(2, 4, 6, 8)

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))
	assert.Equal(t, 1, lr.Rank)
	assert.InDeltaSlice(t, []float64{1, 1}, lr.Coef(), 1e-9)
	assert.InDelta(t, 0.0, lr.Intercept(), 1e-9)
}

func TestLinearRegressionCollinearOneHot(t *testing.T) {
	// two one-hot columns always summing to 1 are collinear with the intercept
	X := mat.NewDense(4, 3, []float64{
		1, 1, 0,
		2, 0, 1,
		3, 1, 0,
		4, 0, 1,
	})
	y := column(10, 25, 30, 45)

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))
	pred, err := lr.Predict(X)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		assert.InDelta(t, y.At(i, 0), pred.At(i, 0), 1e-8)
	}
	coef := lr.Coef()
	assert.InDelta(t, 0, coef[1]+coef[2], 1e-9, "minimum-norm solution has no component along the null space")
}

func TestLinearRegressionUnderdetermined(t *testing.T) {
	X := mat.NewDense(2, 5, []float64{
		-1, -1, -1, 0, 1,
		1, 1, 1, 0, 1,
	})
	y := column(1e6, 2e6)

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))
	pred, err := lr.Predict(mat.NewDense(1, 5, []float64{-1, -1, -1, 0, 1}))
	require.NoError(t, err)
	assert.False(t, math.IsNaN(pred.At(0, 0)) || math.IsInf(pred.At(0, 0), 0))
	assert.InDelta(t, 1e6, pred.At(0, 0), 1e-3)
}

func TestLinearRegressionConstantFeatures(t *testing.T) {
	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(mat.NewDense(3, 1, []float64{5, 5, 5}), column(1, 2, 3)))
	assert.Equal(t, []float64{0}, lr.Coef())
	assert.InDelta(t, 2.0, lr.Intercept(), 1e-12)
	assert.Equal(t, 0, lr.Rank)
}

func TestLinearRegressionErrors(t *testing.T) {
	lr := NewLinearRegression()

	_, err := lr.Predict(mat.NewDense(1, 1, nil))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	var dim *errors.DimensionError
	assert.True(t, errors.As(lr.Fit(mat.NewDense(3, 1, nil), column(1, 2)), &dim))
	assert.Error(t, lr.Fit(mat.NewDense(2, 1, nil), mat.NewDense(2, 2, nil)))

	var inst *errors.NumericalInstabilityError
	assert.True(t, errors.As(lr.Fit(mat.NewDense(2, 1, []float64{1, math.Inf(1)}), column(1, 2)), &inst))

	require.NoError(t, lr.Fit(mat.NewDense(3, 2, []float64{1, 0, 0, 1, 1, 1}), column(1, 2, 3)))
	_, err = lr.Predict(mat.NewDense(1, 3, nil))
	assert.True(t, errors.As(err, &dim))
}

func TestRidgeClosedForm(t *testing.T) {
	X := column(1, 2, 3, 4)
	y := column(2, 4, 6, 8)

	// coef = Sxy / (Sxx + alpha) = 10 / (5 + 5)
	ridge := NewRidge(WithAlpha(5))
	require.NoError(t, ridge.Fit(X, y))
	assert.InDeltaSlice(t, []float64{1}, ridge.Coef(), 1e-12)
	assert.InDelta(t, 2.5, ridge.Intercept(), 1e-12)

	zero := NewRidge(WithAlpha(0))
	require.NoError(t, zero.Fit(X, y))
	assert.InDeltaSlice(t, []float64{2}, zero.Coef(), 1e-9)

	assert.Error(t, NewRidge(WithAlpha(-1)).Fit(X, y))
}

func TestLassoCoordinateDescent(t *testing.T) {
	X := column(1, 2, 3, 4)
	y := column(2, 4, 6, 8)

	// w = soft(Sxy/n, alpha) / (Sxx/n) = (2.5 - 0.5) / 1.25
	lasso := NewLasso(WithAlpha(0.5))
	require.NoError(t, lasso.Fit(X, y))
	assert.InDeltaSlice(t, []float64{1.6}, lasso.Coef(), 1e-12)
	assert.InDelta(t, 1.0, lasso.Intercept(), 1e-12)

	strong := NewLasso(WithAlpha(100))
	require.NoError(t, strong.Fit(X, y))
	assert.Equal(t, []float64{0}, strong.Coef())
	assert.InDelta(t, 5.0, strong.Intercept(), 1e-12)
}

func TestLassoConvergenceWarning(t *testing.T) {
	var warned []error
	errors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	defer errors.SetWarningHandler(nil)

	lasso := NewLasso(WithAlpha(0.5), WithMaxIter(1))
	require.NoError(t, lasso.Fit(column(1, 2, 3, 4), column(2, 4, 6, 8)))

	require.Len(t, warned, 1)
	var cw *errors.ConvergenceWarning
	assert.True(t, errors.As(warned[0], &cw))
	assert.True(t, lasso.IsFitted())
}

func TestExportWeightsRoundTrip(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{1, 0, 2, 1, 3, 0, 4, 1})
	y := column(3, 6, 7, 10)

	for _, kind := range []string{KindLinear, KindRidge, KindLasso} {
		t.Run(kind, func(t *testing.T) {
			reg, err := New(kind, WithAlpha(0.1))
			require.NoError(t, err)
			require.NoError(t, reg.Fit(X, y))

			w, err := reg.ExportWeights()
			require.NoError(t, err)
			assert.Equal(t, model.WeightsVersion, w.Version)

			restored, err := NewFromWeights(w)
			require.NoError(t, err)
			assert.True(t, restored.IsFitted())

			want, err := reg.Predict(X)
			require.NoError(t, err)
			got, err := restored.Predict(X)
			require.NoError(t, err)
			assert.True(t, mat.EqualApprox(want, got, 1e-12))
		})
	}
}

func TestNewFromWeightsErrors(t *testing.T) {
	_, err := NewFromWeights(nil)
	assert.Error(t, err)
	_, err = NewFromWeights(&model.Weights{ModelType: "SGD", Version: "1", Coefficients: []float64{1}})
	assert.Error(t, err)
	_, err = NewFromWeights(&model.Weights{ModelType: "LinearRegression", Version: "1", Coefficients: []float64{math.NaN()}})
	assert.Error(t, err)
}

func TestKind(t *testing.T) {
	tests := map[string]string{
		"":                 KindLinear,
		"linear":           KindLinear,
		"LinearRegression": KindLinear,
		"Ridge":            KindRidge,
		"lasso":            KindLasso,
		"Forest":           "forest",
	}
	for in, want := range tests {
		assert.Equal(t, want, Kind(in), in)
	}
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New("forest")
	assert.Error(t, err)
}

func TestExportWeightsNotFitted(t *testing.T) {
	_, err := NewLinearRegression().ExportWeights()
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))
}
