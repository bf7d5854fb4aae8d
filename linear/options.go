package linear

import (
	"strings"

	"github.com/YuminosukeSato/housepricer/core/model"
	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

// Regressor kinds accepted by New.
const (
	KindLinear = "linear"
	KindRidge  = "ridge"
	KindLasso  = "lasso"
)

type config struct {
	alpha   float64
	maxIter int
	tol     float64
}

func newConfig(opts []Option) config {
	cfg := config{alpha: 1.0, maxIter: 1000, tol: 1e-4}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option configures a regularized regressor.
type Option func(*config)

// WithAlpha sets the regularization strength.
func WithAlpha(alpha float64) Option {
	return func(c *config) {
		c.alpha = alpha
	}
}

// WithMaxIter sets the maximum number of coordinate descent passes (Lasso).
func WithMaxIter(n int) Option {
	return func(c *config) {
		c.maxIter = n
	}
}

// WithTol sets the convergence tolerance (Lasso).
func WithTol(tol float64) Option {
	return func(c *config) {
		c.tol = tol
	}
}

// Kind normalizes a regressor name to one of the Kind constants. Model type
// names such as "LinearRegression" are accepted. Unknown names are returned
// lower-cased.
func Kind(name string) string {
	switch k := strings.ToLower(name); k {
	case "", "linearregression":
		return KindLinear
	default:
		return k
	}
}

// New returns an unfitted regressor of the given kind ("linear", "ridge" or
// "lasso"). Options are ignored by plain linear regression.
func New(kind string, opts ...Option) (model.Regressor, error) {
	switch Kind(kind) {
	case KindLinear:
		return NewLinearRegression(), nil
	case KindRidge:
		return NewRidge(opts...), nil
	case KindLasso:
		return NewLasso(opts...), nil
	default:
		return nil, errors.NewValueError("linear.New", "unknown regressor "+kind)
	}
}
