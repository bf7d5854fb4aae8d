package dataset

import (
	"math"
	"math/rand"

	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

// Default hold-out policy when the test CSV carries no labels.
const (
	DefaultTestSize = 0.2
	DefaultSeed     = 42
)

// TrainTestSplit shuffles the rows of t with a generator seeded by seed and
// splits them into train and test tables. The test part gets
// ceil(testSize * n) rows. The same seed always yields the same partition.
func TrainTestSplit(t *Table, testSize float64, seed int64) (train, test *Table, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, errors.NewValueError("TrainTestSplit", "test size must be in (0, 1)")
	}
	n := t.Len()
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest == 0 || nTrain == 0 {
		return nil, nil, errors.NewValueError("TrainTestSplit",
			"not enough rows to split into non-empty train and test sets")
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rnd := rand.New(rand.NewSource(seed))
	rnd.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	return t.Subset(idx[nTest:]), t.Subset(idx[:nTest]), nil
}
