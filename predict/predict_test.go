package predict

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/housepricer/cleaning"
	"github.com/YuminosukeSato/housepricer/dataset"
	"github.com/YuminosukeSato/housepricer/pipeline"
	"github.com/YuminosukeSato/housepricer/pkg/errors"
	"github.com/YuminosukeSato/housepricer/pkg/log"
)

func trainFitted(t *testing.T) *pipeline.Fitted {
	t.Helper()
	var b strings.Builder
	b.WriteString("Bedrooms,Bathrooms,Erf Size,Type of Property,Price\n")
	types := []string{"House", "Apartment", "Townhouse"}
	for i := 0; i < 24; i++ {
		beds, baths, erf := 1+i%4, 1+i%2, 300+25*i
		fmt.Fprintf(&b, "%d,%d,%d m²,%s,%d\n", beds, baths, erf, types[i%3], 300000*beds+90000*baths+1200*erf)
	}
	frame, err := dataset.ParseCSV(strings.NewReader(b.String()))
	require.NoError(t, err)
	table, _, err := cleaning.Clean(frame)
	require.NoError(t, err)
	f, err := pipeline.Train(context.Background(), table, pipeline.Options{})
	require.NoError(t, err)
	return f
}

func sampleRecord() dataset.Record {
	return dataset.Record{
		dataset.ColBedrooms:     3,
		dataset.ColBathrooms:    2,
		dataset.ColErfSize:      "500 m²",
		dataset.ColPropertyType: "House",
	}
}

func TestServicePredict(t *testing.T) {
	svc := NewService(trainFitted(t))
	require.True(t, svc.Ready())

	price, err := svc.Predict(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.InDelta(t, 300000*3+90000*2+1200*500, price, 1)

	info, ok := svc.Info()
	require.True(t, ok)
	assert.NotEmpty(t, info.ID)
}

func TestServiceUnavailable(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	svc := LoadService(filepath.Join(t.TempDir(), "missing.json"), logger)

	assert.False(t, svc.Ready())
	assert.True(t, logger.ContainsMessage("Failed to load model"))

	_, err := svc.Predict(context.Background(), sampleRecord())
	assert.True(t, errors.Is(err, errors.ErrModelUnavailable))

	_, ok := svc.Info()
	assert.False(t, ok)
}

func TestLoadServiceFromArtifact(t *testing.T) {
	f := trainFitted(t)
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, pipeline.Save(f, path))

	logger, _ := log.NewTestLogger(log.LevelDebug)
	svc := LoadService(path, logger)
	require.True(t, svc.Ready())
	assert.True(t, logger.ContainsMessage("Model loaded"))

	want, err := NewService(f).Predict(context.Background(), sampleRecord())
	require.NoError(t, err)
	got, err := svc.Predict(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-6)
}

func TestServiceWrapsFailures(t *testing.T) {
	svc := NewService(trainFitted(t))

	rec := sampleRecord()
	delete(rec, dataset.ColPropertyType)
	_, err := svc.Predict(context.Background(), rec)

	var predErr *errors.PredictionError
	require.True(t, errors.As(err, &predErr))
	assert.Contains(t, err.Error(), "Prediction error:")
	var schemaErr *errors.SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestServiceWrapsNotFitted(t *testing.T) {
	svc := NewService(&pipeline.Fitted{})
	_, err := svc.Predict(context.Background(), sampleRecord())

	var predErr *errors.PredictionError
	require.True(t, errors.As(err, &predErr))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))
}

func TestServiceConcurrentPredict(t *testing.T) {
	svc := NewService(trainFitted(t))
	want, err := svc.Predict(context.Background(), sampleRecord())
	require.NoError(t, err)

	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		go func() {
			got, err := svc.Predict(context.Background(), sampleRecord())
			if err == nil && got != want {
				err = fmt.Errorf("got %v, want %v", got, want)
			}
			errs <- err
		}()
	}
	for i := 0; i < 16; i++ {
		assert.NoError(t, <-errs)
	}
}

type countingPredictor struct {
	calls atomic.Int32
	price float64
	err   error
}

func (c *countingPredictor) Predict(context.Context, dataset.Record) (float64, error) {
	c.calls.Add(1)
	return c.price, c.err
}

func (c *countingPredictor) Ready() bool { return true }

func (c *countingPredictor) Info() (pipeline.Info, bool) {
	return pipeline.Info{ID: "model-1"}, true
}

func newTestCache(t *testing.T) (*miniredis.Miniredis, *Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewCacheFromClient(client, time.Minute)
}

func TestCachedPredictorHitsCache(t *testing.T) {
	mr, cache := newTestCache(t)
	next := &countingPredictor{price: 1234567.89}
	p := NewCachedPredictor(next, cache)

	for i := 0; i < 3; i++ {
		price, err := p.Predict(context.Background(), sampleRecord())
		require.NoError(t, err)
		assert.Equal(t, 1234567.89, price)
	}
	assert.Equal(t, int32(1), next.calls.Load())

	key, err := CacheKey("model-1", sampleRecord())
	require.NoError(t, err)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestCachedPredictorIgnoresCacheErrors(t *testing.T) {
	mr, cache := newTestCache(t)
	mr.Close()

	next := &countingPredictor{price: 42}
	p := NewCachedPredictor(next, cache)
	price, err := p.Predict(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, 42.0, price)
}

func TestCachedPredictorDoesNotCacheFailures(t *testing.T) {
	_, cache := newTestCache(t)
	next := &countingPredictor{err: errors.New("boom")}
	p := NewCachedPredictor(next, cache)

	for i := 0; i < 2; i++ {
		_, err := p.Predict(context.Background(), sampleRecord())
		assert.Error(t, err)
	}
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCacheKey(t *testing.T) {
	a, err := CacheKey("m", dataset.Record{"a": 1, "b": "x"})
	require.NoError(t, err)
	b, err := CacheKey("m", dataset.Record{"b": "x", "a": 1})
	require.NoError(t, err)
	c, err := CacheKey("other", dataset.Record{"a": 1, "b": "x"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, keyPrefix+"m:"))
}
