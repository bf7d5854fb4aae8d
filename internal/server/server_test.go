package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/housepricer/dataset"
	"github.com/YuminosukeSato/housepricer/internal/observability"
	"github.com/YuminosukeSato/housepricer/pipeline"
	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

type stubPredictor struct {
	ready bool
	price float64
	err   error
	got   dataset.Record
}

func (s *stubPredictor) Predict(_ context.Context, rec dataset.Record) (float64, error) {
	s.got = rec
	return s.price, s.err
}

func (s *stubPredictor) Ready() bool { return s.ready }

func (s *stubPredictor) Info() (pipeline.Info, bool) {
	if !s.ready {
		return pipeline.Info{}, false
	}
	return pipeline.Info{ID: "abc", Version: pipeline.ArtifactVersion, Features: []string{"Bedrooms"}}, true
}

func newTestServer(t *testing.T, p *stubPredictor) *httptest.Server {
	t.Helper()
	srv := New(zerolog.New(io.Discard), 0)
	srv.Mount("/metrics", observability.MetricsHandler(observability.InitRegistry()))
	srv.MountHandlers(&Handlers{P: p})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

const validBody = `{"Bedrooms": 3, "Bathrooms": 2, "Erf_Size": 500, "Type_of_Property": "House"}`

func post(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url+"/predict", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func decodeProblem(t *testing.T, b []byte) problem {
	t.Helper()
	var p problem
	require.NoError(t, json.Unmarshal(b, &p))
	return p
}

func TestRootAndHealth(t *testing.T) {
	ts := newTestServer(t, &stubPredictor{ready: true})

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "Welcome to the SA House Price Predictor API", body["message"])

	resp, err = http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(b))

}

func TestRequestLogging(t *testing.T) {
	var logs bytes.Buffer
	srv := New(zerolog.New(&logs), 0)
	srv.MountHandlers(&Handlers{P: &stubPredictor{ready: true}})

	rr := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, logs.String(), `"route":"/healthz"`)
	assert.Contains(t, logs.String(), `"status":200`)
}

func TestPredictSuccess(t *testing.T) {
	p := &stubPredictor{ready: true, price: 1234567.5}
	ts := newTestServer(t, p)

	resp, b := post(t, ts.URL, validBody)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(b))

	var out PredictResponse
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, 1234567.5, out.PredictedPrice)
	assert.Equal(t, "ZAR", out.Currency)

	assert.Equal(t, dataset.Record{
		dataset.ColBedrooms:     3.0,
		dataset.ColBathrooms:    2.0,
		dataset.ColErfSize:      500.0,
		dataset.ColPropertyType: "House",
	}, p.got)
}

func TestPredictModelUnavailable(t *testing.T) {
	ts := newTestServer(t, &stubPredictor{})

	resp, b := post(t, ts.URL, validBody)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "Model not loaded", decodeProblem(t, b).Detail)

	resp, err := http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/model")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestPredictValidation(t *testing.T) {
	ts := newTestServer(t, &stubPredictor{ready: true})

	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"malformed", `{"Bedrooms": `, "invalid request body"},
		{"wrong type", `{"Bedrooms": "three", "Bathrooms": 2, "Erf_Size": 500, "Type_of_Property": "House"}`, "invalid request body"},
		{"missing field", `{"Bedrooms": 3, "Bathrooms": 2, "Erf_Size": 500}`, "field required: Type_of_Property"},
		{"empty object", `{}`, "field required: Bedrooms, Bathrooms, Erf_Size, Type_of_Property"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, b := post(t, ts.URL, tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			assert.Contains(t, decodeProblem(t, b).Detail, tt.detail)
		})
	}
}

func TestPredictFailure(t *testing.T) {
	cause := errors.New("singular design")
	ts := newTestServer(t, &stubPredictor{ready: true, err: errors.NewPredictionError(cause)})

	resp, b := post(t, ts.URL, validBody)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Prediction error: singular design", decodeProblem(t, b).Detail)
}

func TestPredictUnwrappedFailure(t *testing.T) {
	ts := newTestServer(t, &stubPredictor{ready: true, err: fmt.Errorf("boom")})

	resp, b := post(t, ts.URL, validBody)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Prediction error: boom", decodeProblem(t, b).Detail)
}

func TestModelInfoAndReady(t *testing.T) {
	ts := newTestServer(t, &stubPredictor{ready: true})

	resp, err := http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/model")
	require.NoError(t, err)
	defer resp.Body.Close()
	var info pipeline.Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "abc", info.ID)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, &stubPredictor{ready: true})
	post(t, ts.URL, validBody)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(b), `housepricer_http_requests_total{method="POST",route="/predict",status="200"}`)
}

func TestTimeoutMiddleware(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	Timeout(10*time.Millisecond)(slow).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "timeout", rec.Body.String())
}
