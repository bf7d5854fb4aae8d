package ui

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRand(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1234567.891, "R 1,234,567.89"},
		{999.5, "R 999.50"},
		{0, "R 0.00"},
		{1000000, "R 1,000,000.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRand(tt.in))
	}
}

func fakeAPI(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func TestClientPredict(t *testing.T) {
	var got Property
	ts := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"predicted_price": 1234567.89, "currency": "ZAR"}`))
	})

	c := NewClient(ts.URL+"/", 10, time.Second)
	price, err := c.Predict(context.Background(), Property{Bedrooms: 3, Bathrooms: 2, ErfSize: 500, TypeOfProperty: "House"})
	require.NoError(t, err)
	assert.Equal(t, 1234567.89, price)
	assert.Equal(t, "House", got.TypeOfProperty)
	assert.Equal(t, 500.0, got.ErfSize)
}

func TestClientAPIError(t *testing.T) {
	ts := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"detail":"Model not loaded"}`))
	})

	_, err := NewClient(ts.URL, 10, time.Second).Predict(context.Background(), Property{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Contains(t, apiErr.Body, "Model not loaded")
}

func TestClientConnectionError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()

	_, err := NewClient(addr, 10, time.Second).Predict(context.Background(), Property{})
	assert.ErrorIs(t, err, ErrConnection)
}

type stubAPI struct {
	price float64
	err   error
	got   Property
}

func (s *stubAPI) Predict(_ context.Context, p Property) (float64, error) {
	s.got = p
	return s.price, s.err
}

func submit(t *testing.T, h http.Handler, form url.Values) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	b, _ := io.ReadAll(rr.Body)
	return rr.Code, string(b)
}

func validForm() url.Values {
	return url.Values{
		"bedrooms":      {"3"},
		"bathrooms":     {"2.5"},
		"erf_size":      {"500"},
		"property_type": {"Townhouse"},
	}
}

func TestHandlerRendersForm(t *testing.T) {
	h := NewHandler(&stubAPI{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "SA House Price Predictor")
	assert.Contains(t, body, "Apartment / Flat")
	assert.Contains(t, body, "Enter details and click Predict")
}

func TestHandlerSuccess(t *testing.T) {
	api := &stubAPI{price: 1234567.891}
	code, body := submit(t, NewHandler(api), validForm())

	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "R 1,234,567.89")
	assert.Equal(t, Property{Bedrooms: 3, Bathrooms: 2.5, ErfSize: 500, TypeOfProperty: "Townhouse"}, api.got)
}

func TestHandlerConnectionError(t *testing.T) {
	_, body := submit(t, NewHandler(&stubAPI{err: ErrConnection}), validForm())
	assert.Contains(t, body, "Could not connect to the API. Is the backend running?")
}

func TestHandlerAPIError(t *testing.T) {
	_, body := submit(t, NewHandler(&stubAPI{err: &APIError{Status: 500, Body: "Prediction error: boom"}}), validForm())
	assert.Contains(t, body, "Error: Prediction error: boom")
}

func TestHandlerInvalidForm(t *testing.T) {
	form := validForm()
	form.Set("bedrooms", "eleven")
	code, body := submit(t, NewHandler(&stubAPI{}), form)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body, "invalid value for bedrooms")
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHandler(&stubAPI{}).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
