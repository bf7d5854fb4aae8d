package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/YuminosukeSato/housepricer/dataset"
	"github.com/YuminosukeSato/housepricer/pkg/errors"
	"github.com/YuminosukeSato/housepricer/predict"
)

// maxBodyBytes caps the size of a prediction request body.
const maxBodyBytes = 1 << 20

// Handlers serves the prediction API on top of a Predictor.
type Handlers struct{ P predict.Predictor }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// PredictRequest is the body of POST /predict. Field names follow the
// training columns with spaces replaced by underscores.
type PredictRequest struct {
	Bedrooms       *float64 `json:"Bedrooms"`
	Bathrooms      *float64 `json:"Bathrooms"`
	ErfSize        *float64 `json:"Erf_Size"`
	TypeOfProperty *string  `json:"Type_of_Property"`
}

// PredictResponse is the body of a successful POST /predict.
type PredictResponse struct {
	PredictedPrice float64 `json:"predicted_price"`
	Currency       string  `json:"currency"`
}

// missing lists the required fields absent from the request.
func (p PredictRequest) missing() []string {
	var out []string
	if p.Bedrooms == nil {
		out = append(out, "Bedrooms")
	}
	if p.Bathrooms == nil {
		out = append(out, "Bathrooms")
	}
	if p.ErfSize == nil {
		out = append(out, "Erf_Size")
	}
	if p.TypeOfProperty == nil {
		out = append(out, "Type_of_Property")
	}
	return out
}

// Record maps the request onto the training column names.
func (p PredictRequest) Record() dataset.Record {
	return dataset.Record{
		dataset.ColBedrooms:     *p.Bedrooms,
		dataset.ColBathrooms:    *p.Bathrooms,
		dataset.ColErfSize:      *p.ErfSize,
		dataset.ColPropertyType: *p.TypeOfProperty,
	}
}

// MountHandlers registers the API routes on the router.
func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/", h.root)
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/readyz", h.readyz)
	s.mux.Post("/predict", h.predict)
	s.mux.Get("/model", h.model)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func (h *Handlers) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the SA House Price Predictor API"})
}

func (h *Handlers) readyz(w http.ResponseWriter, r *http.Request) {
	if !h.P.Ready() {
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "Model not loaded")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *Handlers) model(w http.ResponseWriter, r *http.Request) {
	info, ok := h.P.Info()
	if !ok {
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "Model not loaded")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handlers) predict(w http.ResponseWriter, r *http.Request) {
	if !h.P.Ready() {
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "Model not loaded")
		return
	}

	var req PredictRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeProblem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", "invalid request body: "+err.Error())
		return
	}
	if missing := req.missing(); len(missing) > 0 {
		writeProblem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", "field required: "+strings.Join(missing, ", "))
		return
	}

	price, err := h.P.Predict(r.Context(), req.Record())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, PredictResponse{PredictedPrice: price, Currency: "ZAR"})
	case errors.Is(err, errors.ErrModelUnavailable):
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "Model not loaded")
	default:
		detail := err.Error()
		var predErr *errors.PredictionError
		if !errors.As(err, &predErr) {
			detail = errors.NewPredictionError(err).Error()
		}
		log.Error().Err(err).Msg("prediction failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", detail)
	}
}
