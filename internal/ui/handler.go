// Package ui serves a small HTML form that calls the prediction API.
package ui

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/YuminosukeSato/housepricer/metrics"
)

// PropertyTypes are the choices offered by the form.
var PropertyTypes = []string{"House", "Townhouse", "Apartment / Flat"}

const connectionMessage = "Could not connect to the API. Is the backend running?"

// Predictor is the part of Client the handler needs.
type Predictor interface {
	Predict(ctx context.Context, p Property) (float64, error)
}

type view struct {
	Property Property
	Types    []string
	Price    string
	Error    string
}

type Handler struct {
	api  Predictor
	tmpl *template.Template
}

func NewHandler(api Predictor) *Handler {
	return &Handler{api: api, tmpl: template.Must(template.New("page").Parse(page))}
}

// FormatRand renders a price the way the form shows it, e.g. R 1,234,567.89.
func FormatRand(price float64) string {
	return "R " + metrics.FormatThousands(price)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.render(w, http.StatusOK, view{Property: defaultProperty()})
	case http.MethodPost:
		h.submit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func defaultProperty() Property {
	return Property{Bedrooms: 3, Bathrooms: 2, ErfSize: 500, TypeOfProperty: PropertyTypes[0]}
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	p, err := parseForm(r)
	if err != nil {
		h.render(w, http.StatusBadRequest, view{Property: defaultProperty(), Error: err.Error()})
		return
	}

	v := view{Property: p}
	price, err := h.api.Predict(r.Context(), p)
	var apiErr *APIError
	switch {
	case err == nil:
		v.Price = FormatRand(price)
	case errors.Is(err, ErrConnection):
		v.Error = connectionMessage
	case errors.As(err, &apiErr):
		v.Error = "Error: " + apiErr.Body
	default:
		log.Error().Err(err).Msg("ui prediction failed")
		v.Error = "Error: " + err.Error()
	}
	h.render(w, http.StatusOK, v)
}

func parseForm(r *http.Request) (Property, error) {
	if err := r.ParseForm(); err != nil {
		return Property{}, err
	}
	num := func(name string, lo, hi float64) (float64, error) {
		f, err := strconv.ParseFloat(r.PostForm.Get(name), 64)
		if err != nil || f < lo || f > hi {
			return 0, errors.New("invalid value for " + name)
		}
		return f, nil
	}
	var p Property
	var err error
	if p.Bedrooms, err = num("bedrooms", 0, 10); err != nil {
		return Property{}, err
	}
	if p.Bathrooms, err = num("bathrooms", 0, 10); err != nil {
		return Property{}, err
	}
	if p.ErfSize, err = num("erf_size", 0, 1e9); err != nil {
		return Property{}, err
	}
	p.TypeOfProperty = r.PostForm.Get("property_type")
	if p.TypeOfProperty == "" {
		return Property{}, errors.New("invalid value for property_type")
	}
	return p, nil
}

func (h *Handler) render(w http.ResponseWriter, status int, v view) {
	v.Types = PropertyTypes
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tmpl.Execute(w, v); err != nil {
		log.Error().Err(err).Msg("render ui page failed")
	}
}

const page = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>SA House Price Predictor</title>
<style>
body { font-family: sans-serif; background-color: #f5f5f5; margin: 2rem; }
form, .metric-card { background-color: white; padding: 20px; border-radius: 10px; box-shadow: 0 4px 6px rgba(0,0,0,0.1); max-width: 420px; }
button { width: 100%; background-color: #ff4b4b; color: white; font-weight: bold; border-radius: 10px; padding: 0.5rem 1rem; border: none; }
.metric-value { font-size: 2.5rem; font-weight: bold; color: #2c3e50; }
.metric-label { font-size: 1rem; color: #7f8c8d; }
.error { color: #c0392b; }
</style>
</head>
<body>
<h1>SA House Price Predictor</h1>
<h3>Estimate the market value of your property</h3>
<form method="post" action="/">
  <label>Bedrooms <input type="number" name="bedrooms" min="0" max="10" step="0.5" value="{{.Property.Bedrooms}}"></label><br>
  <label>Bathrooms <input type="number" name="bathrooms" min="0" max="10" step="0.5" value="{{.Property.Bathrooms}}"></label><br>
  <label>Erf Size (m²) <input type="number" name="erf_size" min="0" step="10" value="{{.Property.ErfSize}}"></label><br>
  <label>Type of Property
    <select name="property_type">
    {{- range .Types}}
      <option{{if eq . $.Property.TypeOfProperty}} selected{{end}}>{{.}}</option>
    {{- end}}
    </select>
  </label><br>
  <button type="submit">Predict Price</button>
</form>
{{if .Price}}
<div class="metric-card">
  <div class="metric-label">Estimated Market Value</div>
  <div class="metric-value">{{.Price}}</div>
</div>
{{else if .Error}}
<p class="error">{{.Error}}</p>
{{else}}
<p>Enter details and click Predict to see the result here.</p>
{{end}}
</body>
</html>
`
