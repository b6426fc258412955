package geolib

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type httpPagination struct {
	ItemCount int `json:"itemCount"`
}

type httpEnvelope struct {
	Data       interface{}     `json:"data"`
	Errors     []*LookupError  `json:"errors"`
	Pagination *httpPagination `json:"pagination,omitempty"`
}

type httpHandler struct {
	geo *Geolocator
}

func (h httpHandler) encodeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	encoder := json.NewEncoder(w)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	encoder.SetEscapeHTML(false)
	encoder.Encode(data) // nolint: errcheck
}

func (h httpHandler) sendData(w http.ResponseWriter, data interface{}) {
	h.encodeJSON(w, http.StatusOK, httpEnvelope{
		Data:   data,
		Errors: []*LookupError{},
	})
}

func (h httpHandler) sendError(w http.ResponseWriter, err *LookupError) {
	h.encodeJSON(w, err.StatusCode(), httpEnvelope{
		Errors: []*LookupError{err},
	})
}

func (h httpHandler) handleEmptyHostname(w http.ResponseWriter, _ *http.Request) {
	h.sendError(w, newLookupError(CodeEmptyHostname, "", nil))
}

func hostnameParam(req *http.Request) string {
	value := chi.URLParam(req, "hostname")

	if unescaped, err := url.PathUnescape(value); err == nil {
		return unescaped
	}

	return value
}

// NewHTTPHandler returns an HTTP API of the geolocator. Authentication
// and access logging are up to the caller.
func NewHTTPHandler(geo *Geolocator) http.Handler {
	handler := httpHandler{
		geo: geo,
	}
	router := chi.NewRouter()

	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)

	router.Get("/health", handler.handleHealth)
	router.Get("/stats", handler.handleStats)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/v1", func(r chi.Router) {
		r.Get("/lookup", handler.handleEmptyHostname)
		r.Post("/lookup", handler.handleBatch)
		r.Get("/lookup/{hostname}", handler.handleLookup)
		r.Delete("/lookup/{hostname}", handler.handleRemove)
	})

	router.Route("/v1.1", func(r chi.Router) {
		r.Get("/lookup/city", handler.handleEmptyHostname)
		r.Get("/lookup/city/{hostname}", handler.handleLookupCity)
		r.Get("/lookup/insights", handler.handleEmptyHostname)
		r.Get("/lookup/insights/{hostname}", handler.handleLookupInsights)
		r.Delete("/lookup/{hostname}", handler.handleRemoveRich)
	})

	return router
}
