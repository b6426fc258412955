package geolib

import "net/http"

func (h httpHandler) handleHealth(w http.ResponseWriter, req *http.Request) {
	report := h.geo.Health(req.Context())
	statusCode := http.StatusOK

	if !report.Healthy {
		statusCode = http.StatusServiceUnavailable
	}

	h.encodeJSON(w, statusCode, httpEnvelope{
		Data:   report,
		Errors: []*LookupError{},
	})
}

func (h httpHandler) handleStats(w http.ResponseWriter, _ *http.Request) {
	h.sendData(w, h.geo.UsageStats())
}
