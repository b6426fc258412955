package geolib

import "net/http"

type httpRemoveResult struct {
	Hostname string `json:"hostname"`
	Removed  bool   `json:"removed"`
}

func (h httpHandler) handleLookup(w http.ResponseWriter, req *http.Request) {
	hostname := hostnameParam(req)

	record, err := h.geo.Lookup(req.Context(), hostname)
	if err != nil {
		h.sendError(w, AsLookupError(err, hostname))

		return
	}

	h.sendData(w, record)
}

func (h httpHandler) handleLookupCity(w http.ResponseWriter, req *http.Request) {
	hostname := hostnameParam(req)

	record, err := h.geo.LookupCity(req.Context(), hostname)
	if err != nil {
		h.sendError(w, AsLookupError(err, hostname))

		return
	}

	h.sendData(w, record)
}

func (h httpHandler) handleLookupInsights(w http.ResponseWriter, req *http.Request) {
	hostname := hostnameParam(req)

	record, err := h.geo.LookupInsights(req.Context(), hostname)
	if err != nil {
		h.sendError(w, AsLookupError(err, hostname))

		return
	}

	h.sendData(w, record)
}

func (h httpHandler) handleRemove(w http.ResponseWriter, req *http.Request) {
	hostname := hostnameParam(req)

	if err := h.geo.Remove(req.Context(), hostname); err != nil {
		h.sendError(w, AsLookupError(err, hostname))

		return
	}

	h.sendData(w, httpRemoveResult{Hostname: hostname, Removed: true})
}

func (h httpHandler) handleRemoveRich(w http.ResponseWriter, req *http.Request) {
	hostname := hostnameParam(req)

	if err := h.geo.RemoveRich(req.Context(), hostname); err != nil {
		h.sendError(w, AsLookupError(err, hostname))

		return
	}

	h.sendData(w, httpRemoveResult{Hostname: hostname, Removed: true})
}
