package geolib

import (
	"bytes"
	"io"
	"net/http"

	"github.com/qri-io/jsonschema"
)

const maxBatchBodySize = 1 << 20

var handleBatchRequestJSONSchema = func() *jsonschema.Schema {
	data := `{
        "type": "array",
        "items": {
            "type": "string"
        }
    }`

	rv := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(data), rv); err != nil {
		panic(err)
	}

	return rv
}()

func (h httpHandler) handleBatch(w http.ResponseWriter, req *http.Request) {
	bodyBytes, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBatchBodySize))

	req.Body.Close()

	if err != nil {
		h.sendError(w, newLookupError(CodeInvalidJSON, "", err))

		return
	}

	bodyBytes = bytes.TrimSpace(bodyBytes)
	if len(bodyBytes) == 0 {
		h.sendError(w, newLookupError(CodeNullRequest, "", nil))

		return
	}

	errs, err := handleBatchRequestJSONSchema.ValidateBytes(req.Context(), bodyBytes)

	switch {
	case err != nil:
		h.sendError(w, newLookupError(CodeInvalidJSON, "", err))

		return
	case bytes.Equal(bodyBytes, []byte("null")):
		h.sendError(w, newLookupError(CodeNullRequest, "", nil))

		return
	case len(errs) > 0:
		h.sendError(w, newLookupError(CodeInvalidJSON, "", errs[0]))

		return
	}

	hostnames := []string{}
	if err := json.Unmarshal(bodyBytes, &hostnames); err != nil {
		h.sendError(w, newLookupError(CodeInvalidJSON, "", err))

		return
	}

	if len(hostnames) == 0 {
		h.sendError(w, newLookupError(CodeEmptyRequestList, "", nil))

		return
	}

	result := h.geo.LookupBatch(req.Context(), hostnames)
	statusCode := http.StatusOK

	if result.ItemCount() == 0 && len(result.Errors) > 0 {
		statusCode = result.Errors[0].StatusCode()
	}

	h.encodeJSON(w, statusCode, httpEnvelope{
		Data:   result.Items,
		Errors: result.Errors,
		Pagination: &httpPagination{
			ItemCount: result.ItemCount(),
		},
	})
}
