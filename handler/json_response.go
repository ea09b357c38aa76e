package handler

import (
	"encoding/json"
	"net/http"
)

// JSONResponse is the envelope of every JSON body: exactly one of Data and
// Error is set, Meta carries list totals and the like.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail is the error member of the envelope. Details holds per-field
// messages for validation failures.
type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j *jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption adjusts a JSON response.
type JSONOption func(*jsonResponse)

// WithJSONStatus overrides the status code, 200 by default for data.
func WithJSONStatus(status int) JSONOption {
	return func(j *jsonResponse) { j.status = status }
}

func WithJSONMeta(meta map[string]any) JSONOption {
	return func(j *jsonResponse) { j.body.Meta = meta }
}

// JSON puts v under "data". Errors are routed to JSONError.
func JSON(v any, opts ...JSONOption) Response {
	if err, ok := v.(error); ok {
		return JSONError(err, opts...)
	}
	return build(http.StatusOK, JSONResponse{Data: v}, opts)
}

// JSONError puts the classified err under "error" with the matching status.
func JSONError(err error, opts ...JSONOption) Response {
	info := classifyError(err)
	return build(info.StatusCode, JSONResponse{Error: info.Detail}, opts)
}

func build(status int, body JSONResponse, opts []JSONOption) *jsonResponse {
	j := &jsonResponse{status: status, body: body}
	for _, opt := range opts {
		opt(j)
	}
	return j
}
