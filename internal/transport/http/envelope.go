package http

import (
	"encoding/json"
	"net/http"
)

// apiError is the error half of the response envelope.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// envelope is the unified response shape: every endpoint answers with the
// request id, a data payload, and an error, exactly one of the last two set.
type envelope struct {
	RequestID string    `json:"requestId"`
	Data      any       `json:"data"`
	Error     *apiError `json:"error"`
}

func writeData(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeEnvelope(w, status, envelope{
		RequestID: requestIDFromContext(r.Context()),
		Data:      data,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeEnvelope(w, status, envelope{
		RequestID: requestIDFromContext(r.Context()),
		Error:     &apiError{Code: code, Message: msg},
	})
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(env)
	if err != nil {
		_, _ = w.Write([]byte(`{"requestId":"","data":null,"error":{"code":"internal","message":"internal error"}}`))
		return
	}
	_, _ = w.Write(payload)
}
