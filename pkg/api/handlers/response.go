package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response is the envelope every API endpoint answers with.
//
// Status is "healthy", "unhealthy", "ok" or "error". Data carries the
// payload and Error the failure reason.
type Response struct {
	Status    string      `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Headers are already sent; nothing useful can be done on failure.
	_ = json.NewEncoder(w).Encode(body)
}

func healthyResponse(data interface{}) Response {
	return Response{Status: "healthy", Timestamp: time.Now().UTC(), Data: data}
}

func unhealthyResponse(errMsg string) Response {
	return Response{Status: "unhealthy", Timestamp: time.Now().UTC(), Error: errMsg}
}

func okResponse(data interface{}) Response {
	return Response{Status: "ok", Timestamp: time.Now().UTC(), Data: data}
}

func errorResponse(errMsg string) Response {
	return Response{Status: "error", Timestamp: time.Now().UTC(), Error: errMsg}
}
