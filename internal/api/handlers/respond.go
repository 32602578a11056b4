package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR [handlers] encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Success: false, Message: message, Code: code})
}

// writeStorageError maps an uncategorized service error to 503 when the
// database is unreachable and 500 otherwise. The full error is logged; the
// response detail is suppressed unless dev is set.
func writeStorageError(w http.ResponseWriter, component string, err error, dev bool) {
	log.Printf("ERROR [%s] %v", component, err)

	status := http.StatusInternalServerError
	message := "Internal server error"

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
		message = "Service temporarily unavailable"
	}

	if dev {
		message = err.Error()
	}
	writeError(w, status, message, "")
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
