package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"pawnstorm/internal/logging"
	"pawnstorm/internal/theme"
)

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Themed attaches the session's theme provider to the request context.
func (h *Handler) Themed(prefix string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := h.session(r, prefix)
		if err != nil {
			WriteJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
			return
		}
		next(w, r.WithContext(theme.WithProvider(r.Context(), g.Theme)))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the recorder.
func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// LogRequests logs one debug line per request.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if strings.HasPrefix(r.URL.Path, "/sse/") {
			return
		}
		logging.Named("http").Debugw("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"ip", ClientIP(r),
			"took", time.Since(start),
		)
	})
}
