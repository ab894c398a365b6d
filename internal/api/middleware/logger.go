package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// crlf strips CR/LF from client-supplied values before they reach a log line.
var crlf = strings.NewReplacer("\n", "", "\r", "")

// Logger logs each request's method, path, response status and duration.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Printf(
			"%s %s %d %s",
			crlf.Replace(r.Method),
			crlf.Replace(r.URL.Path),
			rec.status,
			time.Since(start),
		)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}
