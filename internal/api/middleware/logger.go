package middleware

import (
	"log"
	"net/http"
	"time"
)

// accessRecorder captures the status and body size a handler produced so the
// access log can report what actually went out on the wire.
type accessRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rec *accessRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *accessRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}

// Logger emits one access-log line per request: peer, method, path, status,
// response bytes, and handling time. File payloads are opaque here; the byte
// count is the cheap way to spot a truncated download in the log.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &accessRecorder{
			ResponseWriter: w,
			status:         http.StatusOK,
		}

		next.ServeHTTP(rec, r)

		log.Printf(
			"%s %s %s %d %dB %s",
			r.RemoteAddr,
			r.Method,
			r.URL.Path,
			rec.status,
			rec.bytes,
			time.Since(start),
		)
	})
}
