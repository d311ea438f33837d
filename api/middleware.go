package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gouniverse/uid"
	"github.com/klauspost/compress/gzhttp"
)

func withMiddleware(next http.Handler) http.Handler {
	return withRequestLog(withCors(gzhttp.GzipHandler(next)))
}

// withCors permits cross-origin requests from any origin on every endpoint.
// Preflight requests are answered directly.
func withCors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRequestLog stamps every request with a short id and logs method, path
// and duration.
func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uid.MicroUid()
		start := time.Now()

		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r)

		log.Printf("%s %s %s %dms", requestID, r.Method, r.URL.Path, time.Since(start).Milliseconds())
	})
}
